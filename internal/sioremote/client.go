// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package sioremote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/dispatchgo/internal/config"
	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/vk/dispatchgo/internal/remote"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ErrClosed is returned for requests issued on, or pending at, a closed
// client.
var ErrClosed = errors.New("socket.io client closed")

// EmitFunc sends one event with its payload.
type EmitFunc func(event string, data any)

// SubscribeFunc registers a listener for every occurrence of an event.
type SubscribeFunc func(event string, fn func(...any))

// Client implements remote.Engine over a socket.io connection.
type Client struct {
	emit    EmitFunc
	timeout time.Duration
	logger  *slog.Logger
	closeFn func()

	mu      sync.Mutex
	pending map[string]chan *Response
	closed  bool
}

var _ remote.Engine = (*Client)(nil)

// New returns a Client that emits requests with emit and receives replies
// through subscribe. Each request waits at most timeout for its reply; a
// non-positive timeout means config.DefaultTimeout.
func New(ctx context.Context, emit EmitFunc, subscribe SubscribeFunc, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	c := &Client{
		emit:    emit,
		timeout: timeout,
		logger:  ctxlog.FromContext(ctx).With("component", "sioremote"),
		pending: make(map[string]chan *Response),
	}
	subscribe(ResponseEvent, c.onResponse)
	return c
}

// Close fails every pending request and releases the connection, if the
// client owns one. Calling Close more than once is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pending := c.pending
	c.pending = make(map[string]chan *Response)
	c.mu.Unlock()

	for id, ch := range pending {
		ch <- &Response{ID: id, Error: &WireError{Message: ErrClosed.Error()}}
	}
	if c.closeFn != nil {
		c.closeFn()
	}
	c.logger.Debug("Client closed.", "failed_pending", len(pending))
	return nil
}

func (c *Client) onResponse(data ...any) {
	if len(data) == 0 {
		c.logger.Warn("Dropping empty response event.")
		return
	}
	resp, err := decodeResponse(data[0])
	if err != nil {
		c.logger.Warn("Dropping undecodable response.", "error", err)
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	delete(c.pending, resp.ID)
	c.mu.Unlock()

	if !ok {
		c.logger.Debug("Dropping response for unknown or expired request.", "id", resp.ID)
		return
	}
	ch <- resp
}

// do sends req and waits for its reply.
func (c *Client) do(ctx context.Context, req *Request) (json.RawMessage, error) {
	req.ID = uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("id", req.ID, "op", req.Op)

	ch := make(chan *Response, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	logger.Debug("Emitting request.")
	c.emit(RequestEvent, req)

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if resp.OK {
			return resp.Result, nil
		}
		return nil, responseError(resp)
	case <-ctx.Done():
		c.forget(req.ID)
		return nil, fmt.Errorf("%s request cancelled: %w", req.Op, ctx.Err())
	case <-timer.C:
		c.forget(req.ID)
		return nil, fmt.Errorf("timed out after %v waiting for %s reply", c.timeout, req.Op)
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func responseError(resp *Response) error {
	if resp.Error == nil {
		return &WireError{Message: "request failed without an error"}
	}
	if resp.Error.Code == CodeNotFound {
		return fmt.Errorf("%s: %w", resp.Error.Message, remote.ErrNotFound)
	}
	if resp.Error.Message == ErrClosed.Error() && resp.Error.Code == "" {
		return ErrClosed
	}
	return resp.Error
}

// doResult issues req and decodes the reply's result.
func (c *Client) doResult(ctx context.Context, req *Request) (cty.Value, error) {
	raw, err := c.do(ctx, req)
	if err != nil {
		return cty.NilVal, err
	}
	v, err := decodeResult(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%s reply: %w", req.Op, err)
	}
	return v, nil
}

// doString issues req and expects a string result. A null result reads as
// the empty string.
func (c *Client) doString(ctx context.Context, req *Request) (string, error) {
	s, _, err := c.doOptionalString(ctx, req)
	return s, err
}

func (c *Client) doOptionalString(ctx context.Context, req *Request) (string, bool, error) {
	v, err := c.doResult(ctx, req)
	if err != nil {
		return "", false, err
	}
	if v.IsNull() {
		return "", false, nil
	}
	if v.Type() != cty.String {
		return "", false, fmt.Errorf("%s reply is a %s, not a string", req.Op, v.Type().FriendlyName())
	}
	return v.AsString(), true, nil
}

// ParameterSpec implements remote.Metadata.
func (c *Client) ParameterSpec(ctx context.Context, api, method string) (string, error) {
	return c.doString(ctx, &Request{Op: OpParamSpec, API: api, Method: method})
}

// ResultSchema implements remote.Metadata.
func (c *Client) ResultSchema(ctx context.Context, api, method string) (string, error) {
	return c.doString(ctx, &Request{Op: OpResultSchema, API: api, Method: method})
}

// Call implements remote.Caller.
func (c *Client) Call(ctx context.Context, api, method, channel string, subject cty.Value, args []cty.Value) error {
	wireSubject, err := encodeValue(subject)
	if err != nil {
		return fmt.Errorf("failed to encode subject: %w", err)
	}
	wireArgs := make([]any, len(args))
	for i, a := range args {
		if wireArgs[i], err = encodeValue(a); err != nil {
			return fmt.Errorf("failed to encode argument %d: %w", i+1, err)
		}
	}

	_, err = c.do(ctx, &Request{
		Op:      OpCall,
		API:     api,
		Method:  method,
		Channel: channel,
		Subject: wireSubject,
		Args:    wireArgs,
	})
	return err
}

// NextKey implements remote.Channel.
func (c *Client) NextKey(ctx context.Context, dir remote.Direction, channel string, from remote.Key) (remote.Key, error) {
	req := &Request{Op: OpNextKey, Channel: channel, Dir: int(dir)}
	if !from.IsBefore() {
		k := from.Int()
		req.Key = &k
	}
	v, err := c.doResult(ctx, req)
	if err != nil {
		return remote.Before, err
	}
	if v.IsNull() {
		return remote.Before, nil
	}

	var next int64
	if err := gocty.FromCtyValue(v, &next); err != nil {
		return remote.Before, fmt.Errorf("next_key reply is not an integer: %w", err)
	}
	return remote.KeyOf(next), nil
}

// Read implements remote.Channel.
func (c *Client) Read(ctx context.Context, channel string, key remote.Key) (string, error) {
	if key.IsBefore() {
		return "", errors.New("cannot read before the first key")
	}
	k := key.Int()
	return c.doString(ctx, &Request{Op: OpRead, Channel: channel, Key: &k})
}

// Purge implements remote.Channel.
func (c *Client) Purge(ctx context.Context, channel string) error {
	_, err := c.do(ctx, &Request{Op: OpPurge, Channel: channel})
	return err
}

// Line implements remote.MacroTable. A null result means past the end.
func (c *Client) Line(ctx context.Context, n int) (string, bool, error) {
	return c.doOptionalString(ctx, &Request{Op: OpMacroLine, Line: n})
}
