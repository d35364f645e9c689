// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/vk/dispatchgo/internal/remote"
	"github.com/zclconf/go-cty/cty"
)

// DefaultChannel is the result channel used when a call names none. Every
// dispatcher in the same remote namespace shares it, so concurrent calls
// through it must be serialized by the caller.
const DefaultChannel = "^||dispatch.rows"

// Dispatcher runs a method end to end: signature, binding, call and drain.
type Dispatcher struct {
	signatures   *SignatureResolver
	binder       *Binder
	invoker      *Invoker
	materializer *Materializer
	channel      string
}

type options struct {
	macroPrefix string
	macros      MacroResolver
	cache       bool
	codec       RowCodec
	channel     string
}

// Option configures a Dispatcher.
type Option func(*options)

// WithMacroPrefix sets the prefix that marks a default as symbolic.
func WithMacroPrefix(prefix string) Option {
	return func(o *options) { o.macroPrefix = prefix }
}

// WithMacroResolver replaces the resolver that reads the engine's macro
// table.
func WithMacroResolver(r MacroResolver) Option {
	return func(o *options) { o.macros = r }
}

// WithSignatureCache keeps resolved signatures for the dispatcher's
// lifetime.
func WithSignatureCache(enabled bool) Option {
	return func(o *options) { o.cache = enabled }
}

// WithRowCodec sets the codec used to split row payloads.
func WithRowCodec(c RowCodec) Option {
	return func(o *options) { o.codec = c }
}

// WithDefaultChannel sets the channel used by calls that name none.
func WithDefaultChannel(name string) Option {
	return func(o *options) { o.channel = name }
}

// New returns a Dispatcher backed by engine.
func New(engine remote.Engine, opts ...Option) *Dispatcher {
	o := options{
		macroPrefix: DefaultMacroPrefix,
		channel:     DefaultChannel,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.macros == nil {
		o.macros = &ScanResolver{Table: engine, Prefix: o.macroPrefix}
	}

	return &Dispatcher{
		signatures:   NewSignatureResolver(engine, o.macroPrefix, o.cache),
		binder:       NewBinder(o.macros),
		invoker:      NewInvoker(engine, engine),
		materializer: NewMaterializer(o.codec),
		channel:      o.channel,
	}
}

// Arg is one argument of Dispatch.
type Arg func(*call)

type call struct {
	positional []cty.Value
	named      map[string]cty.Value
	channel    string
}

// Pos appends positional arguments.
func Pos(vals ...cty.Value) Arg {
	return func(c *call) { c.positional = append(c.positional, vals...) }
}

// Named binds v to the parameter called name, ignoring case. A later
// argument with the same name replaces an earlier one.
func Named(name string, v cty.Value) Arg {
	return func(c *call) {
		if c.named == nil {
			c.named = make(map[string]cty.Value)
		}
		c.named[name] = v
	}
}

// Channel routes the call's rows through the named channel instead of the
// dispatcher's default.
func Channel(name string) Arg {
	return func(c *call) { c.channel = name }
}

// Dispatch calls api/method on subject and returns the rows it wrote. The
// result channel is purged before Dispatch returns, whatever the outcome
// of the call.
func (d *Dispatcher) Dispatch(ctx context.Context, api, method string, subject cty.Value, args ...Arg) (*Result, error) {
	c := call{channel: d.channel}
	for _, arg := range args {
		arg(&c)
	}

	ctx = ctxlog.With(ctx, "api", api, "method", method, "channel", c.channel)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Dispatching.", "positional", len(c.positional), "named", len(c.named))

	cols, err := d.signatures.ResultSchema(ctx, api, method)
	if err != nil {
		return nil, err
	}
	params, err := d.signatures.ParameterSpec(ctx, api, method)
	if err != nil {
		return nil, err
	}

	vector, err := d.binder.Bind(ctx, Callable(params), c.positional, c.named)
	if err != nil {
		return nil, annotate(err, api, method)
	}

	h, err := d.invoker.Invoke(ctx, api, method, c.channel, subject, vector)
	if err != nil {
		if rerr := h.Release(ctx); rerr != nil {
			logger.Error("Failed to purge channel after failed call.", "error", rerr)
		}
		return nil, err
	}

	res, err := d.materializer.Drain(ctx, h, cols)
	if err != nil {
		return nil, fmt.Errorf("failed to drain %s.%s: %w", api, method, err)
	}
	logger.Info("Dispatch complete.", "rows", len(res.Rows), "columns", len(res.Columns))
	return res, nil
}

// UniqueChannel returns a fresh channel name under prefix. Concurrent
// dispatches that must not share the default channel pass it through
// Channel.
func UniqueChannel(prefix string) string {
	if prefix == "" {
		prefix = DefaultChannel
	}
	return prefix + "." + uuid.NewString()
}
