package memengine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/vk/dispatchgo/internal/remote"
	"github.com/zclconf/go-cty/cty"
)

// Procedure is the body of a registered method. It writes its rows into w
// and returns an error to make the call fail.
type Procedure func(ctx context.Context, w *ChannelWriter, subject cty.Value, args []cty.Value) error

// Method is a registered method: its metadata and its body.
type Method struct {
	// Formal is the full formal parameter string, reserved parameters
	// included.
	Formal string
	// Returns is the result schema string.
	Returns string
	Proc    Procedure
}

// Call records one procedure invocation.
type Call struct {
	API     string
	Method  string
	Channel string
	Subject cty.Value
	Args    []cty.Value
}

type methodKey struct {
	api, method string
}

// Engine is an in-memory implementation of remote.Engine.
type Engine struct {
	mu       sync.Mutex
	methods  map[methodKey]*Method
	records  map[string]string
	channels map[string]*channel
	macros   remote.LineTable
	calls    []Call
}

var _ remote.Engine = (*Engine)(nil)

// New creates a new, empty engine.
func New() *Engine {
	return &Engine{
		methods:  make(map[methodKey]*Method),
		records:  make(map[string]string),
		channels: make(map[string]*channel),
	}
}

// Register makes api/method callable. It panics if the pair is already
// registered.
func (e *Engine) Register(api, method string, m *Method) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := methodKey{api: api, method: method}
	if _, exists := e.methods[key]; exists {
		panic(fmt.Sprintf("method '%s.%s' already registered", api, method))
	}
	slog.Debug("Registering method.", "api", api, "method", method)
	e.methods[key] = m
	e.records[remote.ResultSchemaRecord(api, method)] = m.Returns
}

// SetMacros replaces the macro table.
func (e *Engine) SetMacros(lines ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.macros = slices.Clone(remote.LineTable(lines))
}

// ParameterSpec implements remote.Metadata.
func (e *Engine) ParameterSpec(_ context.Context, api, method string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.methods[methodKey{api: api, method: method}]
	if !ok {
		return "", fmt.Errorf("%s.%s: %w", api, method, remote.ErrNotFound)
	}
	return m.Formal, nil
}

// ResultSchema implements remote.Metadata.
func (e *Engine) ResultSchema(_ context.Context, api, method string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	record := remote.ResultSchemaRecord(api, method)
	returns, ok := e.records[record]
	if !ok {
		return "", fmt.Errorf("%s: %w", record, remote.ErrNotFound)
	}
	return returns, nil
}

// Call implements remote.Caller. The procedure runs on the calling
// goroutine.
func (e *Engine) Call(ctx context.Context, api, method, channelName string, subject cty.Value, args []cty.Value) error {
	e.mu.Lock()
	m, ok := e.methods[methodKey{api: api, method: method}]
	e.calls = append(e.calls, Call{
		API:     api,
		Method:  method,
		Channel: channelName,
		Subject: subject,
		Args:    slices.Clone(args),
	})
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("procedure %s.%s does not exist", api, method)
	}
	if m.Proc == nil {
		return nil
	}
	return m.Proc(ctx, &ChannelWriter{engine: e, name: channelName}, subject, args)
}

// Calls returns every call made so far, oldest first.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.calls)
}

// LastCall returns the most recent call, if any.
func (e *Engine) LastCall() (Call, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return Call{}, false
	}
	return e.calls[len(e.calls)-1], true
}

// Line implements remote.MacroTable.
func (e *Engine) Line(ctx context.Context, n int) (string, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.macros.Line(ctx, n)
}

// ChannelWriter writes entries into one named channel.
type ChannelWriter struct {
	engine *Engine
	name   string
}

// Name returns the channel name.
func (w *ChannelWriter) Name() string { return w.name }

// Set stores fields, packed with remote.FieldSeparator, at key.
func (w *ChannelWriter) Set(key int64, fields ...string) {
	w.SetRaw(key, strings.Join(fields, remote.FieldSeparator))
}

// SetRaw stores an already packed payload at key.
func (w *ChannelWriter) SetRaw(key int64, payload string) {
	w.engine.mu.Lock()
	defer w.engine.mu.Unlock()
	w.engine.channelLocked(w.name).set(key, payload)
}
