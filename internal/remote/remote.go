// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package remote defines the surface the dispatcher consumes from the engine:
// method metadata, the procedure call itself, the sparse result channel the
// call writes into, and the line-oriented macro table.
//
// Nothing in this package talks to a network. Concrete backends live in
// internal/memengine (in-process) and internal/sioremote (a connected
// socket.io client).
package remote

import (
	"context"
	"errors"

	"github.com/zclconf/go-cty/cty"
)

// ErrNotFound is returned by Metadata when no record exists for an
// (api, method) pair.
var ErrNotFound = errors.New("metadata record not found")

// FieldSeparator separates the fields of a packed channel payload.
const FieldSeparator = "\x01"

// Metadata is the read-only metadata oracle of the engine, keyed by the
// exact (api, method) string pair.
type Metadata interface {
	// ParameterSpec returns the comma-delimited formal parameter string of
	// the compiled method.
	ParameterSpec(ctx context.Context, api, method string) (string, error)
	// ResultSchema returns the comma-delimited "name:type" list describing
	// the rows the method writes.
	ResultSchema(ctx context.Context, api, method string) (string, error)
}

// Caller issues a remote procedure call. Results are never returned
// directly; they arrive in the named channel.
type Caller interface {
	Call(ctx context.Context, api, method, channel string, subject cty.Value, args []cty.Value) error
}

// Channel is a named, sparse, integer-keyed ordered store shared by every
// caller in the same remote namespace.
type Channel interface {
	// NextKey returns the next populated key after from in the given
	// direction, or Before when there is none.
	NextKey(ctx context.Context, dir Direction, channel string, from Key) (Key, error)
	// Read returns the packed payload stored at key.
	Read(ctx context.Context, channel string, key Key) (string, error)
	// Purge deletes every entry of the channel. Purging an empty channel
	// is not an error.
	Purge(ctx context.Context, channel string) error
}

// MacroTable exposes an external constant table one line at a time.
// Lines are numbered from 1; ok is false past the last line.
type MacroTable interface {
	Line(ctx context.Context, n int) (line string, ok bool, err error)
}

// Engine is everything a dispatcher needs from one backend.
type Engine interface {
	Metadata
	Caller
	Channel
	MacroTable
}

// ResultSchemaRecord names the metadata record that holds the result
// schema of api/method: the method name with an "RT" suffix inside the
// api class.
func ResultSchemaRecord(api, method string) string {
	return api + "||" + method + "RT"
}
