// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dispatch

import (
	"context"

	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/vk/dispatchgo/internal/remote"
	"github.com/zclconf/go-cty/cty"
)

// Handle is the result channel a call wrote into. It must be released once
// its entries have been read, or when the call failed.
type Handle struct {
	name string
	ch   remote.Channel
}

// Name returns the channel name.
func (h *Handle) Name() string { return h.name }

// Release purges the channel. It is safe to call more than once.
func (h *Handle) Release(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Purging result channel.", "channel", h.name)
	return h.ch.Purge(ctx, h.name)
}

// Invoker issues the remote call.
type Invoker struct {
	caller   remote.Caller
	channels remote.Channel
}

// NewInvoker returns an Invoker whose handles read from channels.
func NewInvoker(caller remote.Caller, channels remote.Channel) *Invoker {
	return &Invoker{caller: caller, channels: channels}
}

// Invoke calls api/method with channel and subject ahead of vector. The
// returned Handle is never nil, so a failed call can still be purged.
func (inv *Invoker) Invoke(ctx context.Context, api, method, channel string, subject cty.Value, vector []cty.Value) (*Handle, error) {
	h := &Handle{name: channel, ch: inv.channels}

	ctxlog.FromContext(ctx).Debug("Invoking remote procedure.", "args", len(vector))
	if err := inv.caller.Call(ctx, api, method, channel, subject, vector); err != nil {
		return h, &Error{Op: "invoke", API: api, Method: method, Kind: ErrRemoteCallFailed, Err: err}
	}
	return h, nil
}
