// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package dispatch is a reflective query dispatcher for the engine's named
// API/method procedures.
//
// A dispatch runs four phases against a remote.Engine:
//
//  1. Resolve: read the method's formal parameter list and result-column
//     schema from the engine's own metadata (SignatureResolver).
//  2. Bind: merge named arguments, positional arguments and declared
//     defaults into one positional vector (Binder). Symbolic defaults are
//     looked up through a MacroResolver.
//  3. Invoke: call the procedure with the output channel name and the
//     subject prepended to the vector (Invoker). The call returns a Handle
//     on the channel it wrote into.
//  4. Drain: walk the channel in ascending key order, split every payload
//     into fields, zip them against the columns and purge the channel
//     (Materializer).
//
// The channel named by a Handle is shared by every caller of the same
// remote namespace. The package never locks it: callers that dispatch
// concurrently must pass distinct names with the Channel argument, for
// example from UniqueChannel.
package dispatch
