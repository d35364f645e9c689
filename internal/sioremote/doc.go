// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package sioremote exposes an engine reachable over an established
// socket.io connection as a remote.Engine.
//
// Every operation is one request/reply exchange. Requests are emitted on
// the "dispatch:request" event as a JSON envelope carrying a unique id and
// an op name; the engine answers on "dispatch:response" with the same id:
//
//	-> {"id":"...","op":"next_key","channel":"^||rows","dir":1,"key":3}
//	<- {"id":"...","ok":true,"result":7}
//	<- {"id":"...","ok":false,"error":{"code":"not_found","message":"..."}}
//
// Replies are correlated by id, so any number of requests may be in flight.
// A reply that arrives after its request timed out is dropped.
package sioremote
