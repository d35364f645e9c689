// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package remote

import "strconv"

// Direction selects the iteration order of Channel.NextKey.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Key is a position in a channel. The zero value is Before, the synthetic
// position before the first (or after the last) populated key.
type Key struct {
	n   int64
	set bool
}

// Before is the start position of a scan and the end-of-data marker
// returned by NextKey.
var Before = Key{}

// KeyOf returns the position of the populated key n.
func KeyOf(n int64) Key {
	return Key{n: n, set: true}
}

// IsBefore reports whether k is the Before sentinel.
func (k Key) IsBefore() bool { return !k.set }

// Int returns the integer key. It is 0 for Before.
func (k Key) Int() int64 { return k.n }

func (k Key) String() string {
	if !k.set {
		return `""`
	}
	return strconv.FormatInt(k.n, 10)
}
