package memengine

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/dispatchgo/internal/remote"
)

// channel is a sparse ordered store. keys is kept sorted.
type channel struct {
	keys    []int64
	entries map[int64]string
}

func (c *channel) set(key int64, payload string) {
	if _, exists := c.entries[key]; !exists {
		i, _ := slices.BinarySearch(c.keys, key)
		c.keys = slices.Insert(c.keys, i, key)
	}
	c.entries[key] = payload
}

// next returns the first key after from in dir order.
func (c *channel) next(dir remote.Direction, from remote.Key) remote.Key {
	if len(c.keys) == 0 {
		return remote.Before
	}
	if dir == remote.Backward {
		if from.IsBefore() {
			return remote.KeyOf(c.keys[len(c.keys)-1])
		}
		i, _ := slices.BinarySearch(c.keys, from.Int())
		if i == 0 {
			return remote.Before
		}
		return remote.KeyOf(c.keys[i-1])
	}

	if from.IsBefore() {
		return remote.KeyOf(c.keys[0])
	}
	i, found := slices.BinarySearch(c.keys, from.Int())
	if found {
		i++
	}
	if i >= len(c.keys) {
		return remote.Before
	}
	return remote.KeyOf(c.keys[i])
}

func (e *Engine) channelLocked(name string) *channel {
	c, ok := e.channels[name]
	if !ok {
		c = &channel{entries: make(map[int64]string)}
		e.channels[name] = c
	}
	return c
}

// NextKey implements remote.Channel.
func (e *Engine) NextKey(_ context.Context, dir remote.Direction, name string, from remote.Key) (remote.Key, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.channels[name]
	if !ok {
		return remote.Before, nil
	}
	return c.next(dir, from), nil
}

// Read implements remote.Channel.
func (e *Engine) Read(_ context.Context, name string, key remote.Key) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.channels[name]; ok && !key.IsBefore() {
		if payload, ok := c.entries[key.Int()]; ok {
			return payload, nil
		}
	}
	return "", fmt.Errorf("channel '%s' has no entry at key %s", name, key)
}

// Purge implements remote.Channel.
func (e *Engine) Purge(_ context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.channels, name)
	return nil
}

// Len returns the number of populated keys in the named channel.
func (e *Engine) Len(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.channels[name]; ok {
		return len(c.keys)
	}
	return 0
}
