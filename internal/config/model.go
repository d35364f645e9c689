package config

import "time"

// Model is the unified, format-agnostic representation of the application
// configuration. Every section is optional; a nil section means defaults.
type Model struct {
	Remote   *Remote
	Dispatch *Dispatch
	Engine   *Engine
}

// Remote describes the socket.io endpoint of the engine.
type Remote struct {
	URL                string
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Dispatch holds dispatcher settings.
type Dispatch struct {
	Channel string
	// MacroPrefix marks symbolic defaults. Nil means the dispatcher's
	// default; an empty prefix disables macro resolution.
	MacroPrefix     *string
	CacheSignatures bool
	// MacroFile is a local include file used as the macro table instead of
	// the engine's.
	MacroFile string
}

// Engine describes an in-memory engine: its macro table lines and the
// methods it serves.
type Engine struct {
	Macros  []string
	Methods []*Method
}

// Method is one servable remote method.
type Method struct {
	API     string
	Name    string
	Formal  string
	Returns string
	Entries []*Entry
	// Fail, when non-empty, makes the call fail with this message after the
	// entries have been written.
	Fail string
}

// Entry is one populated key of the result channel.
type Entry struct {
	Key    int64
	Fields []string
}

// DefaultTimeout bounds a single remote request when the config names none.
const DefaultTimeout = 10 * time.Second
