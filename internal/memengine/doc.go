// Package memengine provides a thread-safe, in-memory engine that serves
// method metadata, procedure calls, result channels and a macro table.
//
// It backs the CLI's offline mode and is the engine double used by tests
// throughout the module. Procedures are plain Go functions registered per
// (api, method) pair; they write into the named channel through a
// ChannelWriter exactly as a remote procedure would.
//
// # Concurrency Model
//
// A single mutex guards every structure. Procedures run without the lock
// held, so they may write through the ChannelWriter freely. Channels are
// shared by name: two calls that name the same channel see each other's
// entries, as they would on the real engine.
package memengine
