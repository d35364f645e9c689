// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the dispatch lifecycle, decoupled from any
// specific entrypoint like a CLI or server.
//
// An App loads the HCL configuration, selects an engine (a socket.io
// connection, or the in-memory engine described by the configuration when
// running offline), runs one dispatch and renders its rows.
package app
