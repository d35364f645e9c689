// Package config defines the format-agnostic configuration model for the
// application and the Loader interface that fills it.
//
// The model covers three concerns: how to reach the engine (Remote), how
// the dispatcher behaves (Dispatch), and an optional offline engine
// description (Engine) used to serve calls from memory. Concrete loaders,
// such as the HCL one, live in separate packages.
package config
