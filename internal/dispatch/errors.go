// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dispatch

import (
	"errors"
	"strings"
)

var (
	// ErrSchemaNotFound means the engine holds no metadata for the method.
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrTooManyArguments means more positional arguments were supplied
	// than the method declares.
	ErrTooManyArguments = errors.New("too many arguments")
	// ErrUnresolvedDefault means a symbolic default could not be found in
	// the macro table.
	ErrUnresolvedDefault = errors.New("unresolved default")
	// ErrRemoteCallFailed means the procedure call itself failed.
	ErrRemoteCallFailed = errors.New("remote call failed")
	// ErrMalformedRow tags payloads with fewer fields than the schema has
	// columns. It is logged, never returned.
	ErrMalformedRow = errors.New("malformed row")
)

// Error describes a failed dispatch phase. Kind is one of the package's
// sentinel errors; Err is the underlying cause, if any.
type Error struct {
	Op     string
	API    string
	Method string
	Param  string
	Kind   error
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.API != "" || e.Method != "" {
		b.WriteString(" ")
		b.WriteString(e.API)
		b.WriteString(".")
		b.WriteString(e.Method)
	}
	if e.Param != "" {
		b.WriteString(": parameter '")
		b.WriteString(e.Param)
		b.WriteString("'")
	}
	if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// annotate fills in the method identity on a *Error produced by a phase
// that does not know it.
func annotate(err error, api, method string) error {
	var de *Error
	if errors.As(err, &de) && de.API == "" && de.Method == "" {
		de.API = api
		de.Method = method
	}
	return err
}
