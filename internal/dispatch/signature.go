// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file resolves a method's signature from engine metadata.
//
// The formal parameter string looks like
//
//	&result,domainid:%Integer,page:%Integer=1,setop=$$$UNION,filter=""
//
// and the result schema like
//
//	entUniId:%Integer,entity:%String,frequency:%Integer
//
// The first two formal parameters are the output channel name and the
// subject. The Invoker supplies them, so they never take caller arguments.

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/vk/dispatchgo/internal/remote"
)

const (
	// DefaultMacroPrefix marks a default value as a symbolic constant.
	DefaultMacroPrefix = "$$$"
	// EmptyDefault is the literal that declares an empty-string default.
	EmptyDefault = `""`

	reservedParams = 2
)

// Parameter is one formal parameter of a remote method.
type Parameter struct {
	Name string
	Type string
	// Marker is set when the declaration carried a by-reference, output or
	// variadic marker.
	Marker     bool
	HasDefault bool
	Default    string
	// Symbolic is set when Default names a macro rather than a literal.
	Symbolic bool
}

// Column is one result column. DeclaredType is informational only; values
// are never coerced to it.
type Column struct {
	Name         string
	DeclaredType string
}

// Callable returns the parameters the caller fills in, dropping the two
// reserved leading ones.
func Callable(params []Parameter) []Parameter {
	if len(params) <= reservedParams {
		return nil
	}
	return params[reservedParams:]
}

// SignatureResolver fetches parameter and column descriptors from metadata.
type SignatureResolver struct {
	meta        remote.Metadata
	macroPrefix string
	cache       *sync.Map
}

type signatureKey struct {
	api, method string
	result      bool
}

// NewSignatureResolver returns a resolver over meta. When cache is true,
// descriptors are kept per (api, method) for the resolver's lifetime.
func NewSignatureResolver(meta remote.Metadata, macroPrefix string, cache bool) *SignatureResolver {
	s := &SignatureResolver{meta: meta, macroPrefix: macroPrefix}
	if cache {
		s.cache = &sync.Map{}
	}
	return s
}

// ResultSchema returns the ordered result columns of api/method.
func (s *SignatureResolver) ResultSchema(ctx context.Context, api, method string) ([]Column, error) {
	key := signatureKey{api: api, method: method, result: true}
	if cols, ok := s.cached(key); ok {
		return cols.([]Column), nil
	}

	raw, err := s.meta.ResultSchema(ctx, api, method)
	if err != nil {
		return nil, lookupError("resolve result schema", api, method, err)
	}
	cols := ParseResultSchema(raw)
	ctxlog.FromContext(ctx).Debug("Resolved result schema.", "columns", len(cols))

	s.store(key, cols)
	return cols, nil
}

// ParameterSpec returns every declared parameter of api/method, the two
// reserved ones included.
func (s *SignatureResolver) ParameterSpec(ctx context.Context, api, method string) ([]Parameter, error) {
	key := signatureKey{api: api, method: method}
	if params, ok := s.cached(key); ok {
		return params.([]Parameter), nil
	}

	raw, err := s.meta.ParameterSpec(ctx, api, method)
	if err != nil {
		return nil, lookupError("resolve parameter spec", api, method, err)
	}
	params := ParseParameterSpec(raw, s.macroPrefix)
	ctxlog.FromContext(ctx).Debug("Resolved parameter spec.", "parameters", len(params))

	s.store(key, params)
	return params, nil
}

func (s *SignatureResolver) cached(key signatureKey) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Load(key)
}

func (s *SignatureResolver) store(key signatureKey, v any) {
	if s.cache != nil {
		s.cache.Store(key, v)
	}
}

func lookupError(op, api, method string, err error) error {
	if errors.Is(err, remote.ErrNotFound) {
		return &Error{Op: op, API: api, Method: method, Kind: ErrSchemaNotFound, Err: err}
	}
	return fmt.Errorf("%s %s.%s: %w", op, api, method, err)
}

// ParseResultSchema parses a comma-delimited "name:type" list. Empty
// entries are skipped.
func ParseResultSchema(raw string) []Column {
	var cols []Column
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		name, typ, _ := strings.Cut(tok, ":")
		cols = append(cols, Column{
			Name:         strings.TrimSpace(name),
			DeclaredType: strings.TrimSpace(typ),
		})
	}
	return cols
}

// ParseParameterSpec parses a formal parameter string. A default that
// starts with macroPrefix is marked symbolic.
func ParseParameterSpec(raw, macroPrefix string) []Parameter {
	var params []Parameter
	for _, tok := range splitFormal(raw) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		params = append(params, parseParameter(tok, macroPrefix))
	}
	return params
}

func parseParameter(tok, macroPrefix string) Parameter {
	var p Parameter

	decl, def, hasDefault := strings.Cut(tok, "=")
	decl = strings.TrimSpace(decl)
	for {
		trimmed := strings.TrimPrefix(strings.TrimLeft(decl, "&*"), "...")
		if trimmed == decl {
			break
		}
		decl = trimmed
		p.Marker = true
	}

	name, typ, _ := strings.Cut(decl, ":")
	if strings.HasSuffix(name, "...") {
		name = strings.TrimSuffix(name, "...")
		p.Marker = true
	}
	p.Name = strings.TrimSpace(name)
	p.Type = strings.TrimSpace(typ)

	if hasDefault {
		p.HasDefault = true
		p.Default = strings.TrimSpace(def)
		p.Symbolic = macroPrefix != "" && strings.HasPrefix(p.Default, macroPrefix)
	}
	return p
}

// splitFormal splits on commas that are not inside a double-quoted default.
func splitFormal(raw string) []string {
	var (
		toks   []string
		quoted bool
		start  int
	)
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				toks = append(toks, raw[start:i])
				start = i + 1
			}
		}
	}
	return append(toks, raw[start:])
}
