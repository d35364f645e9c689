// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Absent is bound to a parameter that received no argument and declares no
// default. It is a null, never an empty string.
var Absent = cty.NullVal(cty.DynamicPseudoType)

// Binder builds the positional argument vector of a call.
type Binder struct {
	macros MacroResolver
}

// NewBinder returns a Binder that resolves symbolic defaults with macros.
func NewBinder(macros MacroResolver) *Binder {
	return &Binder{macros: macros}
}

// Bind returns one value per callable parameter. For each parameter, in
// declared order, the first of these wins: a named argument with the same
// name (case-insensitive), the positional argument at the same index, the
// declared default, Absent. Values are passed through untouched.
func (b *Binder) Bind(ctx context.Context, params []Parameter, positional []cty.Value, named map[string]cty.Value) ([]cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	if len(positional) > len(params) {
		return nil, &Error{
			Op:   "bind",
			Kind: ErrTooManyArguments,
			Err:  fmt.Errorf("got %d positional arguments, method accepts %d", len(positional), len(params)),
		}
	}

	names := sortedNames(named)
	used := make(map[string]bool, len(named))
	vector := make([]cty.Value, len(params))

	for i, p := range params {
		if name, ok := matchNamed(names, named, p.Name); ok {
			used[name] = true
			vector[i] = named[name]
			logger.Debug("Bound named argument.", "param", p.Name, "slot", i)
			continue
		}
		if i < len(positional) {
			vector[i] = positional[i]
			continue
		}
		if p.HasDefault {
			v, err := b.defaultValue(ctx, p)
			if err != nil {
				return nil, err
			}
			vector[i] = v
			logger.Debug("Bound declared default.", "param", p.Name, "slot", i, "default", p.Default)
			continue
		}
		vector[i] = Absent
	}

	for _, name := range names {
		if !used[name] {
			logger.Warn("Named argument matches no parameter, ignoring it.", "argument", name)
		}
	}
	return vector, nil
}

func (b *Binder) defaultValue(ctx context.Context, p Parameter) (cty.Value, error) {
	switch {
	case p.Default == EmptyDefault:
		return cty.StringVal(""), nil
	case p.Symbolic:
		if b.macros == nil {
			return cty.NilVal, &Error{Op: "bind", Param: p.Name, Kind: ErrUnresolvedDefault, Err: fmt.Errorf("no macro resolver for %s", p.Default)}
		}
		v, ok, err := b.macros.Resolve(ctx, p.Default)
		if err != nil {
			return cty.NilVal, &Error{Op: "bind", Param: p.Name, Kind: ErrUnresolvedDefault, Err: err}
		}
		if !ok {
			return cty.NilVal, &Error{Op: "bind", Param: p.Name, Kind: ErrUnresolvedDefault, Err: fmt.Errorf("macro %s not found", p.Default)}
		}
		return cty.StringVal(v), nil
	default:
		return cty.StringVal(unquote(p.Default)), nil
	}
}

// unquote strips the quotes of a quoted literal and collapses doubled
// quotes inside it. Unquoted literals are returned as is.
func unquote(lit string) string {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return lit
	}
	return strings.ReplaceAll(lit[1:len(lit)-1], `""`, `"`)
}

// matchNamed prefers an exact match, then the first case-insensitive match
// in sorted order.
func matchNamed(names []string, named map[string]cty.Value, param string) (string, bool) {
	if _, ok := named[param]; ok {
		return param, true
	}
	for _, name := range names {
		if strings.EqualFold(name, param) {
			return name, true
		}
	}
	return "", false
}

func sortedNames(named map[string]cty.Value) []string {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
