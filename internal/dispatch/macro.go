// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/vk/dispatchgo/internal/remote"
)

// MacroResolver turns a symbolic default token into its literal value.
// ok is false when the token is unknown.
type MacroResolver interface {
	Resolve(ctx context.Context, token string) (value string, ok bool, err error)
}

// ScanResolver resolves macros by reading a line-oriented table from the
// first line on. A line defines a macro when its second whitespace
// separated field is the macro name; the third field is the value, so
// values containing whitespace are truncated. The first match wins.
type ScanResolver struct {
	Table  remote.MacroTable
	Prefix string
}

// Resolve implements MacroResolver.
func (r *ScanResolver) Resolve(ctx context.Context, token string) (string, bool, error) {
	name := strings.TrimPrefix(token, r.Prefix)
	logger := ctxlog.FromContext(ctx).With("macro", name)

	for n := 1; ; n++ {
		line, ok, err := r.Table.Line(ctx, n)
		if err != nil {
			return "", false, fmt.Errorf("failed to read macro table line %d: %w", n, err)
		}
		if !ok {
			logger.Debug("Macro table exhausted without a match.", "lines", n-1)
			return "", false, nil
		}
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[1] == name {
			logger.Debug("Macro resolved.", "line", n, "value", fields[2])
			return fields[2], true, nil
		}
	}
}

// MapResolver resolves macros from a prepared lookup table.
type MapResolver struct {
	Prefix string
	Values map[string]string
}

// Resolve implements MacroResolver.
func (r *MapResolver) Resolve(_ context.Context, token string) (string, bool, error) {
	v, ok := r.Values[strings.TrimPrefix(token, r.Prefix)]
	return v, ok, nil
}
