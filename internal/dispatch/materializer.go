// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/vk/dispatchgo/internal/remote"
	"github.com/zclconf/go-cty/cty"
)

// FieldSeparator separates the fields of a packed row payload.
const FieldSeparator = remote.FieldSeparator

// Row maps column names to raw field values.
type Row map[string]cty.Value

// Result is the output of one dispatch.
type Result struct {
	// Columns is the resolved schema, in declared order.
	Columns []Column
	// Rows are in ascending channel key order.
	Rows []Row
	// Short counts rows whose payload had fewer fields than Columns.
	Short int
}

// Names returns the column names in declared order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// Strings returns every row as a slice aligned with Columns. Omitted
// trailing columns are empty strings.
func (r *Result) Strings() [][]string {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		vals := make([]string, len(r.Columns))
		for j, c := range r.Columns {
			if v, ok := row[c.Name]; ok && !v.IsNull() && v.Type() == cty.String {
				vals[j] = v.AsString()
			}
		}
		out[i] = vals
	}
	return out
}

// RowCodec splits a packed payload into positional fields.
type RowCodec interface {
	Split(payload string) []string
}

// DelimitedCodec splits payloads on a separator string.
type DelimitedCodec struct {
	Sep string
}

// Split implements RowCodec.
func (c DelimitedCodec) Split(payload string) []string {
	return strings.Split(payload, c.Sep)
}

// Materializer turns channel entries into rows.
type Materializer struct {
	codec RowCodec
}

// NewMaterializer returns a Materializer. A nil codec splits on
// FieldSeparator.
func NewMaterializer(codec RowCodec) *Materializer {
	if codec == nil {
		codec = DelimitedCodec{Sep: FieldSeparator}
	}
	return &Materializer{codec: codec}
}

// Drain reads every entry of the handle's channel in ascending key order
// and zips its fields against cols. A payload shorter than cols yields a
// row without the trailing columns. The channel is purged on every return
// path.
func (m *Materializer) Drain(ctx context.Context, h *Handle, cols []Column) (res *Result, err error) {
	logger := ctxlog.FromContext(ctx)

	defer func() {
		if perr := h.Release(ctx); perr != nil {
			if err == nil {
				res, err = nil, fmt.Errorf("failed to purge channel '%s': %w", h.name, perr)
				return
			}
			logger.Error("Failed to purge channel after drain error.", "channel", h.name, "error", perr)
		}
	}()

	res = &Result{Columns: cols}
	key := remote.Before
	for {
		next, err := h.ch.NextKey(ctx, remote.Forward, h.name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel '%s' after key %s: %w", h.name, key, err)
		}
		if next.IsBefore() {
			break
		}
		if !key.IsBefore() && next.Int() <= key.Int() {
			return nil, fmt.Errorf("channel '%s' returned key %s after %s, keys must ascend", h.name, next, key)
		}
		key = next

		payload, err := h.ch.Read(ctx, h.name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read channel '%s' key %s: %w", h.name, key, err)
		}

		fields := m.codec.Split(payload)
		n := min(len(fields), len(cols))
		row := make(Row, n)
		for i := 0; i < n; i++ {
			row[cols[i].Name] = cty.StringVal(fields[i])
		}
		if len(fields) < len(cols) {
			res.Short++
			logger.Warn("Row payload is shorter than the schema, trailing columns omitted.",
				"key", key.String(), "fields", len(fields), "columns", len(cols), "error", ErrMalformedRow)
		}
		res.Rows = append(res.Rows, row)
	}

	logger.Debug("Channel drained.", "rows", len(res.Rows), "short", res.Short)
	return res, nil
}
