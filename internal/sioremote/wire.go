// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package sioremote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// Event names of the envelope exchange.
const (
	RequestEvent  = "dispatch:request"
	ResponseEvent = "dispatch:response"
)

// Op names carried in the request envelope.
const (
	OpParamSpec    = "param_spec"
	OpResultSchema = "result_schema"
	OpCall         = "call"
	OpNextKey      = "next_key"
	OpRead         = "read"
	OpPurge        = "purge"
	OpMacroLine    = "macro_line"
)

// CodeNotFound is the error code of a missing metadata record.
const CodeNotFound = "not_found"

// Request is the envelope emitted for every operation. Fields not used by
// an op are omitted.
type Request struct {
	ID      string `json:"id"`
	Op      string `json:"op"`
	API     string `json:"api,omitempty"`
	Method  string `json:"method,omitempty"`
	Channel string `json:"channel,omitempty"`
	Subject any    `json:"subject,omitempty"`
	Args    []any  `json:"args,omitempty"`
	Dir     int    `json:"dir,omitempty"`
	// Key is nil for the position before the first key.
	Key  *int64 `json:"key,omitempty"`
	Line int    `json:"line,omitempty"`
}

// Response is the reply envelope.
type Response struct {
	ID     string          `json:"id"`
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *WireError      `json:"error,omitempty"`
}

// WireError is the error part of a failed Response.
type WireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *WireError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// decodeResponse accepts a reply as socket.io hands it over: already
// decoded JSON, raw bytes or a string.
func decodeResponse(data any) (*Response, error) {
	var raw []byte
	switch v := data.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode response: %w", err)
		}
		raw = b
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("response has no id")
	}
	return &resp, nil
}

// encodeValue turns an argument into the JSON-ready form the engine reads.
// Null and unknown values travel as JSON null; whole numbers that fit an
// int64 travel as integers so the engine sees 7 and not 7.0.
func encodeValue(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		return encodeNumber(val.AsBigFloat()), nil
	case ty.IsObjectType() || ty.IsMapType():
		fields := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			enc, err := encodeValue(v)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", k.AsString(), err)
			}
			fields[k.AsString()] = enc
		}
		return fields, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		items := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			enc, err := encodeValue(v)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", len(items), err)
			}
			items = append(items, enc)
		}
		return items, nil
	}
	return nil, fmt.Errorf("cannot send a value of type %s", ty.FriendlyName())
}

func encodeNumber(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
	}
	f, _ := bf.Float64()
	return f
}

// decodeValue is the inverse of encodeValue for JSON decoded with
// UseNumber. JSON null becomes the untyped null bound to absent arguments;
// arrays become tuples and objects become objects.
func decodeValue(data any) (cty.Value, error) {
	switch v := data.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case json.Number:
		return cty.ParseNumberVal(v.String())
	case float64:
		return cty.NumberFloatVal(v), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(v))
		for k, elem := range v {
			dec, err := decodeValue(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("attribute %q: %w", k, err)
			}
			attrs[k] = dec
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		elems := make([]cty.Value, len(v))
		for i, elem := range v {
			dec, err := decodeValue(elem)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = dec
		}
		return cty.TupleVal(elems), nil
	}
	return cty.NilVal, fmt.Errorf("cannot decode a wire value of type %T", data)
}

// decodeResult decodes the result of a reply. A missing result is null.
func decodeResult(raw json.RawMessage) (cty.Value, error) {
	if len(raw) == 0 {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return cty.NilVal, fmt.Errorf("failed to decode result: %w", err)
	}
	return decodeValue(data)
}
