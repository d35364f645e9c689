// This file translates decoded HCL blocks into the format-agnostic model
// defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/dispatchgo/internal/config"
	"github.com/vk/dispatchgo/internal/ctxlog"
)

func translateRemote(ctx context.Context, block *hcl.Block) (*config.Remote, hcl.Diagnostics) {
	var rb remoteBlock
	diags := gohcl.DecodeBody(block.Body, nil, &rb)
	if diags.HasErrors() {
		return nil, diags
	}

	r := &config.Remote{
		URL:                rb.URL,
		Namespace:          rb.Namespace,
		Timeout:            config.DefaultTimeout,
		InsecureSkipVerify: rb.InsecureSkipVerify,
	}

	if isExprDefined(ctx, rb.Timeout, "timeout") {
		var raw string
		exprDiags := gohcl.DecodeExpression(rb.Timeout, nil, &raw)
		diags = append(diags, exprDiags...)
		if exprDiags.HasErrors() {
			return nil, diags
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid timeout",
				Detail:   fmt.Sprintf("The timeout %q is not a positive duration such as \"10s\" or \"1m30s\".", raw),
				Subject:  rb.Timeout.Range().Ptr(),
			})
			return nil, diags
		}
		r.Timeout = d
	}

	ctxlog.FromContext(ctx).Debug("Translated remote block.", "url", r.URL, "namespace", r.Namespace, "timeout", r.Timeout)
	return r, diags
}

func translateDispatch(ctx context.Context, block *hcl.Block) (*config.Dispatch, hcl.Diagnostics) {
	var db dispatchBlock
	diags := gohcl.DecodeBody(block.Body, nil, &db)
	if diags.HasErrors() {
		return nil, diags
	}

	d := &config.Dispatch{
		CacheSignatures: db.CacheSignatures,
		MacroFile:       db.MacroFile,
	}
	if db.Channel != nil {
		if *db.Channel == "" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid channel",
				Detail:   "The channel name must not be empty.",
				Subject:  block.DefRange.Ptr(),
			})
			return nil, diags
		}
		d.Channel = *db.Channel
	}
	d.MacroPrefix = db.MacroPrefix

	ctxlog.FromContext(ctx).Debug("Translated dispatch block.", "channel", d.Channel, "cache_signatures", d.CacheSignatures)
	return d, diags
}

func translateMethod(ctx context.Context, block *hcl.Block) (*config.Method, hcl.Diagnostics) {
	var mb methodBlock
	diags := gohcl.DecodeBody(block.Body, nil, &mb)
	if diags.HasErrors() {
		return nil, diags
	}

	m := &config.Method{
		API:     block.Labels[0],
		Name:    block.Labels[1],
		Formal:  mb.Formal,
		Returns: mb.Returns,
		Fail:    mb.Fail,
	}
	seen := make(map[int64]bool, len(mb.Entries))
	for _, e := range mb.Entries {
		if seen[e.Key] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate entry key",
				Detail:   fmt.Sprintf("Method %s.%s defines key %d more than once.", m.API, m.Name, e.Key),
				Subject:  block.DefRange.Ptr(),
			})
			continue
		}
		seen[e.Key] = true
		m.Entries = append(m.Entries, &config.Entry{Key: e.Key, Fields: e.Fields})
	}

	ctxlog.FromContext(ctx).Debug("Translated method block.", "api", m.API, "method", m.Name, "entries", len(m.Entries))
	return m, diags
}
