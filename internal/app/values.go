package app

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ParseValue reads a command-line value as an HCL literal, so 7 is a number,
// true a bool, null an absent value and "x y" a string. Anything that is not
// a constant primitive, a bare word for example, is taken verbatim as a
// string.
func ParseValue(s string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(s), "<argument>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.StringVal(s)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || !v.IsWhollyKnown() {
		return cty.StringVal(s)
	}
	if v.IsNull() {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	if !v.Type().IsPrimitiveType() {
		return cty.StringVal(s)
	}
	return v
}
