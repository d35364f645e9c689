package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// rootSchema lists every top-level item a file may contain.
var rootSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "macros"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "remote"},
		{Type: "dispatch"},
		{Type: "method", LabelNames: []string{"api", "name"}},
	},
}

// remoteBlock is the HCL schema of a `remote` block.
type remoteBlock struct {
	URL                string         `hcl:"url"`
	Namespace          string         `hcl:"namespace,optional"`
	Timeout            hcl.Expression `hcl:"timeout,optional"`
	InsecureSkipVerify bool           `hcl:"insecure_skip_verify,optional"`
}

// dispatchBlock is the HCL schema of a `dispatch` block. Pointers tell an
// omitted attribute from its zero value.
type dispatchBlock struct {
	Channel         *string `hcl:"channel,optional"`
	MacroPrefix     *string `hcl:"macro_prefix,optional"`
	CacheSignatures bool    `hcl:"cache_signatures,optional"`
	MacroFile       string  `hcl:"macro_file,optional"`
}

// methodBlock is the HCL schema of a `method` block body.
type methodBlock struct {
	Formal  string        `hcl:"formal"`
	Returns string        `hcl:"returns"`
	Entries []*entryBlock `hcl:"entry,block"`
	Fail    string        `hcl:"fail,optional"`
}

// entryBlock is one `entry` inside a method.
type entryBlock struct {
	Key    int64    `hcl:"key"`
	Fields []string `hcl:"fields"`
}
