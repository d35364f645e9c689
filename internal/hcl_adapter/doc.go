// Package hcl_adapter implements config.Loader for HCL files.
//
// A configuration may be split across any number of .hcl files. Each file
// can hold a `remote` block, a `dispatch` block, a `macros` list and any
// number of `method "api" "name"` blocks. The first two may appear once
// across all files; method labels must be unique.
package hcl_adapter
