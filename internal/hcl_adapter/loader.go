package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/dispatchgo/internal/config"
	"github.com/vk/dispatchgo/internal/ctxlog"
	"github.com/vk/dispatchgo/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// state tracks where singleton items were first defined across files.
type state struct {
	remote, dispatch *hcl.Range
	methods          map[string]hcl.Range
}

// Load parses every .hcl file under paths and merges them into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{}
	st := &state{methods: make(map[string]hcl.Range)}
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		content, diags := hclFile.Body.Content(rootSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if diags := l.merge(ctx, model, st, content); diags.HasErrors() {
			return nil, fmt.Errorf("invalid configuration in %s: %w", file, diags)
		}
	}

	methods := 0
	if model.Engine != nil {
		methods = len(model.Engine.Methods)
	}
	logger.Debug("HCL loading complete.", "files", len(hclFiles), "remote", model.Remote != nil, "dispatch", model.Dispatch != nil, "methods", methods)
	return model, nil
}

func (l *Loader) merge(ctx context.Context, model *config.Model, st *state, content *hcl.BodyContent) hcl.Diagnostics {
	var diags hcl.Diagnostics

	if attr, ok := content.Attributes["macros"]; ok {
		var lines []string
		exprDiags := gohcl.DecodeExpression(attr.Expr, nil, &lines)
		diags = append(diags, exprDiags...)
		if !exprDiags.HasErrors() {
			engine(model).Macros = append(engine(model).Macros, lines...)
		}
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "remote":
			if st.remote != nil {
				diags = append(diags, duplicateDiag("Duplicate remote block", "Only one remote block is allowed.", block.DefRange, *st.remote))
				continue
			}
			st.remote = block.DefRange.Ptr()
			r, blockDiags := translateRemote(ctx, block)
			diags = append(diags, blockDiags...)
			model.Remote = r

		case "dispatch":
			if st.dispatch != nil {
				diags = append(diags, duplicateDiag("Duplicate dispatch block", "Only one dispatch block is allowed.", block.DefRange, *st.dispatch))
				continue
			}
			st.dispatch = block.DefRange.Ptr()
			d, blockDiags := translateDispatch(ctx, block)
			diags = append(diags, blockDiags...)
			model.Dispatch = d

		case "method":
			id := block.Labels[0] + "." + block.Labels[1]
			if first, exists := st.methods[id]; exists {
				diags = append(diags, duplicateDiag("Duplicate method definition",
					fmt.Sprintf("A method named '%s' has already been defined.", id), block.DefRange, first))
				continue
			}
			st.methods[id] = block.DefRange
			m, blockDiags := translateMethod(ctx, block)
			diags = append(diags, blockDiags...)
			if m != nil {
				engine(model).Methods = append(engine(model).Methods, m)
			}
		}
	}
	return diags
}

func engine(model *config.Model) *config.Engine {
	if model.Engine == nil {
		model.Engine = &config.Engine{}
	}
	return model.Engine
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
		for _, f := range files {
			add(f)
		}
	}
	return allFiles, nil
}
