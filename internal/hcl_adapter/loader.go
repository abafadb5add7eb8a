package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/routecost/internal/config"
	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL route loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load orchestrates the entire HCL loading process. Blocks may live in any
// file; materials are evaluated first so that step and route expressions
// can refer to them as `materials.<name>.<attribute>`.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.Finder{Ext: ".hcl", SkipMissing: true}.Find(paths...)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl route files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	var roots []fileRoot
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		roots = append(roots, root)
	}

	model := &config.Model{}
	catalog := make(map[string]map[string]cty.Value)
	for _, root := range roots {
		for _, m := range root.Materials {
			mat, attrs, err := translateMaterial(ctx, m)
			if err != nil {
				return nil, err
			}
			model.Materials = append(model.Materials, mat)
			catalog[m.Name] = attrs
		}
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"materials": materialsObject(catalog)},
	}
	for _, root := range roots {
		for _, s := range root.Steps {
			step, err := translateStep(ctx, s, evalCtx)
			if err != nil {
				return nil, err
			}
			model.Steps = append(model.Steps, step)
		}
		for _, r := range root.Routes {
			rt, err := translateRoute(ctx, r, evalCtx)
			if err != nil {
				return nil, err
			}
			model.Routes = append(model.Routes, rt)
		}
	}

	logger.Debug("HCL loading complete.", "materials", len(model.Materials), "steps", len(model.Steps), "routes", len(model.Routes))
	return model, nil
}
