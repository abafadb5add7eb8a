package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/routecost/internal/ctxlog"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with zero-width
// expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	// A real attribute occupies bytes in the file; a placeholder for an
	// omitted one has a zero-width range.
	r := expr.Range()
	isDefined := r.End.Byte > r.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// evalNumber evaluates an optional numeric attribute. ok is false when the
// attribute was omitted.
func evalNumber(ctx context.Context, expr hcl.Expression, attrName string, evalCtx *hcl.EvalContext) (v float64, ok bool, err error) {
	if !isExprDefined(ctx, expr, attrName) {
		return 0, false, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, false, fmt.Errorf("invalid value for '%s': %w", attrName, diags)
	}
	if val.IsNull() {
		return 0, false, nil
	}
	if !val.IsKnown() || !val.Type().Equals(cty.Number) {
		return 0, false, fmt.Errorf("'%s' at %s must be a number, got %s", attrName, expr.Range(), val.Type().FriendlyName())
	}
	if err := gocty.FromCtyValue(val, &v); err != nil {
		return 0, false, fmt.Errorf("'%s' at %s: %w", attrName, expr.Range(), err)
	}
	return v, true, nil
}

// materialsObject exposes the evaluated material catalog to step expressions
// as `materials.<name>.<attribute>`. Omitted attributes are null.
func materialsObject(mats map[string]map[string]cty.Value) cty.Value {
	if len(mats) == 0 {
		return cty.EmptyObjectVal
	}
	obj := make(map[string]cty.Value, len(mats))
	for name, attrs := range mats {
		obj[name] = cty.ObjectVal(attrs)
	}
	return cty.ObjectVal(obj)
}

func numberOrNull(v float64, ok bool) cty.Value {
	if !ok {
		return cty.NullVal(cty.Number)
	}
	return cty.NumberFloatVal(v)
}
