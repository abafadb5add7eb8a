package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/routecost/internal/costing"
	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/report"
)

// Calc runs one costing of the configured route and writes the report.
func (a *App) Calc(ctx context.Context) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Calc method started.")

	ws, err := a.LoadWorkspace(ctx)
	if err != nil {
		return err
	}
	res, err := costing.Calculate(ctx, ws.Graph, ws.Registry, ws.Target, ws.Quantity)
	if err != nil {
		return fmt.Errorf("costing failed: %w", err)
	}
	logger.Info("Costing finished.", "target", res.Target, "quantity", res.Quantity, "unit_cost", res.UnitCost, "total_cost", res.TotalCost)

	return report.Write(a.outW, a.format(), res, report.Options{Steps: a.config.ShowSteps})
}

// Scan sweeps one value, named as `compound.field` or
// `compound[step].field`, over values and writes the target unit cost for
// each, starting from the workspace with its overrides applied.
func (a *App) Scan(ctx context.Context, vary string, values []float64) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)

	base, err := costing.ParseTarget(vary)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("no values to scan for %s", vary)
	}

	ws, err := a.LoadWorkspace(ctx)
	if err != nil {
		return err
	}
	scanner, err := costing.NewScanner(ws.Graph, ws.Registry, ws.Target, len(values), costing.WithWorkers(a.config.ScanWorkers))
	if err != nil {
		return err
	}
	points, err := scanner.Scan(ctx, base, values)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	logger.Info("Scan finished.", "scan", vary, "points", len(points))

	return report.WriteScan(a.outW, a.format(), strings.TrimSpace(vary), points)
}

func overridesString(overrides []costing.Override) string {
	parts := make([]string, len(overrides))
	for i, o := range overrides {
		parts[i] = o.String()
	}
	return strings.Join(parts, " ")
}
