package costing

import (
	"context"
	"fmt"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/material"
	"github.com/vk/routecost/internal/route"
)

// ScanPoint is the target unit cost observed for one scanned value.
type ScanPoint struct {
	Value    float64
	UnitCost float64
}

// Scanner evaluates the target unit cost over a range of values for one
// override. Evaluations run concurrently against clones of the base graph
// and registry, and results are memoized per scanner.
type Scanner struct {
	graph    *route.Graph
	registry *material.Registry
	target   string
	workers  int
	cache    *lru.Cache[string, float64]
}

// ScanOption configures a Scanner.
type ScanOption func(*Scanner)

// WithWorkers bounds the number of concurrent evaluations.
func WithWorkers(n int) ScanOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewScanner creates a scanner for target over the given graph and
// registry. cacheSize bounds the number of memoized evaluations.
func NewScanner(g *route.Graph, reg *material.Registry, target string, cacheSize int, opts ...ScanOption) (*Scanner, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, float64](cacheSize)
	if err != nil {
		return nil, err
	}
	if target == "" {
		target = g.Target()
	}
	s := &Scanner{
		graph:    g,
		registry: reg,
		target:   target,
		workers:  runtime.GOMAXPROCS(0),
		cache:    cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scan evaluates base with each of values substituted for base.Value.
// Points are returned in the order of values. The first failing evaluation
// cancels the rest and its error is returned.
func (s *Scanner) Scan(ctx context.Context, base Override, values []float64) ([]ScanPoint, error) {
	logger := ctxlog.FromContext(ctx).With("target", s.target, "override", base.Field, "compound", base.Compound)
	logger.Debug("Scan: starting.", "values", len(values), "workers", s.workers)

	points := make([]ScanPoint, len(values))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(s.workers)

	for i, v := range values {
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := base
			o.Value = v
			cost, err := s.evaluate(gctx, o)
			if err != nil {
				return err
			}
			points[i] = ScanPoint{Value: v, UnitCost: cost}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("Scan: finished.")
	return points, nil
}

// UnitCost evaluates a set of overrides once. The result is memoized.
func (s *Scanner) UnitCost(ctx context.Context, overrides ...Override) (float64, error) {
	return s.evaluate(ctx, overrides...)
}

func (s *Scanner) evaluate(ctx context.Context, overrides ...Override) (float64, error) {
	key := cacheKey(overrides)
	if cost, ok := s.cache.Get(key); ok {
		return cost, nil
	}

	g, reg, err := ApplyOverrides(s.graph, s.registry, overrides...)
	if err != nil {
		return 0, err
	}
	res, err := Calculate(ctx, g, reg, s.target, 1)
	if err != nil {
		return 0, fmt.Errorf("evaluating %v: %w", overrides, err)
	}
	s.cache.Add(key, res.UnitCost)
	return res.UnitCost, nil
}

func cacheKey(overrides []Override) string {
	key := ""
	for _, o := range overrides {
		key += o.String() + ";"
	}
	return key
}

// Linspace returns n evenly spaced values from start to stop, both included.
func Linspace(start, stop float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
