package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/routecost/internal/costing"
	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/fsutil"
	"github.com/vk/routecost/internal/material"
	"github.com/vk/routecost/internal/pricelist"
	"github.com/vk/routecost/internal/pricestore"
	"github.com/vk/routecost/internal/route"
)

// Workspace is a loaded route with its priced material registry, ready for
// costing.
type Workspace struct {
	Graph    *route.Graph
	Registry *material.Registry
	Target   string
	Quantity float64
}

// LoadWorkspace loads the route files, applies the configured price
// sources and selects the target. Prices are layered: route files first,
// then price lists in order, then the price store. Configured overrides
// are applied last.
func (a *App) LoadWorkspace(ctx context.Context) (*Workspace, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)

	if len(a.config.RoutePaths) == 0 {
		return nil, errors.New("no route files given")
	}
	model, err := a.loader.Load(ctx, a.config.RoutePaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load route files: %w", err)
	}

	reg := material.NewRegistry()
	g := route.New()
	if err := model.Apply(ctx, reg, g); err != nil {
		return nil, fmt.Errorf("invalid route definition: %w", err)
	}
	if !a.config.AllowDuplicateMaterials {
		if err := reg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid material catalog: %w", err)
		}
	}
	logger.Debug("Route definition applied.", "materials", reg.Len(), "steps", g.Len())

	priceFiles, err := fsutil.Finder{Ext: ".toml"}.Find(a.config.PriceFiles...)
	if err != nil {
		return nil, fmt.Errorf("price lists: %w", err)
	}
	for _, path := range priceFiles {
		list, err := pricelist.Load(path)
		if err != nil {
			return nil, err
		}
		n, err := list.Apply(ctx, reg)
		if err != nil {
			return nil, fmt.Errorf("applying price list %s: %w", path, err)
		}
		logger.Debug("Price list applied.", "path", path, "prices", n)
	}

	if a.config.PriceDSN != "" {
		store, err := pricestore.Open(ctx, a.config.PriceDSN)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		n, err := store.LoadInto(ctx, reg)
		if err != nil {
			return nil, fmt.Errorf("loading stored prices: %w", err)
		}
		logger.Debug("Stored prices applied.", "prices", n)
	}

	ws := &Workspace{Graph: g, Registry: reg, Target: a.config.Target}
	if a.config.Quantity != nil {
		ws.Quantity = *a.config.Quantity
	}
	if ws.Target == "" || a.config.Quantity == nil {
		rt, err := model.Route(a.config.RouteName)
		switch {
		case err == nil:
			if ws.Target == "" {
				ws.Target = rt.Target
			}
			if a.config.Quantity == nil {
				ws.Quantity = rt.Quantity
			}
		case ws.Target != "" && a.config.RouteName == "":
			// An explicit target needs no route block.
			if a.config.Quantity == nil {
				ws.Quantity = 1
			}
		default:
			return nil, err
		}
	}
	g.SetTarget(ws.Target)

	if len(a.config.Overrides) > 0 {
		ws.Graph, ws.Registry, err = costing.ApplyOverrides(ws.Graph, ws.Registry, a.config.Overrides...)
		if err != nil {
			return nil, err
		}
		logger.Info("Overrides applied.", "overrides", overridesString(a.config.Overrides))
	}

	logger.Info("Route loaded.", "target", ws.Target, "quantity", ws.Quantity, "steps", ws.Graph.Len(), "materials", ws.Registry.Len())
	return ws, nil
}
