package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/pricelist"
	"github.com/vk/routecost/internal/pricestore"
	"github.com/vk/routecost/internal/report"
)

var errNoPriceStore = errors.New("no price store configured (set --db or ROUTECOST_DB)")

// ImportPrices saves the priced entries of the given TOML price lists into
// the price store. Nothing is written unless every list parses.
func (a *App) ImportPrices(ctx context.Context, paths ...string) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	if a.config.PriceDSN == "" {
		return errNoPriceStore
	}

	var prices []pricestore.Price
	for _, path := range paths {
		list, err := pricelist.Load(path)
		if err != nil {
			return err
		}
		for _, e := range list.Materials {
			if e.Price != nil {
				prices = append(prices, pricestore.Price{Compound: e.Name, Price: *e.Price})
			}
		}
	}

	store, err := pricestore.Open(ctx, a.config.PriceDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(ctx, prices...); err != nil {
		return err
	}

	logger.Info("Prices imported.", "files", len(paths), "prices", len(prices))
	_, err = fmt.Fprintf(a.outW, "Imported %d prices from %d file(s).\n", len(prices), len(paths))
	return err
}

// ListPrices writes every stored price.
func (a *App) ListPrices(ctx context.Context) error {
	ctx = a.context(ctx)
	if a.config.PriceDSN == "" {
		return errNoPriceStore
	}

	store, err := pricestore.Open(ctx, a.config.PriceDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	prices, err := store.Load(ctx)
	if err != nil {
		return err
	}
	rows := make([]report.PriceRow, len(prices))
	for i, p := range prices {
		rows[i] = report.PriceRow{Compound: p.Compound, Price: p.Price, UpdatedAt: p.UpdatedAt}
	}
	return report.WritePrices(a.outW, a.format(), rows)
}
