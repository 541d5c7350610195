// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/aisle-tui/internal/catalog"
	"github.com/jeranaias/aisle-tui/internal/model"
)

// Home is what the storefront shows on start.
type Home struct {
	Products catalog.Result

	Filters        *model.ProductFilters
	FiltersOffline bool
	FiltersErr     error

	// Loyalty is nil for guests or when the lookup failed.
	Loyalty    *model.LoyaltyStatus
	LoyaltyErr error
}

// LoadHome fetches products, filters and loyalty status concurrently.
// Only a product failure is returned as an error; the others are
// recorded on Home so the storefront can still open.
func (a *App) LoadHome(ctx context.Context) (*Home, error) {
	home := &Home{}
	customerID := a.CustomerID()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := a.Catalog.List(gctx)
		if err != nil {
			return err
		}
		home.Products = res
		return nil
	})
	g.Go(func() error {
		filters, offline, err := a.Catalog.Filters(gctx)
		home.Filters, home.FiltersOffline, home.FiltersErr = filters, offline, err
		return nil
	})
	if customerID > 0 {
		g.Go(func() error {
			status, err := a.Client.Loyalty(gctx, customerID)
			home.Loyalty, home.LoyaltyErr = status, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if home.FiltersErr != nil {
		a.Logger.Debug("filters unavailable", zap.Error(home.FiltersErr))
	}
	if home.LoyaltyErr != nil {
		a.Logger.Debug("loyalty unavailable", zap.Error(home.LoyaltyErr))
	}
	return home, nil
}
