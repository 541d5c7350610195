// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/model"
)

// ErrProductNotFound is returned by Get for an unknown product id.
var ErrProductNotFound = errors.New("product not found")

// Backend is the product side of the gateway. *api.Client implements it.
type Backend interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, q model.SearchQuery) ([]model.Product, error)
	ProductFilters(ctx context.Context) (*model.ProductFilters, error)
}

// Result is a product listing. Offline results come from the local cache
// because the backend could not be reached; Cause holds that error.
type Result struct {
	Products []model.Product
	Offline  bool
	Cause    error
}

// Service answers catalog queries from the backend, keeping a local copy
// to fall back on when it is unreachable.
type Service struct {
	backend Backend
	cache   *Cache
	logger  *zap.Logger
}

// NewService creates a catalog service. cache may be nil, which disables
// the offline fallback.
func NewService(backend Backend, cache *Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, cache: cache, logger: logger.Named("catalog")}
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) (Result, error) {
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return s.fallback(ctx, err, func() ([]model.Product, error) {
			return s.cache.All(ctx)
		})
	}
	s.remember(ctx, products, true)
	return Result{Products: products}, nil
}

// Search runs a filtered search.
func (s *Service) Search(ctx context.Context, q model.SearchQuery) (Result, error) {
	q = q.Normalize()
	products, err := s.backend.SearchProducts(ctx, q)
	if err != nil {
		return s.fallback(ctx, err, func() ([]model.Product, error) {
			return s.cache.Search(ctx, q)
		})
	}
	s.remember(ctx, products, false)

	// Search results carry no stock; fill it from the cache before the
	// client-side stock filter.
	if q.InStockOnly {
		products = s.withStock(ctx, products)
		kept := products[:0]
		for _, p := range products {
			if q.Matches(p) {
				kept = append(kept, p)
			}
		}
		products = kept
	}
	return Result{Products: products}, nil
}

// Get returns one product. The backend has no single-product endpoint, so
// this reads the catalog listing.
func (s *Service) Get(ctx context.Context, id int) (model.Product, bool, error) {
	res, err := s.List(ctx)
	if err != nil {
		return model.Product{}, false, err
	}
	for _, p := range res.Products {
		if p.ID == id {
			return p, res.Offline, nil
		}
	}
	return model.Product{}, res.Offline, fmt.Errorf("%w: %d", ErrProductNotFound, id)
}

// Filters returns the catalog facets. The bool reports an offline answer.
func (s *Service) Filters(ctx context.Context) (*model.ProductFilters, bool, error) {
	f, err := s.backend.ProductFilters(ctx)
	if err == nil {
		return f, false, nil
	}
	if !s.canFallback(ctx, err) {
		return nil, false, err
	}
	cached, cerr := s.cache.Filters(ctx)
	if cerr != nil {
		s.logger.Warn("offline filters failed", zap.Error(cerr))
		return nil, false, err
	}
	return cached, true, nil
}

// CacheInfo describes the offline catalog.
type CacheInfo struct {
	Enabled  bool      `json:"enabled" yaml:"enabled"`
	Products int       `json:"products" yaml:"products"`
	LastSync time.Time `json:"last_sync,omitempty" yaml:"last_sync,omitempty"`
}

// CacheInfo reports the size and freshness of the offline catalog.
func (s *Service) CacheInfo(ctx context.Context) (CacheInfo, error) {
	if s.cache == nil {
		return CacheInfo{}, nil
	}
	n, err := s.Cached(ctx)
	if err != nil {
		return CacheInfo{Enabled: true}, fmt.Errorf("count cached products: %w", err)
	}
	return CacheInfo{Enabled: true, Products: n, LastSync: s.cache.LastSync(ctx)}, nil
}

// =============================================================================
// CACHE PLUMBING
// =============================================================================

// remember stores products; cache failures never fail the request.
func (s *Service) remember(ctx context.Context, products []model.Product, full bool) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Upsert(ctx, products); err != nil {
		s.logger.Warn("failed to cache products", zap.Error(err))
		return
	}
	if full {
		if err := s.cache.MarkSynced(ctx); err != nil {
			s.logger.Debug("failed to record catalog sync", zap.Error(err))
		}
	}
}

func (s *Service) withStock(ctx context.Context, products []model.Product) []model.Product {
	if s.cache == nil {
		return products
	}
	for i, p := range products {
		if p.InStock != nil {
			continue
		}
		if cached, err := s.cache.Get(ctx, p.ID); err == nil {
			products[i].InStock = cached.InStock
		}
	}
	return products
}

// canFallback reports whether err is a connectivity failure and a
// non-empty cache exists.
func (s *Service) canFallback(ctx context.Context, err error) bool {
	if s.cache == nil || !api.IsOffline(err) {
		return false
	}
	n, cerr := s.cache.Count(ctx)
	return cerr == nil && n > 0
}

func (s *Service) fallback(ctx context.Context, err error, read func() ([]model.Product, error)) (Result, error) {
	if !s.canFallback(ctx, err) {
		return Result{}, err
	}
	products, cerr := read()
	if cerr != nil {
		s.logger.Warn("offline catalog read failed", zap.Error(cerr))
		return Result{}, err
	}
	s.logger.Info("backend unreachable, serving offline catalog",
		zap.Int("products", len(products)), zap.Error(err))
	return Result{Products: products, Offline: true, Cause: err}, nil
}

// Cached returns how many products the offline cache holds.
func (s *Service) Cached(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Count(ctx)
}
