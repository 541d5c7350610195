// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/model"
)

type fakeBackend struct {
	products []model.Product
	filters  *model.ProductFilters
	err      error
	searched []model.SearchQuery
}

func (f *fakeBackend) ListProducts(ctx context.Context) ([]model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Product(nil), f.products...), nil
}

func (f *fakeBackend) SearchProducts(ctx context.Context, q model.SearchQuery) ([]model.Product, error) {
	f.searched = append(f.searched, q)
	if f.err != nil {
		return nil, f.err
	}
	q.InStockOnly = false // not part of the wire query
	var out []model.Product
	for _, p := range f.products {
		if q.Matches(p) {
			p.InStock = nil // search results carry no stock
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) ProductFilters(ctx context.Context) (*model.ProductFilters, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filters, nil
}

func TestService_ListCachesAndFallsBack(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{products: testProducts}
	cache := newTestCache(t)
	s := NewService(b, cache, nil)

	res, err := s.List(ctx)
	require.NoError(t, err)
	assert.False(t, res.Offline)
	assert.Len(t, res.Products, 4)
	assert.False(t, cache.LastSync(ctx).IsZero())

	b.err = api.ErrUnreachable
	res, err = s.List(ctx)
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.ErrorIs(t, res.Cause, api.ErrUnreachable)
	assert.Len(t, res.Products, 4)

	n, err := s.Cached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestService_LogsOfflineFallback(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.InfoLevel)
	b := &fakeBackend{products: testProducts}
	s := NewService(b, newTestCache(t), zap.New(core))

	_, err := s.List(ctx)
	require.NoError(t, err)
	assert.Zero(t, logs.Len())

	b.err = api.ErrUnreachable
	_, err = s.List(ctx)
	require.NoError(t, err)

	entries := logs.FilterMessage("backend unreachable, serving offline catalog").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(4), entries[0].ContextMap()["products"])
}

func TestService_NoFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("backend failure is not offline", func(t *testing.T) {
		cache := newTestCache(t)
		require.NoError(t, cache.Upsert(ctx, testProducts))
		s := NewService(&fakeBackend{err: api.ErrBackend}, cache, nil)
		_, err := s.List(ctx)
		assert.ErrorIs(t, err, api.ErrBackend)
	})

	t.Run("empty cache", func(t *testing.T) {
		s := NewService(&fakeBackend{err: api.ErrTimeout}, newTestCache(t), nil)
		_, err := s.List(ctx)
		assert.ErrorIs(t, err, api.ErrTimeout)
	})

	t.Run("no cache", func(t *testing.T) {
		s := NewService(&fakeBackend{err: api.ErrUnreachable}, nil, nil)
		_, err := s.Search(ctx, model.SearchQuery{Query: "x"})
		assert.ErrorIs(t, err, api.ErrUnreachable)
		n, err := s.Cached(ctx)
		assert.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{products: testProducts}
	s := NewService(b, newTestCache(t), nil)
	_, err := s.List(ctx)
	require.NoError(t, err)

	res, err := s.Search(ctx, model.SearchQuery{Category: "Footwear", InStockOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, ids(res.Products), "stock comes from the cache")
	require.Len(t, b.searched, 1)
	assert.Equal(t, model.SortRelevance, b.searched[0].SortBy, "query is normalized before sending")
	assert.Equal(t, model.DefaultSearchLimit, b.searched[0].Limit)

	b.err = api.ErrUnreachable
	res, err = s.Search(ctx, model.SearchQuery{Query: "runner", SortBy: model.SortPriceLow})
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.Equal(t, []int{3, 2}, ids(res.Products))
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{products: testProducts}
	s := NewService(b, newTestCache(t), nil)

	p, offline, err := s.Get(ctx, 3)
	require.NoError(t, err)
	assert.False(t, offline)
	assert.Equal(t, "Road Runner", p.Name)

	_, _, err = s.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrProductNotFound)

	b.err = api.ErrUnreachable
	p, offline, err = s.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, offline)
	assert.Equal(t, "Crème Brûlée Torch", p.Name)
}

func TestService_Filters(t *testing.T) {
	ctx := context.Background()
	live := &model.ProductFilters{Categories: []string{"Live"}}
	b := &fakeBackend{products: testProducts, filters: live}
	s := NewService(b, newTestCache(t), nil)

	f, offline, err := s.Filters(ctx)
	require.NoError(t, err)
	assert.False(t, offline)
	assert.Same(t, live, f)

	_, err = s.List(ctx)
	require.NoError(t, err)

	b.err = api.ErrTimeout
	f, offline, err = s.Filters(ctx)
	require.NoError(t, err)
	assert.True(t, offline)
	assert.Equal(t, []string{"Accessories", "Footwear", "Kitchen"}, f.Categories)

	b.err = errors.New("boom")
	_, _, err = s.Filters(ctx)
	assert.EqualError(t, err, "boom")
}

func TestService_CacheInfo(t *testing.T) {
	ctx := context.Background()

	info, err := NewService(&fakeBackend{}, nil, nil).CacheInfo(ctx)
	require.NoError(t, err)
	assert.False(t, info.Enabled)

	s := NewService(&fakeBackend{products: testProducts}, newTestCache(t), nil)
	info, err = s.CacheInfo(ctx)
	require.NoError(t, err)
	assert.True(t, info.Enabled)
	assert.Zero(t, info.Products)
	assert.True(t, info.LastSync.IsZero())

	_, err = s.List(ctx)
	require.NoError(t, err)
	info, err = s.CacheInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, info.Products)
	assert.False(t, info.LastSync.IsZero())
}
