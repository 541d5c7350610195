// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/util"
)

// ErrNotCached is returned for a product the cache has never seen.
var ErrNotCached = errors.New("product not in offline catalog")

// =============================================================================
// CACHE
// =============================================================================

// Cache is a local SQLite copy of every product the backend has returned.
type Cache struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	c := &Cache{db: db, now: time.Now}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return c, nil
}

// initSchema creates the tables, rebuilding them if the stored schema
// version differs.
func (c *Cache) initSchema() error {
	if _, err := c.db.Exec(Schema); err != nil {
		return err
	}
	var stored string
	err := c.db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	case stored != strconv.Itoa(SchemaVersion):
		if _, err := c.db.Exec(dropSchema); err != nil {
			return err
		}
		if _, err := c.db.Exec(Schema); err != nil {
			return err
		}
	}
	return c.setMeta(context.Background(), "schema_version", strconv.Itoa(SchemaVersion))
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) setMeta(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx, "INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)", key, value)
	return err
}

// LastSync returns when the full catalog was last stored, or zero.
func (c *Cache) LastSync(ctx context.Context) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var v string
	if err := c.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'last_sync'").Scan(&v); err != nil {
		return time.Time{}
	}
	unix, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// =============================================================================
// WRITES
// =============================================================================

// Upsert stores products. Fields a response left out (stock on search
// results, descriptions) keep their cached values.
func (c *Cache) Upsert(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, replaceProduct)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := c.now().Unix()
	for _, p := range products {
		if old, err := getProduct(ctx, tx, p.ID); err == nil {
			p = merge(old, p)
		} else if !errors.Is(err, ErrNotCached) {
			return err
		}
		if _, err := stmt.ExecContext(ctx, productArgs(p, now)...); err != nil {
			return fmt.Errorf("store product %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// MarkSynced records a full catalog refresh.
func (c *Cache) MarkSynced(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setMeta(ctx, "last_sync", strconv.FormatInt(c.now().Unix(), 10))
}

// merge fills the gaps in fresh from old.
func merge(old, fresh model.Product) model.Product {
	if fresh.InStock == nil {
		fresh.InStock = old.InStock
	}
	if fresh.Description == "" {
		fresh.Description = old.Description
	}
	if fresh.Category == "" {
		fresh.Category = old.Category
	}
	if fresh.Brand == "" {
		fresh.Brand = old.Brand
	}
	if fresh.Image == "" {
		fresh.Image = old.Image
	}
	return fresh
}

func productArgs(p model.Product, updatedAt int64) []any {
	var inStock, units sql.NullInt64
	if p.InStock != nil {
		inStock = sql.NullInt64{Int64: boolToInt(p.InStock.InStock), Valid: true}
		units = sql.NullInt64{Int64: int64(p.InStock.Units), Valid: true}
	}
	return []any{
		p.ID, p.Name, p.Price, nullFloat(p.OriginalPrice), p.Category, p.Brand,
		p.Rating, p.Image, p.Description, inStock, units,
		util.FoldKey(p.Category), util.FoldKey(p.Brand), searchKey(p), updatedAt,
	}
}

func searchKey(p model.Product) string {
	return util.FoldKey(strings.Join([]string{p.Name, p.Brand, p.Category, p.Description}, " "))
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v != 0}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// =============================================================================
// READS
// =============================================================================

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Get returns a cached product.
func (c *Cache) Get(ctx context.Context, id int) (model.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getProduct(ctx, c.db, id)
}

func getProduct(ctx context.Context, q queryer, id int) (model.Product, error) {
	row := q.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotCached
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (model.Product, error) {
	var (
		p                            model.Product
		original, rating             sql.NullFloat64
		category, brand, image, desc sql.NullString
		inStock, units               sql.NullInt64
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Price, &original, &category, &brand,
		&rating, &image, &desc, &inStock, &units); err != nil {
		return model.Product{}, err
	}
	p.OriginalPrice = original.Float64
	p.Category = category.String
	p.Brand = brand.String
	p.Rating = rating.Float64
	p.Image = image.String
	p.Description = desc.String
	if inStock.Valid {
		p.InStock = &model.Availability{InStock: inStock.Int64 == 1, Units: int(units.Int64)}
		if !units.Valid {
			p.InStock.Units = -1
		}
	}
	return p, nil
}

// Count returns the number of cached products.
func (c *Cache) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}

// All returns every cached product by name.
func (c *Cache) All(ctx context.Context) ([]model.Product, error) {
	return c.Search(ctx, model.SearchQuery{SortBy: sortName, Limit: -1})
}

// Search runs q against the cache. Every word of the text query must
// appear in the product's name, brand, category or description, ignoring
// case and accents. A negative Limit returns everything.
func (c *Cache) Search(ctx context.Context, q model.SearchQuery) ([]model.Product, error) {
	unlimited := q.Limit < 0
	q = q.Normalize()
	if unlimited {
		q.Limit = 0
	}

	var conditions []string
	var args []any
	for _, word := range strings.Fields(util.FoldKey(q.Query)) {
		conditions = append(conditions, `search_key LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(word)+"%")
	}
	if q.Category != "" {
		conditions = append(conditions, "category_key = ?")
		args = append(args, util.FoldKey(q.Category))
	}
	if q.Brand != "" {
		conditions = append(conditions, "brand_key = ?")
		args = append(args, util.FoldKey(q.Brand))
	}
	if q.MinPrice != nil {
		conditions = append(conditions, "price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		conditions = append(conditions, "price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if q.InStockOnly {
		conditions = append(conditions, "(in_stock IS NULL OR in_stock = 1)")
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + orderBy(q.SortBy)
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search cache: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("read cached product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// sortName orders alphabetically; it is only used locally.
const sortName model.SortOrder = "name"

// orderBy mirrors the backend orderings; relevance is rating first.
func orderBy(s model.SortOrder) string {
	switch s {
	case model.SortPriceLow:
		return "price ASC, id ASC"
	case model.SortPriceHigh:
		return "price DESC, id ASC"
	case model.SortRating, model.SortRelevance:
		return "rating DESC, name ASC, id ASC"
	default:
		return "name ASC, id ASC"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Filters computes the facets from cached products.
func (c *Cache) Filters(ctx context.Context) (*model.ProductFilters, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f := &model.ProductFilters{Categories: []string{}, Brands: []string{}}
	var err error
	if f.Categories, err = c.distinct(ctx, "category"); err != nil {
		return nil, err
	}
	if f.Brands, err = c.distinct(ctx, "brand"); err != nil {
		return nil, err
	}

	var lo, hi sql.NullFloat64
	if err := c.db.QueryRowContext(ctx, "SELECT MIN(price), MAX(price) FROM products").Scan(&lo, &hi); err != nil {
		return nil, fmt.Errorf("price range: %w", err)
	}
	f.PriceRange = model.PriceRange{Min: lo.Float64, Max: hi.Float64}
	return f, nil
}

// distinct lists non-empty values of column. column is one of a fixed
// set of names, never user input.
func (c *Cache) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT DISTINCT "+column+" FROM products WHERE "+column+" IS NOT NULL AND "+column+" != '' ORDER BY "+column)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
