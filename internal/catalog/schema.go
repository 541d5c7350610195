// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

const (
	// SchemaVersion tracks the cache schema. A different stored version
	// drops and rebuilds the cache; it only ever holds copies.
	SchemaVersion = 1
)

// Schema is the offline product cache.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS products (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    price REAL NOT NULL,
    original_price REAL,
    category TEXT,
    brand TEXT,
    rating REAL,
    image TEXT,
    description TEXT,
    in_stock INTEGER,           -- NULL when unknown
    stock_units INTEGER,        -- -1 when only a flag was reported
    category_key TEXT NOT NULL, -- folded for case/accent-insensitive filters
    brand_key TEXT NOT NULL,
    search_key TEXT NOT NULL,   -- folded name, brand, category, description
    updated_at INTEGER NOT NULL -- Unix timestamp
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_key);
CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand_key);
CREATE INDEX IF NOT EXISTS idx_products_price ON products(price);
`

// dropSchema removes every cache table before a rebuild.
const dropSchema = `
DROP TABLE IF EXISTS products;
DROP TABLE IF EXISTS metadata;
`

const replaceProduct = `
INSERT OR REPLACE INTO products (
    id, name, price, original_price, category, brand, rating, image, description,
    in_stock, stock_units, category_key, brand_key, search_key, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const productColumns = `id, name, price, original_price, category, brand, rating, image, description, in_stock, stock_units`
