// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// catalog_cmd.go - Browsing commands: products, search, filters, product.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/aisle-tui/internal/catalog"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/ui/components"
)

// ProductList is the structured output of products and search.
type ProductList struct {
	Query    string          `json:"query,omitempty" yaml:"query,omitempty"`
	Count    int             `json:"count" yaml:"count"`
	Offline  bool            `json:"offline" yaml:"offline"`
	Products []model.Product `json:"products" yaml:"products"`
}

// ProductDetail is the structured output of product.
type ProductDetail struct {
	model.Product `yaml:",inline"`
	InCart        int  `json:"in_cart" yaml:"in_cart"`
	InWishlist    bool `json:"in_wishlist" yaml:"in_wishlist"`
	Offline       bool `json:"offline" yaml:"offline"`
}

// =============================================================================
// PRODUCTS / SEARCH
// =============================================================================

// parseSearchQuery reads the listing flags shared by products and search.
func parseSearchQuery(p *ArgParser) (model.SearchQuery, error) {
	q := model.SearchQuery{
		Category:    p.Flag("category"),
		Brand:       p.Flag("brand"),
		InStockOnly: p.BoolFlag("in-stock"),
	}
	var err error
	if q.MinPrice, err = p.FlagFloat("min"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = p.FlagFloat("max"); err != nil {
		return q, err
	}
	if q.SortBy, err = model.ParseSortOrder(p.Flag("sort")); err != nil {
		return q, NewValidationErrorWithExample("--sort", p.Flag("sort"), "unknown sort order", "--sort price_low")
	}
	if q.Limit, err = p.FlagInt("limit", 0); err != nil {
		return q, err
	}
	if q.Limit < 0 {
		return q, NewValidationError("--limit", p.Flag("limit"), "must not be negative")
	}
	return q, nil
}

// filtered reports whether q narrows the catalog at all.
func filtered(q model.SearchQuery) bool {
	return q.Query != "" || q.Category != "" || q.Brand != "" ||
		q.MinPrice != nil || q.MaxPrice != nil || q.InStockOnly ||
		(q.SortBy != "" && q.SortBy != model.SortRelevance)
}

// HandleProducts lists the catalog, filtered by flags.
func HandleProducts(ctx context.Context, env *Env) error {
	q, err := parseSearchQuery(env.Args.Parser("in-stock"))
	if err != nil {
		return err
	}

	var res catalog.Result
	if filtered(q) {
		res, err = env.App.Catalog.Search(ctx, q)
	} else {
		res, err = env.App.Catalog.List(ctx)
		if err == nil && q.Limit > 0 && len(res.Products) > q.Limit {
			res.Products = res.Products[:q.Limit]
		}
	}
	if err != nil {
		return err
	}
	return emitProducts(env, "", res)
}

// HandleSearch runs a text search.
func HandleSearch(ctx context.Context, env *Env) error {
	p := env.Args.Parser("in-stock")
	q, err := parseSearchQuery(p)
	if err != nil {
		return err
	}
	q.Query = strings.TrimSpace(JoinPositionalArgs(p, 0))
	if q.Query == "" {
		return ErrMissingArgument("query", `aisle search "running shoes" --max 120`)
	}

	res, err := env.App.Catalog.Search(ctx, q)
	if err != nil {
		return err
	}
	return emitProducts(env, q.Query, res)
}

func emitProducts(env *Env, query string, res catalog.Result) error {
	if res.Offline {
		env.Out.Warn("store offline; showing %d products from the offline catalog", len(res.Products))
	}
	products := res.Products
	if products == nil {
		products = []model.Product{}
	}
	data := ProductList{Query: query, Count: len(products), Offline: res.Offline, Products: products}

	return env.Out.Emit(data, func(w io.Writer) error {
		if len(products) == 0 {
			fmt.Fprintln(w, "No products match.")
			return nil
		}
		fmt.Fprintln(w, renderTable(productColumns, productRows(products)))
		env.Out.Note("%d products. Details: aisle product <id>", len(products))
		return nil
	})
}

// =============================================================================
// FILTERS
// =============================================================================

// HandleFilters shows the catalog facets.
func HandleFilters(ctx context.Context, env *Env) error {
	f, offline, err := env.App.Catalog.Filters(ctx)
	if err != nil {
		return err
	}
	if offline {
		env.Out.Warn("store offline; facets come from the offline catalog")
	}

	return env.Out.Emit(f, func(w io.Writer) error {
		fmt.Fprintln(w, TitleStyle.Render("Catalog filters"))
		fmt.Fprintln(w, RenderField("Categories", joinOrNone(f.Categories)))
		fmt.Fprintln(w, RenderField("Brands", joinOrNone(f.Brands)))
		fmt.Fprintln(w, RenderField("Price range", fmt.Sprintf("%s - %s",
			model.FormatPrice(f.PriceRange.Min), model.FormatPrice(f.PriceRange.Max))))
		return nil
	})
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return WrapText(strings.Join(items, ", "), 60)
}

// =============================================================================
// PRODUCT
// =============================================================================

// HandleProduct shows one product.
func HandleProduct(ctx context.Context, env *Env) error {
	p := env.Args.Parser()
	id, err := ParseID(p.Positional(0), "product id")
	if err != nil {
		return err
	}

	product, offline, err := env.App.Catalog.Get(ctx, id)
	if err != nil {
		return err
	}

	state := env.App.Store.State()
	data := ProductDetail{Product: product, Offline: offline, InWishlist: state.InWishlist(id)}
	if line, ok := state.CartLine(id); ok {
		data.InCart = line.Quantity
	}

	return env.Out.Emit(data, func(w io.Writer) error {
		card := components.ProductCard{Product: product, InCart: data.InCart, InWishlist: data.InWishlist}
		fmt.Fprintln(w, card.Render(env.theme(), env.width(72)))
		env.Out.Note("Add it: aisle cart add %d", id)
		return nil
	})
}
