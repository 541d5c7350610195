// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cart_cmd.go - Cart and wishlist commands.
//
// The cart lives in the local store and is shared with the storefront
// through the persisted snapshot. `cart sync` pushes it to the backend
// session cart.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/store"
	"github.com/jeranaias/aisle-tui/internal/ui/components"
)

var (
	cartSubcommands     = []string{"show", "add", "remove", "qty", "clear", "sync"}
	wishlistSubcommands = []string{"show", "add", "remove", "move"}
)

// CartView is the structured output of cart commands.
type CartView struct {
	Lines     []model.CartLine `json:"lines" yaml:"lines"`
	LineCount int              `json:"line_count" yaml:"line_count"`
	ItemCount int              `json:"item_count" yaml:"item_count"`
	Subtotal  float64          `json:"subtotal" yaml:"subtotal"`
	SessionID string           `json:"session_id,omitempty" yaml:"session_id,omitempty"`
}

func cartView(s store.State) CartView {
	lines := s.Cart
	if lines == nil {
		lines = []model.CartLine{}
	}
	return CartView{
		Lines:     lines,
		LineCount: s.LineCount,
		ItemCount: s.ItemCount,
		Subtotal:  s.Subtotal,
		SessionID: s.SessionID,
	}
}

// =============================================================================
// CART
// =============================================================================

// HandleCart handles "cart" and its subcommands.
func HandleCart(ctx context.Context, env *Env) error {
	p := env.Args.Parser("yes", "y")
	switch p.Subcommand() {
	case "", "show", "ls":
		return emitCart(env, env.App.Store.State())

	case "add":
		id, err := ParseID(p.Positional(1), "product id")
		if err != nil {
			return err
		}
		qty := 1
		if s := p.Positional(2); s != "" {
			if qty, err = ParseQuantity(s, false); err != nil {
				return err
			}
		}
		product, _, err := env.App.Catalog.Get(ctx, id)
		if err != nil {
			return err
		}
		if !product.Available() {
			return NewCommandError("cart", "add", product.Name+" is out of stock", nil)
		}
		state := env.App.Store.Dispatch(store.AddToCart{Product: product, Quantity: qty})
		env.Out.Note("Added %d x %s", qty, product.Name)
		return emitCart(env, state)

	case "remove", "rm":
		id, err := ParseID(p.Positional(1), "product id")
		if err != nil {
			return err
		}
		if !env.App.Store.State().InCart(id) {
			return NewNotFoundError("cart item", strconv.Itoa(id))
		}
		return emitCart(env, env.App.Store.Dispatch(store.RemoveFromCart{ProductID: id}))

	case "qty", "quantity":
		id, err := ParseID(p.Positional(1), "product id")
		if err != nil {
			return err
		}
		if p.Positional(2) == "" {
			return ErrMissingArgument("quantity", "aisle cart qty 42 3")
		}
		qty, err := ParseQuantity(p.Positional(2), true)
		if err != nil {
			return err
		}
		if !env.App.Store.State().InCart(id) {
			return NewNotFoundError("cart item", strconv.Itoa(id))
		}
		return emitCart(env, env.App.Store.Dispatch(store.SetQuantity{ProductID: id, Quantity: qty}))

	case "clear":
		state := env.App.Store.State()
		if state.Empty() {
			return emitCart(env, state)
		}
		ok, err := RequireConfirmation(env.Out, "empty the cart", ConfirmationOptions{
			Yes:        p.BoolFlag("yes") || p.BoolFlag("y"),
			Structured: env.Out.Structured(),
			Details: map[string]string{
				"Items":    strconv.Itoa(state.ItemCount),
				"Subtotal": model.FormatPrice(state.Subtotal),
			},
		})
		if err != nil {
			return err
		}
		if !ok {
			ShowCancellationMessage(env.Out)
			return nil
		}
		return emitCart(env, env.App.Store.Dispatch(store.ClearCart{}))

	case "sync":
		return syncCart(ctx, env)
	}
	return ErrUnknownSubcommand("cart", p.Subcommand(), cartSubcommands)
}

func emitCart(env *Env, s store.State) error {
	return env.Out.Emit(cartView(s), func(w io.Writer) error {
		widget := components.CartWidget{Lines: s.Cart, Subtotal: s.Subtotal, Selected: -1}
		fmt.Fprintln(w, widget.Render(env.theme(), env.width(80)))
		if !s.Empty() {
			env.Out.Note("Check out: aisle checkout --pay card")
		}
		return nil
	})
}

// =============================================================================
// CART SYNC
// =============================================================================

// SyncReport is the structured output of cart sync.
type SyncReport struct {
	SessionID string            `json:"session_id" yaml:"session_id"`
	Added     int               `json:"added" yaml:"added"`
	Removed   int               `json:"removed" yaml:"removed"`
	Server    *model.ServerCart `json:"server_cart" yaml:"server_cart"`
}

// syncCart makes the session cart match the local cart. Lines whose
// quantity differs are removed and re-added with the local quantity.
func syncCart(ctx context.Context, env *Env) error {
	sid, err := env.App.Sessions.Ensure(ctx)
	if err != nil {
		return err
	}
	client := env.App.Client

	server, err := client.GetCart(ctx, sid)
	if err != nil {
		return NewCommandError("cart", "sync", "could not read the session cart", err)
	}

	local := env.App.Store.State()
	want := make(map[int]int, len(local.Cart))
	for _, l := range local.Cart {
		want[l.ProductID] = l.Quantity
	}
	have := make(map[int]int, len(server.Cart))
	for _, l := range server.Cart {
		have[l.ProductID] = l.Quantity
	}

	report := SyncReport{SessionID: sid, Server: server}
	for _, l := range server.Cart {
		if want[l.ProductID] == l.Quantity {
			continue
		}
		if report.Server, err = client.RemoveFromCart(ctx, sid, l.ProductID); err != nil {
			return NewCommandError("cart", "sync", "remove "+l.Name, err)
		}
		report.Removed++
	}
	for _, l := range local.Cart {
		if have[l.ProductID] == l.Quantity {
			continue
		}
		if report.Server, err = client.AddToCart(ctx, sid, l.ProductID, l.Quantity); err != nil {
			return NewCommandError("cart", "sync", "add "+l.Name, err)
		}
		report.Added++
	}
	env.App.Sessions.Touch()

	return env.Out.Emit(report, func(w io.Writer) error {
		if report.Added == 0 && report.Removed == 0 {
			fmt.Fprintln(w, SuccessStyle.Render("Session cart already up to date"))
		} else {
			fmt.Fprintf(w, "%s %d added, %d removed\n",
				SuccessStyle.Render("Session cart synced:"), report.Added, report.Removed)
		}
		fmt.Fprintln(w, RenderField("Session", sid))
		if report.Server != nil {
			fmt.Fprintln(w, RenderField("Items", strconv.Itoa(report.Server.TotalItems)))
			fmt.Fprintln(w, RenderField("Subtotal", model.FormatPrice(report.Server.Subtotal)))
		}
		return nil
	})
}

// =============================================================================
// WISHLIST
// =============================================================================

// WishlistView is the structured output of wishlist commands.
type WishlistView struct {
	Items []model.WishlistItem `json:"items" yaml:"items"`
	Count int                  `json:"count" yaml:"count"`
}

// HandleWishlist handles "wishlist" and its subcommands.
func HandleWishlist(ctx context.Context, env *Env) error {
	p := env.Args.Parser()
	sub := p.Subcommand()
	if sub == "" || sub == "show" || sub == "ls" {
		return emitWishlist(env, env.App.Store.State())
	}

	id, err := ParseID(p.Positional(1), "product id")
	if err != nil {
		if sub == "add" || sub == "remove" || sub == "rm" || sub == "move" {
			return err
		}
		return ErrUnknownSubcommand("wishlist", sub, wishlistSubcommands)
	}

	state := env.App.Store.State()
	switch sub {
	case "add":
		product, _, err := env.App.Catalog.Get(ctx, id)
		if err != nil {
			return err
		}
		env.Out.Note("Saved %s", product.Name)
		return emitWishlist(env, env.App.Store.Dispatch(store.AddToWishlist{Product: product}))

	case "remove", "rm":
		if !state.InWishlist(id) {
			return NewNotFoundError("wishlist item", strconv.Itoa(id))
		}
		return emitWishlist(env, env.App.Store.Dispatch(store.RemoveFromWishlist{ProductID: id}))

	case "move":
		if !state.InWishlist(id) {
			return NewNotFoundError("wishlist item", strconv.Itoa(id))
		}
		next := env.App.Store.Dispatch(store.MoveToCart{ProductID: id})
		env.Out.Note("Moved to cart; %d items in cart", next.ItemCount)
		return emitWishlist(env, next)
	}
	return ErrUnknownSubcommand("wishlist", sub, wishlistSubcommands)
}

func emitWishlist(env *Env, s store.State) error {
	items := s.Wishlist
	if items == nil {
		items = []model.WishlistItem{}
	}
	return env.Out.Emit(WishlistView{Items: items, Count: len(items)}, func(w io.Writer) error {
		if len(items) == 0 {
			fmt.Fprintln(w, "Wishlist is empty. Save a product with: aisle wishlist add <id>")
			return nil
		}
		products := make([]model.Product, len(items))
		for i, it := range items {
			products[i] = it.Product
		}
		fmt.Fprintln(w, renderTable(productColumns, productRows(products)))
		return nil
	})
}
