// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jeranaias/aisle-tui/internal/model"
)

var (
	shoe  = model.Product{ID: 1, Name: "Trail Runner", Price: 89.99, Brand: "Stride", Category: "Footwear"}
	sock  = model.Product{ID: 2, Name: "Wool Sock", Price: 0.1, Category: "Footwear"}
	watch = model.Product{ID: 3, Name: "Field Watch", Price: 149.5, Brand: "Tock"}
)

// =============================================================================
// CART MERGE
// =============================================================================

func TestAddToCart_MergesById(t *testing.T) {
	s := Reduce(State{}, AddToCart{Product: shoe, Quantity: 1})
	s = Reduce(s, AddToCart{Product: sock, Quantity: 3})
	s = Reduce(s, AddToCart{Product: shoe, Quantity: 2})

	want := []model.CartLine{
		model.LineFromProduct(shoe, 3),
		model.LineFromProduct(sock, 3),
	}
	if diff := cmp.Diff(want, s.Cart); diff != "" {
		t.Errorf("cart mismatch (-want +got):\n%s", diff)
	}
	if s.LineCount != 2 || s.ItemCount != 6 {
		t.Errorf("LineCount/ItemCount = %d/%d, want 2/6", s.LineCount, s.ItemCount)
	}
}

func TestAddToCart_NonPositiveQuantityMeansOne(t *testing.T) {
	for _, qty := range []int{0, -4} {
		s := Reduce(State{}, AddToCart{Product: sock, Quantity: qty})
		if s.Cart[0].Quantity != 1 {
			t.Errorf("quantity %d: got %d, want 1", qty, s.Cart[0].Quantity)
		}
	}
}

func TestRemoveFromCart_AbsentIsNoop(t *testing.T) {
	s := Reduce(State{}, AddToCart{Product: shoe, Quantity: 2})
	s.ChatOpen = true
	s.LastError = "earlier"

	got := Reduce(s, RemoveFromCart{ProductID: 999})
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}

	empty := Reduce(State{}, RemoveFromCart{ProductID: 1})
	if diff := cmp.Diff(State{}, empty); diff != "" {
		t.Errorf("empty state changed:\n%s", diff)
	}
}

func TestRemoveFromCart_RemovesLine(t *testing.T) {
	s := Reduce(State{}, AddToCart{Product: shoe})
	s = Reduce(s, AddToCart{Product: watch})
	s = Reduce(s, RemoveFromCart{ProductID: shoe.ID})

	if s.InCart(shoe.ID) || !s.InCart(watch.ID) {
		t.Fatalf("cart = %+v", s.Cart)
	}
	if s.Subtotal != 149.5 {
		t.Errorf("Subtotal = %v, want 149.5", s.Subtotal)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := Reduce(State{}, AddToCart{Product: shoe, Quantity: 1})
	snapshot := append([]model.CartLine(nil), before.Cart...)

	_ = Reduce(before, AddToCart{Product: shoe, Quantity: 5})
	_ = Reduce(before, SetQuantity{ProductID: shoe.ID, Quantity: 9})
	_ = Reduce(before, RemoveFromCart{ProductID: shoe.ID})

	if diff := cmp.Diff(snapshot, before.Cart); diff != "" {
		t.Errorf("input cart mutated:\n%s", diff)
	}
}

func TestSetQuantity(t *testing.T) {
	base := Reduce(State{}, AddToCart{Product: sock, Quantity: 2})

	tests := []struct {
		name      string
		action    SetQuantity
		wantLines int
		wantItems int
	}{
		{"raise", SetQuantity{ProductID: sock.ID, Quantity: 10}, 1, 10},
		{"zero removes", SetQuantity{ProductID: sock.ID, Quantity: 0}, 0, 0},
		{"negative removes", SetQuantity{ProductID: sock.ID, Quantity: -1}, 0, 0},
		{"absent is noop", SetQuantity{ProductID: 42, Quantity: 3}, 1, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Reduce(base, tc.action)
			if s.LineCount != tc.wantLines || s.ItemCount != tc.wantItems {
				t.Errorf("lines/items = %d/%d, want %d/%d", s.LineCount, s.ItemCount, tc.wantLines, tc.wantItems)
			}
		})
	}
}

func TestClearCart(t *testing.T) {
	s := Reduce(State{}, AddToCart{Product: shoe})
	s = Reduce(s, ClearCart{})
	if !s.Empty() || s.Subtotal != 0 || s.ItemCount != 0 {
		t.Errorf("after clear: %+v", s)
	}
}

// =============================================================================
// SUBTOTAL
// =============================================================================

func TestSubtotal_ExactInCents(t *testing.T) {
	s := Reduce(State{}, AddToCart{Product: sock, Quantity: 3})
	if s.SubtotalCents != 30 || s.Subtotal != 0.3 {
		t.Errorf("Subtotal = %v (%d cents), want 0.3 (30 cents)", s.Subtotal, s.SubtotalCents)
	}
}

// TestSubtotal_RandomSequences runs random add/remove/quantity sequences
// and checks the cart invariants after every step.
func TestSubtotal_RandomSequences(t *testing.T) {
	catalog := []model.Product{shoe, sock, watch, {ID: 4, Name: "Cap", Price: 19.95}, {ID: 5, Name: "Gum", Price: 0.99}}
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		s := State{}
		for step := 0; step < 40; step++ {
			p := catalog[rng.Intn(len(catalog))]
			var a Action
			switch rng.Intn(4) {
			case 0, 1:
				a = AddToCart{Product: p, Quantity: rng.Intn(4)}
			case 2:
				a = RemoveFromCart{ProductID: p.ID}
			default:
				a = SetQuantity{ProductID: p.ID, Quantity: rng.Intn(5) - 1}
			}
			s = Reduce(s, a)
			checkCartInvariants(t, s)
		}
	}
}

func checkCartInvariants(t *testing.T, s State) {
	t.Helper()
	var cents int64
	items := 0
	seen := make(map[int]bool)
	for _, l := range s.Cart {
		if seen[l.ProductID] {
			t.Fatalf("duplicate line for product %d: %+v", l.ProductID, s.Cart)
		}
		seen[l.ProductID] = true
		if l.Quantity <= 0 {
			t.Fatalf("non-positive quantity: %+v", l)
		}
		cents += model.Cents(l.Price) * int64(l.Quantity)
		items += l.Quantity
	}
	if s.SubtotalCents != cents {
		t.Fatalf("SubtotalCents = %d, want %d", s.SubtotalCents, cents)
	}
	if s.Subtotal != model.FromCents(cents) {
		t.Fatalf("Subtotal = %v, want %v", s.Subtotal, model.FromCents(cents))
	}
	if s.ItemCount != items || s.LineCount != len(s.Cart) {
		t.Fatalf("ItemCount/LineCount = %d/%d, want %d/%d", s.ItemCount, s.LineCount, items, len(s.Cart))
	}
}

// =============================================================================
// WISHLIST
// =============================================================================

func TestWishlist(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	s := Reduce(State{}, AddToWishlist{Product: watch, At: at})
	s = Reduce(s, AddToWishlist{Product: watch, At: at.Add(time.Hour)})
	if len(s.Wishlist) != 1 || !s.Wishlist[0].AddedAt.Equal(at) {
		t.Fatalf("wishlist = %+v, want one entry from first add", s.Wishlist)
	}

	before := s
	s = Reduce(s, RemoveFromWishlist{ProductID: 77})
	if diff := cmp.Diff(before, s); diff != "" {
		t.Errorf("removing absent entry changed state:\n%s", diff)
	}

	s = Reduce(s, ToggleWishlist{Product: watch})
	if s.InWishlist(watch.ID) {
		t.Error("toggle did not remove")
	}
	s = Reduce(s, ToggleWishlist{Product: shoe, At: at})
	if !s.InWishlist(shoe.ID) {
		t.Error("toggle did not add")
	}
}

func TestMoveToCart(t *testing.T) {
	s := Reduce(State{}, AddToWishlist{Product: shoe})
	s = Reduce(s, AddToCart{Product: shoe, Quantity: 1})
	s = Reduce(s, MoveToCart{ProductID: shoe.ID})

	if s.InWishlist(shoe.ID) {
		t.Error("product still in wishlist")
	}
	line, ok := s.CartLine(shoe.ID)
	if !ok || line.Quantity != 2 {
		t.Errorf("cart line = %+v, %v; want quantity 2", line, ok)
	}

	again := Reduce(s, MoveToCart{ProductID: shoe.ID})
	if diff := cmp.Diff(s, again); diff != "" {
		t.Errorf("moving absent entry changed state:\n%s", diff)
	}
}

// =============================================================================
// IDENTITY AND TRANSIENT FIELDS
// =============================================================================

func TestSessionAndTransientFields(t *testing.T) {
	s := Reduce(State{Channel: model.ChannelWeb}, SetSession{SessionID: "abc"})
	if s.SessionID != "abc" || s.Channel != model.ChannelWeb {
		t.Errorf("SetSession without channel: %+v", s)
	}
	s = Reduce(s, SetSession{SessionID: "def", Channel: model.ChannelMobile})
	s = Reduce(s, SetCustomer{CustomerID: 12})
	s = Reduce(s, SetChatOpen{Open: true})
	s = Reduce(s, SetError{Err: errors.New("offline")})

	if s.SessionID != "def" || s.Channel != model.ChannelMobile || s.CustomerID != 12 {
		t.Errorf("identity = %q/%q/%d", s.SessionID, s.Channel, s.CustomerID)
	}
	if !s.ChatOpen || s.LastError != "offline" {
		t.Errorf("transient = %v/%q", s.ChatOpen, s.LastError)
	}
	if s = Reduce(s, SetError{}); s.LastError != "" {
		t.Errorf("SetError{nil} left %q", s.LastError)
	}
}

func TestSnapshot_ExcludesTransient(t *testing.T) {
	s := Reduce(State{}, AddToCart{Product: shoe})
	s = Reduce(s, SetChatOpen{Open: true})
	s = Reduce(s, SetError{Err: errors.New("x")})

	restored := Reduce(State{}, Hydrate{Snapshot: s.Snapshot()})
	if restored.ChatOpen || restored.LastError != "" {
		t.Errorf("transient fields leaked through snapshot: %+v", restored)
	}
	if diff := cmp.Diff(s.Cart, restored.Cart, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("cart not restored:\n%s", diff)
	}
	if restored.Subtotal != s.Subtotal {
		t.Errorf("Subtotal = %v, want %v", restored.Subtotal, s.Subtotal)
	}
}
