// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/checkout"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
)

// fakeClock lets toast tests move time without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(d time.Duration) (*ToastManager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewToastManager(d)
	m.now = clock.now
	return m, clock
}

// =============================================================================
// TOASTS
// =============================================================================

func TestToastManagerNewestFirst(t *testing.T) {
	m, _ := newTestManager(time.Second)
	first := m.AddStatus("one")
	second := m.AddSuccess("two")

	toasts := m.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, second, toasts[0].ID)
	assert.Equal(t, first, toasts[1].ID)
	assert.Equal(t, ToastKindSuccess, toasts[0].Kind)
}

func TestToastManagerCapsVisible(t *testing.T) {
	m, _ := newTestManager(time.Second)
	for i := 0; i < maxToasts+3; i++ {
		m.AddStatus(fmt.Sprintf("toast %d", i))
	}
	toasts := m.Toasts()
	require.Len(t, toasts, maxToasts)
	assert.Equal(t, fmt.Sprintf("toast %d", maxToasts+2), toasts[0].Message)
}

func TestToastDurationsByKind(t *testing.T) {
	m, clock := newTestManager(2 * time.Second)
	m.AddStatus("status")
	m.AddWarning("warning")
	m.AddError("error")

	clock.advance(2 * time.Second)
	assert.True(t, m.Tick())
	assert.Len(t, m.Toasts(), 2, "status toast should expire first")

	clock.advance(time.Second)
	assert.True(t, m.Tick())
	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, ToastKindError, toasts[0].Kind)

	clock.advance(time.Second)
	assert.False(t, m.Tick())
	assert.False(t, m.HasToasts())
}

func TestToastRemoveAndDismiss(t *testing.T) {
	m, _ := newTestManager(0)
	a := m.AddStatus("a")
	m.AddStatus("b")
	m.AddStatus("c")

	m.Remove(a)
	m.Remove(999)
	assert.Len(t, m.Toasts(), 2)

	m.DismissNewest()
	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "b", toasts[0].Message)

	m.Clear()
	assert.False(t, m.HasToasts())
}

func TestToastsReturnsCopy(t *testing.T) {
	m, _ := newTestManager(0)
	m.AddStatus("keep")
	toasts := m.Toasts()
	toasts[0].Message = "changed"
	assert.Equal(t, "keep", m.Toasts()[0].Message)
}

func TestToastRemaining(t *testing.T) {
	start := time.Now()
	toast := Toast{CreatedAt: start, Duration: 3 * time.Second}
	assert.Equal(t, 2*time.Second, toast.RemainingAt(start.Add(time.Second)))
	assert.Zero(t, toast.RemainingAt(start.Add(5*time.Second)))
	assert.True(t, toast.ExpiredAt(start.Add(3*time.Second)))
}

func TestRenderToastStack(t *testing.T) {
	now := time.Now()
	toasts := []Toast{
		{ID: 2, Message: "newer", Kind: ToastKindError, CreatedAt: now, Duration: 4 * time.Second},
		{ID: 1, Message: "older", Kind: ToastKindStatus, CreatedAt: now, Duration: 4 * time.Second},
	}
	out := RenderToastStack(toasts, 80, now)
	assert.Contains(t, out, styles.StatusIndicators.Error)
	assert.Contains(t, out, "4s")
	assert.Less(t, strings.Index(out, "older"), strings.Index(out, "newer"), "oldest renders on top")
	assert.Empty(t, RenderToastStack(nil, 80, now))
}

// =============================================================================
// PRODUCTS AND CART
// =============================================================================

func testProduct() model.Product {
	return model.Product{
		ID:            1,
		Name:          "Trail Runner",
		Price:         80,
		OriginalPrice: 100,
		Brand:         "Stride",
		Category:      "Shoes",
		Rating:        4.5,
		InStock:       model.StockUnits(3),
	}
}

func TestFormatPriceShowsMarkdown(t *testing.T) {
	theme := styles.NewTheme("dark")
	out := FormatPrice(theme, testProduct())
	assert.Contains(t, out, "$80.00")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "-20%")

	plain := testProduct()
	plain.OriginalPrice = 0
	assert.NotContains(t, FormatPrice(theme, plain), "%")
}

func TestFormatRatingAndStock(t *testing.T) {
	theme := styles.NewTheme("dark")
	assert.Contains(t, FormatRating(theme, 0), "no rating")
	assert.Contains(t, FormatRating(theme, 4.5), "4.5")
	assert.Empty(t, FormatStock(theme, nil))
	assert.NotEmpty(t, FormatStock(theme, model.InStockFlag(false)))
}

func TestProductCardRow(t *testing.T) {
	theme := styles.NewTheme("dark")
	card := ProductCard{Product: testProduct(), Selected: true, InCart: 2, InWishlist: true}
	row := card.Row(theme, 80)
	assert.Contains(t, row, "Trail Runner")
	assert.Contains(t, row, "[2 in cart]")
	assert.Contains(t, row, "[saved]")
	assert.Contains(t, row, "$80.00")

	sold := testProduct()
	sold.InStock = model.InStockFlag(false)
	assert.Contains(t, ProductCard{Product: sold}.Row(theme, 80), "[sold out]")
}

func TestProductCardRender(t *testing.T) {
	theme := styles.NewTheme("dark")
	p := testProduct()
	p.Description = "Light   and\nfast."
	out := ProductCard{Product: p, Reason: "Matches your size"}.Render(theme, 60)
	assert.Contains(t, out, "Stride")
	assert.Contains(t, out, "Matches your size")
	assert.Contains(t, out, "Light and fast.")
}

func TestCartWidget(t *testing.T) {
	theme := styles.NewTheme("dark")

	empty := CartWidget{Selected: -1}
	assert.Contains(t, empty.Render(theme, 60), "Your cart is empty.")

	w := CartWidget{
		Lines: []model.CartLine{
			model.LineFromProduct(testProduct(), 2),
			{ProductID: 2, Name: "Socks", Price: 5, Quantity: 1},
		},
		Subtotal: 165,
		Selected: 1,
	}
	assert.Equal(t, 3, w.ItemCount())
	out := w.Render(theme, 60)
	assert.Contains(t, out, "Cart (3 items)")
	assert.Contains(t, out, "2x")
	assert.Contains(t, out, "$160.00")
	assert.Contains(t, out, "$165.00")
}

func TestCartFromReply(t *testing.T) {
	assert.Equal(t, -1, CartFromReply(nil).Selected)

	w := CartFromReply(&model.CartWidget{
		Items:    []model.ServerCartLine{{CartLine: model.CartLine{ProductID: 4, Name: "Mug", Price: 12, Quantity: 2}}},
		Subtotal: 24,
	})
	require.Len(t, w.Lines, 1)
	assert.Equal(t, "Mug", w.Lines[0].Name)
	assert.Equal(t, "Session cart", w.Title)
	assert.Equal(t, 2, w.ItemCount())
}

func TestRenderPricing(t *testing.T) {
	theme := styles.NewTheme("dark")
	p := checkout.Quote([]model.CartLine{
		{ProductID: 1, Name: "A", Price: 10, Quantity: 1},
		{ProductID: 2, Name: "B", Price: 10, Quantity: 1},
		{ProductID: 3, Name: "C", Price: 10, Quantity: 1},
	}, checkout.QuoteOptions{})

	out := RenderPricing(theme, p, 60)
	assert.Contains(t, out, "Subtotal")
	assert.Contains(t, out, "10% off for 3+ items")
	assert.Contains(t, out, "-$3.00")
	assert.Contains(t, out, "Estimate")

	p.Estimate = false
	assert.NotContains(t, RenderPricing(theme, p, 60), "Estimate")
}

// =============================================================================
// STATUS BAR AND LOYALTY
// =============================================================================

func TestStatusBarWidths(t *testing.T) {
	theme := styles.NewTheme("dark")
	bar := NewStatusBar(theme)
	bar.CustomerID = 7
	bar.Tier = model.TierGold
	bar.Points = 2750
	bar.SessionID = "sess-1234567890abcdef"
	bar.Shortcuts = []Shortcut{{Key: "?", Desc: "help"}}
	bar.SetCart(1, 19.99)

	bar.SetWidth(40)
	narrow := bar.View()
	assert.Contains(t, narrow, "1 item $19.99")
	assert.NotContains(t, narrow, "#7")

	bar.SetWidth(120)
	wide := bar.View()
	assert.Contains(t, wide, "#7 Gold 2,750 pts")
	assert.Contains(t, wide, "session")
	assert.Contains(t, wide, "help")
}

func TestStatusBarOfflineAndGuest(t *testing.T) {
	theme := styles.NewTheme("dark")
	bar := NewStatusBar(theme)
	bar.SetWidth(80)
	bar.Offline = true
	out := bar.View()
	assert.Contains(t, out, "OFFLINE")
	assert.Contains(t, out, "guest")
	assert.Contains(t, out, "cart empty")
}

func TestFmtNumber(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-45000:  "-45,000",
	}
	for in, want := range tests {
		assert.Equal(t, want, fmtNumber(in), "fmtNumber(%d)", in)
	}
}

func TestRenderLoyalty(t *testing.T) {
	theme := styles.NewTheme("dark")
	assert.Contains(t, RenderLoyalty(theme, nil, 80), "customer id")

	out := RenderLoyalty(theme, &model.LoyaltyStatus{
		CustomerName: "Ada",
		Tier:         model.TierSilver,
		Points:       1250,
	}, 80)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "1,250 points")
	assert.Contains(t, out, "$12.50")
	assert.Contains(t, out, "1,250 more for Gold")

	top := RenderLoyalty(theme, &model.LoyaltyStatus{Tier: model.TierPlatinum, Points: 9000}, 80)
	assert.Contains(t, top, "highest tier")
}

func TestRenderLoyaltyBadge(t *testing.T) {
	theme := styles.NewTheme("dark")
	assert.Empty(t, RenderLoyaltyBadge(theme, nil))
	assert.Contains(t, RenderLoyaltyBadge(theme, &model.LoyaltyBadge{Tier: "Gold", Points: 1200}), "1,200 pts")
}

// =============================================================================
// ERROR HINTS
// =============================================================================

func TestExplain(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		retry    bool
	}{
		{"offline", fmt.Errorf("list products: %w", api.ErrUnreachable), CategoryOffline, true},
		{"timeout", api.ErrTimeout, CategoryTimeout, true},
		{"session", api.ErrSessionNotFound, CategorySession, true},
		{"empty cart", checkout.ErrEmptyCart, CategoryCart, false},
		{"bad method", fmt.Errorf("%w: cash", checkout.ErrInvalidPaymentMethod), CategoryInput, false},
		{"unknown", errors.New("boom"), CategoryUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Explain(tt.err)
			assert.Equal(t, tt.category, info.Category)
			assert.Equal(t, tt.retry, info.Retryable)
			assert.NotEmpty(t, info.Title)
		})
	}
	assert.Equal(t, ErrorInfo{}, Explain(nil))
}

func TestExplainPaymentError(t *testing.T) {
	err := &checkout.PaymentError{
		ErrorType: model.CheckoutCardDeclined,
		RecoveryOptions: []model.RecoveryOption{
			{Type: "retry", Label: "Try again", Description: "Re-enter your card"},
		},
		Alternatives: []model.PaymentMethod{model.PayPayPal, model.PayGiftCard},
		Retryable:    true,
	}
	info := Explain(fmt.Errorf("checkout: %w", err))
	assert.Equal(t, CategoryPayment, info.Category)
	assert.True(t, info.Retryable)
	assert.Equal(t, []string{"Try again: Re-enter your card", "Try paying with paypal, gift_card"}, info.Suggestions)

	box := RenderError(styles.NewTheme("dark"), info, 80)
	assert.Contains(t, box, "Payment declined")
	assert.Contains(t, box, "Try:")
}

func TestErrorToastText(t *testing.T) {
	assert.Equal(t, "boom", ErrorToastText(errors.New("boom")))
	assert.True(t, strings.HasPrefix(ErrorToastText(api.ErrTimeout), "Request timed out: "))
}
