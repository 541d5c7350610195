// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aisle-tui/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTestClient returns a client pointed at handler with sleeps recorded
// instead of performed and rate limiting off.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var sleeps []time.Duration
	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL + "/", UserAgent: "aisle/test"},
		WithSleeper(func(d time.Duration) { sleeps = append(sleeps, d) }),
		WithRateLimit(0, 0),
	)
	return c, &sleeps
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

// =============================================================================
// REQUEST SHAPING
// =============================================================================

func TestChannelChat_QueryAndBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channel-chat", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "red shoes", q.Get("message"))
		assert.Equal(t, "mobile", q.Get("channel"))
		assert.Equal(t, "7", q.Get("customer_id"))
		assert.Equal(t, "sess-1", q.Get("session_id"))
		assert.Equal(t, "aisle/test", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var items []model.CartItem
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&items))
		assert.Equal(t, []model.CartItem{{ProductID: 3, Quantity: 2}}, items)

		writeJSON(t, w, map[string]any{
			"success": true,
			"channel": "mobile",
			"data": map[string]any{
				"type":    "mobile_message",
				"message": "Try these",
				"horizontal_products": []map[string]any{
					{"product_id": 11, "name": "Runner", "price": 59.99, "quick_add": true},
				},
			},
		})
	})

	reply, err := c.ChannelChat(context.Background(), ChatRequest{
		Message:    "red shoes",
		Channel:    model.ChannelMobile,
		CustomerID: 7,
		SessionID:  "sess-1",
		CartItems:  []model.CartItem{{ProductID: 3, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Try these", reply.Body())
	assert.Equal(t, model.ChannelMobile, reply.Channel)
	require.Len(t, reply.Cards(), 1)
	assert.Equal(t, 11, reply.Cards()[0].ProductID)
}

func TestChannelChat_GuestOmitsOptionalParams(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("customer_id"))
		assert.False(t, q.Has("session_id"))
		assert.Equal(t, "web", q.Get("channel"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `[]`, string(body))
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{"message": "hi"}})
	})

	reply, err := c.ChannelChat(context.Background(), ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, model.ChannelWeb, reply.Channel)
}

func TestCart_AddUsesBodyRemoveUsesQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cart/add":
			assert.Empty(t, r.URL.RawQuery)
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]any{"session_id": "s", "product_id": float64(5), "quantity": float64(1)}, body)
			writeJSON(t, w, map[string]any{"success": true, "cart": []map[string]any{{"product_id": 5, "quantity": 1}}, "cart_count": 1, "total_items": 1})
		case "/cart/remove":
			assert.Equal(t, "s", r.URL.Query().Get("session_id"))
			assert.Equal(t, "5", r.URL.Query().Get("product_id"))
			assert.Equal(t, int64(0), r.ContentLength)
			writeJSON(t, w, map[string]any{"success": true, "cart": []any{}, "cart_count": 0, "total_items": 0})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	cart, err := c.AddToCart(context.Background(), "s", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.TotalItems)

	cart, err = c.RemoveFromCart(context.Background(), "s", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, cart.CartCount)
}

func TestCreateSession(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session/create", r.URL.Path)
		assert.False(t, r.URL.Query().Has("customer_id"))
		assert.Equal(t, "whatsapp", r.URL.Query().Get("channel"))
		writeJSON(t, w, map[string]any{"success": true, "session_id": "abc", "channel": "whatsapp", "message": "Session created successfully"})
	})

	sess, err := c.CreateSession(context.Background(), 0, model.ChannelWhatsApp)
	require.NoError(t, err)
	assert.Equal(t, &model.Session{ID: "abc", Channel: model.ChannelWhatsApp}, sess)
}

func TestSearchProducts_NormalizesQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var q model.SearchQuery
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "boots", q.Query)
		assert.Equal(t, model.SortRelevance, q.SortBy)
		assert.Equal(t, model.DefaultSearchLimit, q.Limit)
		writeJSON(t, w, map[string]any{"success": true, "count": 1, "products": []map[string]any{
			{"id": 1, "name": "Boot", "price": 80, "original_price": nil, "image": nil},
		}})
	})

	products, err := c.SearchProducts(context.Background(), model.SearchQuery{Query: " boots "})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Nil(t, products[0].InStock)
}

func TestListProducts_StockCounts(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"success": true, "count": 2, "products": []map[string]any{
			{"id": 1, "name": "A", "price": 10, "in_stock": 4},
			{"id": 2, "name": "B", "price": 20, "in_stock": 0},
		}})
	})

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, products[0].Available())
	assert.Equal(t, 4, products[0].InStock.Units)
	assert.False(t, products[1].Available())
}

func TestHealth_NoSuccessField(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"status": "healthy", "services": map[string]string{"api": "running"}})
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Healthy())
}

// =============================================================================
// ENVELOPE UNWRAP
// =============================================================================

func TestEnvelope_SessionNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"success": false, "message": "Session not found"})
	})

	_, err := c.GetCart(context.Background(), "gone")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.False(t, IsOffline(err))
	assert.Equal(t, ErrTypeSessionNotFound, TypeOf(err))
}

func TestEnvelope_BackendErrorText(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"success": false, "error": "db exploded", "message": "Failed to generate recommendations"})
	})

	_, err := c.Recommendations(context.Background(), model.RecommendationQuery{Occasion: "birthday"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackend))
	assert.Contains(t, err.Error(), "db exploded")
}

func TestEnvelope_MissingData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"success": true})
	})

	_, err := c.GetSession(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

func TestLoyalty_NestedFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loyalty/99", r.URL.Path)
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{"success": false, "message": "Customer not found"}})
	})

	_, err := c.Loyalty(context.Background(), 99)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCalculatePoints(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/loyalty/4/calculate-points", r.URL.Path)
		assert.Equal(t, "250.00", r.URL.Query().Get("purchase_amount"))
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{
			"success": true, "purchase_amount": 250, "base_points": 250, "multiplier": 2.0,
			"bonus_points": 100, "total_points_earned": 600, "bonus_message": nil, "new_total_points": 1600,
		}})
	})

	est, err := c.CalculatePoints(context.Background(), 4, 250)
	require.NoError(t, err)
	assert.Equal(t, 600, est.TotalPointsEarned)
	assert.Empty(t, est.BonusMessage)
}

func TestCheckout_PaymentDeclinedIsResult(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"success": false,
			"data": map[string]any{
				"success":    false,
				"message":    "Payment declined by card issuer",
				"error_type": "card_declined",
				"recovery_options": []map[string]string{
					{"option": "try_different_card", "description": "Try a different payment card"},
				},
			},
		})
	})

	res, err := c.Checkout(context.Background(), model.CheckoutRequest{CartItems: []model.CartItem{{ProductID: 1, Quantity: 1}}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, model.CheckoutCardDeclined, res.ErrorType)
	assert.True(t, res.Retryable())
	require.Len(t, res.RecoveryOptions, 1)
	assert.Equal(t, "try_different_card", res.RecoveryOptions[0].Kind())
}

func TestCheckout_ExceptionWithoutData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "card", body["payment_method"])
		assert.Equal(t, []any{}, body["cart_items"])
		writeJSON(t, w, map[string]any{"success": false, "error": "boom"})
	})

	_, err := c.Checkout(context.Background(), model.CheckoutRequest{})
	assert.True(t, errors.Is(err, ErrBackend))
}

func TestCheckInventory_LocationInQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Store A", r.URL.Query().Get("customer_location"))
		var body model.InventoryRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []int{1, 2}, body.ProductIDs)
		assert.Equal(t, map[string]int{"1": 3}, body.Quantities)
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{
			"success": true,
			"availability": map[string]any{
				"1": map[string]any{"product_id": 1, "available": true, "total_stock": 9},
				"2": map[string]any{"product_id": 2, "available": false, "total_stock": 0},
			},
		}})
	})

	report, err := c.CheckInventory(context.Background(), model.InventoryRequest{
		ProductIDs: []int{1, 2},
		Quantities: map[string]int{"1": 3},
	}, "Store A")
	require.NoError(t, err)
	assert.False(t, report.AllAvailable())
}

func TestReserveItems_BodyAndDefaultDuration(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reserve-items", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "s-1", body["session_id"])
		assert.EqualValues(t, 30, body["duration_minutes"])
		items, _ := body["items"].([]any)
		assert.Len(t, items, 1)
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{
			"session_id":         "s-1",
			"expires_in_minutes": 30,
			"reservations": []map[string]any{
				{"product_id": 4, "product_name": "Rain Shell", "quantity": 2, "status": "reserved"},
			},
		}})
	})

	res, err := c.ReserveItems(context.Background(), "s-1", []model.ReserveItem{{ProductID: 4, Quantity: 2}}, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, res.ExpiresInMinutes)
	require.Len(t, res.Reservations, 1)
	assert.Equal(t, "Rain Shell", res.Reservations[0].ProductName)
}

func TestReserveItems_NilItemsSendEmptyArray(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(raw), `"items":[]`)
		assert.Contains(t, string(raw), `"duration_minutes":15`)
		assert.NotContains(t, string(raw), "session_id")
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{"reservations": []any{}}})
	})

	res, err := c.ReserveItems(context.Background(), "", nil, 15)
	require.NoError(t, err)
	assert.Empty(t, res.Reservations)
}

func TestRecoverError_TopLevelOptions(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/recover-error", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(raw), `"context":{}`)
		assert.Contains(t, string(raw), `"error_type":"payment_declined"`)
		writeJSON(t, w, map[string]any{
			"success":    true,
			"error_type": "payment_declined",
			"message":    "Your card was declined.",
			"recovery_options": []map[string]any{
				{"option": "retry_payment", "label": "Try again"},
				{"type": "alternative_payment", "label": "Use another card"},
			},
		})
	})

	plan, err := c.RecoverError(context.Background(), model.RecoveryRequest{ErrorType: "payment_declined", SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, "Your card was declined.", plan.Message)
	require.Len(t, plan.RecoveryOptions, 2)
	assert.Equal(t, "retry_payment", plan.RecoveryOptions[0].Kind())
	assert.Equal(t, "alternative_payment", plan.RecoveryOptions[1].Kind())
}

func TestLoyaltyOffers_UnwrapsData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/loyalty/7/offers", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{
			"customer_name": "Ada",
			"loyalty_tier":  "Gold",
			"total_offers":  1,
			"offers": []map[string]any{
				{"type": "bonus", "title": "Double points", "description": "On outerwear", "bonus_points": 200},
			},
		}})
	})

	offers, err := c.LoyaltyOffers(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.TierGold, offers.Tier)
	require.Len(t, offers.Offers, 1)
	assert.Equal(t, 200, offers.Offers[0].BonusPoints)
}

func TestLoyaltyOffers_NestedFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{"success": false, "error": "offers service unavailable"}})
	})

	_, err := c.LoyaltyOffers(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackend))
	assert.Contains(t, err.Error(), "offers service unavailable")
}

func TestSmartChat_BodyAndExtra(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/smart-chat", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		raw, _ := io.ReadAll(r.Body)
		body := string(raw)
		assert.Contains(t, body, `"cart_items":[]`)
		assert.Contains(t, body, `"budget":75`)
		assert.Contains(t, body, `"category":"Outerwear"`)
		assert.Contains(t, body, `"coupon_code":"SAVE10"`)
		assert.Contains(t, body, `"customer_id":7`)
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{
			"message":     "Here are jackets under $75.",
			"intent":      "recommendation",
			"suggestions": []string{"Show rain shells"},
			"recommendations": []map[string]any{
				{"product_id": 4, "name": "Rain Shell", "price": 69.5},
			},
			"coupon_applied": true,
		}})
	})

	budget := 75.0
	customer := 7
	res, err := c.SmartChat(context.Background(), model.SmartChatRequest{
		Message:    "a jacket",
		CustomerID: &customer,
		Budget:     &budget,
		Category:   "Outerwear",
		CouponCode: "SAVE10",
	})
	require.NoError(t, err)
	assert.Equal(t, "recommendation", res.Intent)
	assert.Equal(t, []string{"Show rain shells"}, res.Suggestions)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, "Rain Shell", res.Recommendations[0].Name)
	assert.Equal(t, map[string]any{"coupon_applied": true}, res.Extra)
}

func TestSmartChat_NoExtraWhenOnlyCommonFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{"message": "Hi!"}})
	})

	res, err := c.SmartChat(context.Background(), model.SmartChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hi!", res.Message)
	assert.Nil(t, res.Extra)
}

// =============================================================================
// TRANSPORT AND RETRY
// =============================================================================

func TestRetry_GetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, map[string]any{"success": true, "filters": map[string]any{"categories": []string{"Shoes"}}})
	})

	f, err := c.ProductFilters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Shoes"}, f.Categories)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, *sleeps)
}

func TestRetry_PostNotRetriedOnServerError(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal Server Error"}`))
	})

	_, err := c.AddToCart(context.Background(), "s", 1, 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, ErrTypeHTTPStatus, TypeOf(err))
	assert.Contains(t, err.Error(), "Internal Server Error")
}

func TestRetry_TooManyRequestsHonoursRetryAfter(t *testing.T) {
	var calls atomic.Int32
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(t, w, map[string]any{"success": true, "data": map[string]any{"message": "ok"}})
	})

	_, err := c.ChannelChat(context.Background(), ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second}, *sleeps)
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListProducts(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestNotFoundStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.GetSession(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOffline_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: url, MaxRetries: -1}, WithRateLimit(0, 0))
	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.True(t, IsOffline(err))
	assert.True(t, errors.Is(err, ErrUnreachable))
}

func TestOffline_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, MaxRetries: -1}, WithRateLimit(0, 0))
	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, IsOffline(err))
}

func TestResponseSizeLimit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"pad":"`))
		_, _ = w.Write([]byte(strings.Repeat("x", MaxResponseSize)))
		_, _ = w.Write([]byte(`"}`))
	})

	_, err := c.Health(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

func TestCanceledContextNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListProducts(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(0), calls.Load())
}

func TestBackoffDelay(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{RetryDelay: time.Second, RetryMaxDelay: 5 * time.Second})
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
		{10, 5 * time.Second},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, c.backoffDelay(tc.attempt), "attempt %d", tc.attempt)
	}
}

func TestParseRetryAfter(t *testing.T) {
	d, ok := parseRetryAfter("3")
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	_, ok = parseRetryAfter("soon")
	assert.False(t, ok)

	d, ok = parseRetryAfter(time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat))
	assert.True(t, ok)
	assert.Zero(t, d)
}
