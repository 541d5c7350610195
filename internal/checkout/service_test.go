// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/store"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeBackend struct {
	mu sync.Mutex

	result      *model.CheckoutResult
	checkoutErr error
	reserveErr  error
	recoverErr  error
	plan        *model.RecoveryPlan
	loyalty     *model.LoyaltyStatus
	loyaltyErr  error

	checkouts []model.CheckoutRequest
	reserved  []model.ReserveItem
	reserveID string
	minutes   int
	recovers  []model.RecoveryRequest
}

func (f *fakeBackend) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, req)
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return f.result, nil
}

func (f *fakeBackend) ReserveItems(ctx context.Context, sessionID string, items []model.ReserveItem, minutes int) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserved = items
	f.reserveID = sessionID
	f.minutes = minutes
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	return &model.Reservation{SessionID: sessionID, ExpiresInMinutes: minutes}, nil
}

func (f *fakeBackend) RecoverError(ctx context.Context, req model.RecoveryRequest) (*model.RecoveryPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recovers = append(f.recovers, req)
	if f.recoverErr != nil {
		return nil, f.recoverErr
	}
	return f.plan, nil
}

func (f *fakeBackend) Loyalty(ctx context.Context, customerID int) (*model.LoyaltyStatus, error) {
	if f.loyaltyErr != nil {
		return nil, f.loyaltyErr
	}
	return f.loyalty, nil
}

type fakeSessions struct {
	id  string
	err error
}

func (f fakeSessions) Ensure(ctx context.Context) (string, error) {
	return f.id, f.err
}

var (
	shoe = model.Product{ID: 1, Name: "Trail Shoe", Price: 89.99}
	sock = model.Product{ID: 2, Name: "Wool Sock", Price: 12.5}
)

func newService(t *testing.T, b *fakeBackend, customerID int) (*Service, *store.Store) {
	t.Helper()
	st := store.New(store.State{})
	st.Dispatch(store.AddToCart{Product: shoe, Quantity: 1})
	st.Dispatch(store.AddToCart{Product: sock, Quantity: 3})
	if customerID > 0 {
		st.Dispatch(store.SetCustomer{CustomerID: customerID})
	}
	svc := NewService(Config{Backend: b, Sessions: fakeSessions{id: "sess-1"}, Store: st})
	return svc, st
}

// =============================================================================
// CHECKOUT
// =============================================================================

func TestCheckoutEmptyCart(t *testing.T) {
	b := &fakeBackend{}
	svc := NewService(Config{Backend: b, Sessions: fakeSessions{id: "s"}, Store: store.New(store.State{})})

	_, err := svc.Checkout(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, b.checkouts)
}

func TestCheckoutInvalidPaymentMethod(t *testing.T) {
	b := &fakeBackend{}
	svc, _ := newService(t, b, 0)

	_, err := svc.Checkout(context.Background(), Options{PaymentMethod: "bitcoin"})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	assert.Empty(t, b.checkouts)
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	b := &fakeBackend{result: &model.CheckoutResult{
		Success: true,
		Order:   &model.Order{OrderID: "ORD-1"},
	}}
	svc, st := newService(t, b, 42)

	result, err := svc.Checkout(context.Background(), Options{PaymentMethod: "PayPal", Coupon: " save20 ", ApplyLoyalty: true})
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", result.Order.OrderID)
	assert.True(t, st.State().Empty())

	require.Len(t, b.checkouts, 1)
	req := b.checkouts[0]
	assert.Equal(t, model.PayPayPal, req.PaymentMethod)
	assert.Equal(t, "SAVE20", req.CouponCode)
	assert.True(t, req.ApplyLoyalty)
	require.NotNil(t, req.CustomerID)
	assert.Equal(t, 42, *req.CustomerID)
	assert.Equal(t, []model.CartItem{
		{ProductID: 1, Name: "Trail Shoe", Price: 89.99, Quantity: 1},
		{ProductID: 2, Name: "Wool Sock", Price: 12.5, Quantity: 3},
	}, req.CartItems)
}

func TestCheckoutGuestDefaults(t *testing.T) {
	b := &fakeBackend{result: &model.CheckoutResult{Success: true}}
	svc, _ := newService(t, b, 0)

	_, err := svc.Checkout(context.Background(), Options{ApplyLoyalty: true})
	require.NoError(t, err)

	req := b.checkouts[0]
	assert.Equal(t, model.PayCard, req.PaymentMethod)
	assert.Nil(t, req.CustomerID)
	assert.False(t, req.ApplyLoyalty, "guests have no points to apply")
}

func TestCheckoutRefusedKeepsCart(t *testing.T) {
	options := []model.RecoveryOption{{Option: "retry_payment", Label: "Try again"}}
	b := &fakeBackend{result: &model.CheckoutResult{
		Success:         false,
		ErrorType:       model.CheckoutCardDeclined,
		Message:         "Your card was declined",
		RecoveryOptions: options,
		Alternatives:    []model.PaymentMethod{model.PayPayPal},
	}}
	svc, st := newService(t, b, 0)

	result, err := svc.Checkout(context.Background(), Options{})
	require.Error(t, err)
	require.NotNil(t, result)

	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, model.CheckoutCardDeclined, perr.ErrorType)
	assert.Equal(t, options, perr.RecoveryOptions)
	assert.Equal(t, []model.PaymentMethod{model.PayPayPal}, perr.Alternatives)
	assert.True(t, perr.Retryable)
	assert.Equal(t, "payment failed: Your card was declined", err.Error())

	assert.False(t, st.State().Empty())
	assert.Empty(t, b.recovers, "backend options are used as given")
}

func TestCheckoutRefusedQueriesRecovery(t *testing.T) {
	b := &fakeBackend{
		result: &model.CheckoutResult{ErrorType: model.CheckoutInsufficientFunds},
		plan: &model.RecoveryPlan{RecoveryOptions: []model.RecoveryOption{
			{Type: "alternative_payment", Label: "Use another card"},
		}},
	}
	svc, _ := newService(t, b, 0)

	_, err := svc.Checkout(context.Background(), Options{PaymentMethod: "gift_card"})

	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	require.Len(t, perr.RecoveryOptions, 1)
	assert.Equal(t, "alternative_payment", perr.RecoveryOptions[0].Kind())
	assert.False(t, perr.Retryable)
	assert.Equal(t, "payment failed: insufficient funds", err.Error())

	require.Len(t, b.recovers, 1)
	rec := b.recovers[0]
	assert.Equal(t, model.RecoverPaymentFailed, rec.ErrorType)
	assert.Equal(t, "sess-1", rec.SessionID)
	assert.Equal(t, model.CheckoutInsufficientFunds, rec.Context["error_type"])
	assert.Equal(t, "gift_card", rec.Context["payment_method"])
}

func TestCheckoutRecoveryFailureStillReportsPayment(t *testing.T) {
	b := &fakeBackend{
		result:     &model.CheckoutResult{ErrorType: model.CheckoutSystemError, Message: "boom"},
		recoverErr: errors.New("down"),
	}
	svc, _ := newService(t, b, 0)

	_, err := svc.Checkout(context.Background(), Options{})

	var perr *PaymentError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, perr.RecoveryOptions)
}

func TestCheckoutTransportError(t *testing.T) {
	b := &fakeBackend{checkoutErr: api.ErrUnreachable}
	svc, st := newService(t, b, 0)

	result, err := svc.Checkout(context.Background(), Options{})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, api.ErrUnreachable)
	assert.False(t, st.State().Empty())
}

// =============================================================================
// RESERVATION
// =============================================================================

func TestCheckoutReservesFirst(t *testing.T) {
	b := &fakeBackend{result: &model.CheckoutResult{Success: true}}
	svc, _ := newService(t, b, 0)

	_, err := svc.Checkout(context.Background(), Options{Reserve: true, Location: "warehouse"})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", b.reserveID)
	assert.Equal(t, DefaultReserveMinutes, b.minutes)
	assert.Equal(t, []model.ReserveItem{
		{ProductID: 1, Quantity: 1, Location: "warehouse"},
		{ProductID: 2, Quantity: 3, Location: "warehouse"},
	}, b.reserved)
}

func TestCheckoutReservationFailureStopsPayment(t *testing.T) {
	b := &fakeBackend{reserveErr: errors.New("insufficient stock")}
	svc, st := newService(t, b, 0)

	_, err := svc.Checkout(context.Background(), Options{Reserve: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserve items")
	assert.Empty(t, b.checkouts)
	assert.False(t, st.State().Empty())
}

func TestReserveWithoutSession(t *testing.T) {
	b := &fakeBackend{}
	st := store.New(store.State{})
	st.Dispatch(store.AddToCart{Product: shoe, Quantity: 1})
	svc := NewService(Config{Backend: b, Sessions: fakeSessions{err: errors.New("no backend")}, Store: st})

	_, err := svc.Reserve(context.Background(), st.State().Cart, "")
	require.Error(t, err)
	assert.Nil(t, b.reserved)
}

// =============================================================================
// QUOTE
// =============================================================================

func TestServiceQuoteUsesLoyaltyPoints(t *testing.T) {
	b := &fakeBackend{loyalty: &model.LoyaltyStatus{Points: 250}}
	svc, _ := newService(t, b, 7)

	p := svc.Quote(context.Background(), "", true)
	assert.Equal(t, 250, p.Loyalty.PointsUsed)
	assert.Equal(t, 127.49, p.Subtotal)
}

func TestServiceQuoteLoyaltyLookupFails(t *testing.T) {
	b := &fakeBackend{loyaltyErr: errors.New("down")}
	svc, _ := newService(t, b, 7)

	p := svc.Quote(context.Background(), "", true)
	assert.Equal(t, 0, p.Loyalty.PointsUsed)
	assert.True(t, p.Estimate)
}
