// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/store"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyCart is returned when checkout is attempted with nothing in
	// the cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidPaymentMethod is returned for a tender the backend does
	// not accept.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// PaymentError is a checkout the backend refused.
type PaymentError struct {
	ErrorType       string
	Message         string
	RecoveryOptions []model.RecoveryOption
	Alternatives    []model.PaymentMethod
	Retryable       bool
}

func (e *PaymentError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.ReplaceAll(e.ErrorType, "_", " ")
	}
	if msg == "" {
		msg = "unknown error"
	}
	return "payment failed: " + msg
}

// =============================================================================
// SERVICE
// =============================================================================

// DefaultReserveMinutes is how long reserved stock is held.
const DefaultReserveMinutes = 30

// Backend is the order side of the gateway. *api.Client implements it.
type Backend interface {
	Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error)
	ReserveItems(ctx context.Context, sessionID string, items []model.ReserveItem, minutes int) (*model.Reservation, error)
	RecoverError(ctx context.Context, req model.RecoveryRequest) (*model.RecoveryPlan, error)
	Loyalty(ctx context.Context, customerID int) (*model.LoyaltyStatus, error)
}

// Sessions provides the chat session id reservations and recovery are
// keyed on.
type Sessions interface {
	Ensure(ctx context.Context) (string, error)
}

// Options describe one checkout attempt.
type Options struct {
	PaymentMethod string
	Coupon        string
	ApplyLoyalty  bool

	// Reserve holds the cart's stock before paying.
	Reserve  bool
	Location string
}

// Config configures a Service.
type Config struct {
	Backend        Backend
	Sessions       Sessions
	Store          *store.Store
	ReserveMinutes int
	Logger         *zap.Logger
}

// Service runs checkouts against the cart in Store.
type Service struct {
	backend        Backend
	sessions       Sessions
	store          *store.Store
	reserveMinutes int
	logger         *zap.Logger
}

// NewService creates a checkout service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	minutes := cfg.ReserveMinutes
	if minutes <= 0 {
		minutes = DefaultReserveMinutes
	}
	return &Service{
		backend:        cfg.Backend,
		sessions:       cfg.Sessions,
		store:          cfg.Store,
		reserveMinutes: minutes,
		logger:         logger.Named("checkout"),
	}
}

// Checkout places an order for the current cart. On success the cart is
// cleared and the result returned. A refused payment returns the result
// together with a *PaymentError.
func (s *Service) Checkout(ctx context.Context, opts Options) (*model.CheckoutResult, error) {
	st := s.store.State()
	if st.Empty() {
		return nil, ErrEmptyCart
	}

	method := model.PayCard
	if strings.TrimSpace(opts.PaymentMethod) != "" {
		m, err := model.ParsePaymentMethod(opts.PaymentMethod)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, opts.PaymentMethod)
		}
		method = m
	}

	if opts.Reserve {
		if _, err := s.Reserve(ctx, st.Cart, opts.Location); err != nil {
			return nil, err
		}
	}

	req := model.CheckoutRequest{
		CartItems:     st.CartItems(),
		PaymentMethod: method,
		ApplyLoyalty:  opts.ApplyLoyalty && st.CustomerID > 0,
		CouponCode:    strings.ToUpper(strings.TrimSpace(opts.Coupon)),
	}
	if st.CustomerID > 0 {
		id := st.CustomerID
		req.CustomerID = &id
	}

	s.logger.Info("checkout started",
		zap.Int("lines", len(req.CartItems)),
		zap.String("method", string(method)),
		zap.Int64("subtotal_cents", st.SubtotalCents),
	)

	result, err := s.backend.Checkout(ctx, req)
	if err != nil {
		s.logger.Warn("checkout request failed", zap.Error(err))
		return nil, fmt.Errorf("checkout: %w", err)
	}

	if result.Success {
		s.store.Dispatch(store.ClearCart{})
		fields := []zap.Field{zap.String("method", string(method))}
		if result.Order != nil {
			fields = append(fields, zap.String("order_id", result.Order.OrderID))
		}
		s.logger.Info("checkout completed", fields...)
		return result, nil
	}

	perr := &PaymentError{
		ErrorType:       result.ErrorType,
		Message:         result.Message,
		RecoveryOptions: result.RecoveryOptions,
		Alternatives:    result.Alternatives,
		Retryable:       result.Retryable(),
	}
	if len(perr.RecoveryOptions) == 0 {
		perr.RecoveryOptions = s.recoveryOptions(ctx, result, method)
	}
	s.logger.Warn("payment refused",
		zap.String("error_type", result.ErrorType),
		zap.Int("recovery_options", len(perr.RecoveryOptions)),
	)
	return result, perr
}

// Reserve holds stock for lines under the current session.
func (s *Service) Reserve(ctx context.Context, lines []model.CartLine, location string) (*model.Reservation, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	sessionID, err := s.sessions.Ensure(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserve items: %w", err)
	}
	items := make([]model.ReserveItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, model.ReserveItem{ProductID: l.ProductID, Quantity: l.Quantity, Location: location})
	}
	res, err := s.backend.ReserveItems(ctx, sessionID, items, s.reserveMinutes)
	if err != nil {
		return nil, fmt.Errorf("reserve items: %w", err)
	}
	s.logger.Debug("items reserved", zap.Int("lines", len(res.Reservations)), zap.Int("minutes", res.ExpiresInMinutes))
	return res, nil
}

// recoveryOptions asks the backend how to recover from a refused payment.
// Failures are logged and yield no options.
func (s *Service) recoveryOptions(ctx context.Context, result *model.CheckoutResult, method model.PaymentMethod) []model.RecoveryOption {
	sessionID, err := s.sessions.Ensure(ctx)
	if err != nil {
		s.logger.Debug("no session for recovery", zap.Error(err))
		return nil
	}
	plan, err := s.backend.RecoverError(ctx, model.RecoveryRequest{
		ErrorType: model.RecoverPaymentFailed,
		Context: map[string]any{
			"error_type":     result.ErrorType,
			"payment_method": string(method),
		},
		SessionID: sessionID,
	})
	if err != nil {
		s.logger.Debug("recover error failed", zap.Error(err))
		return nil
	}
	return plan.RecoveryOptions
}

// Quote prices the current cart locally. The customer's points are
// fetched when loyalty is applied; a failed lookup quotes without them.
func (s *Service) Quote(ctx context.Context, coupon string, applyLoyalty bool) model.Pricing {
	st := s.store.State()
	opts := QuoteOptions{Coupon: coupon}
	if applyLoyalty && st.CustomerID > 0 {
		status, err := s.backend.Loyalty(ctx, st.CustomerID)
		if err != nil {
			s.logger.Debug("loyalty lookup failed", zap.Error(err))
		} else {
			opts.ApplyLoyalty = true
			opts.Points = status.Points
		}
	}
	return Quote(st.Cart, opts)
}
