// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// PAYMENT METHOD
// =============================================================================

// PaymentMethod is a tender the backend accepts.
type PaymentMethod string

const (
	PayCard      PaymentMethod = "card"
	PayPayPal    PaymentMethod = "paypal"
	PayApplePay  PaymentMethod = "apple_pay"
	PayGooglePay PaymentMethod = "google_pay"
	PayGiftCard  PaymentMethod = "gift_card"
)

// PaymentMethods lists every accepted tender.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PayCard, PayPayPal, PayApplePay, PayGooglePay, PayGiftCard}
}

// ParsePaymentMethod validates a tender name, case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range PaymentMethods() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("payment method %q not supported", s)
}

// =============================================================================
// CHECKOUT REQUEST AND RESULT
// =============================================================================

// Checkout error types reported by the backend.
const (
	CheckoutEmptyCart         = "empty_cart"
	CheckoutInvalidPayment    = "invalid_payment_method"
	CheckoutInsufficientFunds = "insufficient_funds"
	CheckoutCardDeclined      = "card_declined"
	CheckoutNetworkError      = "network_error"
	CheckoutSystemError       = "system_error"
)

// CheckoutRequest is the /checkout body.
type CheckoutRequest struct {
	CartItems     []CartItem    `json:"cart_items"`
	CustomerID    *int          `json:"customer_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	ApplyLoyalty  bool          `json:"apply_loyalty"`
	CouponCode    string        `json:"coupon_code,omitempty"`
}

// CheckoutResult is the payment agent's answer. On failure Success is false
// and ErrorType names the cause; the order fields are then empty.
type CheckoutResult struct {
	Success         bool             `json:"success" yaml:"success"`
	Message         string           `json:"message,omitempty" yaml:"message,omitempty"`
	Order           *Order           `json:"order,omitempty" yaml:"order,omitempty"`
	Pricing         *Pricing         `json:"pricing,omitempty" yaml:"pricing,omitempty"`
	PaymentDetails  *PaymentDetails  `json:"payment_details,omitempty" yaml:"payment_details,omitempty"`
	ErrorType       string           `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	RecoveryOptions []RecoveryOption `json:"recovery_options,omitempty" yaml:"recovery_options,omitempty"`
	Alternatives    []PaymentMethod  `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

// Retryable reports whether the same request may succeed if sent again.
func (r CheckoutResult) Retryable() bool {
	return r.ErrorType == CheckoutCardDeclined || r.ErrorType == CheckoutNetworkError
}

// OrderTotals is the compact pricing stored on an order.
type OrderTotals struct {
	Subtotal float64 `json:"subtotal" yaml:"subtotal"`
	Discount float64 `json:"discount" yaml:"discount"`
	Tax      float64 `json:"tax" yaml:"tax"`
	Total    float64 `json:"total" yaml:"total"`
}

// OrderPayment records how an order was paid.
type OrderPayment struct {
	Method        PaymentMethod `json:"method" yaml:"method"`
	TransactionID string        `json:"transaction_id" yaml:"transaction_id"`
	Status        string        `json:"status" yaml:"status"`
}

// Order is a confirmed purchase.
type Order struct {
	OrderID           string         `json:"order_id" yaml:"order_id"`
	CustomerID        *int           `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
	Items             []PricedItem   `json:"items" yaml:"items"`
	Pricing           OrderTotals    `json:"pricing" yaml:"pricing"`
	Payment           OrderPayment   `json:"payment" yaml:"payment"`
	Loyalty           LoyaltyApplied `json:"loyalty" yaml:"loyalty"`
	Status            string         `json:"status" yaml:"status"`
	CreatedAt         string         `json:"created_at" yaml:"created_at"`
	EstimatedDelivery string         `json:"estimated_delivery,omitempty" yaml:"estimated_delivery,omitempty"`
}

// PricedItem is a cart line as priced by the backend.
type PricedItem struct {
	ProductID int     `json:"product_id" yaml:"product_id"`
	Name      string  `json:"name" yaml:"name"`
	Price     float64 `json:"price" yaml:"price"`
	Quantity  int     `json:"quantity" yaml:"quantity"`
	Total     float64 `json:"total" yaml:"total"`
}

// Discount type names.
const (
	DiscountBundle  = "bundle_discount"
	DiscountLoyalty = "loyalty_points"
	DiscountCoupon  = "coupon_code"
)

// Discount is one applied reduction.
type Discount struct {
	Type        string  `json:"type" yaml:"type"`
	Description string  `json:"description" yaml:"description"`
	Amount      float64 `json:"amount" yaml:"amount"`
}

// LoyaltyApplied is the points movement of an order.
type LoyaltyApplied struct {
	PointsUsed      int     `json:"points_used" yaml:"points_used"`
	PointsEarned    int     `json:"points_earned" yaml:"points_earned"`
	DiscountApplied float64 `json:"discount_applied" yaml:"discount_applied"`
}

// Pricing is the full breakdown of an order total.
type Pricing struct {
	Subtotal      float64        `json:"subtotal" yaml:"subtotal"`
	Items         []PricedItem   `json:"items" yaml:"items"`
	Discounts     []Discount     `json:"discounts" yaml:"discounts"`
	TotalDiscount float64        `json:"total_discount" yaml:"total_discount"`
	Tax           float64        `json:"tax" yaml:"tax"`
	FinalTotal    float64        `json:"final_total" yaml:"final_total"`
	Loyalty       LoyaltyApplied `json:"loyalty" yaml:"loyalty"`
	Savings       float64        `json:"savings" yaml:"savings"`

	// Estimate is set on locally computed quotes; never sent by the backend.
	Estimate bool `json:"estimate,omitempty" yaml:"estimate,omitempty"`
}

// PaymentDetails is the processor's receipt.
type PaymentDetails struct {
	Success       bool          `json:"success" yaml:"success"`
	TransactionID string        `json:"transaction_id" yaml:"transaction_id"`
	Amount        float64       `json:"amount" yaml:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method" yaml:"payment_method"`
	Timestamp     string        `json:"timestamp" yaml:"timestamp"`
	Status        string        `json:"status" yaml:"status"`
}
