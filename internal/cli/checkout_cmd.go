// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// checkout_cmd.go - Checkout and loyalty commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/aisle-tui/internal/checkout"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/ui/components"
)

var loyaltySubcommands = []string{"status", "offers", "points"}

// =============================================================================
// CHECKOUT
// =============================================================================

// HandleCheckout places an order for the cart. --dry-run prints the local
// estimate without contacting the payment agent.
func HandleCheckout(ctx context.Context, env *Env) error {
	p := env.Args.Parser("no-loyalty", "reserve", "dry-run")
	shopper := env.App.Config.Shopper

	opts := checkout.Options{
		PaymentMethod: p.FlagOrDefault("pay", shopper.PaymentMethod),
		Coupon:        p.Flag("coupon"),
		ApplyLoyalty:  shopper.ApplyLoyalty && !p.BoolFlag("no-loyalty"),
		Reserve:       p.BoolFlag("reserve"),
		Location:      p.FlagOrDefault("location", shopper.Location),
	}
	if _, err := model.ParsePaymentMethod(opts.PaymentMethod); err != nil {
		return NewValidationErrorWithExample("--pay", opts.PaymentMethod, "unsupported payment method", "--pay paypal")
	}

	if p.BoolFlag("dry-run") {
		if env.App.Store.State().Empty() {
			return checkout.ErrEmptyCart
		}
		pricing := env.App.Checkout.Quote(ctx, opts.Coupon, opts.ApplyLoyalty)
		return env.Out.Emit(pricing, func(w io.Writer) error {
			fmt.Fprintln(w, components.RenderPricing(env.theme(), pricing, env.width(72)))
			env.Out.Note("Estimate only. Place the order with: aisle checkout --pay %s", opts.PaymentMethod)
			return nil
		})
	}

	result, err := env.App.Checkout.Checkout(ctx, opts)
	if err != nil {
		return err
	}

	return env.Out.Emit(result, func(w io.Writer) error {
		fmt.Fprintln(w, SuccessStyle.Render("[OK] Order placed"))
		if o := result.Order; o != nil {
			fmt.Fprintln(w, RenderField("Order", o.OrderID))
			fmt.Fprintln(w, RenderField("Items", fmt.Sprintf("%d", len(o.Items))))
			if o.Pricing.Discount > 0 {
				fmt.Fprintln(w, RenderField("Discount", "-"+model.FormatPrice(o.Pricing.Discount)))
			}
			fmt.Fprintln(w, RenderField("Tax", model.FormatPrice(o.Pricing.Tax)))
			fmt.Fprintln(w, RenderLabel("Total")+PriceStyle.Render(model.FormatPrice(o.Pricing.Total)))
			fmt.Fprintln(w, RenderField("Paid with", string(o.Payment.Method)))
			if o.Loyalty.PointsEarned > 0 {
				fmt.Fprintln(w, RenderField("Points earned", fmt.Sprintf("%d", o.Loyalty.PointsEarned)))
			}
			if o.EstimatedDelivery != "" {
				fmt.Fprintln(w, RenderField("Arrives", o.EstimatedDelivery))
			}
		} else if result.Pricing != nil {
			fmt.Fprintln(w, components.RenderPricing(env.theme(), *result.Pricing, env.width(72)))
		}
		if result.Message != "" {
			env.Out.Note("%s", result.Message)
		}
		return nil
	})
}

// =============================================================================
// LOYALTY
// =============================================================================

// HandleLoyalty shows loyalty status, offers or a points estimate.
func HandleLoyalty(ctx context.Context, env *Env) error {
	p := env.Args.Parser()
	customerID, err := env.App.RequireCustomer()
	if err != nil {
		return err
	}
	client := env.App.Client

	switch p.Subcommand() {
	case "", "status", "show":
		status, err := client.Loyalty(ctx, customerID)
		if err != nil {
			return err
		}
		return env.Out.Emit(status, func(w io.Writer) error {
			fmt.Fprintln(w, components.RenderLoyalty(env.theme(), status, env.width(72)))
			return nil
		})

	case "offers":
		offers, err := client.LoyaltyOffers(ctx, customerID)
		if err != nil {
			return err
		}
		return env.Out.Emit(offers, func(w io.Writer) error {
			fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Offers for %s (%s)", offers.CustomerName, offers.Tier)))
			if len(offers.Offers) == 0 {
				fmt.Fprintln(w, "No offers right now.")
				return nil
			}
			rows := make([][]string, 0, len(offers.Offers))
			for _, o := range offers.Offers {
				reward := o.Discount
				if o.BonusPoints > 0 {
					reward = fmt.Sprintf("+%d pts", o.BonusPoints)
				}
				rows = append(rows, []string{o.Title, o.Description, reward, o.ValidUntil})
			}
			fmt.Fprintln(w, renderTable([]column{
				{title: "Offer", max: 28},
				{title: "Details", max: 44},
				{title: "Reward"},
				{title: "Valid until"},
			}, rows))
			return nil
		})

	case "points", "calc":
		if p.Positional(1) == "" {
			return ErrMissingArgument("amount", "aisle loyalty points 129.99")
		}
		amount, err := parseAmount("amount", p.Positional(1))
		if err != nil {
			return err
		}
		est, err := client.CalculatePoints(ctx, customerID, amount)
		if err != nil {
			return err
		}
		return env.Out.Emit(est, func(w io.Writer) error {
			fmt.Fprintf(w, "A %s purchase earns %s\n",
				model.FormatPrice(est.PurchaseAmount),
				PriceStyle.Render(fmt.Sprintf("%d points", est.TotalPointsEarned)))
			parts := []string{fmt.Sprintf("%d base", est.BasePoints)}
			if est.Multiplier > 1 {
				parts = append(parts, fmt.Sprintf("x%.1f tier", est.Multiplier))
			}
			if est.BonusPoints > 0 {
				parts = append(parts, fmt.Sprintf("+%d bonus", est.BonusPoints))
			}
			fmt.Fprintln(w, DimStyle.Render(strings.Join(parts, ", ")))
			if est.BonusMessage != "" {
				fmt.Fprintln(w, InfoStyle.Render(est.BonusMessage))
			}
			fmt.Fprintln(w, RenderField("New balance", fmt.Sprintf("%d points", est.NewTotalPoints)))
			return nil
		})
	}
	return ErrUnknownSubcommand("loyalty", p.Subcommand(), loyaltySubcommands)
}
