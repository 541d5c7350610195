// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - The "aisle status" command.
//
// Command: status
// Aliases: s
//
// Sections:
//	Backend:  URL, health, agent components and version
//	Session:  Id, channel, customer, idle and remaining time
//	Cart:     Lines, items, subtotal, wishlist size
//	Catalog:  Offline catalog size and last full sync
//
// An unreachable backend is reported, not returned as an error, so the
// local sections are still shown.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/catalog"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/session"
)

// =============================================================================
// STATUS DATA
// =============================================================================

// StatusData is the structured output of status.
type StatusData struct {
	Backend StatusBackendInfo `json:"backend" yaml:"backend"`
	Session StatusSessionInfo `json:"session" yaml:"session"`
	Cart    StatusCartInfo    `json:"cart" yaml:"cart"`
	Catalog catalog.CacheInfo `json:"catalog" yaml:"catalog"`
}

// StatusBackendInfo describes the backend.
type StatusBackendInfo struct {
	URL        string            `json:"url" yaml:"url"`
	Reachable  bool              `json:"reachable" yaml:"reachable"`
	Status     string            `json:"status" yaml:"status"`
	Version    string            `json:"version,omitempty" yaml:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Services   map[string]string `json:"services,omitempty" yaml:"services,omitempty"`
	Components map[string]any    `json:"components,omitempty" yaml:"components,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// StatusSessionInfo describes the backend chat session.
type StatusSessionInfo struct {
	ID         string        `json:"id,omitempty" yaml:"id,omitempty"`
	Channel    model.Channel `json:"channel" yaml:"channel"`
	CustomerID int           `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
	Active     bool          `json:"active" yaml:"active"`
	IdleSecs   int           `json:"idle_secs" yaml:"idle_secs"`
	LeftSecs   int           `json:"remaining_secs" yaml:"remaining_secs"`
}

// StatusCartInfo summarizes the local cart.
type StatusCartInfo struct {
	Lines    int     `json:"lines" yaml:"lines"`
	Items    int     `json:"items" yaml:"items"`
	Subtotal float64 `json:"subtotal" yaml:"subtotal"`
	Wishlist int     `json:"wishlist" yaml:"wishlist"`
}

// =============================================================================
// HANDLE STATUS
// =============================================================================

// HandleStatus reports backend health next to the local session, cart and
// offline catalog.
func HandleStatus(ctx context.Context, env *Env) error {
	data := StatusData{
		Backend: collectBackendInfo(ctx, env),
		Session: collectSessionInfo(env.App.Sessions.GetStatus()),
		Cart:    collectCartInfo(env),
	}
	info, err := env.App.Catalog.CacheInfo(ctx)
	if err != nil {
		env.Out.Warn("offline catalog: %v", err)
	}
	data.Catalog = info

	return env.Out.Emit(data, func(w io.Writer) error {
		fmt.Fprintln(w, TitleStyle.Render("aisle status"))
		fmt.Fprintln(w, RenderSeparator(41))

		fmt.Fprintln(w, SectionStyle.Render("Backend"))
		fmt.Fprint(w, formatBackendStatus(data.Backend))

		fmt.Fprintln(w, SectionStyle.Render("Session"))
		fmt.Fprint(w, formatSessionStatus(data.Session))

		fmt.Fprintln(w, SectionStyle.Render("Cart"))
		fmt.Fprintln(w, RenderField("Items", fmt.Sprintf("%d (%d lines)", data.Cart.Items, data.Cart.Lines)))
		fmt.Fprintln(w, RenderLabel("Subtotal")+PriceStyle.Render(model.FormatPrice(data.Cart.Subtotal)))
		fmt.Fprintln(w, RenderField("Wishlist", strconv.Itoa(data.Cart.Wishlist)))

		fmt.Fprintln(w, SectionStyle.Render("Catalog"))
		fmt.Fprint(w, formatCatalogStatus(data.Catalog))
		return nil
	})
}

// collectBackendInfo queries health and component status concurrently.
// Component status is optional; health decides reachability.
func collectBackendInfo(ctx context.Context, env *Env) StatusBackendInfo {
	info := StatusBackendInfo{URL: env.App.Client.BaseURL(), Status: "unknown"}

	var (
		health *model.Health
		system *api.SystemStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		health, err = env.App.Client.Health(gctx)
		return err
	})
	g.Go(func() error {
		s, err := env.App.Client.SystemStatus(gctx)
		if err != nil {
			env.App.Logger.Debug("system status unavailable", zap.Error(err))
			return nil
		}
		system = s
		return nil
	})
	if err := g.Wait(); err != nil {
		info.Status = "down"
		info.Error = err.Error()
		return info
	}

	info.Reachable = true
	info.Status = health.Status
	info.Services = health.Services
	if system != nil {
		if system.Status != "" {
			info.Status = system.Status
		}
		info.Version = system.Version
		info.Uptime = system.Uptime
		info.Components = system.Components
	}
	return info
}

func collectSessionInfo(st session.Status) StatusSessionInfo {
	return StatusSessionInfo{
		ID:         st.SessionID,
		Channel:    st.Channel,
		CustomerID: st.CustomerID,
		Active:     st.SessionID != "" && !st.IsExpired,
		IdleSecs:   int(st.IdleTime / time.Second),
		LeftSecs:   int(st.RemainingTime / time.Second),
	}
}

func collectCartInfo(env *Env) StatusCartInfo {
	s := env.App.Store.State()
	return StatusCartInfo{
		Lines:    s.LineCount,
		Items:    s.ItemCount,
		Subtotal: s.Subtotal,
		Wishlist: len(s.Wishlist),
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

func formatBackendStatus(b StatusBackendInfo) string {
	out := RenderField("URL", b.URL) + "\n"
	out += RenderLabel("Health") + RenderStatus(b.Status) + "\n"
	if b.Error != "" {
		out += RenderField("Error", ErrorStyle.Render(b.Error)) + "\n"
		return out
	}
	if b.Version != "" {
		out += RenderField("Version", b.Version) + "\n"
	}
	if b.Uptime != "" {
		out += RenderField("Uptime", b.Uptime) + "\n"
	}
	names := make([]string, 0, len(b.Services))
	for name := range b.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		state := b.Services[name]
		out += RenderLabel(name) + RenderStatus(state) + "\n"
	}
	return out
}

func formatSessionStatus(s StatusSessionInfo) string {
	out := RenderField("Channel", s.Channel.DisplayName()) + "\n"
	if s.CustomerID > 0 {
		out += RenderField("Customer", strconv.Itoa(s.CustomerID)) + "\n"
	} else {
		out += RenderField("Customer", DimStyle.Render("guest")) + "\n"
	}
	if !s.Active {
		return out + RenderField("Session", DimStyle.Render("none (created on first request)")) + "\n"
	}
	out += RenderField("Session", s.ID) + "\n"
	out += RenderField("Idle", session.FormatDuration(time.Duration(s.IdleSecs)*time.Second)) + "\n"
	out += RenderField("Expires in", session.FormatDuration(time.Duration(s.LeftSecs)*time.Second)) + "\n"
	return out
}

func formatCatalogStatus(c catalog.CacheInfo) string {
	if !c.Enabled {
		return RenderField("Offline", DimStyle.Render("disabled")) + "\n"
	}
	out := RenderField("Cached", fmt.Sprintf("%d products", c.Products)) + "\n"
	if c.LastSync.IsZero() {
		return out + RenderField("Last sync", DimStyle.Render("never")) + "\n"
	}
	return out + RenderField("Last sync", session.FormatDuration(time.Since(c.LastSync))+" ago") + "\n"
}
