// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shop

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/ui/components"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
	"github.com/jeranaias/aisle-tui/internal/util"
)

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// chatRenderer draws the assistant transcript. Markdown replies go through
// glamour; rendered bodies are cached per message and width.
type chatRenderer struct {
	theme    *styles.Theme
	width    int
	markdown *glamour.TermRenderer
	cache    map[string]string
}

func newChatRenderer(theme *styles.Theme) *chatRenderer {
	return &chatRenderer{theme: theme, cache: make(map[string]string)}
}

// setWidth rebuilds the markdown renderer when the panel is resized.
func (r *chatRenderer) setWidth(width int) {
	width = max(width, 20)
	if width == r.width && r.markdown != nil {
		return
	}
	r.width = width
	r.cache = make(map[string]string)

	style := "light"
	if r.theme.IsDark {
		style = "dark"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r.markdown = nil
		return
	}
	r.markdown = md
}

// body renders reply text as markdown, falling back to wrapped text.
func (r *chatRenderer) body(msg *model.Message) string {
	if out, ok := r.cache[msg.ID]; ok {
		return out
	}
	var out string
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(msg.Content); err == nil {
			out = strings.Trim(rendered, "\n")
		}
	}
	if out == "" {
		out = strings.Join(util.WrapWords(msg.Content, r.width), "\n")
	}
	r.cache[msg.ID] = out
	return out
}

// Render draws the whole transcript plus the in-flight message.
func (r *chatRenderer) Render(conv *model.Conversation, pending, spinner string) string {
	var blocks []string
	if conv == nil || len(conv.Messages) == 0 {
		if pending == "" {
			blocks = append(blocks, r.theme.Muted.Render(
				"Ask about products, sizes, deals or your order. Try \"running shoes under $100\"."))
		}
	} else {
		last := conv.LastReply()
		for _, msg := range conv.Messages {
			blocks = append(blocks, r.message(msg, msg == last))
		}
	}
	if pending != "" {
		blocks = append(blocks, r.theme.UserBubble.Render(util.TruncateRunes(pending, 500)))
		blocks = append(blocks, r.theme.ThinkingText.Render(spinner+" thinking"))
	}
	return strings.Join(blocks, "\n\n")
}

// message draws one transcript entry. Only the latest reply numbers its
// cards and quick replies, since those are what the shortcut keys act on.
func (r *chatRenderer) message(msg *model.Message, latest bool) string {
	theme := r.theme
	switch msg.Role {
	case model.RoleUser:
		return theme.UserBubble.Render(msg.Content)
	case model.RoleError:
		return theme.ErrorBubble.Render(styles.StatusIndicators.Error + " " + msg.Content)
	case model.RoleSystem:
		return theme.Muted.Render(msg.Content)
	}

	parts := []string{r.body(msg)}
	for i, card := range msg.Cards {
		row := components.CardFromReply(card).Row(theme, r.width-4)
		if latest && i < 9 {
			row = theme.ShortcutKey.Render(fmt.Sprintf("%d", i+1)) + row
		}
		parts = append(parts, row)
	}
	if msg.Cart != nil && len(msg.Cart.Items) > 0 {
		parts = append(parts, components.CartFromReply(msg.Cart).Render(theme, r.width))
	}
	if msg.Badge != nil {
		parts = append(parts, components.RenderLoyaltyBadge(theme, msg.Badge))
	}
	if latest && len(msg.QuickReplies) > 0 {
		var chips []string
		for i, qr := range msg.QuickReplies {
			if i >= 9 {
				break
			}
			chips = append(chips, theme.QuickReply.Render(fmt.Sprintf("%d %s", i+1, qr.Text)))
		}
		parts = append(parts, strings.Join(chips, " "))
	}
	if msg.Latency > 0 {
		parts = append(parts, theme.Muted.Render(msg.FormatLatency()))
	}
	return strings.Join(parts, "\n")
}
