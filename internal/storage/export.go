// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/aisle-tui/internal/model"
)

// ExportMarkdown renders a transcript as Markdown, including the product
// cards and quick replies of assistant messages.
func ExportMarkdown(conv *model.Conversation) string {
	var sb strings.Builder
	sb.WriteString("# " + conv.GetTitle() + "\n\n")
	sb.WriteString("Created: " + conv.CreatedAt.Format(time.RFC3339) + "\n")
	if conv.Channel != "" {
		sb.WriteString("Channel: " + conv.Channel.DisplayName() + "\n")
	}
	sb.WriteString("\n---\n\n")

	for _, msg := range conv.Messages {
		sb.WriteString("**" + msg.Role.DisplayName() + "** (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		for _, card := range msg.Cards {
			fmt.Fprintf(&sb, "\n- **%s** %s", card.Name, model.FormatPrice(card.Price))
			if card.Brand != "" {
				sb.WriteString(" · " + card.Brand)
			}
		}
		if len(msg.Cards) > 0 {
			sb.WriteString("\n")
		}
		if len(msg.QuickReplies) > 0 {
			labels := make([]string, len(msg.QuickReplies))
			for i, qr := range msg.QuickReplies {
				labels[i] = "`" + qr.Text + "`"
			}
			sb.WriteString("\n" + strings.Join(labels, " ") + "\n")
		}
		sb.WriteString("\n---\n\n")
	}
	return sb.String()
}
