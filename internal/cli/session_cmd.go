// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Channel switching and saved conversation commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jeranaias/aisle-tui/internal/config"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/session"
	"github.com/jeranaias/aisle-tui/internal/storage"
	"github.com/jeranaias/aisle-tui/internal/util"
)

var conversationSubcommands = []string{"list", "show", "export", "resume", "delete", "clear"}

// errTranscriptsDisabled is returned when conversation storage is off or
// could not be opened.
var errTranscriptsDisabled = NewCommandError("conversations", "open",
	"conversation storage is disabled; enable it with: aisle config set storage.save_conversations true", nil)

// =============================================================================
// CHANNEL
// =============================================================================

// ChannelView is the structured output of channel.
type ChannelView struct {
	Channel model.Channel        `json:"channel" yaml:"channel"`
	Changed bool                 `json:"changed" yaml:"changed"`
	Saved   bool                 `json:"saved" yaml:"saved"`
	Switch  *model.ChannelSwitch `json:"switch,omitempty" yaml:"switch,omitempty"`
}

// HandleChannel shows or switches the shopping channel. --save also makes
// the new channel the configured default.
func HandleChannel(ctx context.Context, env *Env) error {
	p := env.Args.Parser("save")
	sessions := env.App.Sessions

	if p.Positional(0) == "" {
		view := ChannelView{Channel: sessions.Channel()}
		return env.Out.Emit(view, func(w io.Writer) error {
			fmt.Fprintln(w, RenderField("Channel", view.Channel.DisplayName()))
			env.Out.Note("Switch with: aisle channel whatsapp")
			return nil
		})
	}

	ch, err := model.ParseChannel(p.Positional(0))
	if err != nil {
		return NewValidationErrorWithExample("channel", p.Positional(0), "must be web, whatsapp, instore or mobile", "aisle channel instore")
	}
	before := sessions.Channel()
	sw, err := sessions.SwitchChannel(ctx, ch)
	if err != nil {
		return err
	}

	view := ChannelView{Channel: ch, Changed: before != ch, Switch: sw}
	if p.BoolFlag("save") {
		next := config.Global().Clone()
		next.Shopper.Channel = string(ch)
		if err := config.Save(next); err != nil {
			return NewCommandError("channel", "save", "could not write the config file", err)
		}
		config.SetGlobal(next)
		view.Saved = true
	}

	return env.Out.Emit(view, func(w io.Writer) error {
		if !view.Changed {
			fmt.Fprintf(w, "Already on %s\n", ch.DisplayName())
			return nil
		}
		fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("[OK] Switched to"), ch.DisplayName())
		if sw != nil {
			if sw.ContextPreserved {
				fmt.Fprintln(w, RenderField("Carried over", fmt.Sprintf("%d cart items, %d messages", sw.CartItems, sw.Messages)))
			}
			if sw.Message != "" {
				fmt.Fprintln(w, DimStyle.Render(sw.Message))
			}
		}
		if view.Saved {
			env.Out.Note("Saved as the default channel")
		}
		return nil
	})
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// ConversationList is the structured output of conversations list.
type ConversationList struct {
	Count         int                      `json:"count" yaml:"count"`
	Conversations []model.ConversationMeta `json:"conversations" yaml:"conversations"`
}

// ExportResult is the structured output of conversations export.
type ExportResult struct {
	ID    string `json:"id" yaml:"id"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	Bytes int    `json:"bytes" yaml:"bytes"`

	Markdown string `json:"markdown,omitempty" yaml:"markdown,omitempty"`
}

// HandleConversations manages saved assistant transcripts.
func HandleConversations(ctx context.Context, env *Env) error {
	p := env.Args.Parser("yes", "y")
	transcripts := env.App.Transcripts
	if transcripts == nil {
		return errTranscriptsDisabled
	}
	yes := p.BoolFlag("yes") || p.BoolFlag("y")

	switch p.Subcommand() {
	case "", "list", "ls":
		var (
			metas []model.ConversationMeta
			err   error
		)
		if q := p.Flag("search"); q != "" {
			metas, err = transcripts.SearchMessages(q)
		} else {
			metas, err = transcripts.List()
		}
		if err != nil {
			return err
		}
		if metas == nil {
			metas = []model.ConversationMeta{}
		}
		return env.Out.Emit(ConversationList{Count: len(metas), Conversations: metas}, func(w io.Writer) error {
			if len(metas) == 0 {
				fmt.Fprintln(w, "No saved conversations.")
				return nil
			}
			rows := make([][]string, 0, len(metas))
			for i, m := range metas {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					m.Title,
					string(m.Channel),
					strconv.Itoa(m.MessageCount),
					session.FormatDuration(time.Since(m.UpdatedAt)) + " ago",
					m.ID,
				})
			}
			fmt.Fprintln(w, renderTable([]column{
				{title: "#", right: true},
				{title: "Title", max: 40},
				{title: "Channel"},
				{title: "Msgs", right: true},
				{title: "Updated"},
				{title: "ID"},
			}, rows))
			env.Out.Note("Open one with: aisle conversations show 1")
			return nil
		})

	case "show":
		conv, err := loadConversation(env, p.Positional(1))
		if err != nil {
			return err
		}
		return env.Out.Emit(conv, func(w io.Writer) error {
			fmt.Fprintln(w, newReplyPrinter(env, w).body(storage.ExportMarkdown(conv)))
			return nil
		})

	case "export":
		conv, err := loadConversation(env, p.Positional(1))
		if err != nil {
			return err
		}
		md := storage.ExportMarkdown(conv)
		out := p.Flag("out")
		if out == "" {
			if env.Out.Structured() {
				return env.Out.Emit(ExportResult{ID: conv.ID, Bytes: len(md), Markdown: md}, nil)
			}
			// Raw markdown to stdout, for piping.
			_, err := io.WriteString(env.Out.Out, md)
			return err
		}
		path, err := ValidateOutputPath(out)
		if err != nil {
			return err
		}
		if err := util.AtomicWriteFile(path, []byte(md), 0600); err != nil {
			return NewCommandError("conversations", "export", "could not write "+path, err)
		}
		res := ExportResult{ID: conv.ID, Path: path, Bytes: len(md)}
		return env.Out.Emit(res, func(w io.Writer) error {
			fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("[OK] Exported to"), path)
			return nil
		})

	case "resume":
		conv, err := loadConversation(env, p.Positional(1))
		if err != nil {
			return err
		}
		if env.Out.Structured() {
			return NewValidationError("--json", "", "resume is interactive")
		}
		if !CanPrompt() {
			return &TTYRequiredError{Operation: "resume a conversation"}
		}
		a := env.App.Assistant
		if err := a.Open(ctx); err != nil {
			return err
		}
		defer a.Close()
		a.Resume(conv)
		env.Out.Note("Resuming %q (%d messages)", conv.GetTitle(), len(conv.Messages))
		return runChatREPL(ctx, env)

	case "delete", "rm":
		conv, err := loadConversation(env, p.Positional(1))
		if err != nil {
			return err
		}
		ok, err := RequireConfirmation(env.Out, "delete this conversation", ConfirmationOptions{
			Yes:        yes,
			Structured: env.Out.Structured(),
			Details: map[string]string{
				"Title":    conv.GetTitle(),
				"Messages": strconv.Itoa(len(conv.Messages)),
			},
		})
		if err != nil {
			return err
		}
		if !ok {
			ShowCancellationMessage(env.Out)
			return nil
		}
		if err := transcripts.Delete(conv.ID); err != nil {
			return err
		}
		return env.Out.Emit(map[string]string{"deleted": conv.ID}, func(w io.Writer) error {
			fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("[OK] Deleted"), conv.GetTitle())
			return nil
		})

	case "clear":
		metas, err := transcripts.List()
		if err != nil {
			return err
		}
		ok, err := RequireConfirmation(env.Out, "delete every saved conversation", ConfirmationOptions{
			Yes:        yes,
			Structured: env.Out.Structured(),
			Details:    map[string]string{"Conversations": strconv.Itoa(len(metas))},
		})
		if err != nil {
			return err
		}
		if !ok {
			ShowCancellationMessage(env.Out)
			return nil
		}
		if err := transcripts.Clear(); err != nil {
			return err
		}
		return env.Out.Emit(map[string]int{"deleted": len(metas)}, func(w io.Writer) error {
			fmt.Fprintf(w, "%s %d conversations\n", SuccessStyle.Render("[OK] Deleted"), len(metas))
			return nil
		})
	}
	return ErrUnknownSubcommand("conversations", p.Subcommand(), conversationSubcommands)
}

// loadConversation resolves ref as a list number (1 = most recent) or an id.
func loadConversation(env *Env, ref string) (*model.Conversation, error) {
	if ref == "" {
		return nil, ErrMissingArgument("conversation", "aisle conversations show 1")
	}
	var (
		conv *model.Conversation
		err  error
	)
	if n, convErr := strconv.Atoi(ref); convErr == nil {
		if n < 1 {
			return nil, NewValidationError("conversation", ref, "list numbers start at 1")
		}
		conv, err = env.App.Transcripts.LoadByIndex(n - 1)
	} else {
		conv, err = env.App.Transcripts.Load(ref)
	}
	switch {
	case errors.Is(err, storage.ErrConversationNotFound):
		return nil, NewNotFoundError("conversation", ref)
	case errors.Is(err, storage.ErrInvalidID):
		return nil, NewValidationError("conversation", ref, "not a conversation id or list number")
	}
	return conv, err
}
