// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - The "aisle chat" command: a one-shot question or a line REPL
// with history, talking to the shopping assistant.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/aisle-tui/internal/assistant"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/util"
)

// =============================================================================
// INPUT WITH HISTORY
// =============================================================================

// ChatCLI wraps liner for readline-style input with persisted history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor that keeps history in historyFile.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line. Non-empty input is added to history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	var b strings.Builder
	if _, err := c.line.WriteHistory(&b); err != nil {
		return
	}
	_ = util.AtomicWriteFile(c.historyFile, []byte(b.String()), 0600)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPLY RENDERING
// =============================================================================

// replyPrinter writes assistant replies as markdown followed by cards
// and numbered quick replies.
type replyPrinter struct {
	w        io.Writer
	markdown *glamour.TermRenderer
	width    int
}

func newReplyPrinter(env *Env, w io.Writer) *replyPrinter {
	width := env.width(100)
	p := &replyPrinter{w: w, width: width}
	if !ColorsEnabled() {
		return p
	}
	style := "light"
	if env.theme().IsDark {
		style = "dark"
	}
	if md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	); err == nil {
		p.markdown = md
	}
	return p
}

func (p *replyPrinter) body(content string) string {
	if p.markdown != nil {
		if out, err := p.markdown.Render(content); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return WrapText(content, p.width)
}

// Print renders msg. Cards are numbered from 1 for /add and /save.
func (p *replyPrinter) Print(msg *model.Message) {
	fmt.Fprintln(p.w, AssistantStyle.Render("Assistant"))
	if strings.TrimSpace(msg.Content) != "" {
		fmt.Fprintln(p.w, p.body(msg.Content))
	}

	if len(msg.Cards) > 0 {
		rows := make([][]string, 0, len(msg.Cards))
		for i, c := range msg.Cards {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				c.Name,
				model.FormatPrice(c.Price),
				ratingText(c.Rating),
				stockText(c.InStock),
				c.Reason,
			})
		}
		fmt.Fprintln(p.w, renderTable([]column{
			{title: "#", right: true},
			{title: "Product", max: 34},
			{title: "Price", right: true},
			{title: "Rating", right: true},
			{title: "Stock"},
			{title: "Why", max: 30},
		}, rows))
	}

	if cart := msg.Cart; cart != nil && len(cart.Items) > 0 {
		fmt.Fprintln(p.w, RenderField("Cart", fmt.Sprintf("%d items, %s", cart.Count, model.FormatPrice(cart.Subtotal))))
	}
	if b := msg.Badge; b != nil {
		fmt.Fprintln(p.w, RenderField("Loyalty", fmt.Sprintf("%s, %d points", b.Tier, b.Points)))
	}

	if len(msg.QuickReplies) > 0 {
		parts := make([]string, 0, len(msg.QuickReplies))
		for i, qr := range msg.QuickReplies {
			parts = append(parts, fmt.Sprintf("[%d] %s", i+1, qr.Text))
		}
		fmt.Fprintln(p.w, DimStyle.Render(strings.Join(parts, "  ")))
	}
	fmt.Fprintln(p.w)
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat sends one message when given, otherwise runs the REPL.
func HandleChat(ctx context.Context, env *Env) error {
	p := env.Args.Parser("smart", "no-loyalty")
	a := env.App.Assistant

	if p.BoolFlag("smart") {
		return handleSmartChat(ctx, env, p)
	}

	if err := a.Open(ctx); err != nil {
		return err
	}
	defer a.Close()

	if message := strings.TrimSpace(JoinPositionalArgs(p, 0)); message != "" {
		reply, err := a.Send(ctx, message)
		if err != nil {
			return err
		}
		return env.Out.Emit(reply, func(w io.Writer) error {
			newReplyPrinter(env, w).Print(reply)
			return nil
		})
	}

	if env.Out.Structured() {
		return NewValidationErrorWithExample("message", "", "--json and --yaml need a message", `aisle chat "gift ideas under $50" --json`)
	}
	if !CanPrompt() {
		return &TTYRequiredError{Operation: "chat"}
	}
	return runChatREPL(ctx, env)
}

// handleSmartChat sends one turn with the shopper's budget, category,
// coupon and cart so the orchestrator can act on them directly.
func handleSmartChat(ctx context.Context, env *Env, p *ArgParser) error {
	message := strings.TrimSpace(JoinPositionalArgs(p, 0))
	if message == "" {
		return NewValidationErrorWithExample("message", "", "--smart needs a message", `aisle chat --smart --budget 80 "a rain jacket"`)
	}
	budget, err := p.FlagFloat("budget")
	if err != nil {
		return err
	}

	shopper := env.App.Config.Shopper
	req := model.SmartChatRequest{
		Message:       message,
		CartItems:     env.App.Store.State().CartItems(),
		Location:      p.FlagOrDefault("location", shopper.Location),
		Budget:        budget,
		Category:      p.Flag("category"),
		PaymentMethod: p.FlagOrDefault("pay", shopper.PaymentMethod),
		ApplyLoyalty:  shopper.ApplyLoyalty && !p.BoolFlag("no-loyalty"),
		CouponCode:    p.Flag("coupon"),
	}
	if id := env.App.CustomerID(); id > 0 {
		req.CustomerID = &id
	}
	sessionID, err := env.App.Sessions.Ensure(ctx)
	if err != nil {
		return err
	}
	req.SessionID = sessionID

	result, err := env.App.Client.SmartChat(ctx, req)
	if err != nil {
		return err
	}
	env.App.Logger.Debug("smart chat answered", zap.String("intent", result.Intent))

	return env.Out.Emit(result, func(w io.Writer) error {
		printSmartResult(newReplyPrinter(env, w), result)
		return nil
	})
}

// printSmartResult renders a smart chat answer with its recommendations
// and numbered suggestions.
func printSmartResult(p *replyPrinter, r *model.SmartChatResult) {
	fmt.Fprintln(p.w, AssistantStyle.Render("Assistant"))
	if strings.TrimSpace(r.Message) != "" {
		fmt.Fprintln(p.w, p.body(r.Message))
	}
	if r.Intent != "" {
		fmt.Fprintln(p.w, RenderField("Intent", r.Intent))
	}
	if len(r.Recommendations) > 0 {
		rows := make([][]string, 0, len(r.Recommendations))
		for _, rec := range r.Recommendations {
			rows = append(rows, []string{
				strconv.Itoa(rec.ProductID),
				rec.Name,
				model.FormatPrice(rec.Price),
				ratingText(rec.Rating),
				rec.Category,
			})
		}
		fmt.Fprintln(p.w, renderTable([]column{
			{title: "ID", right: true},
			{title: "Product", max: 34},
			{title: "Price", right: true},
			{title: "Rating", right: true},
			{title: "Category"},
		}, rows))
	}
	if len(r.Suggestions) > 0 {
		parts := make([]string, 0, len(r.Suggestions))
		for i, s := range r.Suggestions {
			parts = append(parts, fmt.Sprintf("[%d] %s", i+1, s))
		}
		fmt.Fprintln(p.w, DimStyle.Render(strings.Join(parts, "  ")))
	}
	fmt.Fprintln(p.w)
}

// chatSession is the state of one REPL run.
type chatSession struct {
	env     *Env
	input   *ChatCLI
	printer *replyPrinter
	last    *model.Message
}

func runChatREPL(ctx context.Context, env *Env) error {
	s := &chatSession{
		env:     env,
		input:   NewChatCLI(env.App.Config.HistoryPath()),
		printer: newReplyPrinter(env, env.Out.Out),
	}
	defer s.input.Close()

	if !env.Out.Quiet {
		s.printWelcome()
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := s.input.ReadInput(AssistantStyle.Render("you> "))
		if err != nil {
			// Ctrl+C, Ctrl+D and closed input all end the session.
			fmt.Fprintln(env.Out.Out)
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := s.handleSlashCommand(input)
			if err != nil {
				fmt.Fprintf(env.Out.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				return nil
			}
			continue
		}

		// A bare number picks a quick reply of the last answer.
		if n, err := strconv.Atoi(input); err == nil && s.last != nil && n >= 1 && n <= len(s.last.QuickReplies) {
			s.send(ctx, func(ctx context.Context) (*model.Message, error) {
				return env.App.Assistant.QuickReply(ctx, s.last.QuickReplies[n-1])
			})
			continue
		}

		s.send(ctx, func(ctx context.Context) (*model.Message, error) {
			return env.App.Assistant.Send(ctx, input)
		})
	}
}

// send runs one turn and prints the reply or the explained error.
func (s *chatSession) send(ctx context.Context, turn func(context.Context) (*model.Message, error)) {
	fmt.Fprintln(s.env.Out.Err, DimStyle.Render("..."))
	reply, err := turn(ctx)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyMessage) {
			return
		}
		DisplayError(&Output{Out: s.env.Out.Out, Err: s.env.Out.Err, Command: "chat"}, err)
		return
	}
	s.last = reply
	s.printer.Print(reply)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs a REPL command. It returns false to exit.
func (s *chatSession) handleSlashCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	a := s.env.App.Assistant
	w := s.env.Out.Out

	switch strings.ToLower(parts[0]) {
	case "/help", "/h", "/?", "/":
		s.printHelp()

	case "/new", "/clear", "/c":
		a.Reset()
		s.last = nil
		fmt.Fprintln(w, InfoStyle.Render("[New conversation]"))

	case "/cart":
		st := s.env.App.Store.State()
		if st.Empty() {
			fmt.Fprintln(w, "Cart is empty.")
			break
		}
		for _, l := range st.Cart {
			fmt.Fprintf(w, "  %d x %s  %s\n", l.Quantity, l.Name, model.FormatPrice(l.LineTotal()))
		}
		fmt.Fprintln(w, RenderLabel("Subtotal")+PriceStyle.Render(model.FormatPrice(st.Subtotal)))

	case "/add", "/save":
		if len(parts) < 2 {
			return true, fmt.Errorf("usage: %s <card number>", parts[0])
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return true, fmt.Errorf("card number must be a number: %q", parts[1])
		}
		card, ok := a.CardAt(n - 1)
		if !ok {
			return true, fmt.Errorf("no card %d in the last answer", n)
		}
		if parts[0] == "/save" {
			if _, err := a.SaveCardToWishlist(card); err != nil {
				return true, err
			}
			fmt.Fprintln(w, SuccessStyle.Render("[OK] Saved "+card.Name))
			break
		}
		qty := 1
		if len(parts) > 2 {
			if qty, err = ParseQuantity(parts[2], false); err != nil {
				return true, err
			}
		}
		st, err := a.AddCardToCart(card, qty)
		if err != nil {
			return true, err
		}
		fmt.Fprintf(w, "%s %d items in cart\n", SuccessStyle.Render("[OK] Added "+card.Name+";"), st.ItemCount)

	case "/status", "/s":
		st := s.env.App.Sessions.GetStatus()
		conv := a.Conversation()
		fmt.Fprintln(w, RenderField("Session", orDash(st.SessionID)))
		fmt.Fprintln(w, RenderField("Channel", string(st.Channel)))
		fmt.Fprintln(w, RenderField("Messages", strconv.Itoa(len(conv.Messages))))

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", parts[0])
	}
	return true, nil
}

func (s *chatSession) printWelcome() {
	w := s.env.Out.Out
	st := s.env.App.Sessions.GetStatus()
	fmt.Fprintln(w, TitleStyle.Render("aisle assistant"))
	fmt.Fprintln(w, RenderSeparator(30))
	fmt.Fprintln(w, RenderField("Channel", string(st.Channel)))
	if id := s.env.App.CustomerID(); id > 0 {
		fmt.Fprintln(w, RenderField("Customer", strconv.Itoa(id)))
	}
	fmt.Fprintln(w, DimStyle.Render("Ask for anything. Commands: /help, /quit"))
	fmt.Fprintln(w)
}

func (s *chatSession) printHelp() {
	w := s.env.Out.Out
	commands := []struct{ cmd, desc string }{
		{"/help", "Show this help"},
		{"/new", "Start a new conversation"},
		{"/cart", "Show the cart"},
		{"/add N [qty]", "Add card N of the last answer to the cart"},
		{"/save N", "Save card N to the wishlist"},
		{"/status", "Show the session"},
		{"/quit", "Exit chat"},
		{"1-9", "Pick a suggested reply"},
	}
	fmt.Fprintln(w, SectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(w, "  %s  %s\n", LabelStyle.Render(c.cmd), DimStyle.Render(c.desc))
	}
	fmt.Fprintln(w)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
