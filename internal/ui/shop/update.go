// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/checkout"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/store"
	"github.com/jeranaias/aisle-tui/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case HomeMsg:
		return m.handleHome(msg)

	case SearchMsg:
		return m.handleSearch(msg)

	case StateMsg:
		return m.handleState(msg)

	case storeClosedMsg:
		// Nothing more will arrive; stop re-arming the subscription.
		return m, nil

	case AssistantOpenedMsg:
		if msg.Err != nil {
			if api.IsOffline(msg.Err) {
				m.offline = true
			}
			return m, m.notify(components.ToastKindWarning, "Assistant unavailable: "+components.ErrorToastText(msg.Err))
		}
		return m, nil

	case ReplyMsg:
		return m.handleReply(msg)

	case QuoteMsg:
		p := msg.Pricing
		m.quote = &p
		return m, nil

	case CheckoutMsg:
		return m.handleCheckout(msg)

	case components.ToastTickMsg:
		if m.toasts.Tick() {
			return m, components.ToastTickCmd()
		}
		m.ticking = false
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.waiting {
			m.refreshChat()
		}
		return m, cmd
	}

	// Cursor blink and other component messages.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
	case focusCoupon:
		m.coupon, cmd = m.coupon.Update(msg)
	case focusChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// busy reports whether a spinner should be animating.
func (m Model) busy() bool {
	return m.loading || m.waiting || m.placing
}

// notify shows a toast, starting the tick loop if it is not running.
func (m *Model) notify(kind components.ToastKind, text string) tea.Cmd {
	m.toasts.Add(kind, text)
	if m.ticking {
		return nil
	}
	m.ticking = true
	return components.ToastTickCmd()
}

// dispatch applies a store action and shows the result immediately. The
// subscription delivers the same state again, which is harmless.
func (m *Model) dispatch(a store.Action) {
	m.setState(m.store.Dispatch(a))
}

func (m *Model) setState(st store.State) {
	m.state = st
	m.marks.state = st
	m.cartCursor = clampCursor(m.cartCursor, len(st.Cart))
	m.wishCursor = clampCursor(m.wishCursor, len(st.Wishlist))
}

func clampCursor(c, n int) int {
	if c >= n {
		c = n - 1
	}
	return max(c, 0)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancelChat != nil {
		m.cancelChat()
		m.cancelChat = nil
	}
	m.unsub()
	return m, tea.Quit
}

// =============================================================================
// RESULTS
// =============================================================================

func (m Model) handleHome(msg HomeMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.Err != nil {
		m.loadErr = msg.Err
		m.logger.Warn("storefront load failed", zap.Error(msg.Err))
		return m, m.notify(components.ToastKindError, components.ErrorToastText(msg.Err))
	}
	m.loadErr = nil

	h := msg.Home
	m.filters = h.Filters
	m.loyalty = h.Loyalty
	m.offline = h.Products.Offline
	m.query = model.SearchQuery{SortBy: model.SortRelevance}
	m.search.SetValue("")
	m.catIndex, m.sortIndex = 0, 0

	cmds := []tea.Cmd{m.products.SetItems(productItems(h.Products.Products))}
	if m.offline {
		cmds = append(cmds, m.notify(components.ToastKindWarning, "Store is offline. Showing the saved catalog."))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSearch(msg SearchMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.searchSeq {
		return m, nil
	}
	m.loading = false
	if msg.Err != nil {
		return m, m.notify(components.ToastKindError, components.ErrorToastText(msg.Err))
	}
	m.offline = msg.Result.Offline
	m.products.ResetSelected()
	cmd := m.products.SetItems(productItems(msg.Result.Products))
	if n := len(msg.Result.Products); n == 0 {
		return m, tea.Batch(cmd, m.notify(components.ToastKindStatus, "No products match."))
	}
	return m, cmd
}

func (m Model) handleState(msg StateMsg) (tea.Model, tea.Cmd) {
	prev := m.state
	m.setState(msg.State)

	cmds := []tea.Cmd{waitForState(m.sub)}
	if m.tab == TabCheckout && (prev.SubtotalCents != msg.State.SubtotalCents || prev.CustomerID != msg.State.CustomerID) {
		cmds = append(cmds, m.quoteCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	m.waiting = false
	m.pending = ""
	if m.cancelChat != nil {
		m.cancelChat()
		m.cancelChat = nil
	}
	m.transcript = m.assistant.Conversation()
	m.refreshChat()

	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return m, m.notify(components.ToastKindStatus, "Request cancelled.")
		}
		if api.IsOffline(msg.Err) {
			m.offline = true
		}
		return m, m.notify(components.ToastKindError, components.ErrorToastText(msg.Err))
	}
	return m, nil
}

func (m Model) handleCheckout(msg CheckoutMsg) (tea.Model, tea.Cmd) {
	m.placing = false
	m.order = msg.Result
	m.orderErr = msg.Err
	if msg.Err != nil {
		return m, m.notify(components.ToastKindError, components.ErrorToastText(msg.Err))
	}

	m.coupon.SetValue("")
	m.useLoyalty = false
	m.reserve = false
	m.quote = nil
	text := "Order placed."
	if msg.Result != nil && msg.Result.Order != nil {
		text = fmt.Sprintf("Order %s placed.", msg.Result.Order.OrderID)
	}
	return m, m.notify(components.ToastKindSuccess, text)
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.focus {
	case focusSearch:
		return m.updateSearch(msg)
	case focusCoupon:
		return m.updateCoupon(msg)
	case focusChat:
		return m.updateChat(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Assistant):
		return m.toggleAssistant()
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % tabCount)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.tab + tabCount - 1) % tabCount)
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.loadHomeCmd(), m.spinner.Tick)
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.DismissNewest()
		return m, nil
	}

	switch m.tab {
	case TabCatalog:
		return m.updateCatalog(msg)
	case TabCart:
		return m.updateCart(msg)
	case TabWishlist:
		return m.updateWishlist(msg)
	default:
		return m.updateCheckout(msg)
	}
}

func (m Model) switchTab(t Tab) (tea.Model, tea.Cmd) {
	m.tab = t
	m.detail = nil
	if t == TabCheckout {
		if m.order != nil && m.orderErr == nil {
			m.order = nil
		}
		return m, m.quoteCmd()
	}
	return m, nil
}

// =============================================================================
// CATALOG
// =============================================================================

func (m Model) selectedProduct() (model.Product, bool) {
	it, ok := m.products.SelectedItem().(productItem)
	if !ok {
		return model.Product{}, false
	}
	return it.product, true
}

func (m Model) runSearch() (Model, tea.Cmd) {
	m.searchSeq++
	m.loading = true
	return m, tea.Batch(m.searchCmd(m.query, m.searchSeq), m.spinner.Tick)
}

func (m Model) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail != nil {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.detail = nil
			return m, nil
		case key.Matches(msg, m.keys.Add):
			return m.addToCart(*m.detail)
		case key.Matches(msg, m.keys.Save):
			return m.toggleWishlist(*m.detail)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Category):
		var cats []string
		if m.filters != nil {
			cats = m.filters.Categories
		}
		m.catIndex = (m.catIndex + 1) % (len(cats) + 1)
		m.query.Category = ""
		if m.catIndex > 0 {
			m.query.Category = cats[m.catIndex-1]
		}
		return m.runSearch()

	case key.Matches(msg, m.keys.Sort):
		m.sortIndex = (m.sortIndex + 1) % len(sortOrders)
		m.query.SortBy = sortOrders[m.sortIndex]
		return m.runSearch()

	case key.Matches(msg, m.keys.InStock):
		m.query.InStockOnly = !m.query.InStockOnly
		return m.runSearch()

	case key.Matches(msg, m.keys.Back):
		if m.query.Query == "" && m.query.Category == "" && !m.query.InStockOnly && m.sortIndex == 0 {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.loadHomeCmd(), m.spinner.Tick)

	case key.Matches(msg, m.keys.Open):
		if p, ok := m.selectedProduct(); ok {
			m.detail = &p
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		if p, ok := m.selectedProduct(); ok {
			return m.addToCart(p)
		}
		return m, nil

	case key.Matches(msg, m.keys.Save):
		if p, ok := m.selectedProduct(); ok {
			return m.toggleWishlist(p)
		}
		return m, nil

	case key.Matches(msg, m.keys.Checkout):
		return m.switchTab(TabCheckout)
	}

	var cmd tea.Cmd
	m.products, cmd = m.products.Update(msg)
	return m, cmd
}

func (m Model) addToCart(p model.Product) (tea.Model, tea.Cmd) {
	if !p.Available() {
		return m, m.notify(components.ToastKindWarning, p.Name+" is out of stock.")
	}
	m.dispatch(store.AddToCart{Product: p, Quantity: 1})
	line, _ := m.state.CartLine(p.ID)
	return m, m.notify(components.ToastKindSuccess, fmt.Sprintf("Added %s (%d in cart).", p.Name, line.Quantity))
}

func (m Model) toggleWishlist(p model.Product) (tea.Model, tea.Cmd) {
	saved := m.state.InWishlist(p.ID)
	m.dispatch(store.ToggleWishlist{Product: p})
	if saved {
		return m, m.notify(components.ToastKindStatus, "Removed "+p.Name+" from wishlist.")
	}
	return m, m.notify(components.ToastKindSuccess, "Saved "+p.Name+" to wishlist.")
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.focus = focusMain
		m.search.Blur()
		m.query.Query = strings.TrimSpace(m.search.Value())
		return m.runSearch()
	case tea.KeyEsc:
		m.focus = focusMain
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// =============================================================================
// CART AND WISHLIST
// =============================================================================

func (m Model) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cart := m.state.Cart
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cartCursor = clampCursor(m.cartCursor-1, len(cart))
	case key.Matches(msg, m.keys.Down):
		m.cartCursor = clampCursor(m.cartCursor+1, len(cart))
	case key.Matches(msg, m.keys.Checkout), key.Matches(msg, m.keys.Open):
		return m.switchTab(TabCheckout)
	case key.Matches(msg, m.keys.Clear):
		if len(cart) > 0 {
			m.dispatch(store.ClearCart{})
			return m, m.notify(components.ToastKindStatus, "Cart cleared.")
		}
	}
	if len(cart) == 0 {
		return m, nil
	}

	line := cart[m.cartCursor]
	switch {
	case key.Matches(msg, m.keys.Inc):
		m.dispatch(store.SetQuantity{ProductID: line.ProductID, Quantity: line.Quantity + 1})
	case key.Matches(msg, m.keys.Dec):
		m.dispatch(store.SetQuantity{ProductID: line.ProductID, Quantity: line.Quantity - 1})
	case key.Matches(msg, m.keys.Remove):
		m.dispatch(store.RemoveFromCart{ProductID: line.ProductID})
		return m, m.notify(components.ToastKindStatus, "Removed "+line.Name+".")
	case key.Matches(msg, m.keys.Save):
		m.dispatch(store.AddToWishlist{Product: productFromLine(line)})
		m.dispatch(store.RemoveFromCart{ProductID: line.ProductID})
		return m, m.notify(components.ToastKindStatus, "Saved "+line.Name+" for later.")
	}
	return m, nil
}

// productFromLine rebuilds enough of a product to save a cart line.
func productFromLine(l model.CartLine) model.Product {
	return model.Product{
		ID:       l.ProductID,
		Name:     l.Name,
		Price:    l.Price,
		Brand:    l.Brand,
		Category: l.Category,
		Image:    l.Image,
	}
}

func (m Model) updateWishlist(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	saved := m.state.Wishlist
	switch {
	case key.Matches(msg, m.keys.Up):
		m.wishCursor = clampCursor(m.wishCursor-1, len(saved))
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.wishCursor = clampCursor(m.wishCursor+1, len(saved))
		return m, nil
	}
	if len(saved) == 0 {
		return m, nil
	}

	item := saved[m.wishCursor]
	switch {
	case key.Matches(msg, m.keys.Move), key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Add):
		if !item.Available() {
			return m, m.notify(components.ToastKindWarning, item.Name+" is out of stock.")
		}
		m.dispatch(store.MoveToCart{ProductID: item.ID})
		return m, m.notify(components.ToastKindSuccess, "Moved "+item.Name+" to cart.")
	case key.Matches(msg, m.keys.Remove):
		m.dispatch(store.RemoveFromWishlist{ProductID: item.ID})
		return m, m.notify(components.ToastKindStatus, "Removed "+item.Name+" from wishlist.")
	}
	return m, nil
}

// =============================================================================
// CHECKOUT
// =============================================================================

func (m Model) updateCheckout(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.placing {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.switchTab(TabCart)
	case key.Matches(msg, m.keys.Payment):
		m.payIndex = (m.payIndex + 1) % len(model.PaymentMethods())
	case key.Matches(msg, m.keys.Coupon):
		m.focus = focusCoupon
		m.coupon.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Loyalty):
		if m.state.CustomerID == 0 {
			return m, m.notify(components.ToastKindWarning, "Loyalty points need a customer id.")
		}
		m.useLoyalty = !m.useLoyalty
		return m, m.quoteCmd()
	case key.Matches(msg, m.keys.Reserve):
		m.reserve = !m.reserve
	case key.Matches(msg, m.keys.Place):
		if m.state.Empty() {
			return m, m.notify(components.ToastKindWarning, "Your cart is empty.")
		}
		m.placing = true
		m.order = nil
		m.orderErr = nil
		return m, tea.Batch(m.checkoutCmd(), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) updateCoupon(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.focus = focusMain
		m.coupon.Blur()
		code := strings.ToUpper(strings.TrimSpace(m.coupon.Value()))
		m.coupon.SetValue(code)
		cmds := []tea.Cmd{m.quoteCmd()}
		if _, ok := checkout.CouponPercent(code); code != "" && !ok {
			cmds = append(cmds, m.notify(components.ToastKindWarning, "Coupon "+code+" is not recognized."))
		}
		return m, tea.Batch(cmds...)
	case tea.KeyEsc:
		m.focus = focusMain
		m.coupon.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.coupon, cmd = m.coupon.Update(msg)
	return m, cmd
}

// =============================================================================
// ASSISTANT
// =============================================================================

func (m Model) toggleAssistant() (tea.Model, tea.Cmd) {
	if !m.chatOpen {
		m.chatOpen = true
		m.focus = focusChat
		m.chatInput.Focus()
		m.layout()
		return m, tea.Batch(m.openAssistantCmd(), textinput.Blink)
	}
	if m.focus != focusChat {
		m.focus = focusChat
		m.chatInput.Focus()
		return m, textinput.Blink
	}
	m.closeAssistant()
	return m, nil
}

func (m *Model) closeAssistant() {
	m.chatOpen = false
	m.focus = focusMain
	m.chatInput.Blur()
	m.assistant.Close()
	m.layout()
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.waiting && m.cancelChat != nil {
			m.cancelChat()
			return m, nil
		}
		m.focus = focusMain
		m.chatInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Assistant):
		m.closeAssistant()
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		if m.waiting {
			return m, nil
		}
		m.assistant.Reset()
		m.transcript = m.assistant.Conversation()
		m.refreshChat()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.send(m.chatInput.Value())

	case key.Matches(msg, m.keys.AddCard):
		return m.addCard(digit(msg.String()))

	case m.chatInput.Value() == "" && key.Matches(msg, m.keys.QuickReply):
		if last := m.lastReply(); last != nil {
			if i := digit(msg.String()); i < len(last.QuickReplies) {
				return m.send(last.QuickReplies[i].Value())
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// digit returns the zero-based index of the last key digit, e.g. "alt+3" is 2.
func digit(s string) int {
	if s == "" {
		return -1
	}
	c := s[len(s)-1]
	if c < '1' || c > '9' {
		return -1
	}
	return int(c - '1')
}

func (m Model) lastReply() *model.Message {
	if m.transcript == nil {
		return nil
	}
	return m.transcript.LastReply()
}

func (m Model) send(text string) (tea.Model, tea.Cmd) {
	text = strings.TrimSpace(text)
	if text == "" {
		return m, nil
	}
	if m.waiting {
		return m, m.notify(components.ToastKindWarning, "The assistant is still answering.")
	}

	ctx, cancel := m.withTimeout()
	m.cancelChat = cancel
	m.waiting = true
	m.pending = text
	m.chatInput.Reset()
	m.refreshChat()
	return m, tea.Batch(m.sendCmd(ctx, text), m.spinner.Tick)
}

func (m Model) addCard(index int) (tea.Model, tea.Cmd) {
	last := m.lastReply()
	if last == nil || index < 0 || index >= len(last.Cards) {
		return m, nil
	}
	card := last.Cards[index]
	st, err := m.assistant.AddCardToCart(card, 1)
	if err != nil {
		return m, m.notify(components.ToastKindError, err.Error())
	}
	m.setState(st)
	return m, m.notify(components.ToastKindSuccess, "Added "+card.Name+" to cart.")
}

// refreshChat re-renders the transcript into the viewport, keeping the
// bottom in view.
func (m *Model) refreshChat() {
	if !m.chatOpen {
		return
	}
	m.chatView.SetContent(m.chat.Render(m.transcript, m.pending, m.spinner.View()))
	m.chatView.GotoBottom()
}

// =============================================================================
// LAYOUT
// =============================================================================

// panelWidths splits the width between the main view and the assistant
// panel. Narrow terminals give the panel the whole width.
func (m Model) panelWidths() (mainW, chatW int) {
	if !m.chatOpen {
		return m.width, 0
	}
	if m.width < 72 {
		return 0, m.width
	}
	chatW = min(max(m.width*2/5, 36), m.width-36)
	return m.width - chatW, chatW
}

// bodyHeight is what remains after the header, help line and status bar.
func (m Model) bodyHeight() int {
	helpHeight := lipgloss.Height(m.help.View(m.contextHelp()))
	return max(m.height-2-helpHeight-1, 4)
}

func (m Model) contextHelp() contextHelp {
	return contextHelp{keys: m.keys, tab: m.tab, focus: m.focus}
}

// layout sizes the components after a resize or panel toggle.
func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)
	m.status.SetWidth(m.width)
	m.help.Width = m.width

	mainW, chatW := m.panelWidths()
	bodyH := m.bodyHeight()

	if mainW > 0 {
		m.products.SetSize(mainW-2, max(bodyH-2, 2))
		m.search.Width = max(mainW-6, 10)
	}
	if chatW > 0 {
		m.chatInput.Width = max(chatW-8, 10)
		m.chatView.Width = max(chatW-4, 10)
		m.chatView.Height = max(bodyH-4, 3)
		m.chat.setWidth(chatW - 6)
		m.refreshChat()
	}
}
