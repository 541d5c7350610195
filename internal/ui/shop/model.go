// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shop

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/aisle-tui/internal/app"
	"github.com/jeranaias/aisle-tui/internal/catalog"
	"github.com/jeranaias/aisle-tui/internal/checkout"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/store"
	"github.com/jeranaias/aisle-tui/internal/ui/components"
	"github.com/jeranaias/aisle-tui/internal/ui/styles"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Catalog answers product queries. *catalog.Service implements it.
type Catalog interface {
	Search(ctx context.Context, q model.SearchQuery) (catalog.Result, error)
}

// Assistant is the chat side. *assistant.Assistant implements it.
type Assistant interface {
	Open(ctx context.Context) error
	Close()
	Send(ctx context.Context, text string) (*model.Message, error)
	Conversation() *model.Conversation
	AddCardToCart(card model.ProductCard, quantity int) (store.State, error)
	Reset()
}

// Checkout places orders. *checkout.Service implements it.
type Checkout interface {
	Checkout(ctx context.Context, opts checkout.Options) (*model.CheckoutResult, error)
	Quote(ctx context.Context, coupon string, applyLoyalty bool) model.Pricing
}

// Config wires a Model.
type Config struct {
	Store     *store.Store
	Catalog   Catalog
	Assistant Assistant
	Checkout  Checkout
	LoadHome  func(ctx context.Context) (*app.Home, error)

	Theme  *styles.Theme
	Logger *zap.Logger

	// Timeout bounds each backend command; zero means no limit.
	Timeout       time.Duration
	ToastDuration time.Duration
	Compact       bool
	AssistantOpen bool
}

// ConfigFromApp wires a Model to a running App.
func ConfigFromApp(a *app.App, theme *styles.Theme) Config {
	return Config{
		Store:         a.Store,
		Catalog:       a.Catalog,
		Assistant:     a.Assistant,
		Checkout:      a.Checkout,
		LoadHome:      a.LoadHome,
		Theme:         theme,
		Logger:        a.Logger,
		Timeout:       a.Config.Timeout(),
		ToastDuration: time.Duration(a.Config.UI.ToastSeconds) * time.Second,
		Compact:       a.Config.UI.CompactMode,
		AssistantOpen: a.Config.UI.AssistantOpen,
	}
}

// =============================================================================
// VIEW STATE
// =============================================================================

// Tab is a storefront page.
type Tab int

const (
	TabCatalog Tab = iota
	TabCart
	TabWishlist
	TabCheckout
	tabCount
)

// String returns the tab label.
func (t Tab) String() string {
	switch t {
	case TabCatalog:
		return "Catalog"
	case TabCart:
		return "Cart"
	case TabWishlist:
		return "Wishlist"
	case TabCheckout:
		return "Checkout"
	default:
		return "?"
	}
}

// focus is where key presses go.
type focus int

const (
	focusMain focus = iota
	focusSearch
	focusCoupon
	focusChat
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the storefront bubbletea model.
type Model struct {
	ctx     context.Context
	timeout time.Duration
	logger  *zap.Logger

	store     *store.Store
	catalog   Catalog
	assistant Assistant
	checkout  Checkout
	loadHome  func(ctx context.Context) (*app.Home, error)

	theme   *styles.Theme
	keys    KeyMap
	help    help.Model
	toasts  *components.ToastManager
	ticking bool
	status  *components.StatusBar

	width  int
	height int
	tab    Tab
	focus  focus

	// Store
	sub   <-chan store.State
	unsub func()
	state store.State

	// Catalog
	products  list.Model
	marks     *rowMarks
	search    textinput.Model
	query     model.SearchQuery
	filters   *model.ProductFilters
	offline   bool
	loading   bool
	detail    *model.Product
	loadErr   error
	loyalty   *model.LoyaltyStatus
	sortIndex int
	catIndex  int
	searchSeq int

	// Cart and wishlist
	cartCursor int
	wishCursor int

	// Checkout
	coupon     textinput.Model
	payIndex   int
	useLoyalty bool
	reserve    bool
	quote      *model.Pricing
	placing    bool
	order      *model.CheckoutResult
	orderErr   error

	// Assistant
	chatOpen   bool
	chatInput  textinput.Model
	chatView   viewport.Model
	spinner    spinner.Model
	waiting    bool
	pending    string
	cancelChat context.CancelFunc
	transcript *model.Conversation
	chat       *chatRenderer
}

// sortOrders is the cycle for the sort key.
var sortOrders = []model.SortOrder{model.SortRelevance, model.SortPriceLow, model.SortPriceHigh, model.SortRating}

// New creates the storefront. ctx bounds every backend command.
func New(ctx context.Context, cfg Config) Model {
	theme := cfg.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	marks := &rowMarks{theme: theme, compact: cfg.Compact}
	l := list.New(nil, productDelegate{marks: marks}, 80, 20)
	l.Title = "Catalog"
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("product", "products")
	l.Styles.Title = theme.Title

	search := textinput.New()
	search.Placeholder = "Search products..."
	search.Prompt = "/ "
	search.CharLimit = 120

	coupon := textinput.New()
	coupon.Placeholder = "WELCOME10"
	coupon.Prompt = "Coupon: "
	coupon.CharLimit = 24

	chatInput := textinput.New()
	chatInput.Placeholder = "Ask the assistant..."
	chatInput.Prompt = "> "
	chatInput.CharLimit = 500
	chatInput.PromptStyle = theme.InputPrompt

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.DotsSpinner.Frames,
		FPS:    styles.DotsSpinner.Duration(),
	}
	sp.Style = theme.Spinner

	h := help.New()
	h.Styles.ShortKey = theme.ShortcutKey
	h.Styles.ShortDesc = theme.ShortcutDesc
	h.Styles.FullKey = theme.ShortcutKey
	h.Styles.FullDesc = theme.ShortcutDesc

	m := Model{
		ctx:       ctx,
		timeout:   cfg.Timeout,
		logger:    logger.Named("shop"),
		store:     cfg.Store,
		catalog:   cfg.Catalog,
		assistant: cfg.Assistant,
		checkout:  cfg.Checkout,
		loadHome:  cfg.LoadHome,
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      h,
		toasts:    components.NewToastManager(cfg.ToastDuration),
		status:    components.NewStatusBar(theme),
		width:     80,
		height:    24,
		products:  l,
		marks:     marks,
		search:    search,
		query:     model.SearchQuery{SortBy: model.SortRelevance},
		loading:   true,
		coupon:    coupon,
		chatOpen:  cfg.AssistantOpen,
		chatInput: chatInput,
		chatView:  viewport.New(40, 10),
		spinner:   sp,
		chat:      newChatRenderer(theme),
	}
	m.state = cfg.Store.State()
	m.marks.state = m.state
	m.sub, m.unsub = cfg.Store.Subscribe()
	m.transcript = cfg.Assistant.Conversation()
	m.layout()
	return m
}

// Init starts the landing load and the store subscription.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadHomeCmd(), waitForState(m.sub), m.spinner.Tick}
	if m.chatOpen {
		cmds = append(cmds, m.openAssistantCmd())
	}
	return tea.Batch(cmds...)
}

// Run shows the storefront until the user quits.
func Run(ctx context.Context, a *app.App, theme *styles.Theme) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(ctx, ConfigFromApp(a, theme))
	defer m.unsub()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// payment returns the selected payment method.
func (m Model) payment() model.PaymentMethod {
	methods := model.PaymentMethods()
	return methods[m.payIndex%len(methods)]
}
