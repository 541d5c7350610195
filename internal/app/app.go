// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires configuration, logging, the backend client and the
// shopping services into one value shared by the CLI and the TUI.
package app

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jeranaias/aisle-tui/internal/api"
	"github.com/jeranaias/aisle-tui/internal/assistant"
	"github.com/jeranaias/aisle-tui/internal/catalog"
	"github.com/jeranaias/aisle-tui/internal/checkout"
	"github.com/jeranaias/aisle-tui/internal/config"
	"github.com/jeranaias/aisle-tui/internal/logging"
	"github.com/jeranaias/aisle-tui/internal/model"
	"github.com/jeranaias/aisle-tui/internal/session"
	"github.com/jeranaias/aisle-tui/internal/storage"
	"github.com/jeranaias/aisle-tui/internal/store"
)

// ErrNoCustomer is returned by operations that need a signed-in customer.
var ErrNoCustomer = errors.New("no customer id: set shopper.customer_id or pass --customer")

// Options override configuration for one run. Zero values keep the
// configured setting.
type Options struct {
	// Config to use; nil loads the global config.
	Config *config.Config

	Version    string
	URL        string
	CustomerID int
	Channel    string

	// Verbose mirrors debug logs to stderr.
	Verbose bool

	// Watch reloads the cart when another process changes it.
	Watch bool

	HTTPClient *http.Client
}

// App holds every long-lived component of a run.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Client      *api.Client
	Store       *store.Store
	Sessions    *session.Manager
	Assistant   *assistant.Assistant
	Catalog     *catalog.Service
	Checkout    *checkout.Service
	Transcripts *storage.ConversationStore

	stateFile *store.FileBackend
	watcher   *store.Watcher
	cache     *catalog.Cache
}

// New builds an App. Local persistence that cannot be opened is logged
// and skipped; only configuration and logger errors are fatal.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Global()
	}
	cfg = cfg.Clone()
	if opts.URL != "" {
		cfg.Backend.URL = opts.URL
	}
	if opts.CustomerID > 0 {
		cfg.Shopper.CustomerID = opts.CustomerID
	}
	if opts.Channel != "" {
		cfg.Shopper.Channel = opts.Channel
	}
	channel, err := model.ParseChannel(cfg.Shopper.Channel)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Enabled: cfg.Logging.Enabled,
		Level:   cfg.Logging.Level,
		Path:    cfg.LogPath(),
		Stderr:  opts.Verbose,
	})
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}
	a.Client = newClient(cfg, opts, logger)

	a.openStore()
	snap := a.Store.Snapshot()

	// An explicit customer replaces the remembered one; a remembered
	// session only survives if it belongs to the same customer.
	customerID := snap.CustomerID
	if cfg.Shopper.CustomerID > 0 {
		customerID = cfg.Shopper.CustomerID
	}
	if customerID != snap.CustomerID {
		a.Store.Dispatch(store.SetCustomer{CustomerID: customerID})
	}

	a.Sessions = session.NewManager(a.Client, session.Config{
		IdleTimeout: cfg.IdleTimeout(),
		CustomerID:  customerID,
		Channel:     channel,
		Logger:      logger,
	})
	if snap.SessionID != "" && customerID == snap.CustomerID {
		restored := channel
		if opts.Channel == "" && snap.Channel != "" {
			restored = snap.Channel
		}
		a.Sessions.Restore(snap.SessionID, restored)
	}
	a.Sessions.OnChange(func(c session.Change) {
		a.Store.Dispatch(store.SetSession{SessionID: c.SessionID, Channel: c.Channel})
	})

	if opts.Watch && a.stateFile != nil {
		w, err := store.NewWatcher(a.Store, a.stateFile, store.DefaultDebounce, logger)
		if err != nil {
			logger.Warn("cart watcher disabled", zap.Error(err))
		} else {
			a.watcher = w
		}
	}

	if cfg.Storage.SaveConversations {
		ts, err := storage.NewConversationStore(cfg.ConversationsDir())
		if err != nil {
			logger.Warn("transcripts disabled", zap.Error(err))
		} else {
			a.Transcripts = ts
		}
	}

	acfg := assistant.Config{Chat: a.Client, Sessions: a.Sessions, Store: a.Store, Logger: logger}
	if a.Transcripts != nil {
		acfg.Transcripts = a.Transcripts
	}
	a.Assistant = assistant.New(acfg)

	if cfg.Storage.OfflineCatalog {
		cache, err := catalog.OpenCache(cfg.CatalogPath())
		if err != nil {
			logger.Warn("offline catalog disabled", zap.Error(err))
		} else {
			a.cache = cache
		}
	}
	a.Catalog = catalog.NewService(a.Client, a.cache, logger)

	a.Checkout = checkout.NewService(checkout.Config{
		Backend:        a.Client,
		Sessions:       a.Sessions,
		Store:          a.Store,
		ReserveMinutes: cfg.Session.ReserveMinutes,
		Logger:         logger,
	})

	logger.Debug("app ready",
		zap.String("backend", cfg.Backend.URL),
		zap.Int("customer_id", customerID),
		zap.String("channel", string(a.Sessions.Channel())),
	)
	return a, nil
}

func newClient(cfg *config.Config, opts Options, logger *zap.Logger) *api.Client {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	ccfg := api.DefaultConfig()
	ccfg.BaseURL = cfg.Backend.URL
	ccfg.Timeout = cfg.Timeout()
	ccfg.MaxRetries = cfg.Backend.MaxRetries
	ccfg.RetryDelay = cfg.RetryDelay()
	ccfg.RateLimit = cfg.Backend.RateLimit
	ccfg.RateBurst = cfg.Backend.RateBurst
	ccfg.UserAgent = "aisle/" + version

	clientOpts := []api.Option{api.WithLogger(logger)}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(opts.HTTPClient))
	}
	return api.NewClientWithConfig(ccfg, clientOpts...)
}

// openStore hydrates the store from disk when the cart is persisted.
func (a *App) openStore() {
	if !a.Config.Storage.PersistCart {
		a.Store = store.New(store.State{}, store.WithLogger(a.Logger))
		return
	}
	a.stateFile = store.NewFileBackend(a.Config.StatePath())
	st, err := store.Open(a.stateFile, store.WithLogger(a.Logger))
	if err != nil {
		a.Logger.Warn("could not restore cart", zap.String("path", a.stateFile.Path()), zap.Error(err))
	}
	a.Store = st
}

// CustomerID returns the signed-in customer, 0 for a guest.
func (a *App) CustomerID() int {
	return a.Store.State().CustomerID
}

// SetCustomer switches the shopper. The backend session is dropped when
// the customer changes.
func (a *App) SetCustomer(customerID int) {
	a.Store.Dispatch(store.SetCustomer{CustomerID: customerID})
	a.Sessions.SetCustomer(customerID)
}

// RequireCustomer returns the customer id or an error for guests.
func (a *App) RequireCustomer() (int, error) {
	id := a.CustomerID()
	if id <= 0 {
		return 0, ErrNoCustomer
	}
	return id, nil
}

// Close stops the watcher and closes the store and cache.
func (a *App) Close() error {
	var errs []error
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close watcher: %w", err))
		}
	}
	a.Store.Close()
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close catalog cache: %w", err))
		}
	}
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}
