// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/aisle-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete aisle configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend is the shopping assistant API aisle talks to.
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Shopper identifies who is shopping and how.
	Shopper ShopperConfig `toml:"shopper" json:"shopper"`

	// Session controls the backend chat session lifecycle.
	Session SessionConfig `toml:"session" json:"session"`

	Storage StorageConfig `toml:"storage" json:"storage"`

	UI UIConfig `toml:"ui" json:"ui"`

	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// BackendConfig contains the HTTP gateway settings.
type BackendConfig struct {
	// URL is the backend base URL (default: http://127.0.0.1:8000)
	URL string `toml:"url" json:"url"`
	// TimeoutSecs bounds a single request (default: 30)
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries for transient failures (default: 3)
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RetryDelayMs is the first backoff delay; later delays double (default: 500)
	RetryDelayMs int `toml:"retry_delay_ms" json:"retry_delay_ms"`
	// RateLimit is the client-side request ceiling per second (default: 10)
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	// RateBurst is the limiter bucket size (default: 20)
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
}

// ShopperConfig describes the shopper and their checkout preferences.
type ShopperConfig struct {
	// CustomerID is the backend customer id; 0 shops anonymously.
	CustomerID int `toml:"customer_id" json:"customer_id"`
	// Channel is one of web, whatsapp, instore, mobile (default: web)
	Channel string `toml:"channel" json:"channel"`
	// PaymentMethod used by checkout when none is given (default: card)
	PaymentMethod string `toml:"payment_method" json:"payment_method"`
	// ApplyLoyalty redeems loyalty points at checkout (default: true)
	ApplyLoyalty bool `toml:"apply_loyalty" json:"apply_loyalty"`
	// Location is passed to inventory checks, e.g. "Mumbai"
	Location string `toml:"location" json:"location,omitempty"`
}

// SessionConfig controls backend session reuse.
type SessionConfig struct {
	// IdleTimeoutMins recreates the backend session after this much inactivity (default: 30)
	IdleTimeoutMins int `toml:"idle_timeout_mins" json:"idle_timeout_mins"`
	// ReserveMinutes is how long checkout holds reserved stock (default: 30)
	ReserveMinutes int `toml:"reserve_minutes" json:"reserve_minutes"`
}

// StorageConfig controls local persistence.
type StorageConfig struct {
	// DataDir holds state.json, catalog.db and conversations (default: ~/.aisle)
	DataDir string `toml:"data_dir" json:"data_dir,omitempty"`
	// PersistCart saves cart and wishlist between runs (default: true)
	PersistCart bool `toml:"persist_cart" json:"persist_cart"`
	// OfflineCatalog keeps a sqlite copy of seen products (default: true)
	OfflineCatalog bool `toml:"offline_catalog" json:"offline_catalog"`
	// SaveConversations keeps assistant transcripts (default: true)
	SaveConversations bool `toml:"save_conversations" json:"save_conversations"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme is "dark", "light" or "auto"
	Theme string `toml:"theme" json:"theme"`
	// CompactMode uses single-line product rows
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// ToastSeconds is how long notifications stay up (default: 4)
	ToastSeconds int `toml:"toast_seconds" json:"toast_seconds"`
	// AssistantOpen shows the chat panel on start
	AssistantOpen bool `toml:"assistant_open" json:"assistant_open"`
}

// LoggingConfig controls the zap file logger.
type LoggingConfig struct {
	// Enabled writes logs to File (default: true)
	Enabled bool `toml:"enabled" json:"enabled"`
	// Level is debug, info, warn or error (default: info)
	Level string `toml:"level" json:"level"`
	// File is the log path (default: <data_dir>/aisle.log)
	File string `toml:"file" json:"file,omitempty"`
}

// Valid option sets.
var (
	validChannels       = []string{"web", "whatsapp", "instore", "mobile"}
	validPaymentMethods = []string{"card", "paypal", "apple_pay", "google_pay", "gift_card"}
	validThemes         = []string{"dark", "light", "auto"}
	validLogLevels      = []string{"debug", "info", "warn", "error"}
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Backend: BackendConfig{
			URL:          "http://127.0.0.1:8000",
			TimeoutSecs:  30,
			MaxRetries:   3,
			RetryDelayMs: 500,
			RateLimit:    10,
			RateBurst:    20,
		},
		Shopper: ShopperConfig{
			Channel:       "web",
			PaymentMethod: "card",
			ApplyLoyalty:  true,
		},
		Session: SessionConfig{
			IdleTimeoutMins: 30,
			ReserveMinutes:  30,
		},
		Storage: StorageConfig{
			PersistCart:       true,
			OfflineCatalog:    true,
			SaveConversations: true,
		},
		UI: UIConfig{
			Theme:        "auto",
			ToastSeconds: 4,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// =============================================================================
// PATH FUNCTIONS
// =============================================================================

// ConfigDir returns the aisle configuration directory.
// AISLE_HOME overrides the default of ~/.aisle.
func ConfigDir() (string, error) {
	if home := os.Getenv("AISLE_HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".aisle"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// DataDir returns the resolved data directory.
func (c *Config) DataDir() string {
	if c.Storage.DataDir != "" {
		return expandHome(c.Storage.DataDir)
	}
	dir, err := ConfigDir()
	if err != nil {
		return ".aisle"
	}
	return dir
}

// StatePath is where the persisted cart/wishlist snapshot lives.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir(), "state.json")
}

// CatalogPath is the offline catalog database.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.DataDir(), "catalog.db")
}

// ConversationsDir holds saved assistant transcripts.
func (c *Config) ConversationsDir() string {
	return filepath.Join(c.DataDir(), "conversations")
}

// LogPath is the log file, defaulting into the data directory.
func (c *Config) LogPath() string {
	if c.Logging.File != "" {
		return expandHome(c.Logging.File)
	}
	return filepath.Join(c.DataDir(), "aisle.log")
}

// HistoryPath is the chat REPL line history.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir(), "chat_history")
}

// Timeout returns the backend timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// RetryDelay returns the first retry backoff as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Backend.RetryDelayMs) * time.Millisecond
}

// IdleTimeout returns the session idle timeout as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutMins) * time.Minute
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ensureSecurePermissions tightens config file permissions.
// SECURITY: The config holds the customer id; keep it owner-only.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
//
// A broken config file does not stop aisle: the defaults are returned along
// with the load error so the caller can warn.
func Load() (*Config, error) {
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			cfg := Default()
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			cfg := Default()
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with a short header.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# aisle configuration file\n")
	b.WriteString("# Generated by aisle - edit with care\n\n")
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, []byte(b.String()), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg as indented JSON.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if u, err := url.Parse(c.Backend.URL); err != nil || u.Host == "" {
		add("backend.url", "must be an absolute URL, got %q", c.Backend.URL)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		add("backend.url", "scheme must be http or https, got %q", u.Scheme)
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		add("backend.timeout_secs", "must be between 1 and 600, got %d", c.Backend.TimeoutSecs)
	}
	if c.Backend.MaxRetries < 0 || c.Backend.MaxRetries > 10 {
		add("backend.max_retries", "must be between 0 and 10, got %d", c.Backend.MaxRetries)
	}
	if c.Backend.RetryDelayMs < 0 {
		add("backend.retry_delay_ms", "must not be negative, got %d", c.Backend.RetryDelayMs)
	}
	if c.Backend.RateLimit < 0 {
		add("backend.rate_limit", "must not be negative, got %g", c.Backend.RateLimit)
	}
	if c.Backend.RateBurst < 0 {
		add("backend.rate_burst", "must not be negative, got %d", c.Backend.RateBurst)
	}

	if c.Shopper.CustomerID < 0 {
		add("shopper.customer_id", "must not be negative, got %d", c.Shopper.CustomerID)
	}
	if !contains(validChannels, c.Shopper.Channel) {
		add("shopper.channel", "must be one of %s, got %q", strings.Join(validChannels, ", "), c.Shopper.Channel)
	}
	if !contains(validPaymentMethods, c.Shopper.PaymentMethod) {
		add("shopper.payment_method", "must be one of %s, got %q", strings.Join(validPaymentMethods, ", "), c.Shopper.PaymentMethod)
	}

	if c.Session.IdleTimeoutMins < 1 {
		add("session.idle_timeout_mins", "must be at least 1, got %d", c.Session.IdleTimeoutMins)
	}
	if c.Session.ReserveMinutes < 1 || c.Session.ReserveMinutes > 240 {
		add("session.reserve_minutes", "must be between 1 and 240, got %d", c.Session.ReserveMinutes)
	}

	if !contains(validThemes, c.UI.Theme) {
		add("ui.theme", "must be one of %s, got %q", strings.Join(validThemes, ", "), c.UI.Theme)
	}
	if c.UI.ToastSeconds < 1 || c.UI.ToastSeconds > 60 {
		add("ui.toast_seconds", "must be between 1 and 60, got %d", c.UI.ToastSeconds)
	}

	if !contains(validLogLevels, c.Logging.Level) {
		add("logging.level", "must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.Logging.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values left by a partial config file and
// normalizes case on enumerated fields.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	c.Backend.URL = strings.TrimRight(strings.TrimSpace(c.Backend.URL), "/")
	if c.Backend.URL == "" {
		c.Backend.URL = d.Backend.URL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Backend.RetryDelayMs == 0 {
		c.Backend.RetryDelayMs = d.Backend.RetryDelayMs
	}
	if c.Backend.RateLimit == 0 {
		c.Backend.RateLimit = d.Backend.RateLimit
	}
	if c.Backend.RateBurst == 0 {
		c.Backend.RateBurst = d.Backend.RateBurst
	}

	c.Shopper.Channel = strings.ToLower(strings.TrimSpace(c.Shopper.Channel))
	if c.Shopper.Channel == "" {
		c.Shopper.Channel = d.Shopper.Channel
	}
	c.Shopper.PaymentMethod = strings.ToLower(strings.TrimSpace(c.Shopper.PaymentMethod))
	if c.Shopper.PaymentMethod == "" {
		c.Shopper.PaymentMethod = d.Shopper.PaymentMethod
	}

	if c.Session.IdleTimeoutMins == 0 {
		c.Session.IdleTimeoutMins = d.Session.IdleTimeoutMins
	}
	if c.Session.ReserveMinutes == 0 {
		c.Session.ReserveMinutes = d.Session.ReserveMinutes
	}

	c.UI.Theme = strings.ToLower(c.UI.Theme)
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.ToastSeconds == 0 {
		c.UI.ToastSeconds = d.UI.ToastSeconds
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// ApplyEnvOverrides applies AISLE_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AISLE_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("AISLE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("AISLE_CUSTOMER_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Shopper.CustomerID = id
		}
	}
	if v := os.Getenv("AISLE_CHANNEL"); v != "" {
		c.Shopper.Channel = v
	}
	if v := os.Getenv("AISLE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("AISLE_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("AISLE_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "shopper.channel").
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type. The result is not validated; call Validate.
func (c *Config) Set(key string, value any) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts snake_case or kebab-case to a Go field name.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value any) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %w", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := parseBool(strVal)
			if err != nil {
				return err
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return errors.New("cannot assign nil")
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: %q", s)
}

// AllKeys returns every settable key in dot notation, sorted.
func AllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		sectionKey := tomlName(section)
		if section.Type.Kind() != reflect.Struct {
			keys = append(keys, sectionKey)
			continue
		}
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, sectionKey+"."+tomlName(section.Type.Field(j)))
		}
	}
	sort.Strings(keys)
	return keys
}

func tomlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a copy of the config. Config holds only value fields.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the config as indented JSON for `aisle config show`.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
