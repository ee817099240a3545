package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"passlink/internal/domain"
	"passlink/internal/services/browser"
	"passlink/internal/services/matcher"
	"passlink/internal/transport"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home string `yaml:"-"` // config directory, e.g. $HOME/.passlink

	Store    StoreConfig    `yaml:"store"`
	Matching MatchingConfig `yaml:"matching"`
	Host     HostConfig     `yaml:"host"`
	Log      LogConfig      `yaml:"log"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type MatchingConfig struct {
	RequireSchemeMatch bool   `yaml:"require_scheme_match"`
	BestMatchOnly      bool   `yaml:"best_match_only"`
	LookupScheme       string `yaml:"lookup_scheme"`
}

type HostConfig struct {
	TrustedClients  []string      `yaml:"trusted_clients"`
	MaxClients      int           `yaml:"max_clients"`
	MaxMessageBytes int           `yaml:"max_message_bytes"`
	DecryptFailures FailureConfig `yaml:"decrypt_failures"`
}

// FailureConfig is a token bucket: Burst failures, one more every Every.
type FailureConfig struct {
	Burst int           `yaml:"burst"`
	Every time.Duration `yaml:"every"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // empty means stderr
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig(home string) Config {
	fail := browser.DefaultConfig()
	return Config{
		Home:  home,
		Store: StoreConfig{Path: filepath.Join(home, "store.enc")},
		Matching: MatchingConfig{
			LookupScheme: matcher.DefaultLookupScheme,
		},
		Host: HostConfig{
			MaxClients:      fail.MaxClients,
			MaxMessageBytes: transport.DefaultMaxMessageBytes,
			DecryptFailures: FailureConfig{Burst: fail.FailureBurst, Every: fail.FailureEvery},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path, home string) (Config, error) {
	cfg := DefaultConfig(home)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Home = home
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Store.Path == "" {
		return errors.New("store.path is required")
	}
	if c.Host.MaxMessageBytes <= 0 {
		return fmt.Errorf("host.max_message_bytes must be positive, got %d", c.Host.MaxMessageBytes)
	}
	if c.Host.MaxClients <= 0 {
		return fmt.Errorf("host.max_clients must be positive, got %d", c.Host.MaxClients)
	}
	if c.Host.DecryptFailures.Burst <= 0 || c.Host.DecryptFailures.Every <= 0 {
		return errors.New("host.decrypt_failures needs a positive burst and interval")
	}
	if s := c.Matching.LookupScheme; s != "" && strings.ContainsAny(s, ":/ ") {
		return fmt.Errorf("matching.lookup_scheme %q must be a bare scheme", s)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// MatchSettings returns the matcher toggles.
func (c Config) MatchSettings() domain.MatchSettings {
	return domain.MatchSettings{
		RequireSchemeMatch: c.Matching.RequireSchemeMatch,
		BestMatchOnly:      c.Matching.BestMatchOnly,
	}
}

// BrowserConfig returns the host policy.
func (c Config) BrowserConfig() browser.Config {
	return browser.Config{
		TrustedClients: c.Host.TrustedClients,
		FailureBurst:   c.Host.DecryptFailures.Burst,
		FailureEvery:   c.Host.DecryptFailures.Every,
		MaxClients:     c.Host.MaxClients,
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DefaultHome returns ~/.passlink, or ".passlink" if the home directory is unknown.
func DefaultHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".passlink")
	}
	return ".passlink"
}
