package app

import (
	"io"
	"log/slog"

	"passlink/internal/services/browser"
	"passlink/internal/services/matcher"
	"passlink/internal/store"
)

// Wire bundles the stores and services the CLI commands use.
type Wire struct {
	Config  Config
	Log     *slog.Logger
	Files   *store.FileStore
	Matcher *matcher.Matcher
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, log *slog.Logger) *Wire {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := matcher.New(cfg.MatchSettings(),
		matcher.WithLookupScheme(cfg.Matching.LookupScheme),
		matcher.WithLogger(log.With("component", "matcher")),
	)
	return &Wire{
		Config:  cfg,
		Log:     log,
		Files:   store.NewFileStore(cfg.Store.Path),
		Matcher: m,
	}
}

// OpenDatabase loads the credential database with passphrase.
func (w *Wire) OpenDatabase(passphrase string) (*store.Database, error) {
	return w.Files.Load(passphrase)
}

// Browser returns a request dispatcher answering from db.
func (w *Wire) Browser(db *store.Database) *browser.Service {
	return browser.New(db, w.Matcher, w.Config.BrowserConfig(),
		browser.WithLogger(w.Log.With("component", "browser")),
	)
}
