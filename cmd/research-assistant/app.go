// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/acquire"
	"github.com/pdiddy/research-assistant/internal/ai"
	"github.com/pdiddy/research-assistant/internal/library"
	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/internal/related"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// app bundles the collaborators behind one session.
type app struct {
	cfg       types.Config
	log       *slog.Logger
	sessionID string
	index     *search.ArxivClient
	library   *library.Store
	ctl       *session.Controller
}

// newApp wires a session from the loaded configuration. Download progress
// goes to progress. A missing Gemini or Serper key disables those
// commands; a library that cannot be opened is logged and skipped.
func newApp(ctx context.Context, progress io.Writer) (*app, error) {
	cfg := loadConfig()
	id := uuid.NewString()
	log := logging.New(viper.GetString("log_level"), viper.GetString("log_format"), os.Stderr).
		With("session_id", id)

	client := &http.Client{Timeout: cfg.Search.Timeout}
	a := &app{
		cfg:       cfg,
		log:       log,
		sessionID: id,
		index:     search.NewArxivClient(client, cfg.Search),
	}

	opts := session.Options{
		Index:      a.index,
		Fetcher:    acquire.NewFetcher(&http.Client{Timeout: cfg.Acquisition.Timeout}, cfg.Acquisition, progress),
		MaxResults: cfg.Search.MaxResults,
		SortBy:     cfg.Search.SortBy,
		SortOrder:  cfg.Search.SortOrder,
		Model:      cfg.AI.Model,
		WrapWidth:  cfg.WrapWidth,
		Log:        log,
	}

	if cfg.AI.APIKey != "" {
		backend, err := ai.NewGenaiBackend(ctx, cfg.AI.APIKey, nil)
		if err != nil {
			return nil, err
		}
		opts.AI = ai.NewClient(backend, cfg.AI, log)
	} else {
		log.Warn("Gemini API key missing; AI commands disabled")
	}

	if cfg.Related.APIKey != "" {
		opts.Related = related.NewClient(client, cfg.Related)
	} else {
		log.Warn("Serper API key missing; related-work search disabled")
	}

	if lib, err := library.Open(cfg.Library); err != nil {
		log.Warn("library unavailable", "path", cfg.Library.Path, "error", err)
	} else {
		a.library = lib
		opts.Library = lib
	}

	a.ctl = session.New(opts)
	log.Debug("session started", "model", cfg.AI.Model, "download_dir", cfg.Acquisition.DownloadDir)
	return a, nil
}

// Close releases the library database.
func (a *app) Close() {
	if a.library != nil {
		if err := a.library.Close(); err != nil {
			a.log.Warn("closing library", "error", err)
		}
	}
}
