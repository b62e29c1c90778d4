package main

import (
	"log/slog"
	"os"

	"github.com/alecgard/roster/internal/api"
	"github.com/alecgard/roster/internal/config"
	"github.com/alecgard/roster/internal/creds"
	"github.com/alecgard/roster/internal/httpx"
	"github.com/alecgard/roster/internal/metrics"
	"github.com/alecgard/roster/internal/session"
)

// deps wires the client stack from configuration.
type deps struct {
	cfg     *config.Config
	store   *creds.Store
	client  *api.Client
	session *session.Manager
	metrics *metrics.Metrics
}

func buildDeps() (*deps, error) {
	// Logs go to stderr so they never interleave with page output.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	cipher, err := creds.NewCipher(cfg.Credentials.EncryptionKey)
	if err != nil {
		return nil, err
	}
	store := creds.NewStore(cfg.Credentials.File, cipher)

	m := metrics.New()

	hc := httpx.New(cfg.API.BaseURL, cfg.API.Timeout, store)
	hc.SetMetrics(m)
	client := api.NewClient(hc)

	return &deps{
		cfg:     cfg,
		store:   store,
		client:  client,
		session: session.NewManager(store, client),
		metrics: m,
	}, nil
}
