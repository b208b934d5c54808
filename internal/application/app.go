// Package application assembles the store, metrics and core service from
// configuration. Both the HTTP server and the command line tool start here.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/giftcrm/internal/config"
	"github.com/JonMunkholm/giftcrm/internal/core"
	"github.com/JonMunkholm/giftcrm/internal/metrics"
	"github.com/JonMunkholm/giftcrm/internal/store"
)

// App owns the long-lived dependencies of a process.
type App struct {
	Config  *config.Config
	Store   store.Store
	Metrics *metrics.Metrics
	Service *core.Service
}

// Open connects the configured store and wires a service over it.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	slog.Info("store opened", "backend", cfg.Store.Backend)

	m := metrics.New()
	return &App{
		Config:  cfg,
		Store:   st,
		Metrics: m,
		Service: core.NewService(st, ServiceOptions(cfg, m)),
	}, nil
}

// ServiceOptions maps configuration onto core options.
func ServiceOptions(cfg *config.Config, m *metrics.Metrics) core.Options {
	return core.Options{
		MaxFileSize:      cfg.Import.MaxFileSize,
		MaxConcurrent:    cfg.Import.MaxConcurrent,
		MaxWait:          cfg.Import.MaxWaitTime,
		MerchandiseLabel: cfg.Export.MerchandiseLabel,
		ExportSheet:      cfg.Export.SheetName,
		Metrics:          m,
	}
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
