// Package store persists record collections and the settings document.
//
// Two backends are provided: the JSON file layout (one file per collection
// under a data directory) and PostgreSQL with one JSONB document per record.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/giftcrm/internal/config"
	"github.com/JonMunkholm/giftcrm/internal/record"
)

// timeNow stamps defaults for settings; tests may replace it.
var timeNow = time.Now

// Store is implemented by every backend.
type Store interface {
	LoadRecords(ctx context.Context, kind record.Kind, includeDeleted bool) ([]record.Record, error)
	SaveRecords(ctx context.Context, kind record.Kind, records []record.Record) error
	LoadSettings(ctx context.Context) (record.Settings, error)
	SaveSettings(ctx context.Context, settings record.Settings) error
	Close() error
}

// Open returns the backend selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.Store.Backend) {
	case config.BackendJSON, "":
		s, err := NewJSONStore(cfg.Store.DataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendPostgres:
		s, err := OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// checkKind accepts the live collections and the deleted side-table.
func checkKind(kind record.Kind) error {
	switch kind {
	case record.KindClients, record.KindPartners, record.KindDeleted:
		return nil
	}
	return fmt.Errorf("%w: %q", record.ErrUnknownKind, kind)
}

// visible drops soft-deleted records unless asked not to. The side-table
// is always returned whole.
func visible(kind record.Kind, recs []record.Record, includeDeleted bool) []record.Record {
	if includeDeleted || kind == record.KindDeleted {
		return recs
	}
	out := recs[:0]
	for _, r := range recs {
		if !r.Eliminato {
			out = append(out, r)
		}
	}
	return out
}
