// Package admin provides maintenance operations on the stored collections.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/giftcrm/internal/core"
	"github.com/JonMunkholm/giftcrm/internal/record"
)

// ResetTimeout bounds a full reset.
const ResetTimeout = 30 * time.Second

// resetOrder empties the deleted side-table last.
var resetOrder = []record.Kind{record.KindClients, record.KindPartners, record.KindDeleted}

// Reset empties every collection. Settings are kept. This is destructive.
func Reset(ctx context.Context, st core.Store) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	var errs []error
	for _, kind := range resetOrder {
		if err := st.SaveRecords(ctx, kind, []record.Record{}); err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", kind, err))
			continue
		}
		slog.Info("collection reset", "kind", kind)
	}
	return errors.Join(errs...)
}
