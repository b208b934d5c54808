package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/giftcrm/internal/logging"
	"github.com/JonMunkholm/giftcrm/internal/record"
)

// LoadRecords returns the records of a live collection, soft-deleted ones
// only when includeDeleted is set.
func (s *Service) LoadRecords(ctx context.Context, kind record.Kind, includeDeleted bool) ([]record.Record, error) {
	recs, err := s.store.LoadRecords(ctx, kind, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	return recs, nil
}

// LoadDeleted returns the deleted side-table.
func (s *Service) LoadDeleted(ctx context.Context) ([]record.Record, error) {
	return s.LoadRecords(ctx, record.KindDeleted, true)
}

// SaveRecords replaces a live collection. Records whose tipo is empty are
// stamped with kind.
func (s *Service) SaveRecords(ctx context.Context, kind record.Kind, recs []record.Record) error {
	for i := range recs {
		if recs[i].Tipo == "" {
			recs[i].Tipo = kind
		}
	}
	if err := s.store.SaveRecords(ctx, kind, recs); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	logging.WithFields(ctx, clientFields(ctx, "kind", kind)...).Info("collection replaced", "records", len(recs))
	return nil
}

// AddRecord appends a manually entered record, id and createdAt set to now.
func (s *Service) AddRecord(ctx context.Context, kind record.Kind, rec record.Record) (record.Record, error) {
	all, err := s.store.LoadRecords(ctx, kind, true)
	if err != nil {
		return record.Record{}, fmt.Errorf("load %s: %w", kind, err)
	}

	nowMs := s.now().UnixMilli()
	rec.ID = uniqueID(all, nowMs)
	rec.Tipo = kind
	rec.Eliminato = false
	rec.EliminatoIl = 0
	rec.CreatedAt = nowMs
	rec.LastUpdate = 0
	rec.Imported = nil

	if err := s.store.SaveRecords(ctx, kind, append(all, rec)); err != nil {
		return record.Record{}, fmt.Errorf("save %s: %w", kind, err)
	}
	return rec, nil
}

// uniqueID returns the first millisecond id at or after nowMs that no
// record in recs uses.
func uniqueID(recs []record.Record, nowMs int64) record.ID {
	used := make(map[record.ID]bool, len(recs))
	for _, r := range recs {
		used[r.ID] = true
	}
	for {
		id := record.NewID(nowMs)
		if !used[id] {
			return id
		}
		nowMs++
	}
}

// SoftDelete flags a record as deleted in place and copies it into the
// deleted side-table. Deleting an already deleted record refreshes its
// side-table copy.
func (s *Service) SoftDelete(ctx context.Context, kind record.Kind, id record.ID) error {
	all, err := s.store.LoadRecords(ctx, kind, true)
	if err != nil {
		return fmt.Errorf("load %s: %w", kind, err)
	}
	idx := indexByID(all, id)
	if idx < 0 {
		return fmt.Errorf("soft delete %s/%s: %w", kind, id, ErrRecordNotFound)
	}

	nowMs := s.now().UnixMilli()
	all[idx].Eliminato = true
	all[idx].EliminatoIl = nowMs
	if all[idx].Tipo == "" {
		all[idx].Tipo = kind
	}

	deleted, err := s.store.LoadRecords(ctx, record.KindDeleted, true)
	if err != nil {
		return fmt.Errorf("load %s: %w", record.KindDeleted, err)
	}
	copyRec := all[idx].Clone()
	if j := indexByKindID(deleted, kind, id); j >= 0 {
		deleted[j] = copyRec
	} else {
		deleted = append(deleted, copyRec)
	}

	if err := s.store.SaveRecords(ctx, record.KindDeleted, deleted); err != nil {
		return fmt.Errorf("save %s: %w", record.KindDeleted, err)
	}
	if err := s.store.SaveRecords(ctx, kind, all); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	logging.WithFields(ctx, clientFields(ctx, "kind", kind, "id", id)...).Info("record soft-deleted")
	return nil
}

// Restore moves a record out of the deleted side-table back into the
// collection named by its tipo, replacing the in-place copy when present.
// kind selects between deleted records sharing an id; an empty kind is
// accepted only when the id is unique in the side-table.
func (s *Service) Restore(ctx context.Context, kind record.Kind, id record.ID) (record.Record, error) {
	deleted, err := s.store.LoadRecords(ctx, record.KindDeleted, true)
	if err != nil {
		return record.Record{}, fmt.Errorf("load %s: %w", record.KindDeleted, err)
	}
	j, err := findDeleted(deleted, kind, id)
	if err != nil {
		return record.Record{}, fmt.Errorf("restore %s: %w", id, err)
	}

	rec := deleted[j]
	kind, err = record.ParseKind(string(rec.Tipo))
	if err != nil {
		return record.Record{}, fmt.Errorf("restore %s: %w", id, err)
	}
	rec.Tipo = kind
	rec.Eliminato = false
	rec.EliminatoIl = 0
	rec.LastUpdate = s.now().UnixMilli()

	all, err := s.store.LoadRecords(ctx, kind, true)
	if err != nil {
		return record.Record{}, fmt.Errorf("load %s: %w", kind, err)
	}
	if i := indexByID(all, id); i >= 0 {
		all[i] = rec
	} else {
		all = append(all, rec)
	}

	if err := s.store.SaveRecords(ctx, kind, all); err != nil {
		return record.Record{}, fmt.Errorf("save %s: %w", kind, err)
	}
	remaining := append(deleted[:j:j], deleted[j+1:]...)
	if err := s.store.SaveRecords(ctx, record.KindDeleted, remaining); err != nil {
		return record.Record{}, fmt.Errorf("save %s: %w", record.KindDeleted, err)
	}

	logging.WithFields(ctx, clientFields(ctx, "kind", kind, "id", id)...).Info("record restored")
	return rec, nil
}

// BulkEdit sets the same field values on every live record of kind whose id
// is listed and returns how many records changed. id and tipo cannot be
// edited this way.
func (s *Service) BulkEdit(ctx context.Context, kind record.Kind, ids []record.ID, fields map[string]string) (int, error) {
	for field := range fields {
		switch field {
		case record.FieldID, record.FieldTipo, record.FieldEliminato,
			record.FieldEliminatoIl, record.FieldCreatedAt, record.FieldLastUpdate:
			return 0, fmt.Errorf("bulk edit %q: %w", field, ErrFieldNotEditable)
		}
	}

	all, err := s.store.LoadRecords(ctx, kind, true)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", kind, err)
	}

	want := make(map[record.ID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	nowMs := s.now().UnixMilli()
	changed := 0
	for i := range all {
		if all[i].Eliminato || !want[all[i].ID] {
			continue
		}
		for field, value := range fields {
			all[i].Set(field, value)
		}
		all[i].LastUpdate = nowMs
		changed++
	}
	if changed == 0 {
		return 0, nil
	}

	if err := s.store.SaveRecords(ctx, kind, all); err != nil {
		return 0, fmt.Errorf("save %s: %w", kind, err)
	}
	logging.WithFields(ctx, clientFields(ctx, "kind", kind)...).Info("bulk edit applied", "records", changed, "fields", len(fields))
	return changed, nil
}

// Settings returns the normalized settings document.
func (s *Service) Settings(ctx context.Context) (record.Settings, error) {
	st, err := s.store.LoadSettings(ctx)
	if err != nil {
		return record.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return st.Normalize(s.now()), nil
}

// SaveSettings normalizes and stores the settings document.
func (s *Service) SaveSettings(ctx context.Context, st record.Settings) (record.Settings, error) {
	st = st.Normalize(s.now())
	if err := s.store.SaveSettings(ctx, st); err != nil {
		return record.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return st, nil
}

func indexByID(recs []record.Record, id record.ID) int {
	for i := range recs {
		if recs[i].ID == id {
			return i
		}
	}
	return -1
}

// findDeleted locates id in the side-table, restricted to kind when set.
func findDeleted(deleted []record.Record, kind record.Kind, id record.ID) (int, error) {
	if kind != "" {
		if j := indexByKindID(deleted, kind, id); j >= 0 {
			return j, nil
		}
		return -1, ErrRecordNotFound
	}
	found := -1
	for j := range deleted {
		if deleted[j].ID != id {
			continue
		}
		if found >= 0 {
			return -1, ErrAmbiguousRecord
		}
		found = j
	}
	if found < 0 {
		return -1, ErrRecordNotFound
	}
	return found, nil
}

func indexByKindID(recs []record.Record, kind record.Kind, id record.ID) int {
	for i := range recs {
		if recs[i].ID == id && recs[i].Tipo == kind {
			return i
		}
	}
	return -1
}
