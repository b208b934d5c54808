package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/giftcrm/internal/record"
)

const settingsFile = "settings"

// JSONStore keeps each collection in <dir>/<kind>.json and the settings in
// <dir>/settings.json. Files are replaced atomically.
type JSONStore struct {
	dir string
}

// NewJSONStore creates dir if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &JSONStore{dir: dir}, nil
}

// Dir is the data directory.
func (s *JSONStore) Dir() string {
	return s.dir
}

func (s *JSONStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// LoadRecords returns an empty list when the collection file does not exist yet.
func (s *JSONStore) LoadRecords(ctx context.Context, kind record.Kind, includeDeleted bool) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(string(kind)))
	if errors.Is(err, fs.ErrNotExist) {
		return []record.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}

	recs := []record.Record{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
	}
	return visible(kind, recs, includeDeleted), nil
}

// SaveRecords overwrites the collection file.
func (s *JSONStore) SaveRecords(ctx context.Context, kind record.Kind, recs []record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKind(kind); err != nil {
		return err
	}
	if recs == nil {
		recs = []record.Record{}
	}

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	return writeFileAtomic(s.path(string(kind)), data)
}

// LoadSettings returns defaults when settings.json is missing; malformed
// fields are replaced by their defaults.
func (s *JSONStore) LoadSettings(ctx context.Context) (record.Settings, error) {
	if err := ctx.Err(); err != nil {
		return record.Settings{}, err
	}
	data, err := os.ReadFile(s.path(settingsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return record.DefaultSettings(timeNow()), nil
	}
	if err != nil {
		return record.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return record.DecodeSettings(data, timeNow()), nil
}

func (s *JSONStore) SaveSettings(ctx context.Context, settings record.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings.Normalize(timeNow()), "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return writeFileAtomic(s.path(settingsFile), data)
}

// Close is a no-op for the file backend.
func (s *JSONStore) Close() error {
	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames
// it over path, so a failed save leaves the previous file in place.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
