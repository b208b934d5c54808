package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/giftcrm/internal/config"
	"github.com/JonMunkholm/giftcrm/internal/logging"
	"github.com/JonMunkholm/giftcrm/internal/record"
)

// schema holds one JSONB document per record, ordered by position within
// its collection, and a single settings row.
const schema = `
CREATE TABLE IF NOT EXISTS crm_records (
	kind     TEXT    NOT NULL,
	position INTEGER NOT NULL,
	body     JSONB   NOT NULL,
	PRIMARY KEY (kind, position)
);
CREATE TABLE IF NOT EXISTS crm_settings (
	id   SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	body JSONB    NOT NULL
);`

// PostgresStore keeps collections in PostgreSQL. SaveRecords replaces a
// collection inside one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, pings and ensures the schema exists.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := NewPostgresStore(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log := logging.FromContext(ctx)
	if u, err := url.Parse(cfg.URL); err == nil {
		log.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		log.Info("connected to database")
	}
	return s, nil
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadRecords(ctx context.Context, kind record.Kind, includeDeleted bool) ([]record.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT body FROM crm_records WHERE kind = $1 ORDER BY position`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	bodies, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", kind, err)
	}

	recs := make([]record.Record, len(bodies))
	for i, body := range bodies {
		if err := json.Unmarshal(body, &recs[i]); err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", kind, i, err)
		}
	}
	return visible(kind, recs, includeDeleted), nil
}

// SaveRecords deletes the collection and bulk-loads the new rows with COPY.
func (s *PostgresStore) SaveRecords(ctx context.Context, kind record.Kind, recs []record.Record) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	bodies := make([][]byte, len(recs))
	for i := range recs {
		b, err := json.Marshal(recs[i])
		if err != nil {
			return fmt.Errorf("encode %s row %d: %w", kind, i, err)
		}
		bodies[i] = b
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM crm_records WHERE kind = $1`, string(kind)); err != nil {
		return fmt.Errorf("clear %s: %w", kind, err)
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"crm_records"},
		[]string{"kind", "position", "body"},
		pgx.CopyFromSlice(len(bodies), func(i int) ([]any, error) {
			return []any{string(kind), int32(i), bodies[i]}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy %s: %w", kind, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", kind, err)
	}
	return nil
}

func (s *PostgresStore) LoadSettings(ctx context.Context) (record.Settings, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM crm_settings WHERE id = 1`).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return record.DefaultSettings(timeNow()), nil
	}
	if err != nil {
		return record.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	return record.DecodeSettings(body, timeNow()), nil
}

func (s *PostgresStore) SaveSettings(ctx context.Context, settings record.Settings) error {
	body, err := json.Marshal(settings.Normalize(timeNow()))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO crm_settings (id, body) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body`, body)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
