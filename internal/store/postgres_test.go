package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/JonMunkholm/giftcrm/internal/config"
	"github.com/JonMunkholm/giftcrm/internal/record"
)

// TEST_DATABASE_URL points at a disposable database; the tests clear the
// crm_* tables.
func openTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := OpenPostgres(ctx, config.DatabaseConfig{URL: url, MaxConns: 2, MinConns: 0})
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if _, err := s.pool.Exec(ctx, `TRUNCATE crm_records, crm_settings`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return s
}

func TestPostgresStore_RecordsRoundTrip(t *testing.T) {
	s := openTestPostgres(t)
	ctx := context.Background()

	in := []record.Record{
		{ID: record.NewID(1), Tipo: record.KindClients, Nome: "Mario", Azienda: "Acme", Grappa: true},
		{ID: record.NewID(2), Tipo: record.KindClients, Nome: "Anna", Eliminato: true},
		{ID: "ext-3", Tipo: record.KindClients, Nome: "Luca"},
	}
	in[2].Set("codice_fiscale", "LCU")

	if err := s.SaveRecords(ctx, record.KindClients, in); err != nil {
		t.Fatalf("SaveRecords error = %v", err)
	}

	live, err := s.LoadRecords(ctx, record.KindClients, false)
	if err != nil {
		t.Fatalf("LoadRecords error = %v", err)
	}
	if len(live) != 2 || live[0].Nome != "Mario" || live[1].ID != "ext-3" {
		t.Fatalf("live = %+v", live)
	}
	if live[1].Get("codice_fiscale") != "LCU" || !bool(live[0].Grappa) {
		t.Errorf("fields lost in round trip: %+v", live)
	}

	// A second save replaces the collection.
	if err := s.SaveRecords(ctx, record.KindClients, in[:1]); err != nil {
		t.Fatal(err)
	}
	all, err := s.LoadRecords(ctx, record.KindClients, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("after replace = %d records, want 1", len(all))
	}
}

func TestPostgresStore_Settings(t *testing.T) {
	s := openTestPostgres(t)
	ctx := context.Background()

	st, err := s.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("LoadSettings error = %v", err)
	}
	st.RegaloCorrente = "Panettone"
	if err := s.SaveSettings(ctx, st); err != nil {
		t.Fatalf("SaveSettings error = %v", err)
	}
	got, err := s.LoadSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.RegaloCorrente != "Panettone" {
		t.Errorf("RegaloCorrente = %q", got.RegaloCorrente)
	}
}
