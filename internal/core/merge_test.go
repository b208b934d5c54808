package core

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/JonMunkholm/giftcrm/internal/record"
)

var mergeTime = time.Date(2024, 11, 5, 8, 0, 0, 0, time.UTC)

// sheetRecord builds a record as the importer would, every given field
// marked as read from the sheet.
func sheetRecord(fields ...string) record.Record {
	var rec record.Record
	for i := 0; i+1 < len(fields); i += 2 {
		rec.Set(fields[i], fields[i+1])
		rec.Imported = append(rec.Imported, fields[i])
	}
	rec.Tipo = record.KindClients
	return rec
}

func TestMerge_UpdatesMatchCaseInsensitively(t *testing.T) {
	current := []record.Record{{
		ID:        record.NewID(1),
		Tipo:      record.KindClients,
		Nome:      "Mario",
		Azienda:   "Acme",
		CreatedAt: 100,
	}}
	imported := []record.Record{sheetRecord("nome", "mario ", "azienda", "ACME", "telefono", "111")}

	res := Merge(imported, current, mergeTime)

	if res.Inserted != 0 || res.Updated != 1 {
		t.Fatalf("inserted=%d updated=%d, want 0/1", res.Inserted, res.Updated)
	}
	if res.Message != "0 nuovi record, 1 record aggiornati" {
		t.Errorf("Message = %q", res.Message)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	got := res.Records[0]
	if got.ID != record.NewID(1) {
		t.Errorf("id = %s, want 1", got.ID)
	}
	if got.Telefono != "111" {
		t.Errorf("telefono = %q, want 111", got.Telefono)
	}
	if got.CreatedAt != 100 {
		t.Errorf("createdAt = %d, want the original 100", got.CreatedAt)
	}
	if got.LastUpdate != mergeTime.UnixMilli() {
		t.Errorf("lastUpdate = %d, want %d", got.LastUpdate, mergeTime.UnixMilli())
	}
	if current[0].Telefono != "" {
		t.Error("Merge must not modify current")
	}
}

func TestMerge_InsertsWithFreshIDs(t *testing.T) {
	current := []record.Record{
		{ID: record.NewID(1), Nome: "Mario", Azienda: "Acme"},
		{ID: record.NewID(2), Nome: "Anna", Azienda: "Beta"},
	}
	imported := []record.Record{
		sheetRecord("nome", "Luca", "azienda", "Gamma", "cap", "1"),
		sheetRecord("nome", "Sara", "azienda", "Delta", "cap", "2"),
	}

	res := Merge(imported, current, mergeTime)
	if res.Inserted != 2 || res.Updated != 0 || len(res.Records) != 4 {
		t.Fatalf("inserted=%d updated=%d records=%d", res.Inserted, res.Updated, len(res.Records))
	}

	nowMs := mergeTime.UnixMilli()
	for k, rec := range res.Records[2:] {
		if want := record.NewID(nowMs + 2 + int64(k)); rec.ID != want {
			t.Errorf("new record %d id = %s, want %s", k, rec.ID, want)
		}
		if rec.CreatedAt != nowMs || rec.Eliminato || rec.LastUpdate != 0 {
			t.Errorf("new record %d lifecycle = %+v", k, rec)
		}
	}
}

func TestMerge_MissingKeyNeverMatches(t *testing.T) {
	current := []record.Record{
		{ID: record.NewID(1), Nome: "", Azienda: "Acme"},
		{ID: record.NewID(2), Nome: "Mario", Azienda: ""},
	}
	imported := []record.Record{
		sheetRecord("azienda", "Acme", "cap", "1", "note", "x"),
		sheetRecord("nome", "Mario", "cap", "2", "note", "y"),
	}

	res := Merge(imported, current, mergeTime)
	if res.Updated != 0 || res.Inserted != 2 {
		t.Errorf("inserted=%d updated=%d, want 2/0", res.Inserted, res.Updated)
	}
}

func TestMerge_EachRecordMatchedOnce(t *testing.T) {
	current := []record.Record{{ID: record.NewID(1), Nome: "Mario", Azienda: "Acme"}}
	imported := []record.Record{
		sheetRecord("nome", "Mario", "azienda", "Acme", "telefono", "111"),
		sheetRecord("nome", "Mario", "azienda", "Acme", "telefono", "222"),
		sheetRecord("nome", "Mario", "azienda", "Acme", "telefono", "333"),
	}

	// Row 1 takes the stored record, row 2 is appended and row 3 falls on
	// the record row 2 appended.
	res := Merge(imported, current, mergeTime)
	if res.Updated != 2 || res.Inserted != 1 {
		t.Fatalf("inserted=%d updated=%d, want 1/2", res.Inserted, res.Updated)
	}
	if len(res.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(res.Records))
	}
	if res.Records[0].Telefono != "111" {
		t.Errorf("stored record telefono = %q, want 111", res.Records[0].Telefono)
	}
	appended := res.Records[1]
	if appended.Telefono != "333" {
		t.Errorf("appended record telefono = %q, want 333", appended.Telefono)
	}
	if appended.ID != record.NewID(mergeTime.UnixMilli()+1) {
		t.Errorf("appended record id = %s, want the id given at insert", appended.ID)
	}
	if appended.LastUpdate != mergeTime.UnixMilli() {
		t.Errorf("appended record lastUpdate = %d, want stamped by the later row", appended.LastUpdate)
	}
}

func TestMerge_OverwritesOnlyImportedFields(t *testing.T) {
	current := []record.Record{{
		ID:        record.NewID(1),
		Nome:      "Mario",
		Azienda:   "Acme",
		Email:     "mario@acme.it",
		Localita:  "Roma",
		GLS:       true,
		Eliminato: false,
	}}
	// The sheet had a GLS column left blank and no email column at all.
	imported := []record.Record{sheetRecord("nome", "Mario", "azienda", "Acme", "localita", "Milano", "gls", "")}

	got := Merge(imported, current, mergeTime).Records[0]
	if got.Email != "mario@acme.it" {
		t.Errorf("email = %q, a field absent from the sheet must be kept", got.Email)
	}
	if got.Localita != "Milano" {
		t.Errorf("localita = %q, want Milano", got.Localita)
	}
	if bool(got.GLS) {
		t.Error("a flag column present in the sheet overwrites the stored flag")
	}
}

func TestMerge_WithoutProvenanceCopiesNonEmpty(t *testing.T) {
	current := []record.Record{{ID: record.NewID(1), Nome: "Mario", Azienda: "Acme", Email: "old@acme.it"}}
	imported := []record.Record{{Nome: "Mario", Azienda: "Acme", Telefono: "111"}}

	got := Merge(imported, current, mergeTime).Records[0]
	if got.Email != "old@acme.it" || got.Telefono != "111" {
		t.Errorf("merged = %+v", got)
	}
}

func TestMatchKey(t *testing.T) {
	n, a := MatchKey(&record.Record{Nome: "  Mario ROSSI ", Azienda: "Acme S.r.l."})
	if n != "mario rossi" || a != "acme s.r.l." {
		t.Errorf("MatchKey = (%q, %q)", n, a)
	}
}

// Merging an import into a collection that already holds exactly that
// import changes nothing but lastUpdate: everything matches, nothing is
// inserted.
func TestProperty_MergeIsIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("re-merging an import updates every record", prop.ForAll(
		func(names []string, phone string) bool {
			seen := make(map[string]bool, len(names))
			var imported []record.Record
			for _, name := range names {
				key := strings.ToLower(name)
				if seen[key] {
					continue
				}
				seen[key] = true
				imported = append(imported, sheetRecord(
					"nome", name,
					"azienda", fmt.Sprintf("%s spa", name),
					"telefono", phone,
				))
			}

			first := Merge(imported, nil, mergeTime)
			second := Merge(imported, first.Records, mergeTime.Add(time.Hour))

			if second.Inserted != 0 || second.Updated != len(imported) {
				return false
			}
			if len(second.Records) != len(first.Records) {
				return false
			}
			for i := range first.Records {
				a, b := first.Records[i], second.Records[i]
				if a.ID != b.ID || a.Nome != b.Nome || a.Azienda != b.Azienda || a.Telefono != b.Telefono {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()),
		gen.NumString(),
	))

	properties.Property("merge never shrinks the collection", prop.ForAll(
		func(current, imported []string) bool {
			cur := make([]record.Record, len(current))
			for i, name := range current {
				cur[i] = record.Record{ID: record.NewID(int64(i + 1)), Nome: name, Azienda: name}
			}
			imp := make([]record.Record, len(imported))
			for i, name := range imported {
				imp[i] = sheetRecord("nome", name, "azienda", name)
			}

			res := Merge(imp, cur, mergeTime)
			return len(res.Records) == len(cur)+res.Inserted &&
				res.Inserted+res.Updated == len(imp)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
