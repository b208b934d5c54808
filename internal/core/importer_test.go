package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/giftcrm/internal/record"
	"github.com/JonMunkholm/giftcrm/internal/sheet"
)

var importTime = time.Date(2024, 11, 4, 10, 0, 0, 0, time.UTC)

func testImporter() *Importer {
	return &Importer{now: func() time.Time { return importTime }}
}

func strRow(values ...string) []sheet.Cell {
	cells := make([]sheet.Cell, len(values))
	for i, v := range values {
		cells[i] = sheet.String(v)
	}
	return cells
}

// ----------------------------------------------------------------------------
// Materialize Tests
// ----------------------------------------------------------------------------

func TestMaterialize_HeaderRow(t *testing.T) {
	grid := [][]sheet.Cell{
		strRow("Nome", "", "", "Nome"),
		strRow("Mario", "x", "y", "Rossi"),
		strRow("", "", "", ""),
		strRow("Anna"),
	}

	rows, strategy := Materialize(grid)
	if strategy != StrategyHeaderRow {
		t.Fatalf("strategy = %q, want %q", strategy, StrategyHeaderRow)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank row dropped)", len(rows))
	}

	wantKeys := []string{"Nome", "__EMPTY", "__EMPTY_1", "Nome_1"}
	for i, col := range rows[0] {
		if col.Key != wantKeys[i] {
			t.Errorf("key[%d] = %q, want %q", i, col.Key, wantKeys[i])
		}
	}
	if rows[1][3].Cell.Kind != sheet.CellEmpty {
		t.Errorf("short row should be padded with empty cells, got %+v", rows[1][3].Cell)
	}
}

func TestMaterialize_ColumnLetters(t *testing.T) {
	grid := [][]sheet.Cell{strRow("Mario", "Acme", "Via Verdi 3")}

	rows, strategy := Materialize(grid)
	if strategy != StrategyColumnLetters {
		t.Fatalf("strategy = %q, want %q", strategy, StrategyColumnLetters)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	for i, want := range []string{"A", "B", "C"} {
		if rows[0][i].Key != want {
			t.Errorf("key[%d] = %q, want %q", i, rows[0][i].Key, want)
		}
	}
}

func TestMaterialize_FieldOrder(t *testing.T) {
	grid := [][]sheet.Cell{strRow("Mario"), strRow("Anna")}

	rows, strategy := Materialize(grid)
	if strategy != StrategyFieldOrder {
		t.Fatalf("strategy = %q, want %q", strategy, StrategyFieldOrder)
	}
	if len(rows) != 2 || rows[0][0].Key != record.FieldNome {
		t.Fatalf("rows = %+v, want two rows keyed by %q", rows, record.FieldNome)
	}
}

func TestMaterialize_FieldOrderCapsWidth(t *testing.T) {
	wide := make([]string, len(record.ColumnOrder)+3)
	wide[0] = "only"
	rows := fieldOrderRows([][]sheet.Cell{strRow(wide...)})
	if len(rows) != 1 || len(rows[0]) != len(record.ColumnOrder) {
		t.Fatalf("row width = %d, want %d", len(rows[0]), len(record.ColumnOrder))
	}
}

// ----------------------------------------------------------------------------
// Accept Tests
// ----------------------------------------------------------------------------

func TestAccept(t *testing.T) {
	build := func(values map[string]string) record.Record {
		var rec record.Record
		for field, value := range values {
			assign(&rec, field, sheet.String(value))
		}
		return rec
	}

	tests := []struct {
		name   string
		values map[string]string
		want   bool
	}{
		{"name and two fields", map[string]string{"nome": "Mario", "cap": "00184", "localita": "Roma"}, true},
		{"company and two fields", map[string]string{"azienda": "Acme", "cap": "00184", "note": "x"}, true},
		{"name and one field", map[string]string{"nome": "Mario", "cap": "00184"}, false},
		{"three fields without name or company", map[string]string{"cap": "1", "localita": "Roma", "note": "x"}, false},
		{"cleared flag does not count", map[string]string{"nome": "Mario", "azienda": "Acme", "gls": "no"}, false},
		{"set flag counts", map[string]string{"nome": "Mario", "azienda": "Acme", "gls": "x"}, true},
		{"extra field counts", map[string]string{"nome": "Mario", "azienda": "Acme", "codice_fiscale": "RSSMRA"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := build(tt.values)
			if got := Accept(&rec); got != tt.want {
				t.Errorf("Accept() = %v, want %v (imported %v)", got, tt.want, rec.Imported)
			}
		})
	}
}

func TestAccept_IgnoresFieldsNotFromSheet(t *testing.T) {
	rec := record.Record{Nome: "Mario", Azienda: "Acme", Cap: "00184", Localita: "Roma"}
	if Accept(&rec) {
		t.Error("a record with no imported fields should be rejected")
	}
}

// ----------------------------------------------------------------------------
// Importer Tests
// ----------------------------------------------------------------------------

const clientiCSV = "Nome;Azienda;Indirizzo;CAP;Città;Prov;Tel.;GLS\n" +
	"Mario Rossi;Acme;Via Roma, 12;00184;Roma;RM;06123;Sì\n" +
	"Anna;;;;;;;\n" +
	";;;;;;;\n" +
	";Beta Srl;Corso Italia 5/B;;Milano;;;x\n"

func TestImportBytes_HeaderRowCSV(t *testing.T) {
	res := testImporter().ImportBytes([]byte(clientiCSV), "clienti.csv", record.KindClients)

	if !res.Success {
		t.Fatalf("import failed: %s", res.Message)
	}
	if res.Message != "2/3 valid records" {
		t.Errorf("Message = %q, want %q", res.Message, "2/3 valid records")
	}
	if res.Strategy != StrategyHeaderRow || res.Total != 3 || res.Kept != 2 || res.Rejected() != 1 {
		t.Errorf("strategy=%s total=%d kept=%d rejected=%d", res.Strategy, res.Total, res.Kept, res.Rejected())
	}
	if res.BatchID == "" {
		t.Error("BatchID should be set")
	}

	mario := res.Data[0]
	want := record.Record{
		ID:        record.NewID(importTime.UnixMilli()),
		Tipo:      record.KindClients,
		Nome:      "Mario Rossi",
		Azienda:   "Acme",
		Indirizzo: "Via Roma",
		Civico:    "12",
		Cap:       "00184",
		Localita:  "Roma",
		Provincia: "RM",
		Telefono:  "06123",
		GLS:       true,
		CreatedAt: importTime.UnixMilli(),
	}
	want.Imported = mario.Imported
	if !equalRecords(mario, want) {
		t.Errorf("record = %+v\nwant     %+v", mario, want)
	}

	beta := res.Data[1]
	if beta.ID != record.NewID(importTime.UnixMilli()+2) {
		t.Errorf("third row id = %s, want now+2", beta.ID)
	}
	if beta.Indirizzo != "Corso Italia" || beta.Civico != "5/B" || !bool(beta.GLS) {
		t.Errorf("beta = %+v", beta)
	}
	if beta.Eliminato {
		t.Error("imported records must not be deleted")
	}
}

func TestImportWorkbook_ColumnLetters(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{
		Name: "Clienti",
		Rows: [][]sheet.Cell{strRow("Mario", "Acme", "Via Verdi 3")},
	}}}

	res := testImporter().ImportWorkbook(wb, record.KindClients)
	if res.Strategy != StrategyColumnLetters || res.Kept != 1 {
		t.Fatalf("strategy=%s kept=%d, want column letters with one record", res.Strategy, res.Kept)
	}
	rec := res.Data[0]
	if rec.Nome != "Mario" || rec.Azienda != "Acme" || rec.Indirizzo != "Via Verdi" || rec.Civico != "3" {
		t.Errorf("positional record = %+v", rec)
	}
	if len(res.Unmapped) != 0 {
		t.Errorf("column letters should never be reported unmapped: %+v", res.Unmapped)
	}
}

func TestImportWorkbook_FieldOrderRejectsSparseRows(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{
		Name: "Foglio1",
		Rows: [][]sheet.Cell{strRow("Mario"), strRow("Anna")},
	}}}

	res := testImporter().ImportWorkbook(wb, record.KindPartners)
	if !res.Success || res.Strategy != StrategyFieldOrder {
		t.Fatalf("success=%v strategy=%s", res.Success, res.Strategy)
	}
	if res.Message != "0/2 valid records" || len(res.Data) != 0 {
		t.Errorf("Message = %q, records = %d", res.Message, len(res.Data))
	}
}

func TestImportWorkbook_SelectsSheetForKind(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{
		{Name: "Partner", Rows: [][]sheet.Cell{strRow("Nome", "Azienda", "Cap"), strRow("P", "PA", "1")}},
		{Name: "Clienti", Rows: [][]sheet.Cell{strRow("Nome", "Azienda", "Cap"), strRow("C", "CA", "2")}},
	}}

	res := testImporter().ImportWorkbook(wb, record.KindClients)
	if res.Sheet != "Clienti" || len(res.Data) != 1 || res.Data[0].Nome != "C" {
		t.Fatalf("sheet=%q data=%+v", res.Sheet, res.Data)
	}
	if res.Data[0].Tipo != record.KindClients {
		t.Errorf("tipo = %q, want %q", res.Data[0].Tipo, record.KindClients)
	}
}

func TestImportWorkbook_UnmappedColumns(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{
		Name: "Clienti",
		Rows: [][]sheet.Cell{
			strRow("Nome", "Azienda", "Codice Fiscale"),
			strRow("Mario", "Acme", "RSSMRA80A01H501U"),
			strRow("Anna", "Beta", "BNCNNA85B41F205X"),
		},
	}}}

	res := testImporter().ImportWorkbook(wb, record.KindClients)
	if len(res.Unmapped) != 1 {
		t.Fatalf("unmapped = %+v, want one entry", res.Unmapped)
	}
	if u := res.Unmapped[0]; u.Column != "Codice Fiscale" || u.Key != "codice_fiscale" {
		t.Errorf("unmapped entry = %+v", u)
	}
	if got := res.Data[0].Get("codice_fiscale"); got != "RSSMRA80A01H501U" {
		t.Errorf("extra field = %q", got)
	}
}

func TestImportBytes_XLSXTypedCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Clienti"); err != nil {
		t.Fatal(err)
	}
	header := []interface{}{"Nome", "Azienda", "CAP", "Note", "Grappa", "GLS"}
	if err := f.SetSheetRow("Clienti", "A1", &header); err != nil {
		t.Fatal(err)
	}
	row := []interface{}{"Mario", "Acme", 20121, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), 1, true}
	if err := f.SetSheetRow("Clienti", "A2", &row); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	res := testImporter().ImportBytes(buf.Bytes(), "upload.bin", record.KindClients)
	if !res.Success || len(res.Data) != 1 {
		t.Fatalf("success=%v message=%q", res.Success, res.Message)
	}
	rec := res.Data[0]
	if rec.Cap != "20121" {
		t.Errorf("cap = %q, want 20121", rec.Cap)
	}
	if rec.Note != "2024-12-20T00:00:00.000Z" {
		t.Errorf("note = %q, want ISO date", rec.Note)
	}
	if !bool(rec.Grappa) || !bool(rec.GLS) {
		t.Errorf("grappa=%v gls=%v, want both set", rec.Grappa, rec.GLS)
	}
}

func TestImportBytes_Failures(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		fileName string
		wantCode string
	}{
		{"empty file", nil, "clienti.xlsx", "FILE005"},
		{"corrupt workbook", []byte("PK\x03\x04not really a zip"), "clienti.xlsx", "FILE003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testImporter().ImportBytes(tt.data, tt.fileName, record.KindClients)
			if res.Success {
				t.Fatal("expected failure")
			}
			if res.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q (message %q)", res.Code, tt.wantCode, res.Message)
			}
			if res.Data == nil || len(res.Data) != 0 {
				t.Errorf("Data = %v, want empty non-nil slice", res.Data)
			}
		})
	}
}

func TestImportFile_Missing(t *testing.T) {
	res := testImporter().ImportFile(filepath.Join(t.TempDir(), "missing.xlsx"), record.KindClients)
	if res.Success || res.Code != "FILE006" {
		t.Errorf("success=%v code=%q message=%q", res.Success, res.Code, res.Message)
	}
}

func TestImportBytes_ParserPanicBecomesFailure(t *testing.T) {
	im := testImporter()
	im.parse = func([]byte, string) (*sheet.Workbook, error) {
		panic("index out of range in OLE2 sector table")
	}

	res := im.ImportBytes([]byte("broken"), "clienti.xls", record.KindClients)
	if res.Success || res.Code != "IMP003" {
		t.Errorf("success=%v code=%q message=%q", res.Success, res.Code, res.Message)
	}
	if len(res.Data) != 0 {
		t.Errorf("a failed import returned %d records", len(res.Data))
	}
}

func TestImportFile_ParserPanicBecomesFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clienti.xls")
	if err := os.WriteFile(path, []byte("broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	im := testImporter()
	im.parse = func([]byte, string) (*sheet.Workbook, error) { panic("boom") }

	if res := im.ImportFile(path, record.KindClients); res.Success || res.Code != "IMP003" {
		t.Errorf("success=%v code=%q message=%q", res.Success, res.Code, res.Message)
	}
}

// equalRecords compares everything but the import provenance.
func equalRecords(a, b record.Record) bool {
	a.Imported, b.Imported = nil, nil
	return a.ID == b.ID && a.Tipo == b.Tipo &&
		a.Nome == b.Nome && a.Azienda == b.Azienda &&
		a.Indirizzo == b.Indirizzo && a.Civico == b.Civico &&
		a.Cap == b.Cap && a.Localita == b.Localita && a.Provincia == b.Provincia &&
		a.Telefono == b.Telefono && a.Email == b.Email && a.Note == b.Note &&
		a.Tipologia == b.Tipologia && a.Grappa == b.Grappa && a.ExtraAltro == b.ExtraAltro &&
		a.ConsegnaSpedizione == b.ConsegnaSpedizione && a.GLS == b.GLS &&
		a.Eliminato == b.Eliminato && a.EliminatoIl == b.EliminatoIl &&
		a.CreatedAt == b.CreatedAt && a.LastUpdate == b.LastUpdate
}
