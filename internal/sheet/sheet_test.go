package sheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// ----------------------------------------------------------------------------
// SelectSheet Tests
// ----------------------------------------------------------------------------

func TestSelectSheet(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		kind  string
		want  string
	}{
		{"capitalized wins over verbatim", []string{"clienti", "Clienti"}, "clienti", "Clienti"},
		{"verbatim", []string{"Foglio1", "partner"}, "partner", "partner"},
		{"verbatim plus i", []string{"Foglio1", "partneri"}, "partner", "partneri"},
		{"truncated capitalized plus i", []string{"Foglio1", "Partnei"}, "partner", "Partnei"},
		{"contains case-insensitive", []string{"Foglio1", "Elenco CLIENTI 2024"}, "clienti", "Elenco CLIENTI 2024"},
		{"falls back to first sheet", []string{"Foglio1", "Foglio2"}, "clienti", "Foglio1"},
		{"empty kind falls back to first", []string{"A", "B"}, "", "A"},
		{"exact candidate beats earlier substring match", []string{"Vecchi partner", "Partner"}, "partner", "Partner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectSheet(tt.names, tt.kind)
			if !ok {
				t.Fatal("SelectSheet returned false for non-empty workbook")
			}
			if got != tt.want {
				t.Errorf("SelectSheet(%v, %q) = %q, want %q", tt.names, tt.kind, got, tt.want)
			}
		})
	}
}

func TestSelectSheet_EmptyWorkbook(t *testing.T) {
	if _, ok := SelectSheet(nil, "clienti"); ok {
		t.Error("SelectSheet(nil) should report no sheet")
	}
}

// ----------------------------------------------------------------------------
// Format detection and CSV
// ----------------------------------------------------------------------------

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		file string
		want Format
	}{
		{"zip magic", []byte("PK\x03\x04rest"), "whatever.bin", FormatXLSX},
		{"ole magic", append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, 0), "a.dat", FormatXLS},
		{"xlsx extension", []byte("garbage"), "a.XLSX", FormatXLSX},
		{"xls extension", []byte("garbage"), "a.xls", FormatXLS},
		{"text", []byte("nome;azienda"), "a.csv", FormatCSV},
		{"unknown extension", []byte("nome,azienda"), "a.txt", FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data, tt.file); got != tt.want {
				t.Errorf("DetectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_CSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFNome;Azienda;CAP\nMario;Acme;01234\n")

	wb, err := Parse(data, "clienti.csv")
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if wb.Format != FormatCSV {
		t.Errorf("Format = %q", wb.Format)
	}
	if len(wb.Sheets) != 1 || wb.Sheets[0].Name != "clienti" {
		t.Fatalf("Sheets = %+v", wb.Names())
	}

	rows := wb.Sheets[0].Rows
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0].Text() != "Nome" {
		t.Errorf("BOM not stripped: %q", rows[0][0].Text())
	}
	if rows[1][2].Text() != "01234" {
		t.Errorf("CAP = %q, want leading zero kept", rows[1][2].Text())
	}
}

func TestParse_CSVWindows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("Località,Città\nUdine,Sì\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	wb, err := Parse([]byte(encoded), "export.csv")
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	rows := wb.Sheets[0].Rows
	if rows[0][0].Text() != "Località" {
		t.Errorf("header = %q, want Località", rows[0][0].Text())
	}
	if rows[1][1].Text() != "Sì" {
		t.Errorf("value = %q, want Sì", rows[1][1].Text())
	}
}

func TestParse_EmptyFile(t *testing.T) {
	if _, err := Parse(nil, "a.xlsx"); err == nil {
		t.Error("Parse(nil) expected error")
	}
}

func TestParse_CorruptWorkbook(t *testing.T) {
	if _, err := Parse([]byte("PK\x03\x04not really a zip"), "a.xlsx"); err == nil {
		t.Error("Parse(corrupt xlsx) expected error")
	}
}

// ----------------------------------------------------------------------------
// XLSX
// ----------------------------------------------------------------------------

func TestParse_XLSXTypedCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet("Clienti"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	when := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	_ = f.SetCellValue("Clienti", "A1", "Nome")
	_ = f.SetCellValue("Clienti", "A2", "Mario")
	_ = f.SetCellValue("Clienti", "B2", true)
	_ = f.SetCellValue("Clienti", "C2", 33100)
	_ = f.SetCellValue("Clienti", "D2", when)

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	wb, err := Parse(buf.Bytes(), "book.xlsx")
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	sh, ok := wb.Sheet("Clienti")
	if !ok {
		t.Fatalf("sheet Clienti missing, have %v", wb.Names())
	}
	if len(sh.Rows) < 2 || len(sh.Rows[1]) < 4 {
		t.Fatalf("rows = %+v", sh.Rows)
	}

	row := sh.Rows[1]
	if row[0].Kind != CellString || row[0].Str != "Mario" {
		t.Errorf("A2 = %+v", row[0])
	}
	if row[1].Kind != CellBool || !row[1].Bool {
		t.Errorf("B2 = %+v, want bool true", row[1])
	}
	if row[2].Kind != CellNumber || row[2].Number != 33100 {
		t.Errorf("C2 = %+v, want number 33100", row[2])
	}
	if row[3].Kind != CellDate {
		t.Fatalf("D2 = %+v, want date", row[3])
	}
	if got := row[3].Time.Format("2006-01-02"); got != "2024-12-20" {
		t.Errorf("D2 date = %s", got)
	}
}

func TestTable_XLSX(t *testing.T) {
	table := Table{
		SheetName: "GLS",
		Header:    []string{"NOME", "CAP"},
		Rows:      [][]string{{"Acme", "01234"}},
		Widths:    []float64{30, 8},
	}

	buf, err := table.XLSX()
	if err != nil {
		t.Fatalf("XLSX error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if list := f.GetSheetList(); len(list) != 1 || list[0] != "GLS" {
		t.Fatalf("sheets = %v", list)
	}
	rows, err := f.GetRows("GLS")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "NOME" || rows[1][1] != "01234" {
		t.Errorf("rows = %v", rows)
	}
	w, err := f.GetColWidth("GLS", "A")
	if err != nil || w != 30 {
		t.Errorf("column A width = %v (%v), want 30", w, err)
	}
}

func TestColumnName(t *testing.T) {
	tests := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB"}
	for idx, want := range tests {
		if got := ColumnName(idx); got != want {
			t.Errorf("ColumnName(%d) = %q, want %q", idx, got, want)
		}
		back, err := ColumnIndex(want)
		if err != nil || back != idx {
			t.Errorf("ColumnIndex(%q) = %d, %v", want, back, err)
		}
	}
}

func TestCell_Text(t *testing.T) {
	tests := []struct {
		cell Cell
		want string
	}{
		{String("x"), "x"},
		{Number(12), "12"},
		{Number(12.5), "12.5"},
		{Bool(true), "TRUE"},
		{Date(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), "2024-01-02T03:04:05.000Z"},
		{Cell{}, ""},
	}
	for _, tt := range tests {
		if got := tt.cell.Text(); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
}
