package sheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Built-in number formats that render a serial number as a date or time.
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	45: true, 46: true, 47: true,
}

func readXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	wb := &Workbook{Format: FormatXLSX}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("invalid workbook: sheet %q: %w", name, err)
		}

		sh := Sheet{Name: name, Rows: make([][]Cell, len(rows))}
		for r, row := range rows {
			cells := make([]Cell, len(row))
			for c, raw := range row {
				if raw == "" {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					cells[c] = String(raw)
					continue
				}
				cells[c] = xlsxCell(f, name, ref, raw)
			}
			sh.Rows[r] = cells
		}
		wb.Sheets = append(wb.Sheets, sh)
	}
	return wb, nil
}

// xlsxCell recovers the native type of a cell from its stored type and,
// for plain numbers, from the number format applied to it.
func xlsxCell(f *excelize.File, sheetName, ref, raw string) Cell {
	typ, err := f.GetCellType(sheetName, ref)
	if err != nil {
		return String(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		return Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return Date(t)
		}
		return String(raw)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return String(raw)
		}
		if isDateFormatted(f, sheetName, ref) {
			if t, err := excelize.ExcelDateToTime(n, false); err == nil {
				return Date(t)
			}
		}
		return Number(n)
	}
	return String(raw)
}

func isDateFormatted(f *excelize.File, sheetName, ref string) bool {
	styleID, err := f.GetCellStyle(sheetName, ref)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if dateNumFmts[style.NumFmt] {
		return true
	}
	if style.CustomNumFmt != nil {
		return looksLikeDateFormat(*style.CustomNumFmt)
	}
	return false
}

// looksLikeDateFormat spots custom formats such as "dd/mm/yyyy".
// Quoted literals and bracketed sections ([Red], [$-410]) are ignored.
func looksLikeDateFormat(format string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	return strings.Contains(s, "yy") || strings.Contains(s, "dd") || strings.Contains(s, "mmm")
}
