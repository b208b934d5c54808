package sheet

import (
	"bytes"
	"fmt"

	"github.com/shakinm/xlsReader/xls"
)

// readXLS reads a legacy BIFF workbook. Cell types are not recovered;
// every value comes back as text and the import pipeline interprets it.
func readXLS(data []byte) (*Workbook, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}

	wb := &Workbook{Format: FormatXLS}
	for _, sheet := range workbook.GetSheets() {
		sh := Sheet{Name: sheet.GetName()}
		for _, row := range sheet.GetRows() {
			cols := row.GetCols()
			cells := make([]Cell, len(cols))
			for i, col := range cols {
				cells[i] = String(col.GetString())
			}
			sh.Rows = append(sh.Rows, cells)
		}
		wb.Sheets = append(wb.Sheets, sh)
	}
	return wb, nil
}
