package core

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/giftcrm/internal/record"
	"github.com/JonMunkholm/giftcrm/internal/sheet"
)

// Importer reads workbooks into normalized records. The zero value is not
// usable; call NewImporter.
type Importer struct {
	now   func() time.Time
	parse func(data []byte, fileName string) (*sheet.Workbook, error)
}

// NewImporter returns an importer stamping records with the wall clock.
func NewImporter() *Importer {
	return &Importer{now: time.Now, parse: sheet.Parse}
}

// ImportFile reads the workbook at path. It never returns an error: read
// and parse failures come back as an unsuccessful result.
func (im *Importer) ImportFile(path string, kind record.Kind) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return failedImport(kind, fmt.Errorf("read file: %w", err))
	}
	return im.ImportBytes(data, path, kind)
}

// ImportBytes reads an in-memory workbook; fileName selects the format
// when the content does not identify it.
func (im *Importer) ImportBytes(data []byte, fileName string, kind record.Kind) (result ImportResult) {
	defer recoverImport(kind, &result)

	parse := im.parse
	if parse == nil {
		parse = sheet.Parse
	}
	wb, err := parse(data, fileName)
	if err != nil {
		return failedImport(kind, err)
	}
	return im.ImportWorkbook(wb, kind)
}

// ImportWorkbook selects the sheet for kind, materializes its rows and
// keeps the records that pass [Accept].
func (im *Importer) ImportWorkbook(wb *sheet.Workbook, kind record.Kind) (result ImportResult) {
	defer recoverImport(kind, &result)

	name, ok := sheet.SelectSheet(wb.Names(), string(kind))
	if !ok {
		return failedImport(kind, sheet.ErrEmptyWorkbook)
	}
	sh, _ := wb.Sheet(name)

	rows, strategy := Materialize(sh.Rows)
	norm := newNormalizer(kind, im.now().UnixMilli())

	kept := make([]record.Record, 0, len(rows))
	for i, row := range rows {
		rec := norm.Row(row, i)
		if Accept(&rec) {
			kept = append(kept, rec)
		}
	}

	return ImportResult{
		Success:  true,
		Message:  fmt.Sprintf("%d/%d valid records", len(kept), len(rows)),
		Data:     kept,
		BatchID:  uuid.NewString(),
		Kind:     kind,
		Sheet:    name,
		Strategy: strategy,
		Total:    len(rows),
		Kept:     len(kept),
		Unmapped: norm.unmapped,
	}
}

// recoverImport turns a panic in a spreadsheet library into a failed
// result. It must be deferred directly.
func recoverImport(kind record.Kind, result *ImportResult) {
	if p := recover(); p != nil {
		*result = failedImport(kind, fmt.Errorf("import panic: %v", p))
	}
}

func failedImport(kind record.Kind, err error) ImportResult {
	return ImportResult{
		Success: false,
		Message: err.Error(),
		Code:    MapError(err).Code,
		Data:    []record.Record{},
		Kind:    kind,
	}
}
