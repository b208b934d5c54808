package core

import (
	"regexp"
	"strings"

	"github.com/JonMunkholm/giftcrm/internal/record"
	"github.com/JonMunkholm/giftcrm/internal/sheet"
)

var (
	// addressNumber splits "Via Roma 12/B" or "Via Roma, 12" into street and number.
	addressNumber = regexp.MustCompile(`^(.+?)[,\s]+(\d\S*)$`)

	columnLetters = regexp.MustCompile(`^[A-Z]{1,2}$`)
)

// minPopulatedFields is how many non-empty sheet fields a row needs to be kept.
const minPopulatedFields = 3

// normalizer converts materialized rows into records for one import.
type normalizer struct {
	kind record.Kind
	now  int64 // import time, unix milliseconds

	unmapped []UnmappedColumn
	reported map[string]bool
}

func newNormalizer(kind record.Kind, nowMillis int64) *normalizer {
	return &normalizer{kind: kind, now: nowMillis, reported: make(map[string]bool)}
}

// Row converts one row. index is the row's position among the
// materialized rows and seeds the synthesized id.
func (n *normalizer) Row(row Row, index int) record.Record {
	var rec record.Record

	if isPositional(row) {
		for _, col := range row {
			idx, err := sheet.ColumnIndex(col.Key)
			if err != nil || idx >= len(record.ColumnOrder) || col.Cell.IsEmpty() {
				continue
			}
			assign(&rec, record.ColumnOrder[idx], col.Cell)
		}
	} else {
		for _, col := range row {
			if col.Cell.IsEmpty() {
				continue
			}
			field, known := ResolveField(col.Key)
			if !known {
				n.reportUnmapped(col.Key, field)
			}
			assign(&rec, field, col.Cell)
		}
	}

	splitAddress(&rec)

	rec.Tipo = n.kind
	rec.Eliminato = false
	rec.CreatedAt = n.now
	if rec.ID == "" {
		rec.ID = record.NewID(n.now + int64(index))
	}
	return rec
}

func (n *normalizer) reportUnmapped(column, key string) {
	if n.reported[column] {
		return
	}
	n.reported[column] = true
	n.unmapped = append(n.unmapped, UnmappedColumn{
		Column:     column,
		Key:        key,
		Suggestion: SuggestField(column),
	})
}

// assign stores a cell under field and records that the sheet supplied it.
func assign(rec *record.Record, field string, c sheet.Cell) {
	rec.Set(field, CellValue(field, c))
	for _, f := range rec.Imported {
		if f == field {
			return
		}
	}
	rec.Imported = append(rec.Imported, field)
}

// isPositional reports whether every key of the row is a column letter.
func isPositional(row Row) bool {
	if len(row) == 0 {
		return false
	}
	for _, col := range row {
		if !columnLetters.MatchString(col.Key) {
			return false
		}
	}
	return true
}

// splitAddress moves a trailing house number from indirizzo into civico
// when civico is empty.
func splitAddress(rec *record.Record) {
	if rec.Civico != "" || rec.Indirizzo == "" {
		return
	}
	m := addressNumber.FindStringSubmatch(rec.Indirizzo)
	if m == nil {
		return
	}
	rec.Indirizzo = strings.TrimSpace(m[1])
	rec.Civico = m[2]
	assign(rec, record.FieldCivico, sheet.String(m[2]))
}

// Accept reports whether an imported record carries enough data to keep:
// a name or a company, and at least three non-empty fields from the sheet.
func Accept(rec *record.Record) bool {
	if rec.Nome == "" && rec.Azienda == "" {
		return false
	}
	populated := 0
	for _, field := range rec.Imported {
		if rec.Get(field) != "" {
			populated++
		}
	}
	return populated >= minPopulatedFields
}
