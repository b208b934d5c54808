package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/giftcrm/internal/record"
)

// Merge reconciles imported records into current, matching on name and
// company (case-insensitive, trimmed). Records missing either one never
// match and are always appended.
//
// A matched record keeps its id, its deletion state and its creation time;
// the fields the import read from the sheet overwrite it and lastUpdate is
// stamped. Unmatched records are appended with fresh ids. Each record is
// matched at most once, and records appended earlier in the batch are
// candidates for later ones. current is not modified.
func Merge(imported, current []record.Record, now time.Time) MergeResult {
	nowMs := now.UnixMilli()

	merged := make([]record.Record, len(current), len(current)+len(imported))
	for i := range current {
		merged[i] = current[i].Clone()
	}
	matched := make([]bool, len(merged), cap(merged))

	var inserted, updated int
	for i := range imported {
		imp := &imported[i]
		if idx := findMatch(merged, matched, imp); idx >= 0 {
			overwrite(&merged[idx], imp, nowMs)
			matched[idx] = true
			updated++
			continue
		}

		rec := imp.Clone()
		rec.ID = record.NewID(nowMs + int64(len(current)) + int64(inserted))
		rec.Eliminato = false
		rec.EliminatoIl = 0
		rec.CreatedAt = nowMs
		rec.LastUpdate = 0
		merged = append(merged, rec)
		matched = append(matched, false)
		inserted++
	}

	return MergeResult{
		Records:  merged,
		Inserted: inserted,
		Updated:  updated,
		Message:  fmt.Sprintf("%d nuovi record, %d record aggiornati", inserted, updated),
	}
}

// MatchKey is the identity used by [Merge].
func MatchKey(r *record.Record) (nome, azienda string) {
	return strings.ToLower(strings.TrimSpace(r.Nome)), strings.ToLower(strings.TrimSpace(r.Azienda))
}

func findMatch(records []record.Record, matched []bool, imp *record.Record) int {
	nome, azienda := MatchKey(imp)
	if nome == "" || azienda == "" {
		return -1
	}
	for i := range records {
		if matched[i] {
			continue
		}
		n, a := MatchKey(&records[i])
		if n == nome && a == azienda {
			return i
		}
	}
	return -1
}

// overwrite copies the imported fields onto dst. Records without import
// provenance contribute every non-empty data field.
func overwrite(dst, imp *record.Record, nowMs int64) {
	if imp.Imported != nil {
		for _, field := range imp.Imported {
			if field == record.FieldID {
				continue
			}
			dst.Set(field, imp.Get(field))
		}
	} else {
		for _, field := range imp.DataFields() {
			if v := imp.Get(field); v != "" {
				dst.Set(field, v)
			}
		}
	}
	if imp.Tipo != "" {
		dst.Tipo = imp.Tipo
	}
	dst.LastUpdate = nowMs
}
