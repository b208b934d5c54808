// Package sheet reads spreadsheet workbooks (xlsx, xls, csv) into a uniform
// grid of typed cells and writes single-sheet xlsx documents.
//
// Readers never interpret headers; they only surface what the file holds.
// Header detection and field mapping live in the import pipeline.
package sheet

import (
	"strconv"
	"strings"
	"time"
)

// CellKind is the native type of a cell as stored in the workbook.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellBool
	CellDate
)

// Cell is one spreadsheet value. Only the field matching Kind is meaningful.
type Cell struct {
	Kind   CellKind
	Str    string
	Number float64
	Bool   bool
	Time   time.Time
}

// String returns a text cell. Empty text yields an empty cell.
func String(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellString, Str: s}
}

// Number returns a numeric cell.
func Number(n float64) Cell { return Cell{Kind: CellNumber, Number: n} }

// Bool returns a boolean cell.
func Bool(b bool) Cell { return Cell{Kind: CellBool, Bool: b} }

// Date returns a date cell.
func Date(t time.Time) Cell { return Cell{Kind: CellDate, Time: t} }

// IsEmpty reports whether the cell holds nothing, or only whitespace.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellString:
		return strings.TrimSpace(c.Str) == ""
	}
	return false
}

// Text renders the cell the way a spreadsheet shows it without formatting:
// numbers in shortest form, booleans as TRUE/FALSE, dates as ISO-8601 UTC
// with milliseconds.
func (c Cell) Text() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	case CellDate:
		return c.Time.UTC().Format(ISODateTime)
	}
	return ""
}

// ISODateTime is the layout date cells are rendered with.
const ISODateTime = "2006-01-02T15:04:05.000Z"
