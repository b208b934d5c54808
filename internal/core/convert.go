package core

// convert.go turns spreadsheet cells into record values.
//
// Cells arrive typed from xlsx (number, bool, date) and as plain text from
// xls and csv. The gift flags accept whatever people type in a checkbox
// column: "x", "sì", "✓", TRUE, 1.

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/JonMunkholm/giftcrm/internal/record"
	"github.com/JonMunkholm/giftcrm/internal/sheet"
)

// truthyTokens are the text values read as a set flag, compared after
// trimming, NFC and lower-casing.
var truthyTokens = map[string]bool{
	"1":    true,
	"true": true,
	"yes":  true,
	"sì":   true,
	"si":   true,
	"vero": true,
	"x":    true,
	"✓":    true,
	"✔":    true,
	"☑":    true,
	"✅":    true,
}

// CleanCell trims a text value and strips the ="..." wrapper spreadsheet
// exports use to keep leading zeros.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// IsTruthy reports whether a cell sets a gift flag.
func IsTruthy(c sheet.Cell) bool {
	switch c.Kind {
	case sheet.CellBool:
		return c.Bool
	case sheet.CellNumber:
		return c.Number == 1
	case sheet.CellString:
		tok := strings.ToLower(norm.NFC.String(CleanCell(c.Str)))
		return truthyTokens[tok]
	}
	return false
}

// CellValue renders a cell as the stored value for field. Flags become
// "1" or "", dates their ISO-8601 UTC form, everything else trimmed text.
func CellValue(field string, c sheet.Cell) string {
	if record.IsFlagField(field) {
		return record.Flag(IsTruthy(c)).String()
	}

	switch c.Kind {
	case sheet.CellDate:
		return c.Time.UTC().Format(sheet.ISODateTime)
	case sheet.CellBool:
		return strconv.FormatBool(c.Bool)
	case sheet.CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case sheet.CellString:
		return CleanCell(c.Str)
	}
	return ""
}
