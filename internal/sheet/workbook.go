package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyWorkbook is returned when a workbook has no sheets at all.
var ErrEmptyWorkbook = errors.New("empty file: workbook has no sheets")

// Format identifies the container a workbook was read from.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Sheet is one worksheet: a name and its rows, top to bottom.
// Rows may have different lengths; missing trailing cells are empty.
type Sheet struct {
	Name string
	Rows [][]Cell
}

// Workbook is an ordered list of sheets.
type Workbook struct {
	Format Format
	Sheets []Sheet
}

// Names returns the sheet names in workbook order.
func (w *Workbook) Names() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the sheet with exactly this name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}

// Open reads a workbook from disk.
func Open(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data, filepath.Base(path))
}

// Parse decodes workbook bytes. The container is recognised by magic bytes
// first and by the file name's extension second; anything that is neither
// a zip nor an OLE document is read as delimited text.
func Parse(data []byte, fileName string) (*Workbook, error) {
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}

	var (
		wb  *Workbook
		err error
	)
	switch DetectFormat(data, fileName) {
	case FormatXLSX:
		wb, err = readXLSX(data)
	case FormatXLS:
		wb, err = readXLS(data)
	default:
		wb, err = readCSV(data, fileName)
	}
	if err != nil {
		return nil, err
	}
	if len(wb.Sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return wb, nil
}

// DetectFormat guesses the container of data.
func DetectFormat(data []byte, fileName string) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm", ".xltx":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	}
	return FormatCSV
}
