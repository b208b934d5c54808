package core

import (
	"strconv"

	"github.com/JonMunkholm/giftcrm/internal/record"
	"github.com/JonMunkholm/giftcrm/internal/sheet"
)

// Column is one keyed cell of a materialized row.
type Column struct {
	Key  string
	Cell sheet.Cell
}

// Row is a sheet row keyed by header, in column order.
type Row []Column

// populated counts the non-empty cells of the row.
func (r Row) populated() int {
	n := 0
	for _, c := range r {
		if !c.Cell.IsEmpty() {
			n++
		}
	}
	return n
}

// materializer turns a cell grid into keyed rows.
type materializer struct {
	strategy Strategy
	rows     func(grid [][]sheet.Cell) []Row
}

// materializers are tried in order; the first whose rows are usable wins,
// and the last one is used regardless.
var materializers = []materializer{
	{StrategyHeaderRow, headerRowRows},
	{StrategyColumnLetters, columnLetterRows},
	{StrategyFieldOrder, fieldOrderRows},
}

// Materialize keys the grid's rows using the first header interpretation
// that yields something usable: at least one row with more than one
// populated cell.
func Materialize(grid [][]sheet.Cell) ([]Row, Strategy) {
	var (
		rows     []Row
		strategy Strategy
	)
	for _, m := range materializers {
		rows, strategy = m.rows(grid), m.strategy
		if usable(rows) {
			return rows, strategy
		}
	}
	return rows, strategy
}

func usable(rows []Row) bool {
	for _, r := range rows {
		if r.populated() > 1 {
			return true
		}
	}
	return false
}

// headerRowRows reads row one as column names. Blank names become
// __EMPTY, __EMPTY_1, ...; repeated names get a _1, _2 suffix.
func headerRowRows(grid [][]sheet.Cell) []Row {
	if len(grid) == 0 {
		return nil
	}
	width := gridWidth(grid)
	keys := make([]string, width)
	seen := make(map[string]int, width)
	empties := 0
	for i := range keys {
		name := ""
		if i < len(grid[0]) {
			name = CleanCell(grid[0][i].Text())
		}
		if name == "" {
			name = "__EMPTY"
			if empties > 0 {
				name += "_" + strconv.Itoa(empties)
			}
			empties++
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name += "_" + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		keys[i] = name
	}
	return keyRows(grid[1:], keys)
}

// columnLetterRows keys every row, including the first, by column letter.
func columnLetterRows(grid [][]sheet.Cell) []Row {
	width := gridWidth(grid)
	keys := make([]string, width)
	for i := range keys {
		keys[i] = sheet.ColumnName(i)
	}
	return keyRows(grid, keys)
}

// fieldOrderRows keys every row by the positional field layout. Columns
// past the layout are dropped.
func fieldOrderRows(grid [][]sheet.Cell) []Row {
	width := gridWidth(grid)
	if width > len(record.ColumnOrder) {
		width = len(record.ColumnOrder)
	}
	return keyRows(grid, record.ColumnOrder[:width])
}

// keyRows pairs each row's cells with keys by position. Rows with no
// populated cell are dropped.
func keyRows(grid [][]sheet.Cell, keys []string) []Row {
	rows := make([]Row, 0, len(grid))
	for _, cells := range grid {
		row := make(Row, len(keys))
		for i, key := range keys {
			row[i].Key = key
			if i < len(cells) {
				row[i].Cell = cells[i]
			}
		}
		if row.populated() == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func gridWidth(grid [][]sheet.Cell) int {
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
