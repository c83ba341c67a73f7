package htmltable

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Table is a rectangular table with named columns. It is the canonical
// form for scraped HTML tables and for handoff to tabular sinks.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the index of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has a column with the given label
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the cell at row for the named column, or "" if the column
// does not exist or the row is ragged
func (t *Table) Cell(row int, column string) string {
	i := t.ColumnIndex(column)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// DropColumns removes the named columns if present. Unknown names are
// ignored; sources add and remove noise columns without notice.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[int]bool)
	for _, name := range names {
		if i := t.ColumnIndex(name); i >= 0 {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return
	}

	keep := func(cells []string) []string {
		out := make([]string, 0, len(cells)-len(drop))
		for i, c := range cells {
			if !drop[i] {
				out = append(out, c)
			}
		}
		return out
	}

	t.Columns = keep(t.Columns)
	for i, row := range t.Rows {
		t.Rows[i] = keep(row)
	}
}

// RenameColumnPrefix renames the first column whose label starts with
// prefix. Returns false when no column matches.
func (t *Table) RenameColumnPrefix(prefix, to string) bool {
	for i, c := range t.Columns {
		if strings.HasPrefix(c, prefix) {
			t.Columns[i] = to
			return true
		}
	}
	return false
}

// ParseAll extracts every <table> element in the document. Header cells
// come from the first row (th or td); remaining rows become data rows
// padded or truncated to the header width.
func ParseAll(doc *goquery.Document) []*Table {
	var tables []*Table

	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		table := parseOne(sel)
		if table != nil {
			tables = append(tables, table)
		}
	})

	return tables
}

func parseOne(sel *goquery.Selection) *Table {
	rows := sel.Find("tr")
	if rows.Length() == 0 {
		return nil
	}

	table := &Table{}

	rows.Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})

		if len(cells) == 0 {
			return
		}

		if table.Columns == nil {
			table.Columns = cells
			return
		}

		// Pad ragged rows to the header width so cell lookup by
		// column index stays valid
		for len(cells) < len(table.Columns) {
			cells = append(cells, "")
		}
		table.Rows = append(table.Rows, cells[:len(table.Columns)])
	})

	if table.Columns == nil {
		return nil
	}

	return table
}
