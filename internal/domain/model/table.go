package model

// Table is a column-ordered numeric table keyed by date.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// TableRow is one date of a Table; Values align with Table.Columns.
type TableRow struct {
	Date   Date    `json:"date"`
	Values []Value `json:"values"`
}

// Index returns the position of column or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Column returns every row's value of column.
func (t *Table) Column(column string) ([]Value, bool) {
	idx := t.Index(column)
	if idx < 0 {
		return nil, false
	}
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		if idx < len(r.Values) {
			out[i] = r.Values[idx]
		}
	}
	return out, true
}
