// Package table holds the single in-memory result of a materialized query.
package table

// Table is a fully materialized result: named, ordered columns and rows in
// source order. It is built once per result set and never mutated after
// construction.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Empty returns a table with no columns and no rows.
func Empty() Table {
	return Table{}
}

func (t Table) RowCount() int {
	return len(t.Rows)
}

func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}
