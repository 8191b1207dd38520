package tabl

import "github.com/shapestone/tabl/internal/column"

// Column is a typed table column: a tagged union of one of Kind's four
// element types plus a parallel missing-value mask.
type Column = column.Column

// Kind identifies a Column's element type.
type Kind = column.Kind

// Mask is a bit-packed missing-value vector parallel to a column's typed
// data.
type Mask = column.Mask

const (
	KindInt64   = column.KindInt64
	KindFloat64 = column.KindFloat64
	KindBool    = column.KindBool
	KindString  = column.KindString
)

// Table is the columnar result of a successful parse: one Column per
// position, named and ordered as read.
type Table struct {
	names   []string
	columns []*Column
	nrows   int
}

func newTable(names []string, cols []*Column) *Table {
	nrows := 0
	if len(cols) > 0 {
		nrows = cols[0].Len()
	}
	return &Table{names: names, columns: cols, nrows: nrows}
}

// NewTable builds a Table from already-materialized columns, for callers
// (write.ReadSnapshot) reconstructing one outside of a parse.
func NewTable(names []string, cols []*Column) *Table {
	return newTable(names, cols)
}

// NewMaskFromBits rebuilds a missing-value Mask from its expanded bool form,
// for callers (write.ReadSnapshot) restoring a Column outside of a parse.
func NewMaskFromBits(bits []bool) *Mask {
	return column.NewMaskFromBits(bits)
}

// NewMask creates a fresh, all-present missing-value Mask of length n, for
// callers (Marshal) building a Column outside of a parse.
func NewMask(n int) *Mask {
	return column.NewMask(n)
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return t.nrows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// ColumnNames returns a copy of the table's column names, in order.
func (t *Table) ColumnNames() []string {
	return append([]string(nil), t.names...)
}

// Column returns the i-th column (0-based).
func (t *Table) Column(i int) *Column { return t.columns[i] }

// Columns returns the table's columns in order.
func (t *Table) Columns() []*Column { return t.columns }

// ColumnByName returns the named column, or ok=false if no column has that
// name.
func (t *Table) ColumnByName(name string) (*Column, bool) {
	for i, n := range t.names {
		if n == name {
			return t.columns[i], true
		}
	}
	return nil, false
}

// Result wraps a successfully parsed Table together with any non-fatal
// deprecation or bad-row warnings collected along the way.
type Result struct {
	Table    *Table
	warnings []string
}

// Warnings returns the non-fatal notices collected during the parse: option
// deprecation notices and, under BadLineModeWarn, one entry per dropped row.
func (r *Result) Warnings() []string {
	return r.warnings
}
