package tabl

import "io"

// Record is a single row of a table, with access to its cells by index or
// column name, always as text.
type Record struct {
	table *Table
	row   int
}

// Get returns the field at index as text, and whether index was in range.
func (r Record) Get(index int) (string, bool) {
	if index < 0 || index >= r.table.NumCols() {
		return "", false
	}
	return cellString(r.table.Column(index), r.row), true
}

// GetByName returns the named field as text, and whether the name matched a
// column.
func (r Record) GetByName(name string) (string, bool) {
	col, ok := r.table.ColumnByName(name)
	if !ok {
		return "", false
	}
	return cellString(col, r.row), true
}

// Fields returns every field of the row as text, in column order.
func (r Record) Fields() []string {
	out := make([]string, r.table.NumCols())
	for i := range out {
		out[i] = cellString(r.table.Column(i), r.row)
	}
	return out
}

// Len returns the number of fields in the record.
func (r Record) Len() int { return r.table.NumCols() }

// Scanner provides a row-at-a-time interface over a parsed Table, for
// callers that would rather iterate Records than index the Table directly.
//
// The underlying document is read and materialized in full on the first
// Scan call; Scanner only changes how the caller walks the result, not
// when the bytes get parsed.
type Scanner struct {
	reader     io.Reader
	hasHeaders bool
	opts       []Option
	table      *Table
	index      int
	err        error
	parsed     bool
}

// NewScanner creates a Scanner over r. By default the first row is treated
// as data, not a header; call SetHasHeaders(true) to change that.
func NewScanner(r io.Reader, opts ...Option) *Scanner {
	return &Scanner{reader: r, opts: opts, index: -1}
}

// SetHasHeaders sets whether the first row is a header row. Returns the
// Scanner for chaining.
func (s *Scanner) SetHasHeaders(hasHeaders bool) *Scanner {
	s.hasHeaders = hasHeaders
	return s
}

// Scan advances to the next row, returning false at EOF or on error. Call
// Err after Scan returns false to distinguish the two.
func (s *Scanner) Scan() bool {
	if !s.parsed {
		opts := append([]Option{WithHeader(s.hasHeaders)}, s.opts...)
		res, err := ParseReader(s.reader, opts...)
		if err != nil {
			s.err = err
			return false
		}
		s.table = res.Table
		s.parsed = true
	}
	s.index++
	return s.index < s.table.NumRows()
}

// Record returns the current row. Only valid after Scan returns true.
func (s *Scanner) Record() Record {
	return Record{table: s.table, row: s.index}
}

// Err returns the error, if any, encountered while scanning.
func (s *Scanner) Err() error { return s.err }

// Headers returns the column names, populated once the first Scan call has
// parsed the document.
func (s *Scanner) Headers() []string {
	if s.table == nil {
		return nil
	}
	return s.table.ColumnNames()
}
