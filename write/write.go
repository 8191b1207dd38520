// Package write renders a *tabl.Table back out as delimited text, HTML, or a
// binary snapshot for later reloading. A field is always quoted when its
// column is non-numeric (string or factor), and otherwise quoted only when
// it contains the delimiter, a double quote, or a newline; embedded quotes
// are doubled.
package write

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/shapestone/tabl"
	"github.com/shapestone/tabl/internal/render"
)

// DelimitedOptions configures Delimited.
type DelimitedOptions struct {
	// Separator between fields. Defaults to ',' if zero.
	Separator byte
	// UseCRLF writes "\r\n" line endings instead of "\n".
	UseCRLF bool
	// WriteHeader writes a header row of column names before the data.
	WriteHeader bool
}

// Delimited writes t to w using opts, one row per line. Every field in a
// string or factor column is quoted regardless of content; any other field
// is quoted only if it contains the separator, a double quote, or a line
// ending. Embedded quotes are doubled either way.
func Delimited(w io.Writer, t *tabl.Table, opts DelimitedOptions) error {
	sep := opts.Separator
	if sep == 0 {
		sep = ','
	}
	nl := "\n"
	if opts.UseCRLF {
		nl = "\r\n"
	}

	bw := bufio.NewWriter(w)

	if opts.WriteHeader {
		names := t.ColumnNames()
		for i, name := range names {
			if i > 0 {
				bw.WriteByte(sep)
			}
			render.QuoteField(bw, name, sep, false)
		}
		bw.WriteString(nl)
	}

	nrows := t.NumRows()
	ncols := t.NumCols()
	for r := 0; r < nrows; r++ {
		for c := 0; c < ncols; c++ {
			if c > 0 {
				bw.WriteByte(sep)
			}
			col := t.Column(c)
			render.QuoteField(bw, cellString(col, r), sep, isNonNumeric(col.Kind))
		}
		bw.WriteString(nl)
	}

	return bw.Flush()
}

// isNonNumeric reports whether kind is a string or factor column, which the
// delimited-text quoting rule always quotes regardless of a field's content.
func isNonNumeric(kind tabl.Kind) bool {
	switch kind {
	case tabl.KindInt64, tabl.KindFloat64, tabl.KindBool:
		return false
	default:
		return true
	}
}

// cellString renders row r of col as text, formatting a masked (missing)
// value as the empty string regardless of Kind.
func cellString(col *tabl.Column, r int) string {
	if col.Mask != nil && col.Mask.Get(r) {
		return ""
	}
	switch col.Kind {
	case tabl.KindInt64:
		return strconv.FormatInt(col.Ints[r], 10)
	case tabl.KindFloat64:
		return strconv.FormatFloat(col.Floats[r], 'g', -1, 64)
	case tabl.KindBool:
		return strconv.FormatBool(col.Bools[r])
	default:
		return col.Strings[r]
	}
}

// HTMLOptions configures HTML.
type HTMLOptions struct {
	// MaxRows caps the number of data rows rendered; 0 means unlimited. When
	// the table has more rows than MaxRows, a trailer row reports the count
	// of rows omitted.
	MaxRows int
}

// HTML renders t as a minimal <table> element, escaping cell text with
// html.EscapeString the way any hand-rolled HTML emitter in this corpus
// would (net/http and html/template both lean on it rather than a
// third-party templating engine for this scale of output).
func HTML(w io.Writer, t *tabl.Table, opts HTMLOptions) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("<table>\n<thead><tr>")
	for _, name := range t.ColumnNames() {
		fmt.Fprintf(bw, "<th>%s</th>", html.EscapeString(name))
	}
	bw.WriteString("</tr></thead>\n<tbody>\n")

	nrows := t.NumRows()
	ncols := t.NumCols()
	limit := nrows
	if opts.MaxRows > 0 && opts.MaxRows < nrows {
		limit = opts.MaxRows
	}
	for r := 0; r < limit; r++ {
		bw.WriteString("<tr>")
		for c := 0; c < ncols; c++ {
			col := t.Column(c)
			fmt.Fprintf(bw, "<td>%s</td>", html.EscapeString(cellString(col, r)))
		}
		bw.WriteString("</tr>\n")
	}
	if limit < nrows {
		fmt.Fprintf(bw, "<tr><td colspan=\"%d\">… %d more rows</td></tr>\n", ncols, nrows-limit)
	}
	bw.WriteString("</tbody>\n</table>\n")
	return bw.Flush()
}

// snapshot is the gob-encoded form of a Table: column-major, since Table's
// own fields are unexported outside this module.
type snapshot struct {
	ID      string
	Names   []string
	Kinds   []tabl.Kind
	Ints    [][]int64
	Floats  [][]float64
	Bools   [][]bool
	Strings [][]string
	Masks   [][]bool
	NRows   int
}

// Snapshot gob-encodes t to w, tagging it with a fresh random snapshot ID so
// callers can trace a saved table back to the run that produced it.
func Snapshot(w io.Writer, t *tabl.Table) error {
	snap := snapshot{
		ID:    uuid.NewString(),
		Names: t.ColumnNames(),
		NRows: t.NumRows(),
	}
	for _, col := range t.Columns() {
		snap.Kinds = append(snap.Kinds, col.Kind)
		snap.Ints = append(snap.Ints, col.Ints)
		snap.Floats = append(snap.Floats, col.Floats)
		snap.Bools = append(snap.Bools, col.Bools)
		snap.Strings = append(snap.Strings, col.Strings)
		if col.Mask != nil {
			snap.Masks = append(snap.Masks, col.Mask.Bits())
		} else {
			snap.Masks = append(snap.Masks, nil)
		}
	}
	return gob.NewEncoder(w).Encode(&snap)
}

// ReadSnapshot decodes a Table previously written by Snapshot.
func ReadSnapshot(r io.Reader) (*tabl.Table, error) {
	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	cols := make([]*tabl.Column, len(snap.Names))
	for i, name := range snap.Names {
		col := &tabl.Column{
			Name:    name,
			Kind:    snap.Kinds[i],
			Ints:    snap.Ints[i],
			Floats:  snap.Floats[i],
			Bools:   snap.Bools[i],
			Strings: snap.Strings[i],
		}
		if snap.Masks[i] != nil {
			col.Mask = tabl.NewMaskFromBits(snap.Masks[i])
		}
		cols[i] = col
	}
	return tabl.NewTable(snap.Names, cols), nil
}
