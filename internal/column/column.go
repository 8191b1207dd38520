package column

import (
	"fmt"

	"github.com/shapestone/tabl/internal/cell"
	"github.com/shapestone/tabl/internal/tokenizer"
)

// Kind identifies which of the four supported element types a Column
// currently holds.
type Kind int

const (
	KindInt64 Kind = iota
	KindFloat64
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "i64"
	case KindFloat64:
		return "f64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Column is a typed vector plus a parallel missing mask. Only the slice
// matching Kind is populated, mirroring askorykh-goDB's Value tagged union
// (internal/sql/types.go) lifted from a per-cell union to a per-column one.
type Column struct {
	Name    string
	Kind    Kind
	Mask    *Mask
	Ints    []int64
	Floats  []float64
	Bools   []bool
	Strings []string
	Factor  *Factor // non-nil iff this is a dictionary-encoded string column
}

// Len returns the number of rows materialized into this column.
func (c *Column) Len() int {
	return c.Mask.Len()
}

func newColumn(kind Kind, name string, capHint int) *Column {
	c := &Column{Name: name, Kind: kind, Mask: NewMask(0)}
	switch kind {
	case KindInt64:
		c.Ints = make([]int64, 0, capHint)
	case KindFloat64:
		c.Floats = make([]float64, 0, capHint)
	case KindBool:
		c.Bools = make([]bool, 0, capHint)
	case KindString:
		c.Strings = make([]string, 0, capHint)
	}
	return c
}

// Options configures Materialize.
type Options struct {
	NASet         cell.Set
	TrueSet       cell.Set
	FalseSet      cell.Set
	IgnorePadding bool
	MakeFactors   bool
	// Declared holds one entry per column: "" means "infer via the
	// promotion ladder"; otherwise one of "i64", "f64", "bool", "string".
	Declared []string
}

// ValueError reports that a declared element type rejected a cell.
type ValueError struct {
	Row          int
	Col          int
	CellText     string
	DeclaredType string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("tabl: row %d col %d: %q is not a valid %s", e.Row, e.Col, e.CellText, e.DeclaredType)
}

// Materialize builds one typed Column per column position, driving
// internal/cell per cell. A column with a declared type runs that
// extractor directly and fails hard on the first rejected cell; an
// undeclared column runs the i64 -> f64 -> bool -> string promotion
// ladder.
func Materialize(buf *tokenizer.Buffer, rows, cols int, names []string, opts Options) ([]*Column, error) {
	result := make([]*Column, cols)
	data := buf.Bytes.Bytes()
	for j := 1; j <= cols; j++ {
		name := ""
		if j-1 < len(names) {
			name = names[j-1]
		}
		declared := ""
		if j-1 < len(opts.Declared) {
			declared = opts.Declared[j-1]
		}

		var col *Column
		var err error
		if declared != "" {
			col, err = materializeDeclared(data, buf, rows, cols, j, name, declared, opts)
		} else {
			col = materializePromoted(data, buf, rows, cols, j, name, opts)
		}
		if err != nil {
			return nil, err
		}
		result[j-1] = col
	}
	return result, nil
}

// fieldRange returns the [left,right] byte range and quoted flag for row i
// (1-based), column j (1-based) of a cols-wide table, applying
// ignorepadding trimming when the field was not quoted.
func fieldRange(buf *tokenizer.Buffer, cols, i, j int, ignorePadding bool) (left, right int, wasQuoted bool) {
	k := (i-1)*cols + j
	left, right = buf.Field(k)
	wasQuoted = buf.Quoted.At(k - 1)
	if ignorePadding && !wasQuoted {
		left, right = cell.Trim(buf.Bytes.Bytes(), left, right)
	}
	return left, right, wasQuoted
}

func kindFor(declared string) (Kind, error) {
	switch declared {
	case "i64":
		return KindInt64, nil
	case "f64":
		return KindFloat64, nil
	case "bool":
		return KindBool, nil
	case "string":
		return KindString, nil
	default:
		return 0, fmt.Errorf("tabl: invalid declared element type %q", declared)
	}
}

func cellText(data []byte, left, right int) string {
	if right < left {
		return ""
	}
	return string(data[left : right+1])
}

func materializeDeclared(data []byte, buf *tokenizer.Buffer, rows, cols, j int, name, declared string, opts Options) (*Column, error) {
	kind, err := kindFor(declared)
	if err != nil {
		return nil, err
	}
	col := newColumn(kind, name, rows)
	for i := 1; i <= rows; i++ {
		left, right, wasQuoted := fieldRange(buf, cols, i, j, opts.IgnorePadding)
		var missing bool
		switch kind {
		case KindInt64:
			v, ok, m := cell.Int64(data, left, right, opts.NASet)
			if !ok {
				return nil, &ValueError{Row: i, Col: j, CellText: cellText(data, left, right), DeclaredType: declared}
			}
			col.Ints = append(col.Ints, v)
			missing = m
		case KindFloat64:
			v, ok, m := cell.Float64(data, left, right, opts.NASet)
			if !ok {
				return nil, &ValueError{Row: i, Col: j, CellText: cellText(data, left, right), DeclaredType: declared}
			}
			col.Floats = append(col.Floats, v)
			missing = m
		case KindBool:
			v, ok, m := cell.Bool(data, left, right, opts.NASet, opts.TrueSet, opts.FalseSet)
			if !ok {
				return nil, &ValueError{Row: i, Col: j, CellText: cellText(data, left, right), DeclaredType: declared}
			}
			col.Bools = append(col.Bools, v)
			missing = m
		case KindString:
			v, m := stringCell(data, left, right, wasQuoted, opts.NASet)
			col.Strings = append(col.Strings, v)
			missing = m
		}
		col.Mask.Append(missing)
	}
	if opts.MakeFactors && kind == KindString {
		col = wrapFactor(col)
	}
	return col, nil
}

// materializePromoted runs the i64 -> f64 -> bool -> string ladder.
// Demotion from i64 to f64 happens in place, mid-iteration, without
// restarting the row loop (a lossless representation change); demotion
// from f64 to bool and from bool to string restarts row iteration from
// row 1 under a fresh column, because the NA/true/false policy for those
// types is not simply a superset of the numeric one.
func materializePromoted(data []byte, buf *tokenizer.Buffer, rows, cols, j int, name string, opts Options) *Column {
	mode := KindInt64
	for {
		col := newColumn(mode, name, rows)
		restarted := false

		for i := 1; i <= rows; i++ {
			left, right, wasQuoted := fieldRange(buf, cols, i, j, opts.IgnorePadding)

			switch mode {
			case KindInt64:
				v, ok, missing := cell.Int64(data, left, right, opts.NASet)
				if ok {
					col.Ints = append(col.Ints, v)
					col.Mask.Append(missing)
					continue
				}
				floats := make([]float64, len(col.Ints))
				for idx, iv := range col.Ints {
					floats[idx] = float64(iv)
				}
				col.Kind = KindFloat64
				col.Ints = nil
				col.Floats = floats
				mode = KindFloat64

				fv, fok, fmissing := cell.Float64(data, left, right, opts.NASet)
				if fok {
					col.Floats = append(col.Floats, fv)
					col.Mask.Append(fmissing)
					continue
				}
				mode = KindBool
				restarted = true

			case KindFloat64:
				v, ok, missing := cell.Float64(data, left, right, opts.NASet)
				if ok {
					col.Floats = append(col.Floats, v)
					col.Mask.Append(missing)
					continue
				}
				mode = KindBool
				restarted = true

			case KindBool:
				v, ok, missing := cell.Bool(data, left, right, opts.NASet, opts.TrueSet, opts.FalseSet)
				if ok {
					col.Bools = append(col.Bools, v)
					col.Mask.Append(missing)
					continue
				}
				mode = KindString
				restarted = true

			case KindString:
				v, missing := stringCell(data, left, right, wasQuoted, opts.NASet)
				col.Strings = append(col.Strings, v)
				col.Mask.Append(missing)
			}

			if restarted {
				break
			}
		}

		if restarted {
			continue
		}
		if opts.MakeFactors && mode == KindString {
			return wrapFactor(col)
		}
		return col
	}
}

// stringCell extracts a string cell and, for a non-empty span, applies the
// NA set: a matching cell is missing with value "".
func stringCell(data []byte, left, right int, wasQuoted bool, naSet cell.Set) (string, bool) {
	v, _, missing := cell.String(data, left, right, wasQuoted)
	if !cell.Empty(left, right) && naSet.Match(data[left:right+1]) {
		return "", true
	}
	return v, missing
}

func wrapFactor(col *Column) *Column {
	f := NewFactor()
	for i, s := range col.Strings {
		f.Append(s, col.Mask.Get(i))
	}
	col.Factor = f
	return col
}
