package tabl

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// cellString renders row r of col as text, using the empty string for a
// masked (missing) value regardless of Kind.
func cellString(col *Column, r int) string {
	if col.Mask != nil && col.Mask.Get(r) {
		return ""
	}
	switch col.Kind {
	case KindInt64:
		return strconv.FormatInt(col.Ints[r], 10)
	case KindFloat64:
		return strconv.FormatFloat(col.Floats[r], 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(col.Bools[r])
	default:
		return col.Strings[r]
	}
}

type columnFieldMapKey struct {
	typ     reflect.Type
	headers string
}

// columnFieldMapCache caches, per (struct type, header layout) pair, which
// struct field index each column should be copied into (-1 if unmatched).
var columnFieldMapCache sync.Map // map[columnFieldMapKey][]int

// columnFieldMap resolves each column in headers to a struct field index by
// "csv" tag or field name (case-insensitive), or -1 if no field matches.
func columnFieldMap(structType reflect.Type, headers []string) []int {
	key := columnFieldMapKey{typ: structType, headers: strings.Join(headers, "\x00")}
	if cached, ok := columnFieldMapCache.Load(key); ok {
		return cached.([]int)
	}

	nameToField := make(map[string]int, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name, _, skip := parseCSVTag(field)
		if skip {
			continue
		}
		nameToField[strings.ToLower(name)] = i
	}

	mapping := make([]int, len(headers))
	for i, header := range headers {
		if fieldIdx, ok := nameToField[strings.ToLower(header)]; ok {
			mapping[i] = fieldIdx
		} else {
			mapping[i] = -1
		}
	}
	columnFieldMapCache.Store(key, mapping)
	return mapping
}

// Unmarshal parses input as a headered delimited document and stores the
// result in the slice of structs pointed to by v, matching CSV headers to
// struct fields by "csv" tag or field name (case-insensitive). Unmatched
// headers are ignored; unmatched struct fields keep their zero value.
//
// Since Parse has already inferred each column's type, Unmarshal copies a
// column's already-typed cells (col.Ints[r], col.Floats[r], ...) straight
// into the destination field rather than re-parsing the cell's text form;
// only a column that Parse left as KindString because no narrower type fit
// every row still needs a text-to-numeric conversion on the way in.
func Unmarshal(input []byte, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("tabl: Unmarshal expects a pointer to a slice, got %s", rv.Type())
	}
	sliceVal := rv.Elem()
	elemType := sliceVal.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	structType := elemType
	if isPtr {
		structType = elemType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return fmt.Errorf("tabl: Unmarshal expects a slice of structs, got slice of %s", elemType)
	}

	res, err := Parse(string(input), WithHeader(true))
	if err != nil {
		return err
	}
	table := res.Table
	mapping := columnFieldMap(structType, table.ColumnNames())

	nrows := table.NumRows()
	out := reflect.MakeSlice(sliceVal.Type(), nrows, nrows)
	for r := 0; r < nrows; r++ {
		structPtr := reflect.New(structType)
		structVal := structPtr.Elem()
		for colIdx, fieldIdx := range mapping {
			if fieldIdx < 0 {
				continue
			}
			col := table.Column(colIdx)
			if err := assignColumnCell(structVal.Field(fieldIdx), col, r); err != nil {
				return fmt.Errorf("tabl: row %d, column %d: %w", r+1, colIdx, err)
			}
		}
		if isPtr {
			out.Index(r).Set(structPtr)
		} else {
			out.Index(r).Set(structVal)
		}
	}
	sliceVal.Set(out)
	return nil
}

// assignColumnCell copies row r of col into field, dispatching on col.Kind
// rather than on field.Kind() the way a from-scratch text scanner would
// have to: the column already knows what it holds.
func assignColumnCell(field reflect.Value, col *Column, r int) error {
	if col.Mask != nil && col.Mask.Get(r) {
		return nil
	}
	switch col.Kind {
	case KindInt64:
		return assignInt(field, col.Ints[r])
	case KindFloat64:
		return assignFloat(field, col.Floats[r])
	case KindBool:
		return assignBool(field, col.Bools[r])
	default:
		return assignString(field, col.Strings[r])
	}
}

func assignInt(field reflect.Value, v int64) error {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.OverflowInt(v) {
			return fmt.Errorf("value %d overflows %s", v, field.Type())
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v < 0 {
			return fmt.Errorf("value %d is negative for %s", v, field.Type())
		}
		if field.OverflowUint(uint64(v)) {
			return fmt.Errorf("value %d overflows %s", v, field.Type())
		}
		field.SetUint(uint64(v))
	case reflect.Float32, reflect.Float64:
		field.SetFloat(float64(v))
	case reflect.String:
		field.SetString(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("cannot assign an integer column to %s", field.Type())
	}
	return nil
}

func assignFloat(field reflect.Value, v float64) error {
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		if field.OverflowFloat(v) {
			return fmt.Errorf("value %g overflows %s", v, field.Type())
		}
		field.SetFloat(v)
	case reflect.String:
		field.SetString(strconv.FormatFloat(v, 'g', -1, 64))
	default:
		return fmt.Errorf("cannot assign a float column to %s", field.Type())
	}
	return nil
}

func assignBool(field reflect.Value, v bool) error {
	switch field.Kind() {
	case reflect.Bool:
		field.SetBool(v)
	case reflect.String:
		field.SetString(strconv.FormatBool(v))
	default:
		return fmt.Errorf("cannot assign a bool column to %s", field.Type())
	}
	return nil
}

// assignString handles a column Parse left as KindString: either the
// destination genuinely wants text, or it wants a numeric/bool type that
// happened to sit in a column that ended as string because some cell fit
// no narrower type (a mixed column). That case still
// needs a text-to-typed conversion; every other case above is a direct
// copy of an already-typed cell.
func assignString(field reflect.Value, v string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v == "" {
			return nil
		}
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse %q as %s", v, field.Type())
		}
		return assignInt(field, i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v == "" {
			return nil
		}
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse %q as %s", v, field.Type())
		}
		if field.OverflowUint(u) {
			return fmt.Errorf("value %d overflows %s", u, field.Type())
		}
		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("cannot parse %q as %s", v, field.Type())
		}
		return assignFloat(field, f)
	case reflect.Bool:
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("cannot parse %q as %s", v, field.Type())
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("cannot assign a string column to %s", field.Type())
	}
	return nil
}
