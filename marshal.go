package tabl

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/shapestone/tabl/internal/render"
)

// bufferPool recycles the scratch buffers Marshal builds its output in.
var bufferPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() < 64*1024 {
		bufferPool.Put(buf)
	}
}

type marshalField struct {
	name      string
	index     int
	omitEmpty bool
	kind      Kind
}

// Marshal returns the CSV encoding of v, a slice of structs (or pointers to
// structs). Columns are named from each field's "csv" tag, or the field
// name if untagged, and sorted alphabetically for deterministic output. A
// field tagged "-" is always omitted; "name,omitempty" omits the field's
// zero value from a row while keeping the column itself.
//
// v is first materialized into the same Column/Mask representation Parse
// produces, so the actual text formatting and quoting rules run through the
// same cellString/render.QuoteField path used to write an already-parsed
// Table; Marshal only has to figure out which Kind each struct field maps
// to and fill in the columns. Output is always comma-delimited;
// write.Delimited covers other separators for already-parsed Tables.
func Marshal(v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("tabl: Marshal(nil)")
	}
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("tabl: Marshal expects a slice, got %s", rv.Type())
	}
	if rv.Len() == 0 {
		return []byte{}, nil
	}

	elemType := rv.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tabl: Marshal expects a slice of structs, got slice of %s", elemType)
	}

	fields, err := marshalFieldsOf(elemType)
	if err != nil {
		return nil, err
	}
	cols, err := marshalColumns(rv, fields)
	if err != nil {
		return nil, err
	}

	buf := getBuffer()
	defer putBuffer(buf)

	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		render.QuoteField(buf, f.name, ',', false)
	}
	buf.WriteByte('\n')

	nrows := rv.Len()
	for r := 0; r < nrows; r++ {
		for i, col := range cols {
			if i > 0 {
				buf.WriteByte(',')
			}
			render.QuoteField(buf, cellString(col, r), ',', col.Kind == KindString)
		}
		buf.WriteByte('\n')
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// marshalFieldsOf collects the exported, non-skipped fields of a struct
// type in Marshal's output order (alphabetical by column name), tagging
// each with the Column Kind its Go type maps to.
func marshalFieldsOf(elemType reflect.Type) ([]marshalField, error) {
	var fields []marshalField
	for i := 0; i < elemType.NumField(); i++ {
		sf := elemType.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		name, omitEmpty, skip := parseCSVTag(sf)
		if skip {
			continue
		}
		kind, err := columnKindOf(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("tabl: field %s: %w", sf.Name, err)
		}
		fields = append(fields, marshalField{name: name, index: i, omitEmpty: omitEmpty, kind: kind})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].name < fields[j].name })
	return fields, nil
}

// columnKindOf maps a struct field's Go type to the Column Kind that can
// hold it: any integer width to KindInt64, any float width to KindFloat64,
// bool to KindBool, and string to KindString. Any other type (after one
// pointer dereference) is reported as unsupported.
func columnKindOf(t reflect.Type) (Kind, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt64, nil
	case reflect.Float32, reflect.Float64:
		return KindFloat64, nil
	case reflect.Bool:
		return KindBool, nil
	case reflect.String:
		return KindString, nil
	default:
		return KindString, fmt.Errorf("unsupported type %s", t)
	}
}

func parseCSVTag(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	name = field.Name
	tag := field.Tag.Get("csv")
	if tag == "-" {
		return "", false, true
	}
	if tag == "" {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

// marshalColumns materializes fields into the same Column shape column
// package parsing produces: one typed slice plus a Mask per field, so the
// row-writing loop in Marshal never has to know it is looking at
// reflect-derived data instead of a parsed Table's.
func marshalColumns(rv reflect.Value, fields []marshalField) ([]*Column, error) {
	nrows := rv.Len()
	cols := make([]*Column, len(fields))
	for i, f := range fields {
		col := &Column{Name: f.name, Kind: f.kind, Mask: NewMask(nrows)}
		switch f.kind {
		case KindInt64:
			col.Ints = make([]int64, nrows)
		case KindFloat64:
			col.Floats = make([]float64, nrows)
		case KindBool:
			col.Bools = make([]bool, nrows)
		default:
			col.Strings = make([]string, nrows)
		}
		cols[i] = col
	}

	for r := 0; r < nrows; r++ {
		row := rv.Index(r)
		if row.Kind() == reflect.Ptr {
			if row.IsNil() {
				for _, col := range cols {
					col.Mask.Set(r, true)
				}
				continue
			}
			row = row.Elem()
		}
		for i, f := range fields {
			fv := row.Field(f.index)
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					cols[i].Mask.Set(r, true)
					continue
				}
				fv = fv.Elem()
			}
			if f.omitEmpty && isEmptyValue(fv) {
				cols[i].Mask.Set(r, true)
				continue
			}
			if err := setColumnCell(cols[i], r, fv); err != nil {
				return nil, fmt.Errorf("tabl: marshaling field %s: %w", f.name, err)
			}
		}
	}
	return cols, nil
}

// setColumnCell copies a single struct field's value into row r of col,
// whose Kind was already fixed by columnKindOf.
func setColumnCell(col *Column, r int, fv reflect.Value) error {
	switch col.Kind {
	case KindInt64:
		switch fv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			col.Ints[r] = fv.Int()
		default:
			col.Ints[r] = int64(fv.Uint())
		}
	case KindFloat64:
		col.Floats[r] = fv.Float()
	case KindBool:
		col.Bools[r] = fv.Bool()
	default:
		col.Strings[r] = fv.String()
	}
	return nil
}
