package column

import (
	"bufio"
	"strings"
	"testing"

	"github.com/shapestone/tabl/internal/cell"
	"github.com/shapestone/tabl/internal/classify"
	"github.com/shapestone/tabl/internal/tokenizer"
)

func tokenizeAll(t *testing.T, input string) *tokenizer.Buffer {
	t.Helper()
	buf := tokenizer.NewBuffer()
	tok := tokenizer.New(buf, tokenizer.Options{
		Separator: ',',
		Quotes:    classify.NewQuoteSet('"'),
	})
	r := bufio.NewReader(strings.NewReader(input))
	if _, err := tok.Tokenize(r, -1, 0, false); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	return buf
}

func defaultOpts() Options {
	return Options{
		NASet:    cell.DefaultNASet(),
		TrueSet:  cell.DefaultTrueSet(),
		FalseSet: cell.DefaultFalseSet(),
	}
}

func TestMaterializeAllInt(t *testing.T) {
	buf := tokenizeAll(t, "1,2\n3,4\n5,6\n")
	cols, err := Materialize(buf, 3, 2, []string{"a", "b"}, defaultOpts())
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("got %d columns, want 2", len(cols))
	}
	if cols[0].Kind != KindInt64 {
		t.Fatalf("col 0 kind = %v, want int64", cols[0].Kind)
	}
	want := []int64{1, 3, 5}
	for i, w := range want {
		if cols[0].Ints[i] != w {
			t.Errorf("col0[%d] = %d, want %d", i, cols[0].Ints[i], w)
		}
	}
}

func TestMaterializeIntPromotesToFloatInPlace(t *testing.T) {
	buf := tokenizeAll(t, "1\n2\n3.5\n4\n")
	cols, err := Materialize(buf, 4, 1, []string{"x"}, defaultOpts())
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	col := cols[0]
	if col.Kind != KindFloat64 {
		t.Fatalf("kind = %v, want float64", col.Kind)
	}
	want := []float64{1, 2, 3.5, 4}
	if len(col.Floats) != len(want) {
		t.Fatalf("len(Floats) = %d, want %d", len(col.Floats), len(want))
	}
	for i, w := range want {
		if col.Floats[i] != w {
			t.Errorf("Floats[%d] = %v, want %v", i, col.Floats[i], w)
		}
	}
}

func TestMaterializeFloatDemotesToBoolWithRestart(t *testing.T) {
	buf := tokenizeAll(t, "true\nfalse\ntrue\n")
	cols, err := Materialize(buf, 3, 1, []string{"x"}, defaultOpts())
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	col := cols[0]
	if col.Kind != KindBool {
		t.Fatalf("kind = %v, want bool", col.Kind)
	}
	if len(col.Bools) != 3 {
		t.Fatalf("expected restart to produce 3 rows, got %d", len(col.Bools))
	}
}

func TestMaterializeBoolDemotesToStringWithRestart(t *testing.T) {
	buf := tokenizeAll(t, "true\nfalse\nmaybe\n")
	cols, err := Materialize(buf, 3, 1, []string{"x"}, defaultOpts())
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	col := cols[0]
	if col.Kind != KindString {
		t.Fatalf("kind = %v, want string", col.Kind)
	}
	want := []string{"true", "false", "maybe"}
	for i, w := range want {
		if col.Strings[i] != w {
			t.Errorf("Strings[%d] = %q, want %q", i, col.Strings[i], w)
		}
	}
}

func TestMaterializeMissingValues(t *testing.T) {
	buf := tokenizeAll(t, "1\nNA\n3\n")
	cols, err := Materialize(buf, 3, 1, []string{"x"}, defaultOpts())
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	col := cols[0]
	if col.Kind != KindInt64 {
		t.Fatalf("kind = %v, want int64", col.Kind)
	}
	if !col.Mask.Get(1) {
		t.Error("expected row 1 (NA) to be marked missing")
	}
	if col.Mask.Get(0) || col.Mask.Get(2) {
		t.Error("expected rows 0 and 2 to be present")
	}
}

func TestMaterializeFactor(t *testing.T) {
	buf := tokenizeAll(t, "red\ngreen\nred\n")
	opts := defaultOpts()
	opts.MakeFactors = true
	cols, err := Materialize(buf, 3, 1, []string{"c"}, opts)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	col := cols[0]
	if col.Factor == nil {
		t.Fatal("expected factor wrapping")
	}
	if len(col.Factor.Levels) != 2 {
		t.Fatalf("levels = %v, want 2 distinct", col.Factor.Levels)
	}
	if col.Factor.Codes[0] != col.Factor.Codes[2] {
		t.Error("expected row 0 and row 2 to share a level code")
	}
}

func TestMaterializeDeclaredTypeRejection(t *testing.T) {
	buf := tokenizeAll(t, "1\nabc\n")
	opts := defaultOpts()
	opts.Declared = []string{"i64"}
	_, err := Materialize(buf, 2, 1, []string{"x"}, opts)
	if err == nil {
		t.Fatal("expected declared-type mismatch to error")
	}
	ve, ok := err.(*ValueError)
	if !ok {
		t.Fatalf("expected *ValueError, got %T", err)
	}
	if ve.Row != 2 || ve.Col != 1 {
		t.Errorf("ValueError = %+v, want row 2 col 1", ve)
	}
}

func TestMaterializeIgnorePadding(t *testing.T) {
	buf := tokenizeAll(t, " 1 , 2 \n")
	opts := defaultOpts()
	opts.IgnorePadding = true
	cols, err := Materialize(buf, 1, 2, []string{"a", "b"}, opts)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if cols[0].Ints[0] != 1 || cols[1].Ints[0] != 2 {
		t.Errorf("padded ints not trimmed: %v %v", cols[0].Ints[0], cols[1].Ints[0])
	}
}
