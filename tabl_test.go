package tabl_test

import (
	"testing"

	"github.com/shapestone/tabl"
)

// TestParseScenarios covers the six end-to-end scenarios: all-int columns,
// int-to-float promotion, int-plus-string, quoted embedded quotes followed
// by a missing value, space-separated input with a comment line, and
// int-plus-bool.
func TestParseScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []tabl.Option
		check func(t *testing.T, res *tabl.Result)
	}{
		{
			name:  "all int columns",
			input: "a,b,c\n1,2,3\n4,5,6\n",
			check: func(t *testing.T, res *tabl.Result) {
				wantNames(t, res.Table, "a", "b", "c")
				wantIntCol(t, res.Table, 0, 1, 4)
				wantIntCol(t, res.Table, 1, 2, 5)
				wantIntCol(t, res.Table, 2, 3, 6)
			},
		},
		{
			name:  "int promotes to float",
			input: "a,b\n1,2.5\n3,4\n",
			check: func(t *testing.T, res *tabl.Result) {
				wantIntCol(t, res.Table, 0, 1, 3)
				col := res.Table.Column(1)
				if col.Kind != tabl.KindFloat64 {
					t.Fatalf("col b kind = %v, want Float64", col.Kind)
				}
				if col.Floats[0] != 2.5 || col.Floats[1] != 4.0 {
					t.Fatalf("col b = %v", col.Floats)
				}
			},
		},
		{
			name:  "int plus string stays separate columns",
			input: "a,b\n1,x\n2,y\n",
			check: func(t *testing.T, res *tabl.Result) {
				wantIntCol(t, res.Table, 0, 1, 2)
				col := res.Table.Column(1)
				if col.Kind != tabl.KindString {
					t.Fatalf("col b kind = %v, want String", col.Kind)
				}
				if col.Strings[0] != "x" || col.Strings[1] != "y" {
					t.Fatalf("col b = %v", col.Strings)
				}
			},
		},
		{
			name:  "quoted embedded quotes then missing",
			input: "a\n\"he said \"\"hi\"\"\"\nNA\n",
			check: func(t *testing.T, res *tabl.Result) {
				col := res.Table.Column(0)
				if col.Kind != tabl.KindString {
					t.Fatalf("col a kind = %v, want String", col.Kind)
				}
				if col.Strings[0] != `he said "hi"` {
					t.Fatalf("col a[0] = %q", col.Strings[0])
				}
				if !col.Mask.Get(1) {
					t.Fatal("expected row 1 to be masked missing")
				}
			},
		},
		{
			name:  "space separated with a leading comment",
			input: "# c\na b\n1 2\n3  4\n",
			opts:  []tabl.Option{tabl.WithSeparator(' '), tabl.WithAllowComments(true), tabl.WithCommentMark('#')},
			check: func(t *testing.T, res *tabl.Result) {
				wantNames(t, res.Table, "a", "b")
				wantIntCol(t, res.Table, 0, 1, 3)
				wantIntCol(t, res.Table, 1, 2, 4)
			},
		},
		{
			name:  "int plus bool stays separate columns",
			input: "a,b\n1,T\n2,false\n",
			check: func(t *testing.T, res *tabl.Result) {
				wantIntCol(t, res.Table, 0, 1, 2)
				col := res.Table.Column(1)
				if col.Kind != tabl.KindBool {
					t.Fatalf("col b kind = %v, want Bool", col.Kind)
				}
				if col.Bools[0] != true || col.Bools[1] != false {
					t.Fatalf("col b = %v", col.Bools)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := tabl.Parse(tc.input, tc.opts...)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			tc.check(t, res)
			_ = res.Warnings()
		})
	}
}

func TestParseHandlesCRLFAndBlankLines(t *testing.T) {
	res, err := tabl.Parse("a,b\r\n1,2\r\n\r\n3,4\r\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	wantIntCol(t, res.Table, 0, 1, 3)
	wantIntCol(t, res.Table, 1, 2, 4)
}

func TestParseEmptyQuotedStringIsNotMissing(t *testing.T) {
	res, err := tabl.Parse("a\n\"\"\nx\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	col := res.Table.Column(0)
	if col.Kind != tabl.KindString {
		t.Fatalf("kind = %v, want String", col.Kind)
	}
	if col.Mask.Get(0) {
		t.Fatal("empty quoted string should not be marked missing")
	}
	if col.Strings[0] != "" {
		t.Fatalf("col[0] = %q, want empty string", col.Strings[0])
	}
}

func TestParseEmptyUnquotedStringIsMissing(t *testing.T) {
	res, err := tabl.Parse("a,b\n1,\nx,\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	col := res.Table.Column(1)
	if !col.Mask.Get(0) || !col.Mask.Get(1) {
		t.Fatal("expected empty unquoted fields to be masked missing")
	}
}

func TestParseFieldContainingSeparatorInsideQuotes(t *testing.T) {
	res, err := tabl.Parse("a,b\n\"1,2\",3\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	col := res.Table.Column(0)
	if col.Strings[0] != "1,2" {
		t.Fatalf("col a[0] = %q, want %q", col.Strings[0], "1,2")
	}
}

func TestReadTableRejectsBadStructure(t *testing.T) {
	_, err := tabl.Parse("a,b\n1,2\n3\n4,5\n")
	if err == nil {
		t.Fatal("expected a StructuralError for a ragged table")
	}
	if _, ok := err.(*tabl.StructuralError); !ok {
		t.Fatalf("expected *tabl.StructuralError, got %T: %v", err, err)
	}
}

func wantNames(t *testing.T, table *tabl.Table, names ...string) {
	t.Helper()
	got := table.ColumnNames()
	if len(got) != len(names) {
		t.Fatalf("names = %v, want %v", got, names)
	}
	for i, n := range names {
		if got[i] != n {
			t.Fatalf("names[%d] = %q, want %q", i, got[i], n)
		}
	}
}

func wantIntCol(t *testing.T, table *tabl.Table, idx int, values ...int64) {
	t.Helper()
	col := table.Column(idx)
	if col.Kind != tabl.KindInt64 {
		t.Fatalf("col %d kind = %v, want Int64", idx, col.Kind)
	}
	if len(col.Ints) != len(values) {
		t.Fatalf("col %d = %v, want %v", idx, col.Ints, values)
	}
	for i, v := range values {
		if col.Ints[i] != v {
			t.Fatalf("col %d[%d] = %d, want %d", idx, i, col.Ints[i], v)
		}
	}
}
