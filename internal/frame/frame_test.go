package frame

import (
	"bufio"
	"strings"
	"testing"

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

func TestSanitizeIdentifier(t *testing.T) {
	cases := map[string]string{
		"name":     "name",
		"1st":      "_1st",
		"a b":      "a_b",
		"a-b.c":    "a_b_c",
		"":         "_",
		"Already_": "Already_",
	}
	for in, want := range cases {
		if got := SanitizeIdentifier(in); got != want {
			t.Errorf("SanitizeIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDedup(t *testing.T) {
	got := Dedup([]string{"a", "b", "a", "a", "a_2"})
	want := []string{"a", "b", "a_2", "a_3", "a_2_2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dedup()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHeaderNames(t *testing.T) {
	buf := tokenizeAll(t, "a,1st,\"c d\"\n")
	names := HeaderNames(buf)
	want := []string{"a", "_1st", "c_d"}
	if len(names) != len(want) {
		t.Fatalf("got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCheckConsistencyUniform(t *testing.T) {
	buf := tokenizeAll(t, "a,b,c\n1,2,3\n4,5,6\n")
	c := CheckConsistency(buf)
	if !c.OK || c.Cols != 3 || c.Rows != 3 {
		t.Fatalf("got %+v", c)
	}
}

func TestCheckConsistencyRagged(t *testing.T) {
	buf := tokenizeAll(t, "a,b,c\n1,2\n4,5,6\n")
	c := CheckConsistency(buf)
	if c.OK {
		t.Fatal("expected inconsistency to be detected")
	}
	if c.BadRow != 2 || c.BadCols != 2 {
		t.Fatalf("got %+v", c)
	}
}
