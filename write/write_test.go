package write

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shapestone/tabl"
)

func mustParse(t *testing.T, input string) *tabl.Table {
	t.Helper()
	res, err := tabl.Parse(input, tabl.WithHeader(true))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return res.Table
}

func TestDelimitedRoundTripsSimpleTable(t *testing.T) {
	table := mustParse(t, "a,b\n1,hello\n2,world\n")

	var buf bytes.Buffer
	if err := Delimited(&buf, table, DelimitedOptions{Separator: ',', WriteHeader: true}); err != nil {
		t.Fatalf("Delimited: %v", err)
	}
	want := "a,b\n1,\"hello\"\n2,\"world\"\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestDelimitedQuotesSpecialFields(t *testing.T) {
	table := mustParse(t, "a\n\"has, comma\"\n\"has \"\"quote\"\"\"\n")

	var buf bytes.Buffer
	if err := Delimited(&buf, table, DelimitedOptions{Separator: ','}); err != nil {
		t.Fatalf("Delimited: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"has, comma"`) {
		t.Errorf("expected quoted comma field, got %q", out)
	}
	if !strings.Contains(out, `"has ""quote"""`) {
		t.Errorf("expected doubled quotes, got %q", out)
	}
}

func TestHTMLEscapesCellText(t *testing.T) {
	table := mustParse(t, "a\n<b>&\n")

	var buf bytes.Buffer
	if err := HTML(&buf, table, HTMLOptions{}); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "&lt;b&gt;&amp;") {
		t.Errorf("expected escaped cell, got %q", out)
	}
}

func TestHTMLTruncatesAtMaxRows(t *testing.T) {
	table := mustParse(t, "a\n1\n2\n3\n")

	var buf bytes.Buffer
	if err := HTML(&buf, table, HTMLOptions{MaxRows: 1}); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "more rows") {
		t.Errorf("expected truncation trailer, got %q", out)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	table := mustParse(t, "a,b\n1,2.5\n3,NA\n")

	var buf bytes.Buffer
	if err := Snapshot(&buf, table); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	restored, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if restored.NumRows() != table.NumRows() || restored.NumCols() != table.NumCols() {
		t.Fatalf("shape mismatch: got %dx%d, want %dx%d",
			restored.NumRows(), restored.NumCols(), table.NumRows(), table.NumCols())
	}
	for i, name := range table.ColumnNames() {
		if restored.ColumnNames()[i] != name {
			t.Errorf("name[%d] = %q, want %q", i, restored.ColumnNames()[i], name)
		}
	}
}
