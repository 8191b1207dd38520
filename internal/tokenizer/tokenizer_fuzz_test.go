package tokenizer

import (
	"bufio"
	"strings"
	"testing"

	"github.com/shapestone/tabl/internal/classify"
)

// FuzzTokenize exercises the state machine against arbitrary byte input
// under every flag combination, checking only structural invariants (no
// panic, no crash, and every non-empty field span is monotonic) since
// there is no independent oracle for arbitrary bytes.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		"",
		"a,b,c",
		"a,b\nc,d\n",
		`"a,b","c""d"`,
		"a\\tb,c",
		"# comment\na,b\n\nc,d",
		"  a   b  \n",
		"\"unterminated",
		"a,\"b\\\"c\",d\r\n",
		"\\z",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		for _, flags := range []Flags{
			{},
			{AllowComments: true},
			{SkipBlanks: true},
			{AllowEscapes: true},
			{SpaceSeparated: true},
			{AllowComments: true, SkipBlanks: true, AllowEscapes: true},
		} {
			opts := Options{
				Flags:       flags,
				Separator:   ',',
				CommentMark: '#',
				Quotes:      classify.NewQuoteSet('"'),
			}
			buf := NewBuffer()
			tok := New(buf, opts)
			r := bufio.NewReader(strings.NewReader(input))

			_, err := tok.Tokenize(r, -1, 0, false)
			if err != nil {
				continue // a recognized error (e.g. escape error) is a valid outcome
			}

			for k := 1; k < buf.Bounds.Len(); k++ {
				left, right := buf.Field(k)
				if right < left-1 {
					t.Fatalf("field %d has invalid span [%d,%d] for input %q with flags %+v", k, left, right, input, flags)
				}
			}
			if buf.Bounds.Len()-1 != buf.Quoted.Len() {
				t.Fatalf("bounds/quoted length mismatch: %d vs %d", buf.Bounds.Len()-1, buf.Quoted.Len())
			}
		}
	})
}
