// Package classify provides stateless byte-level predicates used by the
// tokenizer's hot loop. Each predicate operates on a small lookahead window
// so the tokenizer never needs to backtrack.
package classify

// IsWhitespace reports whether b is one of the ASCII whitespace bytes the
// tokenizer treats as blank-run material: tab through carriage return, or
// space.
func IsWhitespace(b byte) bool {
	return (b >= 0x09 && b <= 0x0D) || b == 0x20
}

// IsASCIISpace reports whether b should be trimmed from the edges of an
// unquoted cell when ignorepadding is set. This is intentionally the same
// byte set as IsWhitespace; it is named separately because the two
// predicates are used at different layers (tokenizer vs. cell trimming).
func IsASCIISpace(b byte) bool {
	return IsWhitespace(b)
}

// AtNewline reports whether b begins a line terminator (LF or CR).
func AtNewline(b byte) bool {
	return b == '\n' || b == '\r'
}

// AtBlankLine reports whether, sitting at the first byte of a row, that row
// is empty: its very first byte is itself a line terminator. Detection
// only needs the current byte, not a lookahead pair. A caller not at a
// row start should not call this.
func AtBlankLine(b byte) bool {
	return AtNewline(b)
}

// QuoteSet is a small set of quote-opening/closing bytes, typically just
// `"` but configurable via ParseOptions.Quotemark.
type QuoteSet map[byte]bool

// NewQuoteSet builds a QuoteSet from the given bytes.
func NewQuoteSet(bs ...byte) QuoteSet {
	s := make(QuoteSet, len(bs))
	for _, b := range bs {
		s[b] = true
	}
	return s
}

// Contains reports whether b is a member of the quote set.
func (s QuoteSet) Contains(b byte) bool {
	return s[b]
}

// AtQuoteEscape reports whether the window (b, next) is an escape sequence
// inside a quoted field: a backslash followed by another backslash or a
// quote mark, or a doubled quote mark.
func AtQuoteEscape(b, next byte, hasNext bool, quotes QuoteSet) bool {
	if !hasNext {
		return false
	}
	if b == '\\' && (next == '\\' || quotes.Contains(next)) {
		return true
	}
	if b == next && quotes.Contains(b) {
		return true
	}
	return false
}

// cEscapeTargets maps the byte following a backslash, outside quotes, to
// its translated value. Any pair not in this table is an escape error.
var cEscapeTargets = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'a':  0x07,
	'b':  0x08,
	'f':  0x0C,
	'v':  0x0B,
	'\\': '\\',
}

// AtCEscape reports whether the window (b, next) is a recognized C-style
// escape sequence outside quotes: a backslash followed by one of
// n,t,r,a,b,f,v,\\.
func AtCEscape(b, next byte, hasNext bool) bool {
	if !hasNext || b != '\\' {
		return false
	}
	_, ok := cEscapeTargets[next]
	return ok
}

// MergeCEscape translates the byte following a backslash into its escaped
// value. ok is false if the pair is not a recognized escape.
func MergeCEscape(next byte) (merged byte, ok bool) {
	m, found := cEscapeTargets[next]
	return m, found
}
