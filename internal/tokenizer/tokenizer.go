// Package tokenizer implements the single-pass byte-level state machine
// that turns a byte stream into a Buffer of field/line boundaries. It never
// materializes field strings; internal/cell and internal/column read the
// Buffer after the fact.
package tokenizer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/shapestone/tabl/internal/arrays"
	"github.com/shapestone/tabl/internal/classify"
)

// Buffer is the shared intermediate produced by Tokenize and consumed by
// the header/consistency and column-materialization stages.
//
// Field k's content is bytes[bounds[k-1]+1 .. bounds[k]-1]: content begins
// immediately after the previous sentinel with no gap. An empty field has
// bounds[k-1]+1 > bounds[k]-1.
type Buffer struct {
	Bytes  *arrays.Bytes
	Bounds *arrays.Ints
	Lines  *arrays.Ints
	Quoted *arrays.Bits
}

// NewBuffer creates a Buffer with the leading sentinel and dummy bounds/
// lines entries already in place, ready for a first call to Tokenize.
func NewBuffer() *Buffer {
	b := &Buffer{
		Bytes:  arrays.NewBytes(256),
		Bounds: arrays.NewInts(64, 0),
		Lines:  arrays.NewInts(64, 0),
		Quoted: arrays.NewBits(64),
	}
	b.Bytes.Append('\n')
	return b
}

// Field returns the [left,right] byte range for field k (1-based), per the
// Buffer's bounds convention. left > right means the field is empty.
func (b *Buffer) Field(k int) (left, right int) {
	return b.Bounds.At(k-1) + 1, b.Bounds.At(k) - 1
}

// Flags selects which optional tokenizer behaviors are active, checked as
// plain booleans in the hot loop rather than compiled into specialized
// variants per combination.
type Flags struct {
	AllowComments  bool
	SkipBlanks     bool
	AllowEscapes   bool
	SpaceSeparated bool
}

// Options configures one Tokenizer.
type Options struct {
	Flags
	Separator   byte // ignored when Flags.SpaceSeparated is true
	CommentMark byte
	Quotes      classify.QuoteSet
}

// EscapeError reports an unrecognized backslash escape sequence outside
// quotes.
type EscapeError struct {
	Row  int
	Byte byte
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("tabl: unrecognized escape \\%c near row %d", e.Byte, e.Row)
}

// Result reports what a single Tokenize call produced. Fields and Lines
// exclude the dummy zero entries.
type Result struct {
	BytesAdded int
	Fields     int
	Lines      int
	Next       byte
	HasNext    bool
}

// Tokenizer holds the state that must survive across chained Tokenize
// calls, for example one call for the header row and a second for the
// body, so a header row and the body share one logical scan of the same
// stream.
type Tokenizer struct {
	opts Options
	buf  *Buffer

	inQuotes  bool
	inEscape  bool
	atStart   bool
	skipWhite bool
	curQuoted bool
	rowOpen   bool
}

// New creates a Tokenizer bound to buf, ready to scan rows with opts.
func New(buf *Buffer, opts Options) *Tokenizer {
	return &Tokenizer{
		opts:      opts,
		buf:       buf,
		atStart:   true,
		skipWhite: opts.SpaceSeparated,
	}
}

// window is the tokenizer's rolling two-byte lookahead, modeled as an
// explicit tiny state carried through the scan loop rather than a
// peekable iterator.
type window struct {
	r      *bufio.Reader
	cur    byte
	curOK  bool
	next   byte
	nextOK bool
	err    error
}

func newWindow(r *bufio.Reader, first byte, hasFirst bool) *window {
	w := &window{r: r}
	if hasFirst {
		w.cur, w.curOK = first, true
	} else {
		w.cur, w.curOK = w.read()
	}
	w.next, w.nextOK = w.read()
	return w
}

func (w *window) read() (byte, bool) {
	if w.err != nil {
		return 0, false
	}
	b, err := w.r.ReadByte()
	if err != nil {
		if err != io.EOF {
			w.err = err
		}
		return 0, false
	}
	return b, true
}

func (w *window) advance() {
	w.cur, w.curOK = w.next, w.nextOK
	w.next, w.nextOK = w.read()
}

// Tokenize scans rows from r into t's Buffer until maxLines rows have been
// recorded in this call (maxLines < 0 means "until EOF") or the stream is
// exhausted. first/hasFirst let the caller chain an already-peeked byte
// from a prior Tokenize call on the same stream.
func (t *Tokenizer) Tokenize(r *bufio.Reader, maxLines int, first byte, hasFirst bool) (Result, error) {
	w := newWindow(r, first, hasFirst)

	startBytes := t.buf.Bytes.Len()
	startFields := t.buf.Bounds.Len() - 1
	startLines := t.buf.Lines.Len() - 1

	for {
		if !w.curOK {
			break
		}
		if maxLines >= 0 && t.buf.Lines.Len()-1-startLines >= maxLines {
			break
		}

		if t.opts.AllowComments && !t.inQuotes && t.atStart && w.cur == t.opts.CommentMark {
			t.skipToEOL(w)
			continue
		}

		if t.opts.SkipBlanks && !t.inQuotes && t.atStart && classify.AtBlankLine(w.cur) {
			t.consumeLineTerm(w)
			continue
		}

		if t.opts.AllowEscapes && !t.inQuotes && w.cur == '\\' {
			if !w.nextOK {
				return Result{}, &EscapeError{Row: t.buf.Lines.Len()}
			}
			merged, ok := classify.MergeCEscape(w.next)
			if !ok {
				return Result{}, &EscapeError{Row: t.buf.Lines.Len(), Byte: w.next}
			}
			w.advance()
			w.advance()
			t.buf.Bytes.Append(merged)
			t.rowOpen = true
			t.skipWhite = false
			t.atStart = false
			continue
		}

		t.atStart = false

		if t.inQuotes {
			t.stepInsideQuotes(w)
		} else {
			t.stepOutsideQuotes(w)
		}
	}

	if w.err != nil {
		return Result{}, w.err
	}

	if !w.curOK && t.rowOpen {
		t.closeField()
		t.closeLine()
		t.rowOpen = false
	}

	res := Result{
		BytesAdded: t.buf.Bytes.Len() - startBytes,
		Fields:     t.buf.Bounds.Len() - 1 - startFields,
		Lines:      t.buf.Lines.Len() - 1 - startLines,
	}
	if w.curOK {
		res.Next, res.HasNext = w.cur, true
		if w.nextOK {
			// Hand the lookahead byte back to r so a chained call sees it
			// right after Next instead of losing it.
			if err := r.UnreadByte(); err != nil {
				return Result{}, err
			}
		}
	}
	return res, nil
}

func (t *Tokenizer) skipToEOL(w *window) {
	for w.curOK && !classify.AtNewline(w.cur) {
		w.advance()
	}
	if w.curOK {
		if w.cur == '\r' && w.nextOK && w.next == '\n' {
			w.advance()
		}
		w.advance()
	}
	t.atStart = true
}

func (t *Tokenizer) consumeLineTerm(w *window) {
	if w.cur == '\r' && w.nextOK && w.next == '\n' {
		w.advance()
	}
	w.advance()
}

// stepOutsideQuotes processes exactly one byte of unquoted input, handling
// a configurable separator, optional space-separated collapsing, and CRLF
// normalization.
func (t *Tokenizer) stepOutsideQuotes(w *window) {
	c := w.cur

	if t.opts.Quotes.Contains(c) {
		t.inQuotes = true
		t.curQuoted = true
		t.skipWhite = false
		w.advance()
		return
	}

	isSep := c == t.opts.Separator
	if t.opts.SpaceSeparated {
		isSep = c == ' ' || c == '\t'
	}

	if isSep {
		if t.opts.SpaceSeparated {
			nextBreaks := !w.nextOK || classify.IsWhitespace(w.next)
			if t.skipWhite || nextBreaks {
				// Collapse runs of whitespace to a single separator: only
				// the whitespace byte immediately before non-whitespace
				// content actually closes a field.
				w.advance()
				return
			}
		}
		t.closeField()
		t.rowOpen = true
		w.advance()
		return
	}

	if classify.AtNewline(c) {
		if c == '\r' && w.nextOK && w.next == '\n' {
			w.advance()
		}
		w.advance()
		t.closeField()
		t.closeLine()
		t.rowOpen = false
		t.atStart = true
		if t.opts.SpaceSeparated {
			t.skipWhite = true
		}
		return
	}

	t.buf.Bytes.Append(c)
	t.rowOpen = true
	t.skipWhite = false
	w.advance()
}

// stepInsideQuotes processes exactly one byte inside a quoted field,
// handling doubled-quote escaping and backslash-quote / backslash-backslash
// escapes, which are active regardless of Flags.
func (t *Tokenizer) stepInsideQuotes(w *window) {
	c := w.cur

	if !t.inEscape && classify.AtQuoteEscape(c, w.next, w.nextOK, t.opts.Quotes) {
		t.inEscape = true
		w.advance()
		return
	}

	if !t.inEscape && t.opts.Quotes.Contains(c) {
		t.inQuotes = false
		w.advance()
		return
	}

	t.buf.Bytes.Append(c)
	t.rowOpen = true
	w.advance()
	t.inEscape = false
}

func (t *Tokenizer) closeField() {
	idx := t.buf.Bytes.Len()
	t.buf.Bytes.Append('\n')
	t.buf.Bounds.Append(idx)
	t.buf.Quoted.Append(t.curQuoted)
	t.curQuoted = false
}

func (t *Tokenizer) closeLine() {
	t.buf.Lines.Append(t.buf.Bounds.At(t.buf.Bounds.Len() - 1))
}
