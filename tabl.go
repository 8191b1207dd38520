package tabl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shapestone/tabl/internal/cell"
	"github.com/shapestone/tabl/internal/classify"
	"github.com/shapestone/tabl/internal/column"
	"github.com/shapestone/tabl/internal/frame"
	"github.com/shapestone/tabl/internal/tokenizer"
	"github.com/shapestone/tabl/source"
)

// Parse reads a complete tabular document held entirely in memory.
func Parse(input string, opts ...Option) (*Result, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	return parse(bufio.NewReader(strings.NewReader(input)), o)
}

// ParseReader reads a complete tabular document from an io.Reader.
func ParseReader(r io.Reader, opts ...Option) (*Result, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	return parse(bufio.NewReader(r), o)
}

// ReadTable opens path (dispatching on suffix per tabl/source.Open,
// including transparent gzip decompression), infers the separator from the
// filename unless the caller set one explicitly, and parses the result.
//
// ctx bounds only the file-open step: the tokenizer itself is
// single-threaded and non-suspending and offers no cancellation points
// between rows, per the concurrency model this package's core follows.
func ReadTable(ctx context.Context, path string, opts ...Option) (*Result, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	if !o.separatorSet {
		o.Separator = source.InferSeparator(path)
	}
	rc, size, err := source.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	bufSize := 64 * 1024
	if size > 0 && size < 1<<30 {
		bufSize = int(size)
		if bufSize < 4096 {
			bufSize = 4096
		}
	}
	return parse(bufio.NewReaderSize(rc, bufSize), o)
}

// ReadCSV is ReadTable with the separator defaulted to ',' (still
// overridable by an explicit WithSeparator in opts).
func ReadCSV(ctx context.Context, path string, opts ...Option) (*Result, error) {
	return ReadTable(ctx, path, append([]Option{WithSeparator(',')}, opts...)...)
}

// ReadTSV is ReadTable with the separator defaulted to '\t'.
func ReadTSV(ctx context.Context, path string, opts ...Option) (*Result, error) {
	return ReadTable(ctx, path, append([]Option{WithSeparator('\t')}, opts...)...)
}

// ReadWSV is ReadTable with the separator defaulted to ' ' (space-separated,
// whitespace-run collapsing).
func ReadWSV(ctx context.Context, path string, opts ...Option) (*Result, error) {
	return ReadTable(ctx, path, append([]Option{WithSeparator(' ')}, opts...)...)
}

// parse implements the §4.G orchestrator: skip leading physical lines,
// tokenize the header row if requested, tokenize the body, sanity-check the
// counts, and materialize columns.
func parse(br *bufio.Reader, o Options) (*Result, error) {
	skipPhysicalLines(br, o.SkipStart)

	topts := tokenizerOptions(o)

	var names []string
	var firstByte byte
	var hasFirst bool

	if o.Header {
		headerBuf := tokenizer.NewBuffer()
		headerTok := tokenizer.New(headerBuf, topts)
		res, err := headerTok.Tokenize(br, 1, 0, false)
		if err != nil {
			return nil, wrapTokenizeErr(err)
		}
		if len(o.Names) > 0 {
			names = append([]string(nil), o.Names...)
		} else {
			names = frame.HeaderNames(headerBuf)
		}
		firstByte, hasFirst = res.Next, res.HasNext
	} else if len(o.Names) > 0 {
		names = append([]string(nil), o.Names...)
	}

	bodyBuf := tokenizer.NewBuffer()
	bodyTok := tokenizer.New(bodyBuf, topts)

	var rowWarnings []string
	var rows, cols int

	if o.OnBadRow == BadLineModeError {
		if _, err := bodyTok.Tokenize(br, o.NRows, firstByte, hasFirst); err != nil {
			return nil, wrapTokenizeErr(err)
		}
		rows = bodyBuf.Lines.Len() - 1
		if rows == 0 {
			return nil, &StructuralError{Message: "zero rows read"}
		}
		cons := frame.CheckConsistency(bodyBuf)
		if !cons.OK {
			return nil, &StructuralError{
				Pos:          Pos{Row: cons.BadRow},
				ObservedCols: cons.BadCols,
				MedianCols:   cons.MedianCols,
				TotalRows:    cons.Rows,
			}
		}
		cols = cons.Cols
	} else {
		target := -1
		if len(names) > 0 {
			target = len(names)
		}
		for o.NRows < 0 || rows < o.NRows {
			bytesMark, boundsMark, linesMark := bodyBuf.Bytes.Len(), bodyBuf.Bounds.Len(), bodyBuf.Lines.Len()
			res, err := bodyTok.Tokenize(br, 1, firstByte, hasFirst)
			if err != nil {
				return nil, wrapTokenizeErr(err)
			}
			firstByte, hasFirst = res.Next, res.HasNext
			if res.Lines == 0 {
				break
			}
			rowFields := bodyBuf.Bounds.Len() - boundsMark
			if target < 0 {
				target = rowFields
			}
			if rowFields != target {
				bodyBuf.Bytes.Truncate(bytesMark)
				bodyBuf.Bounds.Truncate(boundsMark)
				bodyBuf.Lines.Truncate(linesMark)
				if o.OnBadRow == BadLineModeWarn {
					rowWarnings = append(rowWarnings, RowWarning{Row: rows + 1, Observed: rowFields, Expected: target}.String())
				}
				if !hasFirst {
					break
				}
				continue
			}
			rows++
			if !hasFirst {
				break
			}
		}
		cols = target
		if cols < 0 {
			cols = 0
		}
		if rows == 0 {
			return nil, &StructuralError{Message: "zero rows read"}
		}
	}

	if len(names) == 0 {
		names = defaultColumnNames(cols)
	} else if len(names) != cols {
		names = fitNames(names, cols)
	}

	matOpts := column.Options{
		NASet:         cell.NewSet(o.NAStrings...),
		TrueSet:       cell.NewSet(o.TrueStrings...),
		FalseSet:      cell.NewSet(o.FalseStrings...),
		IgnorePadding: o.IgnorePadding,
		MakeFactors:   o.MakeFactors,
		Declared:      o.ElTypes,
	}
	cols_, err := column.Materialize(bodyBuf, rows, cols, names, matOpts)
	if err != nil {
		if ve, ok := err.(*column.ValueError); ok {
			return nil, &ValueError{Pos: Pos{Row: ve.Row, Col: ve.Col}, CellText: ve.CellText, DeclaredType: ve.DeclaredType}
		}
		return nil, err
	}

	warnings := make([]string, 0, len(o.warnings)+len(rowWarnings))
	for _, w := range o.warnings {
		warnings = append(warnings, w.String())
	}
	warnings = append(warnings, rowWarnings...)

	return &Result{Table: newTable(names, cols_), warnings: warnings}, nil
}

func tokenizerOptions(o Options) tokenizer.Options {
	return tokenizer.Options{
		Flags: tokenizer.Flags{
			AllowComments:  o.AllowComments,
			SkipBlanks:     o.SkipBlanks,
			AllowEscapes:   o.AllowEscapes,
			SpaceSeparated: o.Separator == ' ',
		},
		Separator:   o.Separator,
		CommentMark: o.CommentMark,
		Quotes:      classify.NewQuoteSet(o.QuoteMarks...),
	}
}

func wrapTokenizeErr(err error) error {
	if ee, ok := err.(*tokenizer.EscapeError); ok {
		return &EscapeError{Pos: Pos{Row: ee.Row}, Byte: ee.Byte}
	}
	return err
}

func defaultColumnNames(cols int) []string {
	names := make([]string, cols)
	for i := range names {
		names[i] = fmt.Sprintf("V%d", i+1)
	}
	return names
}

func fitNames(names []string, cols int) []string {
	out := make([]string, cols)
	for i := range out {
		if i < len(names) {
			out[i] = names[i]
		} else {
			out[i] = fmt.Sprintf("V%d", i+1)
		}
	}
	return out
}

// skipPhysicalLines discards n leading physical lines from br, tolerating
// EOF before n lines have been consumed.
func skipPhysicalLines(br *bufio.Reader, n int) {
	for i := 0; i < n; i++ {
		if !skipOneLine(br) {
			return
		}
	}
}

func skipOneLine(br *bufio.Reader) bool {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return false
		}
		if b == '\n' {
			return true
		}
		if b == '\r' {
			if next, err := br.Peek(1); err == nil && len(next) > 0 && next[0] == '\n' {
				br.ReadByte()
			}
			return true
		}
	}
}
