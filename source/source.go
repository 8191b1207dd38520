// Package source resolves a filesystem path to a readable stream: it opens
// the file, transparently decompresses a .gz suffix, and rejects
// unsupported transports and compressions.
package source

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnsupportedScheme is returned by Open for a path naming a transport or
// compression this package does not implement: http(s)/ftp URLs, and
// .bz/.bz2 compression.
var ErrUnsupportedScheme = errors.New("tabl/source: unsupported scheme or compression")

// Open resolves path to a readable stream and its uncompressed size hint
// (0 if unknown). ctx bounds only this open step; the returned
// io.ReadCloser does not itself observe ctx once returned, matching the
// core parser's non-suspending design.
func Open(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if hasScheme(path, "http://", "https://", "ftp://") {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedScheme, path)
	}
	if strings.HasSuffix(path, ".bz") || strings.HasSuffix(path, ".bz2") {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedScheme, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}

	if !strings.HasSuffix(path, ".gz") {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, err
		}
		return f, info.Size(), nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return &gzipReadCloser{gz: gz, file: f}, info.Size() * 2, nil
}

// gzipReadCloser closes both the gzip.Reader and the underlying file handle
// it wraps, so callers only ever hold one Closer regardless of the .gz
// dispatch.
type gzipReadCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fileErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

func hasScheme(path string, schemes ...string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(path, s) {
			return true
		}
	}
	return false
}

// InferSeparator maps a filename to a field separator by suffix:
// .csv -> ',', .tsv -> '\t', .wsv -> ' ', anything else -> ','. A trailing
// .gz/.bz/.bz2 is stripped first so "data.tsv.gz" still infers '\t' even
// though opening a .bz/.bz2 file is itself rejected by Open.
func InferSeparator(path string) byte {
	base := strings.TrimSuffix(path, ".gz")
	base = strings.TrimSuffix(base, ".bz2")
	base = strings.TrimSuffix(base, ".bz")

	switch {
	case strings.HasSuffix(base, ".csv"):
		return ','
	case strings.HasSuffix(base, ".tsv"):
		return '\t'
	case strings.HasSuffix(base, ".wsv"):
		return ' '
	default:
		return ','
	}
}
