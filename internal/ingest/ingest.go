// Package ingest turns a user-selected text file into an ordered sequence of lines.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/text/transform"
)

// DefaultPatterns are the file names accepted regardless of media type.
var DefaultPatterns = []string{"*.txt"}

var defaultMatchers = mustCompile(DefaultPatterns)

// Options tune ingestion. The zero value splits on "\n" only, accepts
// DefaultPatterns and has no size limit.
type Options struct {
	// Matchers are compiled name patterns, see CompilePatterns. Matched
	// against the base name. Empty means DefaultPatterns.
	Matchers []glob.Glob
	// MaxBytes caps the raw content size. Zero means unlimited.
	MaxBytes int64
	// NormalizeNewlines rewrites "\r\n" and lone "\r" to "\n" before splitting.
	NormalizeNewlines bool
}

// CompilePatterns compiles glob patterns for Options.Matchers.
func CompilePatterns(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func mustCompile(patterns []string) []glob.Glob {
	out, err := CompilePatterns(patterns)
	if err != nil {
		panic(err)
	}
	return out
}

// Accepts reports whether src would pass the type check.
func Accepts(src Source, opts Options) bool {
	if isPlainText(src.MediaType()) {
		return true
	}
	matchers := opts.Matchers
	if len(matchers) == 0 {
		matchers = defaultMatchers
	}
	name := path.Base(src.Name())
	for _, g := range matchers {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Ingest reads src and splits it into lines. Failures are always *Error;
// no lines are returned with an error.
func Ingest(ctx context.Context, src Source, opts Options) ([]string, error) {
	if !Accepts(src, opts) {
		return nil, unsupported(src.Name(), src.MediaType())
	}

	text, err := readText(ctx, src, opts.MaxBytes)
	if err != nil {
		return nil, readFailure(src.Name(), err)
	}

	if opts.NormalizeNewlines {
		text = NormalizeNewlines(text)
	}
	return SplitLines(text), nil
}

// SplitLines splits on "\n" only. Carriage returns stay with the line and
// empty lines are kept, so strings.Join(SplitLines(s), "\n") == s.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// NormalizeNewlines converts "\r\n" and "\r" line endings to "\n".
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func readText(ctx context.Context, src Source, maxBytes int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := src.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var r io.Reader = &ctxReader{ctx: ctx, r: rc}
	if maxBytes > 0 {
		r = &limitReader{r: r, limit: maxBytes, n: maxBytes}
	}

	data, err := io.ReadAll(transform.NewReader(r, decoderFor(src.MediaType())))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// limitReader fails with ErrTooLarge instead of truncating like io.LimitReader.
type limitReader struct {
	r     io.Reader
	limit int64
	n     int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if l.n < 0 {
		return 0, fmt.Errorf("%w (limit %d bytes)", ErrTooLarge, l.limit)
	}
	return n, err
}
