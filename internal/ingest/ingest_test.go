package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource records whether Open was called.
type fakeSource struct {
	name      string
	mediaType string
	content   string
	openErr   error
	readErr   error
	opened    bool
}

func (f *fakeSource) Name() string      { return f.name }
func (f *fakeSource) MediaType() string { return f.mediaType }

func (f *fakeSource) Open() (io.ReadCloser, error) {
	f.opened = true
	if f.openErr != nil {
		return nil, f.openErr
	}
	var r io.Reader = strings.NewReader(f.content)
	if f.readErr != nil {
		r = io.MultiReader(r, &failingReader{err: f.readErr})
	}
	return io.NopCloser(r), nil
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestIngestTypeCheck(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		mediaType string
		accepted  bool
	}{
		{"txt extension", "notes.txt", "", true},
		{"text/plain", "notes", "text/plain", true},
		{"text/plain with charset", "notes.log", "text/plain; charset=utf-8", true},
		{"pdf", "report.pdf", "application/pdf", false},
		{"pdf no media type", "report.pdf", "", false},
		{"markdown", "README.md", "text/markdown", false},
		{"uppercase extension", "NOTES.TXT", "", false},
		{"txt in middle", "notes.txt.bak", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{name: tt.fileName, mediaType: tt.mediaType, content: "x"}
			lines, err := Ingest(context.Background(), src, Options{})
			if tt.accepted {
				require.NoError(t, err)
				assert.Equal(t, []string{"x"}, lines)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedType))
			assert.False(t, errors.Is(err, ErrReadFailure))
			assert.Nil(t, lines)
			assert.False(t, src.opened, "unsupported source must not be opened")
		})
	}
}

func TestIngestCustomPatterns(t *testing.T) {
	matchers, err := CompilePatterns([]string{"*.txt", "*.log"})
	require.NoError(t, err)
	opts := Options{Matchers: matchers}

	src := &fakeSource{name: "server.log", content: "a\nb"}
	lines, err := Ingest(context.Background(), src, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)

	src = &fakeSource{name: "report.pdf", content: "x"}
	_, err = Ingest(context.Background(), src, opts)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.False(t, src.opened)
}

func TestIngestSplit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"example", "alpha\nbeta\n\ngamma", []string{"alpha", "beta", "", "gamma"}},
		{"single line", "only line", []string{"only line"}},
		{"trailing newline", "a\nb\n", []string{"a", "b", ""}},
		{"empty file", "", []string{""}},
		{"only newline", "\n", []string{"", ""}},
		{"crlf kept", "a\r\nb\r\n", []string{"a\r", "b\r", ""}},
		{"lone cr kept", "a\rb", []string{"a\rb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{name: "in.txt", content: tt.input}
			lines, err := Ingest(context.Background(), src, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lines)
			assert.GreaterOrEqual(t, len(lines), 1)
			assert.Equal(t, tt.input, strings.Join(lines, "\n"))
		})
	}
}

func TestIngestNormalizeNewlines(t *testing.T) {
	src := &fakeSource{name: "in.txt", content: "a\r\nb\rc\n"}
	lines, err := Ingest(context.Background(), src, Options{NormalizeNewlines: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", ""}, lines)
}

func TestSplitLinesRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"x",
		"\n\n\n",
		"first\nsecond",
		"tabs\tand spaces \n  indented",
		"unicode ✓ line\nzweite Zeile\n",
	}
	for _, in := range inputs {
		lines := SplitLines(in)
		assert.GreaterOrEqual(t, len(lines), 1)
		assert.Equal(t, in, strings.Join(lines, "\n"))
	}
}

func TestIngestReadFailure(t *testing.T) {
	t.Run("open error", func(t *testing.T) {
		src := &fakeSource{name: "in.txt", openErr: os.ErrPermission}
		lines, err := Ingest(context.Background(), src, Options{})
		require.Error(t, err)
		assert.Nil(t, lines)
		assert.True(t, errors.Is(err, ErrReadFailure))
		assert.True(t, errors.Is(err, os.ErrPermission))
	})

	t.Run("truncated stream", func(t *testing.T) {
		src := &fakeSource{name: "in.txt", content: "partial\nconte", readErr: io.ErrUnexpectedEOF}
		lines, err := Ingest(context.Background(), src, Options{})
		require.Error(t, err)
		assert.Nil(t, lines, "no partial result")
		assert.True(t, errors.Is(err, ErrReadFailure))
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})

	t.Run("missing file", func(t *testing.T) {
		src := FileSource{Path: filepath.Join(t.TempDir(), "missing.txt")}
		_, err := Ingest(context.Background(), src, Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrReadFailure))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := &fakeSource{name: "in.txt", content: "x"}
		_, err := Ingest(ctx, src, Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrReadFailure))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestIngestMaxBytes(t *testing.T) {
	src := &fakeSource{name: "in.txt", content: strings.Repeat("x", 64)}
	_, err := Ingest(context.Background(), src, Options{MaxBytes: 16})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReadFailure))
	assert.True(t, errors.Is(err, ErrTooLarge))

	src = &fakeSource{name: "in.txt", content: strings.Repeat("x", 16)}
	lines, err := Ingest(context.Background(), src, Options{MaxBytes: 16})
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestIngestDecoding(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		content   string
		expected  []string
	}{
		{"utf-8 bom stripped", "", "\xef\xbb\xbfhello\nworld", []string{"hello", "world"}},
		{"utf-16le bom", "", "\xff\xfeh\x00i\x00\n\x00!\x00", []string{"hi", "!"}},
		{"latin-1 charset", "text/plain; charset=iso-8859-1", "caf\xe9", []string{"café"}},
		{"invalid utf-8 replaced", "", "ok\xff", []string{"ok�"}},
		{"unknown charset falls back", "text/plain; charset=bogus", "plain", []string{"plain"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{name: "in.txt", mediaType: tt.mediaType, content: tt.content}
			lines, err := Ingest(context.Background(), src, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lines)
		})
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo"), 0644))

	src := FileSource{Path: path}
	assert.Equal(t, "story.txt", src.Name())

	lines, err := Ingest(context.Background(), src, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestFileSourceMediaType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "NOTES.TXT")
	require.NoError(t, os.WriteFile(path, []byte("shout\ning"), 0644))

	src := FileSource{Path: path}
	assert.Equal(t, "text/plain; charset=utf-8", src.MediaType())

	lines, err := Ingest(context.Background(), src, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"shout", "ing"}, lines)

	// without a declared media type the name alone does not match
	named := &fakeSource{name: "NOTES.TXT", content: "x"}
	_, err = Ingest(context.Background(), named, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assert.Empty(t, FileSource{Path: filepath.Join(dir, "notes")}.MediaType())
}

func TestReaderSource(t *testing.T) {
	src := NewReaderSource("stdin", "text/plain", strings.NewReader("piped\ninput"))
	lines, err := Ingest(context.Background(), src, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"piped", "input"}, lines)
}

func TestErrorMessages(t *testing.T) {
	_, err := Ingest(context.Background(), &fakeSource{name: "report.pdf"}, Options{})
	var ie *Error
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, UnsupportedType, ie.Kind)
	assert.Equal(t, "report.pdf", ie.Name)
	assert.Equal(t, "Please upload a text (.txt) file", ie.UserMessage())
	assert.Contains(t, ie.Error(), "report.pdf")

	_, err = Ingest(context.Background(), &fakeSource{name: "a.txt", openErr: os.ErrPermission}, Options{})
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "Failed to read file. Please try again.", ie.UserMessage())
}

func TestCompilePatterns(t *testing.T) {
	_, err := CompilePatterns([]string{"*.txt", "notes-*"})
	assert.NoError(t, err)

	_, err = CompilePatterns([]string{"[unclosed"})
	assert.Error(t, err)
}
