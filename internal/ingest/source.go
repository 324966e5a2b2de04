package ingest

import (
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Source is a user-selected file: a declared name, a declared media type
// hint and a way to open its content.
type Source interface {
	Name() string
	MediaType() string
	Open() (io.ReadCloser, error)
}

// FileSource is a file on disk. Its media type is derived from the
// extension, ignoring case the way a browser file input does, so NOTES.TXT
// is declared text/plain even though the name patterns are case-sensitive.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return filepath.Base(f.Path) }

func (f FileSource) MediaType() string {
	ext := filepath.Ext(f.Path)
	if strings.EqualFold(ext, ".txt") {
		return "text/plain; charset=utf-8"
	}
	return mime.TypeByExtension(ext)
}

func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(f.Path) }

// ReaderSource wraps an already open stream such as stdin.
type ReaderSource struct {
	name      string
	mediaType string
	r         io.Reader
}

// NewReaderSource returns a Source that reads from r. Closing the returned
// ReadCloser does not close r.
func NewReaderSource(name, mediaType string, r io.Reader) *ReaderSource {
	return &ReaderSource{name: name, mediaType: mediaType, r: r}
}

func (s *ReaderSource) Name() string                 { return s.name }
func (s *ReaderSource) MediaType() string            { return s.mediaType }
func (s *ReaderSource) Open() (io.ReadCloser, error) { return io.NopCloser(s.r), nil }
