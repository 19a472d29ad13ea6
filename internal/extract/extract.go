package extract

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/docsift/docsift/internal/outline"
	"github.com/docsift/docsift/internal/span"
)

// Extractor derives a structural outline from raw document bytes.
type Extractor interface {
	Extract(r io.Reader, filename string) (*outline.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".md":   true,
	".html": true,
	".htm":  true,
	".txt":  true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFExtractor{}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".txt":
		return &TextExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Stem returns the filename without directory or extension, used to name
// outline artifacts.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func errEmptyFrom(filename string) error {
	return fmt.Errorf("%s: %w", filename, span.ErrEmptyDocument)
}
