package extract

import (
	"bufio"
	"io"
	"strings"

	"github.com/docsift/docsift/internal/outline"
)

// TextExtractor handles plain text: no structure to recover, so the outline
// is empty and the content feeds full-text features only.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) (*outline.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var fullText strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if fullText.Len() > 0 {
			fullText.WriteByte(' ')
		}
		fullText.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if fullText.Len() == 0 {
		return nil, errEmptyFrom(filename)
	}

	return &outline.Document{FullText: []string{fullText.String()}}, nil
}
