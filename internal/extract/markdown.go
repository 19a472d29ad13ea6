package extract

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/docsift/docsift/internal/outline"
)

// MarkdownExtractor builds outlines from Markdown heading nodes via the
// goldmark AST.
type MarkdownExtractor struct{}

func (p *MarkdownExtractor) Extract(r io.Reader, filename string) (*outline.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	out := &outline.Document{}
	var fullText strings.Builder
	appendText := func(t string) {
		if t == "" {
			return
		}
		if fullText.Len() > 0 {
			fullText.WriteByte(' ')
		}
		fullText.WriteString(t)
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(string(node.Text(src)))
			if title == "" {
				continue
			}
			appendText(title)
			if out.Title == "" && node.Level == 1 {
				out.Title = title
			}
			out.Outline = append(out.Outline, outline.Entry{Text: title, Page: 0})
		default:
			appendText(nodeText(n, src))
		}
	}

	if fullText.Len() == 0 {
		return nil, errEmptyFrom(filename)
	}
	out.FullText = []string{fullText.String()}
	return out, nil
}

// nodeText gets the text content of a goldmark AST node.
func nodeText(n ast.Node, src []byte) string {
	var buf strings.Builder
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(nodeText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
