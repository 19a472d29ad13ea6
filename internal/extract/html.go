package extract

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/docsift/docsift/internal/outline"
)

// HTMLExtractor builds outlines from h1–h6 elements.
type HTMLExtractor struct{}

func (p *HTMLExtractor) Extract(r io.Reader, filename string) (*outline.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &outline.Document{Title: findTitle(doc)}
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

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				title := textContent(n)
				if title != "" {
					appendText(title)
					if out.Title == "" && level == 1 {
						out.Title = title
					}
					out.Outline = append(out.Outline, outline.Entry{Text: title, Page: 0})
				}
				return
			}
			switch n.Data {
			case "script", "style", "nav":
				return
			case "p", "li", "td", "blockquote":
				appendText(textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	if fullText.Len() == 0 {
		return nil, errEmptyFrom(filename)
	}
	out.FullText = []string{fullText.String()}
	return out, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
