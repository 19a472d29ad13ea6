package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/docsift/docsift/internal/span"
)

func TestForFileDispatch(t *testing.T) {
	cases := []struct {
		filename string
		wantErr  bool
	}{
		{"report.pdf", false},
		{"report.PDF", false},
		{"notes.docx", false},
		{"readme.md", false},
		{"page.html", false},
		{"page.htm", false},
		{"plain.txt", false},
		{"data.csv", true},
		{"archive.zip", true},
		{"noextension", true},
	}
	for _, c := range cases {
		_, err := ForFile(c.filename)
		if (err != nil) != c.wantErr {
			t.Errorf("ForFile(%q) err = %v, wantErr %v", c.filename, err, c.wantErr)
		}
	}
}

func TestStem(t *testing.T) {
	if got := Stem("dir/report.v2.pdf"); got != "report.v2" {
		t.Errorf("Stem = %q", got)
	}
	if got := Stem("plain"); got != "plain" {
		t.Errorf("Stem = %q", got)
	}
}

func TestMarkdownExtractor(t *testing.T) {
	src := `# City Guide

Intro paragraph about the city.

## Museums

The museum district has twelve galleries.

## Restaurants

Local cuisine ranges widely.
`
	doc, err := (&MarkdownExtractor{}).Extract(strings.NewReader(src), "guide.md")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Title != "City Guide" {
		t.Errorf("Title = %q", doc.Title)
	}
	headings := doc.Headings()
	want := []string{"City Guide", "Museums", "Restaurants"}
	if len(headings) != len(want) {
		t.Fatalf("headings = %v", headings)
	}
	for i := range want {
		if headings[i] != want[i] {
			t.Errorf("headings[%d] = %q, want %q", i, headings[i], want[i])
		}
	}
	if len(doc.FullText) != 1 || !strings.Contains(doc.FullText[0], "twelve galleries") {
		t.Errorf("FullText = %v", doc.FullText)
	}
}

func TestMarkdownExtractor_Empty(t *testing.T) {
	_, err := (&MarkdownExtractor{}).Extract(strings.NewReader("   \n"), "empty.md")
	if !errors.Is(err, span.ErrEmptyDocument) {
		t.Fatalf("want ErrEmptyDocument, got %v", err)
	}
}

func TestHTMLExtractor(t *testing.T) {
	src := `<html><head><title>Site Title</title><style>p{}</style></head>
<body>
<nav><a href="/">skip this nav text</a></nav>
<h1>Main Topic</h1>
<p>Body paragraph one.</p>
<h2>Subtopic</h2>
<p>Body paragraph two.</p>
<script>console.log("skip")</script>
</body></html>`
	doc, err := (&HTMLExtractor{}).Extract(strings.NewReader(src), "page.html")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Title != "Site Title" {
		t.Errorf("Title = %q", doc.Title)
	}
	headings := doc.Headings()
	if len(headings) != 2 || headings[0] != "Main Topic" || headings[1] != "Subtopic" {
		t.Errorf("headings = %v", headings)
	}
	full := doc.FullText[0]
	if !strings.Contains(full, "Body paragraph one.") || !strings.Contains(full, "Body paragraph two.") {
		t.Errorf("FullText = %q", full)
	}
	if strings.Contains(full, "skip this nav text") || strings.Contains(full, "console.log") {
		t.Errorf("nav/script leaked into FullText: %q", full)
	}
}

func TestTextExtractor(t *testing.T) {
	doc, err := (&TextExtractor{}).Extract(strings.NewReader("line one\n\nline two\n"), "notes.txt")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(doc.Outline) != 0 {
		t.Errorf("plain text should have no outline, got %v", doc.Outline)
	}
	if doc.FullText[0] != "line one line two" {
		t.Errorf("FullText = %q", doc.FullText[0])
	}
}
