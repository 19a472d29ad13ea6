package outline

import "github.com/docsift/docsift/internal/span"

// Element is a tagged, positioned text unit produced by the structure builder.
type Element struct {
	Tag      span.Tag
	Text     string
	Page     int
	FontSize float64
	OriginY  float64
	BBox     span.BBox
}

// Entry is the persisted form of an outline element.
type Entry struct {
	Text string  `json:"text"`
	Page int     `json:"page"`
	TopX float64 `json:"top_x"`
	TopY float64 `json:"top_y"`
	BotX float64 `json:"bot_x"`
	BotY float64 `json:"bot_y"`
}

// Document is the structural outline of one source document: its title, the
// heading-like elements in reading order, and the full text of each page.
// It is persisted as a JSON artifact named after the document's stem so the
// relevance pipeline can reuse it without re-parsing the source.
type Document struct {
	Title    string   `json:"title"`
	Outline  []Entry  `json:"outline"`
	FullText []string `json:"full_text"`
}

// Headings returns the outline entry texts in order.
func (d *Document) Headings() []string {
	out := make([]string, 0, len(d.Outline))
	for _, e := range d.Outline {
		out = append(out, e.Text)
	}
	return out
}
