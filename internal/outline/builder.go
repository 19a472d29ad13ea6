package outline

import (
	"strings"
	"unicode"

	"github.com/docsift/docsift/internal/span"
)

// Page is one page of extracted spans plus its dimensions.
type Page struct {
	Width  float64
	Height float64
	Spans  []span.Span
}

// Header/footer exclusion band, as fractions of page height.
const (
	headerBand = 0.05
	footerBand = 0.90
)

// Builder turns raw per-page spans into a Document. The tagging heuristic is
// pluggable; the default frequency tagger is used when none is set.
type Builder struct {
	Tagger span.Tagger
}

// Build classifies spans across all pages, orders each page's spans by
// reading order, assembles per-page text, and collects heading-candidate
// elements into the outline. Returns span.ErrEmptyDocument when the document
// has no extractable text.
func (b *Builder) Build(pages []Page) (*Document, error) {
	tagger := b.Tagger
	if tagger == nil {
		tagger = span.FrequencyTagger{}
	}

	var all []span.Span
	for _, p := range pages {
		all = append(all, p.Spans...)
	}
	tags, err := tagger.Tags(all)
	if err != nil {
		return nil, err
	}

	var elements []Element
	var fullText []string
	heights := make(map[int]float64)

	for pageIdx, p := range pages {
		heights[pageIdx] = p.Height

		boxes := make([]span.BBox, len(p.Spans))
		for i, s := range p.Spans {
			boxes[i] = s.BBox
		}
		order := span.ReadingOrder(boxes, p.Width, p.Height)

		var pageText strings.Builder
		for _, idx := range order {
			s := p.Spans[idx]
			text := strings.TrimSpace(s.Text)
			if text == "" {
				continue
			}
			if pageText.Len() > 0 {
				pageText.WriteByte(' ')
			}
			pageText.WriteString(text)

			elements = append(elements, Element{
				Tag:      tags[s.Sig()],
				Text:     text,
				Page:     pageIdx,
				FontSize: s.FontSize,
				OriginY:  s.OriginY,
				BBox:     s.BBox,
			})
		}
		fullText = append(fullText, pageText.String())
	}

	// Drop running headers and footers, then keep only heading candidates.
	var candidates []Element
	for _, e := range elements {
		h := heights[e.Page]
		if h > 0 && (e.OriginY < h*headerBand || e.OriginY > h*footerBand) {
			continue
		}
		if IsHeadingCandidate(e.Text) {
			candidates = append(candidates, e)
		}
	}

	doc := &Document{
		Title:    primaryTitle(candidates),
		FullText: fullText,
		Outline:  make([]Entry, 0, len(candidates)),
	}
	for _, e := range candidates {
		doc.Outline = append(doc.Outline, Entry{
			Text: e.Text,
			Page: e.Page,
			TopX: e.BBox.X0,
			TopY: e.BBox.Y0,
			BotX: e.BBox.X1,
			BotY: e.BBox.Y1,
		})
	}
	return doc, nil
}

// IsHeadingCandidate applies the text heuristics that separate heading-like
// elements from body fragments: moderate length, does not start with a
// lowercase letter, contains something beyond digits and spaces, and does not
// end mid-clause.
func IsHeadingCandidate(text string) bool {
	runes := []rune(text)
	if len(runes) <= 3 || len(runes) >= 90 {
		return false
	}
	if runes[0] >= 'a' && runes[0] <= 'z' {
		return false
	}
	hasContent := false
	for _, r := range runes {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return false
	}
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', ',', ';', '(', '{', '[':
		return false
	}
	return true
}

// primaryTitle picks the page-0 candidate with the largest font size.
func primaryTitle(candidates []Element) string {
	best := -1
	for i, e := range candidates {
		if e.Page != 0 {
			continue
		}
		if best < 0 || e.FontSize > candidates[best].FontSize {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return candidates[best].Text
}
