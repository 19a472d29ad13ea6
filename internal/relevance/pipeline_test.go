package relevance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/docsift/docsift/internal/outline"
)

// scriptedGen routes calls by instruction prefix so each stage can be driven
// independently.
type scriptedGen struct {
	keywords string
	filter   func(content string) string
	rank     string
	summary  string
	err      error
}

func (g *scriptedGen) Generate(_ context.Context, instruction, content string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	switch {
	case strings.HasPrefix(instruction, "Extract the most important keywords"):
		return g.keywords, nil
	case strings.HasPrefix(instruction, "You are a precise filtering"):
		if g.filter != nil {
			return g.filter(content), nil
		}
		return "[]", nil
	case strings.HasPrefix(instruction, "You are a precise sorting"):
		return g.rank, nil
	default:
		return g.summary, nil
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doc(name string, headings ...string) Document {
	d := Document{Name: name, Path: "past/" + name, Outline: &outline.Document{
		FullText: []string{"Page text about " + strings.Join(headings, " and ")},
	}}
	for _, h := range headings {
		d.Outline.Outline = append(d.Outline.Outline, outline.Entry{
			Text: h, Page: 0, TopX: 10, TopY: 20, BotX: 110, BotY: 40,
		})
	}
	return d
}

func TestRun_EndToEnd(t *testing.T) {
	gen := &scriptedGen{
		keywords: "Roman ruins, ancient history",
		filter: func(content string) string {
			// Echo back up to two of the offered headings verbatim.
			if strings.Contains(content, "Marseille") {
				return `["Marseille"]`
			}
			return `["Nîmes", "Arles"]`
		},
		rank:    `["Nîmes", "Marseille", "Arles"]`,
		summary: "A concise summary. It covers the ruins in two sentences.",
	}
	p := New(gen, discard())

	docs := []Document{
		doc("guide_one.pdf", "Marseille", "Nice"),
		doc("guide_two.pdf", "Nîmes", "Arles"),
	}
	res, err := p.Run(context.Background(), "tell me about Roman ruins", docs)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.ExtractedSections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(res.ExtractedSections))
	}
	if res.ExtractedSections[0].SectionTitle != "Nîmes" {
		t.Errorf("rank 1 should be Nîmes, got %q", res.ExtractedSections[0].SectionTitle)
	}
	for i, s := range res.ExtractedSections {
		if s.ImportanceRank != i+1 {
			t.Errorf("section %d: rank %d not contiguous", i, s.ImportanceRank)
		}
		if s.RefinedText == "" {
			t.Errorf("section %q missing summary", s.SectionTitle)
		}
		if len(s.Location) != 4 {
			t.Errorf("section %q missing location", s.SectionTitle)
		}
	}
	// Every returned title must exist verbatim in some input outline.
	known := map[string]bool{"Marseille": true, "Nice": true, "Nîmes": true, "Arles": true}
	for _, s := range res.ExtractedSections {
		if !known[s.SectionTitle] {
			t.Errorf("section title %q not present in any input outline", s.SectionTitle)
		}
	}
}

func TestRun_NoKeywordsFailsClosed(t *testing.T) {
	gen := &scriptedGen{keywords: "   "}
	p := New(gen, discard())
	_, err := p.Run(context.Background(), "query", []Document{doc("a.pdf", "Heading One")})
	if !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("expected ErrNoKeywords, got %v", err)
	}
}

func TestRun_EmptyRankingIsValidEmptyResult(t *testing.T) {
	gen := &scriptedGen{
		keywords: "anything",
		filter:   func(string) string { return `["Marseille"]` },
		rank:     "[]",
	}
	p := New(gen, discard())
	res, err := p.Run(context.Background(), "query", []Document{doc("a.pdf", "Marseille")})
	if err != nil {
		t.Fatal(err)
	}
	if res.ExtractedSections == nil || len(res.ExtractedSections) != 0 {
		t.Fatalf("expected empty extracted_sections, got %#v", res.ExtractedSections)
	}
}

func TestRun_ParaphrasedHeadingIsDropped(t *testing.T) {
	gen := &scriptedGen{
		keywords: "history",
		filter:   func(string) string { return `["Marseille"]` },
		// The model paraphrased one heading; only the verbatim one survives.
		rank:    `["The City of Marseille", "Marseille"]`,
		summary: "Summary text here.",
	}
	p := New(gen, discard())
	res, err := p.Run(context.Background(), "query", []Document{doc("a.pdf", "Marseille")})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.ExtractedSections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(res.ExtractedSections))
	}
	s := res.ExtractedSections[0]
	if s.SectionTitle != "Marseille" || s.ImportanceRank != 1 {
		t.Fatalf("unexpected section: %+v", s)
	}
}

func TestRun_OverlongRankingIsCapped(t *testing.T) {
	gen := &scriptedGen{
		keywords: "history",
		filter:   func(string) string { return `["Marseille", "Nice", "Nîmes", "Arles", "Avignon", "Toulon"]` },
		// The model ignored the cap and ranked everything.
		rank:    `["Marseille", "Nice", "Nîmes", "Arles", "Avignon", "Toulon"]`,
		summary: "Summary.",
	}
	p := New(gen, discard())
	docs := []Document{
		doc("a.pdf", "Marseille", "Nice", "Nîmes", "Arles", "Avignon", "Toulon"),
	}
	res, err := p.Run(context.Background(), "query", docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.ExtractedSections) != 4 {
		t.Fatalf("expected at most 4 sections, got %d", len(res.ExtractedSections))
	}
	want := []string{"Marseille", "Nice", "Nîmes", "Arles"}
	for i, s := range res.ExtractedSections {
		if s.SectionTitle != want[i] {
			t.Errorf("section %d = %q, want %q", i, s.SectionTitle, want[i])
		}
		if s.ImportanceRank != i+1 {
			t.Errorf("section %d: rank %d not contiguous", i, s.ImportanceRank)
		}
	}
}

func TestRun_MalformedFilterResponseIsIsolated(t *testing.T) {
	gen := &scriptedGen{
		keywords: "history",
		filter: func(content string) string {
			if strings.Contains(content, "Broken Doc Heading") {
				return "I cannot help with that."
			}
			return `["Marseille"]`
		},
		rank:    `["Marseille"]`,
		summary: "Summary.",
	}
	p := New(gen, discard())
	docs := []Document{
		doc("bad.pdf", "Broken Doc Heading"),
		doc("good.pdf", "Marseille"),
	}
	res, err := p.Run(context.Background(), "query", docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.ExtractedSections) != 1 || res.ExtractedSections[0].Document != "good.pdf" {
		t.Fatalf("expected the healthy document to survive, got %+v", res.ExtractedSections)
	}
}

func TestRun_DuplicateHeadingClaimedByFirstDocument(t *testing.T) {
	gen := &scriptedGen{
		keywords: "history",
		filter:   func(string) string { return `["Marseille"]` },
		rank:     `["Marseille"]`,
		summary:  "Summary.",
	}
	p := New(gen, discard())
	docs := []Document{
		doc("first.pdf", "Marseille"),
		doc("second.pdf", "Marseille"),
	}
	res, err := p.Run(context.Background(), "query", docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.ExtractedSections) != 1 || res.ExtractedSections[0].Document != "first.pdf" {
		t.Fatalf("duplicate heading should belong to first document, got %+v", res.ExtractedSections)
	}
}
