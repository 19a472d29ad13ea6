package relevance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/docsift/docsift/internal/genai"
	"github.com/docsift/docsift/internal/outline"
)

// ErrNoKeywords means the keyword-extraction stage produced nothing; the
// pipeline fails closed and nothing downstream runs.
var ErrNoKeywords = errors.New("no keywords extracted from query text")

// Document is one source document offered to the pipeline.
type Document struct {
	Name    string // e.g. "south_of_france.pdf"
	Path    string // artifact key of the source file
	Outline *outline.Document
}

// Section is one ranked result. Rank 1 is most relevant.
type Section struct {
	Document       string    `json:"document"`
	LocalPath      string    `json:"local_path"`
	SectionTitle   string    `json:"section_title"`
	ImportanceRank int       `json:"importance_rank"`
	PageNumber     int       `json:"page_number"`
	RefinedText    string    `json:"refined_text"`
	Location       []float64 `json:"location"`
}

// Result is the final pipeline output. ExtractedSections is never nil, so an
// empty result serializes as {"extracted_sections": []}.
type Result struct {
	ExtractedSections []Section `json:"extracted_sections"`
}

const (
	keywordInstruction = "Extract the most important keywords and key information from this text. Return only a single line of comma-separated values."

	filterInstruction = "You are a precise filtering assistant. Given keywords and a list of document headings, return only the headings that are highly relevant to the keywords. Select a maximum of 3 headings. Output must be a list of strings with only the original headings."

	rankInstruction = "You are a precise sorting assistant. Given keywords and a list of pre-filtered headings, sort the list in descending order of importance based on the keywords. Select a maximum of 4 headings. Output must be a list of strings containing only the original headings."

	// Page text offered to the summarizer is capped to keep prompts bounded.
	summaryContextTokens = 3000

	// Hard cap on emitted sections. The ranking prompt asks for at most 4,
	// but the model is not trusted to honor it.
	maxRankedSections = 4
)

// Pipeline narrows a large heading set down to the few sections most relevant
// to a query: keywords -> per-document filtering -> ranking -> enrichment.
type Pipeline struct {
	gen genai.Generator
	log *slog.Logger

	// MaxConcurrentFilter bounds parallel stage-2 calls; <=0 means 4.
	MaxConcurrentFilter int
}

func New(gen genai.Generator, log *slog.Logger) *Pipeline {
	return &Pipeline{gen: gen, log: log}
}

// Run executes all four stages. An empty final result is not an error; only
// stage-1 failure is.
func (p *Pipeline) Run(ctx context.Context, query string, docs []Document) (*Result, error) {
	keywords, err := p.extractKeywords(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := p.filterHeadings(ctx, keywords, docs)
	if len(candidates) == 0 {
		p.log.Info("no relevant headings after filtering")
		return &Result{ExtractedSections: []Section{}}, nil
	}

	ranked := p.rankHeadings(ctx, keywords, candidates)
	if len(ranked) == 0 {
		p.log.Info("no headings remained after ranking")
		return &Result{ExtractedSections: []Section{}}, nil
	}

	return p.enrich(ctx, ranked, docs), nil
}

// Stage 1: one call turning the free-text query into comma-separated keywords.
func (p *Pipeline) extractKeywords(ctx context.Context, query string) (string, error) {
	text, err := genai.GenerateWithRetry(genai.WithStage(ctx, "keywords"), p.gen, keywordInstruction, fmt.Sprintf("Text: %q", query))
	if err != nil {
		return "", fmt.Errorf("keyword extraction: %w: %v", ErrNoKeywords, err)
	}
	keywords := strings.TrimSpace(text)
	if keywords == "" {
		return "", ErrNoKeywords
	}
	return keywords, nil
}

// Stage 2: filter each document's headings independently. An ill-formed
// response costs that document its contribution, never the whole batch.
// Cross-document order is preserved in the combined pool.
func (p *Pipeline) filterHeadings(ctx context.Context, keywords string, docs []Document) []string {
	maxConcurrent := p.MaxConcurrentFilter
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	perDoc := make([][]string, len(docs))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, doc := range docs {
		headings := doc.Outline.Headings()
		if len(headings) == 0 {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string, headings []string) {
			defer wg.Done()
			defer func() { <-sem }()

			content := fmt.Sprintf("Keywords: %s\n\nList of headings: %s", keywords, formatList(headings))
			resp, err := genai.GenerateWithRetry(genai.WithStage(ctx, "filter"), p.gen, filterInstruction, content)
			if err != nil {
				p.log.Warn("heading filter failed", "document", name, "error", err)
				return
			}
			selected, ok := genai.StringList(resp)
			if !ok {
				p.log.Warn("unparseable filter response", "document", name)
				return
			}
			perDoc[i] = selected
		}(i, doc.Name, headings)
	}
	wg.Wait()

	var pool []string
	for _, selected := range perDoc {
		pool = append(pool, selected...)
	}
	return pool
}

// Stage 3: one ranking call over the combined pool, capped at 4.
func (p *Pipeline) rankHeadings(ctx context.Context, keywords string, pool []string) []string {
	content := fmt.Sprintf("Keywords: %s\n\nList of headings: %s", keywords, formatList(pool))
	resp, err := genai.GenerateWithRetry(genai.WithStage(ctx, "rank"), p.gen, rankInstruction, content)
	if err != nil {
		p.log.Warn("ranking failed", "error", err)
		return nil
	}
	ranked, ok := genai.StringList(resp)
	if !ok {
		p.log.Warn("unparseable ranking response")
		return nil
	}
	if len(ranked) > maxRankedSections {
		p.log.Warn("ranking exceeded cap, truncating", "returned", len(ranked))
		ranked = ranked[:maxRankedSections]
	}
	return ranked
}

// Stage 4: match each ranked heading back to its source outline and attach a
// short summary of the surrounding page. Headings the model paraphrased
// instead of copying verbatim fail the exact match and are dropped; the first
// document to claim a duplicated heading wins.
func (p *Pipeline) enrich(ctx context.Context, ranked []string, docs []Document) *Result {
	type origin struct {
		doc   Document
		entry outline.Entry
	}
	origins := make(map[string]origin)
	for _, doc := range docs {
		for _, entry := range doc.Outline.Outline {
			key := strings.TrimSpace(entry.Text)
			if _, claimed := origins[key]; !claimed {
				origins[key] = origin{doc: doc, entry: entry}
			}
		}
	}

	result := &Result{ExtractedSections: []Section{}}
	for _, heading := range ranked {
		o, ok := origins[strings.TrimSpace(heading)]
		if !ok {
			p.log.Warn("ranked heading not found verbatim in any outline", "heading", heading)
			continue
		}

		summary := p.summarize(ctx, heading, o.doc, o.entry.Page)
		result.ExtractedSections = append(result.ExtractedSections, Section{
			Document:       o.doc.Name,
			LocalPath:      o.doc.Path,
			SectionTitle:   heading,
			ImportanceRank: len(result.ExtractedSections) + 1,
			PageNumber:     o.entry.Page,
			RefinedText:    summary,
			Location:       []float64{o.entry.TopX, o.entry.TopY, o.entry.BotX, o.entry.BotY},
		})
	}
	return result
}

func (p *Pipeline) summarize(ctx context.Context, heading string, doc Document, page int) string {
	fullText := doc.Outline.FullText
	if page < 0 || page >= len(fullText) {
		return ""
	}
	instruction := fmt.Sprintf("Summarize information related to the heading %q from the following text in 2-3 concise sentences.", heading)
	content := "Document Text:\n" + genai.CapTokens(fullText[page], summaryContextTokens)
	summary, err := genai.GenerateWithRetry(genai.WithStage(ctx, "summarize"), p.gen, instruction, content)
	if err != nil {
		p.log.Warn("summarization failed", "heading", heading, "error", err)
		return "Could not summarize: " + heading
	}
	return strings.TrimSpace(summary)
}

// formatList renders headings the way the prompts expect: a bracketed list of
// quoted strings.
func formatList(items []string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(item, `"`, `\"`))
		sb.WriteByte('"')
	}
	sb.WriteByte(']')
	return sb.String()
}
