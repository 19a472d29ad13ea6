// Package insights produces document-collection insights: key takeaways,
// surprising facts, and counterpoints, each as a short list of strings
// generated over the combined text of a session's documents.
package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docsift/docsift/internal/genai"
)

// ErrNoText means no document text was available to analyze.
var ErrNoText = errors.New("no document text available for insights")

// Result is the generated insight bundle.
type Result struct {
	KeyInsights   []string `json:"key_insights"`
	DidYouKnow    []string `json:"did_you_know"`
	Counterpoints []string `json:"counterpoints"`
}

const (
	docSeparator = "\n\n--- DOCUMENT SEPARATOR ---\n\n"

	// Combined document text offered to each prompt is capped so huge
	// uploads cannot blow the prompt budget.
	contextTokens = 6000
)

var prompts = []struct {
	name        string
	instruction string
	assign      func(*Result, []string)
}{
	{
		name: "key_insights",
		instruction: "Based on the combined text from multiple documents, extract 3-5 key insights. " +
			"Present them as a list of strings without any extra text or backticks.",
		assign: func(r *Result, v []string) { r.KeyInsights = v },
	},
	{
		name: "did_you_know",
		instruction: "Based on the combined text, extract 2-3 interesting 'Did You Know?' facts. " +
			"Present them as a list of strings without any extra text or backticks.",
		assign: func(r *Result, v []string) { r.DidYouKnow = v },
	},
	{
		name: "counterpoints",
		instruction: "Based on the combined text, identify 2-3 potential counterpoints or opposing views. " +
			"If no direct counterpoints are present, infer potential challenges to the main arguments. " +
			"Present them as a list of strings without any extra text or backticks.",
		assign: func(r *Result, v []string) { r.Counterpoints = v },
	},
}

// Generate runs the three insight prompts over the combined document texts.
// A failed or unparseable response leaves that insight list empty; only the
// absence of any input text is an error. The combined (capped) text is also
// returned for downstream use (podcast scripting).
func Generate(ctx context.Context, gen genai.Generator, texts []string, log *slog.Logger) (*Result, string, error) {
	var nonEmpty []string
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	if len(nonEmpty) == 0 {
		return nil, "", ErrNoText
	}

	combined := genai.CapTokens(strings.Join(nonEmpty, docSeparator), contextTokens)

	result := &Result{
		KeyInsights:   []string{},
		DidYouKnow:    []string{},
		Counterpoints: []string{},
	}
	for _, p := range prompts {
		resp, err := genai.GenerateWithRetry(genai.WithStage(ctx, "insights"), gen, p.instruction, combined)
		if err != nil {
			log.Warn("insight prompt failed", "insight", p.name, "error", err)
			continue
		}
		list, ok := genai.StringList(resp)
		if !ok {
			log.Warn("unparseable insight response", "insight", p.name)
			continue
		}
		p.assign(result, list)
	}
	return result, combined, nil
}

// Summary renders the result as plain text for prompt reuse.
func (r *Result) Summary() string {
	var sb strings.Builder
	write := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "%s:\n", title)
		for _, it := range items {
			fmt.Fprintf(&sb, "- %s\n", it)
		}
	}
	write("Key insights", r.KeyInsights)
	write("Did you know", r.DidYouKnow)
	write("Counterpoints", r.Counterpoints)
	return sb.String()
}
