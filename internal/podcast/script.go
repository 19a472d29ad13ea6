// Package podcast turns a document collection into a short two-host audio
// overview: an LLM writes the dialogue, the dialogue is rendered to SSML,
// and a speech service synthesizes the SSML to MP3.
package podcast

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsift/docsift/internal/genai"
)

// Script is a two-host dialogue. Turns alternate starting with the first
// host; the two slices may differ in length by at most one.
type Script struct {
	HostA []string
	HostB []string
}

var ErrNoScript = errors.New("model did not return a two-speaker script")

const scriptInstruction = "You are a podcast script writer. Based on the provided text, write a short, " +
	"engaging conversational script between two hosts, Host A and Host B, summarizing the key points. " +
	"Keep it under 10 exchanges total. Return the script as exactly two lists of strings: the first " +
	"list contains Host A's lines in order, the second list contains Host B's lines in order. " +
	"Return only the two lists, without any extra text or backticks."

// WriteScript asks the model for the dialogue and parses the two line lists.
func WriteScript(ctx context.Context, gen genai.Generator, combinedText string) (*Script, error) {
	resp, err := genai.GenerateWithRetry(genai.WithStage(ctx, "podcast_script"), gen, scriptInstruction, combinedText)
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}
	lists := genai.StringLists(resp, 2)
	if len(lists) < 2 {
		return nil, ErrNoScript
	}
	s := &Script{HostA: lists[0], HostB: lists[1]}
	if len(s.HostA) == 0 {
		return nil, ErrNoScript
	}
	return s, nil
}
