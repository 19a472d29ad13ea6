package genai

import "strings"

// EstimateTokens gives a rough token count. Exact tokenization is not
// required; this only guards prompt sizes.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	// Roughly 1.33 tokens per English word.
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// CapTokens truncates text on a word boundary so its estimated token count
// stays at or below maxTokens.
func CapTokens(text string, maxTokens int) string {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text
	}
	words := strings.Fields(text)
	keep := int(float64(maxTokens) / 1.33)
	if keep >= len(words) {
		return text
	}
	if keep < 1 {
		keep = 1
	}
	return strings.Join(words[:keep], " ")
}
