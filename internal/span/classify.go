package span

import (
	"errors"
	"sort"
)

// ErrEmptyDocument is returned when a document yields no text spans at all,
// e.g. a scanned-image PDF with no extractable text.
var ErrEmptyDocument = errors.New("no text spans found in document")

// Tagger assigns a structural tag to every style signature present in a set
// of spans. It is an interface so alternative heading heuristics can be
// swapped in without touching the structure builder.
type Tagger interface {
	Tags(spans []Span) (map[Signature]Tag, error)
}

// FrequencyTagger classifies styles by usage frequency: the most used style
// is assumed to be body text, smaller styles become sub-levels and larger
// styles become heading levels. This is a document-structure heuristic; it is
// deliberately wrong for documents with sparse body text such as slide decks.
type FrequencyTagger struct{}

// Tags implements Tagger.
func (FrequencyTagger) Tags(spans []Span) (map[Signature]Tag, error) {
	if len(spans) == 0 {
		return nil, ErrEmptyDocument
	}

	// Count spans per signature, remembering first-seen order so that
	// frequency ties resolve deterministically.
	counts := make(map[Signature]int)
	firstSeen := make(map[Signature]int)
	var order []Signature
	for _, s := range spans {
		sig := s.Sig()
		if _, ok := counts[sig]; !ok {
			firstSeen[sig] = len(order)
			order = append(order, sig)
		}
		counts[sig]++
	}

	// Body text is the most frequent signature, first-seen wins ties.
	body := order[0]
	for _, sig := range order[1:] {
		if counts[sig] > counts[body] {
			body = sig
		}
	}

	// Sort signatures by font size ascending; equal sizes keep first-seen
	// order so reruns on identical input produce identical tags.
	bySize := make([]Signature, len(order))
	copy(bySize, order)
	sort.SliceStable(bySize, func(i, j int) bool {
		if bySize[i].Size != bySize[j].Size {
			return bySize[i].Size < bySize[j].Size
		}
		return firstSeen[bySize[i]] < firstSeen[bySize[j]]
	})

	p := 0
	for i, sig := range bySize {
		if sig == body {
			p = i
			break
		}
	}

	tags := make(map[Signature]Tag, len(bySize))
	tags[body] = Tag{Kind: Paragraph}
	for i, sig := range bySize[:p] {
		tags[sig] = Tag{Kind: SubLevel, Level: p - i}
	}
	for i, sig := range bySize[p+1:] {
		tags[sig] = Tag{Kind: HeadingLevel, Level: i + 1}
	}
	return tags, nil
}
