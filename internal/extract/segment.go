package extract

import (
	"strings"
	"unicode"
)

// Segmenter splits free text into sentences.
type Segmenter interface {
	Segment(text string) []string
}

// RuleSegmenter is a punctuation-driven sentence splitter. It cuts after
// '.', '!' or '?' followed by whitespace, but keeps decimal numbers like
// "3.14" intact.
type RuleSegmenter struct{}

// Segment returns the non-empty sentences of text, trimmed, in order.
func (RuleSegmenter) Segment(text string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Only cut before whitespace; this also keeps decimal numbers like
		// "3.14" intact since their period precedes a digit.
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
