package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

var (
	// Coordinating conjunctions as standalone words.
	conjunctionRe = regexp.MustCompile(`\s+(?:and|but|or|nor|yet|so)\s+`)
	// Enumeration markers like "1. " or "a. " at sentence start.
	enumMarkerRe = regexp.MustCompile(`^\s*(?:[0-9]+|[a-z])\.\s+`)
)

// ClaimExtractor decomposes an answer into atomic claims using sentence
// segmentation plus heuristic sub-splitting on conjunctions and commas.
type ClaimExtractor struct {
	seg Segmenter
}

// NewClaimExtractor creates a claim extractor. A nil segmenter selects the
// built-in RuleSegmenter.
func NewClaimExtractor(seg Segmenter) *ClaimExtractor {
	if seg == nil {
		seg = RuleSegmenter{}
	}
	return &ClaimExtractor{seg: seg}
}

// ExtractClaims splits answer into claims in original-text order. An empty
// answer yields no claims.
func (e *ClaimExtractor) ExtractClaims(answer string) []model.Claim {
	var claims []model.Claim
	pos := 0

	for _, sentence := range e.seg.Segment(answer) {
		sentStart := indexFrom(answer, sentence, pos)
		if sentStart == -1 {
			sentStart = pos
		}

		for _, part := range splitSentence(sentence) {
			text := strings.TrimSpace(part)
			if text == "" {
				continue
			}

			// Best effort: when the sub-claim text cannot be found verbatim
			// (e.g. after whitespace normalization) the span degrades to the
			// sentence start. See model.Claim.
			start := indexFrom(answer, text, sentStart)
			if start == -1 {
				start = sentStart
			}

			claims = append(claims, model.Claim{
				Text:       text,
				Span:       model.Span{Start: start, End: start + len(text)},
				Normalized: NormalizeClaim(text),
			})
		}

		pos = sentStart + len(sentence)
	}

	return claims
}

// splitSentence breaks one sentence into sub-claims. Conjunction splitting
// wins when it produces at least two non-empty parts; otherwise the comma
// heuristic applies. The conjunction tokens themselves are dropped.
func splitSentence(sentence string) []string {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return nil
	}

	parts := conjunctionRe.Split(sentence, -1)
	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) >= 2 {
		return nonEmpty
	}

	return splitOnCommas(sentence)
}

// splitOnCommas splits on ", " boundaries, keeping thousands-separated
// numbers and enumerated sentences intact.
func splitOnCommas(sentence string) []string {
	if enumMarkerRe.MatchString(sentence) {
		return []string{sentence}
	}

	var parts []string
	var current strings.Builder
	runes := []rune(sentence)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == ',' && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			// A digit right after the separator means this comma belongs to
			// a number, not a clause boundary.
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if j >= len(runes) || !unicode.IsDigit(runes[j]) {
				parts = append(parts, current.String())
				current.Reset()
				i = j - 1
				continue
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	var out []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// indexFrom finds needle in haystack at or after start, returning an
// absolute byte offset or -1.
func indexFrom(haystack, needle string, start int) int {
	if start < 0 {
		start = 0
	}
	if start > len(haystack) {
		return -1
	}
	idx := strings.Index(haystack[start:], needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}
