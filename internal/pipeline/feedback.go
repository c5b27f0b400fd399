package pipeline

import (
	"fmt"
	"strings"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

// Filler words that make poor retrieval topics.
var feedbackStopWords = map[string]bool{
	"the": true, "a": true, "an": true,
	"is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
}

const maxClaimFeedback = 3

// generateFeedback turns the unsupported set into actionable suggestions.
// An answer with no claims gets no feedback at all; a fully supported answer
// gets a single positive message.
func generateFeedback(analyses []model.ClaimAnalysis, unsupported []model.UnsupportedClaim) []string {
	if len(analyses) == 0 {
		return nil
	}
	if len(unsupported) == 0 {
		return []string{"All claims are supported by evidence. Great coverage!"}
	}

	var feedback []string
	seen := make(map[string]bool)
	for _, uc := range unsupported {
		kw := topicKeyword(uc.Claim)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		feedback = append(feedback, "Retrieve more information about: "+kw)
	}

	for i, uc := range unsupported {
		if i >= maxClaimFeedback {
			break
		}
		if uc.MissingInfo == "" {
			continue
		}
		feedback = append(feedback, fmt.Sprintf("Unsupported claim: '%s...' - %s", truncate(uc.Claim, 50), uc.MissingInfo))
	}
	return feedback
}

// topicKeyword picks the first substantial word of a claim.
func topicKeyword(claim string) string {
	for _, w := range strings.Fields(strings.ToLower(claim)) {
		if len(w) > 3 && !feedbackStopWords[w] {
			return w
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
