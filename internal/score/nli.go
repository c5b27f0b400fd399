package score

import (
	"context"
	"fmt"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

// EntailmentProbs is a probability distribution over the three textual
// entailment classes.
type EntailmentProbs struct {
	Contradiction float64 `json:"contradiction"`
	Neutral       float64 `json:"neutral"`
	Entailment    float64 `json:"entailment"`
}

// EntailmentClassifier computes a class distribution for a premise and
// hypothesis pair. The scorer only consumes the entailment probability.
type EntailmentClassifier interface {
	Classify(ctx context.Context, premise, hypothesis string) (EntailmentProbs, error)
}

// NLIScorer scores claims with a textual-entailment classifier, treating
// each evidence snippet as premise and the claim as hypothesis.
type NLIScorer struct {
	classifier EntailmentClassifier
}

// NewNLIScorer creates a classifier-backed scorer.
func NewNLIScorer(classifier EntailmentClassifier) *NLIScorer {
	return &NLIScorer{classifier: classifier}
}

// ScoreClaim computes the entailment probability of the claim against each
// snippet. The claim is supported when the best probability reaches the
// threshold; every snippet individually at or above the threshold is kept
// as support, rescored with its entailment probability and sorted
// descending. Classifier errors degrade the claim instead of propagating.
func (s *NLIScorer) ScoreClaim(ctx context.Context, claim model.Claim, evidence []model.SupportingSnippet, threshold float64) model.ClaimAnalysis {
	if len(evidence) == 0 {
		return noEvidenceAnalysis(claim)
	}

	hypothesis := claim.QueryText()
	best := 0.0
	failures := 0
	var lastErr error
	var supporting []model.SupportingSnippet

	for _, snippet := range evidence {
		probs, err := s.classifier.Classify(ctx, snippet.Text, hypothesis)
		if err != nil {
			failures++
			lastErr = err
			continue
		}

		p := probs.Entailment
		if p > best {
			best = p
		}
		if p >= threshold {
			supporting = append(supporting, rescored(snippet, p))
		}
	}

	if failures == len(evidence) {
		return model.ClaimAnalysis{
			Claim:       claim,
			Supported:   false,
			MissingInfo: fmt.Sprintf("Entailment scoring failed: %v", lastErr),
		}
	}

	// Stable sort keeps retrieval order between equal scores.
	for i := 1; i < len(supporting); i++ {
		for j := i; j > 0 && supporting[j].Score > supporting[j-1].Score; j-- {
			supporting[j], supporting[j-1] = supporting[j-1], supporting[j]
		}
	}

	supported := best >= threshold
	analysis := model.ClaimAnalysis{
		Claim:              claim,
		Supported:          supported,
		SupportScore:       best,
		SupportingSnippets: supporting,
	}
	if !supported {
		analysis.MissingInfo = fmt.Sprintf("Claim not supported by evidence (best score: %.2f)", best)
	}
	return analysis
}
