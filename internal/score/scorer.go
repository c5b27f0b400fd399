// Package score decides whether individual claims are backed by their
// candidate evidence. Two interchangeable strategies implement the Scorer
// contract: an entailment-classifier strategy and an LLM judge strategy.
package score

import (
	"context"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

// NoEvidenceMessage is the missing_info text for claims scored with an
// empty evidence list.
const NoEvidenceMessage = "No evidence snippets provided"

// Scorer produces a verdict for one claim against its candidate evidence.
//
// Implementations must not abort an evaluation on per-claim failures: a
// failed external call degrades that claim's analysis (unsupported, with a
// diagnostic missing_info) and the pipeline moves on.
type Scorer interface {
	ScoreClaim(ctx context.Context, claim model.Claim, evidence []model.SupportingSnippet, threshold float64) model.ClaimAnalysis
}

// noEvidenceAnalysis is the shared short-circuit for an empty evidence
// list; no scoring computation runs.
func noEvidenceAnalysis(claim model.Claim) model.ClaimAnalysis {
	return model.ClaimAnalysis{
		Claim:       claim,
		Supported:   false,
		MissingInfo: NoEvidenceMessage,
	}
}

// rescored returns a copy of the snippet carrying the scorer's score.
// Snippets stay value records; the retriever's ranking scores are never
// overwritten in place.
func rescored(s model.SupportingSnippet, score float64) model.SupportingSnippet {
	s.Score = score
	return s
}
