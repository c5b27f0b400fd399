package model

// SupportingSnippet points at a passage that backs (or is a candidate to
// back) a claim. The score carries a retrieval ranking score when produced
// by the retriever and an entailment/judgment score once a scorer has
// re-scored it. Scorers return fresh snippet values instead of mutating the
// retriever's, so a snippet's score never changes underneath a holder.
type SupportingSnippet struct {
	PassageID string  `json:"passage_id"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
}

// ClaimAnalysis is the per-claim verdict produced by a scorer. Immutable
// once created.
type ClaimAnalysis struct {
	Claim              Claim               `json:"claim"`
	Supported          bool                `json:"supported"`
	SupportScore       float64             `json:"support_score"`
	SupportingSnippets []SupportingSnippet `json:"supporting_snippets"`
	MissingInfo        string              `json:"missing_info,omitempty"`
}

// UnsupportedClaim is the flattened view of an unsupported claim used in the
// top-level result.
type UnsupportedClaim struct {
	Claim       string `json:"claim"`
	Span        Span   `json:"span"`
	MissingInfo string `json:"missing_info,omitempty"`
}

// EvaluationResult is the aggregate outcome of one evaluation call.
//
// Invariants: SupportedClaims equals the number of supported analyses, and
// CoverageScore equals SupportedClaims/TotalClaims (0.0 when TotalClaims
// is zero).
type EvaluationResult struct {
	CoverageScore     float64                `json:"coverage_score"`
	TotalClaims       int                    `json:"total_claims"`
	SupportedClaims   int                    `json:"supported_claims"`
	UnsupportedClaims []UnsupportedClaim     `json:"unsupported_claims"`
	ClaimAnalysis     []ClaimAnalysis        `json:"claim_analysis"`
	Feedback          []string               `json:"feedback"`
	Metadata          map[string]interface{} `json:"metadata"`
}
