package model

// ClaimCitationQuality describes how well the citations attached to one
// claim line up with the passages that actually support it.
type ClaimCitationQuality struct {
	Claim               string   `json:"claim"`
	HasCitations        bool     `json:"has_citations"`
	CitationCount       int      `json:"citation_count"`
	MatchingCitations   []string `json:"matching_citations"`
	MismatchedCitations []string `json:"mismatched_citations"`
	MissingCitations    []string `json:"missing_citations"`
	QualityScore        float64  `json:"citation_quality_score"`
}

// CitationReport is the answer-level citation quality summary. It is a
// secondary diagnostic attached to the evaluation metadata; it never feeds
// back into the coverage score.
type CitationReport struct {
	TotalCitations int                    `json:"total_citations"`
	Claims         []ClaimCitationQuality `json:"citation_analyses"`
	OverallQuality float64                `json:"overall_citation_quality"`
	SpamScore      float64                `json:"citation_spam_score"`
}
