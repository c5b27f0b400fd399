// Package cite checks the citation markers in an answer against the
// passages that actually support its claims. It is a secondary quality
// signal; nothing here feeds back into the coverage score.
package cite

import (
	"regexp"
	"sort"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

// attachMaxDistance is the largest gap, in characters, across which a
// citation still attaches to its nearest claim.
const attachMaxDistance = 200

// citationPatterns covers the marker formats the matcher knows: digits,
// letters, or letter+digit combos in brackets or parentheses. Anything
// else is invisible to it.
var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[(\d+)\]`),
	regexp.MustCompile(`\((\d+)\)`),
	regexp.MustCompile(`\[([A-Za-z]+)\]`),
	regexp.MustCompile(`\(([A-Za-z]+)\)`),
	regexp.MustCompile(`\[([A-Za-z]+\d+)\]`),
}

// Citation is one extracted marker occurrence.
type Citation struct {
	ID    string
	Start int
	End   int
}

// Matcher extracts citation markers and evaluates citation quality.
type Matcher struct{}

// NewMatcher creates a citation matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// ExtractCitations finds all citation markers in text, deduplicated on
// (id, start, end) and sorted by position.
func (m *Matcher) ExtractCitations(text string) []Citation {
	seen := make(map[Citation]bool)
	var citations []Citation

	for _, pattern := range citationPatterns {
		for _, match := range pattern.FindAllStringSubmatchIndex(text, -1) {
			c := Citation{
				ID:    text[match[2]:match[3]],
				Start: match[0],
				End:   match[1],
			}
			if !seen[c] {
				seen[c] = true
				citations = append(citations, c)
			}
		}
	}

	sort.Slice(citations, func(i, j int) bool {
		if citations[i].Start != citations[j].Start {
			return citations[i].Start < citations[j].Start
		}
		if citations[i].End != citations[j].End {
			return citations[i].End < citations[j].End
		}
		return citations[i].ID < citations[j].ID
	})

	return citations
}

// AnalyzeCitations runs the full citation quality assessment: extract
// markers, attach each to its nearest claim, grade each claim's citations
// against its supporting passages, and aggregate.
//
// idToCitation optionally maps passage ids to the citation ids used in the
// answer; when nil, each passage's own id doubles as its citation id.
func (m *Matcher) AnalyzeCitations(
	answer string,
	claims []model.Claim,
	analyses []model.ClaimAnalysis,
	passages []model.Passage,
	idToCitation map[string]string,
) *model.CitationReport {
	citations := m.ExtractCitations(answer)
	passageMap := buildPassageMap(passages, idToCitation)
	attached := m.attachToClaims(claims, citations, passageMap)

	report := &model.CitationReport{
		TotalCitations: len(citations),
		SpamScore:      spamScore(len(citations), len(claims)),
	}

	var qualitySum float64
	for i, claim := range claims {
		if i >= len(analyses) {
			break
		}
		quality := m.gradeClaim(analyses[i], attached[claim], passageMap)
		report.Claims = append(report.Claims, quality)
		qualitySum += quality.QualityScore
	}

	if len(report.Claims) > 0 {
		report.OverallQuality = qualitySum / float64(len(report.Claims))
	}

	return report
}

// attachToClaims associates each citation with its single nearest claim.
// A citation only attaches when the distance stays under the limit and its
// id resolves to a passage; otherwise it is discarded.
func (m *Matcher) attachToClaims(
	claims []model.Claim,
	citations []Citation,
	passageMap map[string]model.Passage,
) map[model.Claim][]string {
	attached := make(map[model.Claim][]string, len(claims))

	for _, c := range citations {
		var closest *model.Claim
		minDistance := 0

		for i := range claims {
			d := spanDistance(c, claims[i].Span)
			if closest == nil || d < minDistance {
				minDistance = d
				closest = &claims[i]
			}
		}

		// Attach only when the nearest claim is actually near.
		if closest == nil || minDistance >= attachMaxDistance {
			continue
		}
		if _, ok := passageMap[c.ID]; !ok {
			continue
		}
		attached[*closest] = append(attached[*closest], c.ID)
	}

	return attached
}

// gradeClaim computes one claim's citation quality against the passages
// found to actually support it.
func (m *Matcher) gradeClaim(
	analysis model.ClaimAnalysis,
	citationIDs []string,
	passageMap map[string]model.Passage,
) model.ClaimCitationQuality {
	quality := model.ClaimCitationQuality{
		Claim:         analysis.Claim.Text,
		HasCitations:  len(citationIDs) > 0,
		CitationCount: len(citationIDs),
	}

	// Unsupported claims get no citation credit, whatever they cite.
	if !analysis.Supported {
		return quality
	}

	supportingIDs := make(map[string]bool, len(analysis.SupportingSnippets))
	for _, s := range analysis.SupportingSnippets {
		supportingIDs[s.PassageID] = true
	}

	citedPassageIDs := make(map[string]bool, len(citationIDs))
	for _, id := range citationIDs {
		p, ok := passageMap[id]
		if !ok {
			continue
		}
		citedPassageIDs[p.ID] = true
		if supportingIDs[p.ID] {
			quality.MatchingCitations = append(quality.MatchingCitations, id)
		} else {
			quality.MismatchedCitations = append(quality.MismatchedCitations, id)
		}
	}

	for _, s := range analysis.SupportingSnippets {
		if !citedPassageIDs[s.PassageID] {
			quality.MissingCitations = append(quality.MissingCitations, s.PassageID)
		}
	}

	switch {
	case len(citationIDs) > 0:
		quality.QualityScore = float64(len(quality.MatchingCitations)) / float64(len(citationIDs))
	case len(supportingIDs) > 0:
		quality.QualityScore = 0.0 // support exists, citations should too
	default:
		quality.QualityScore = 1.0 // nothing to cite, nothing cited
	}

	return quality
}

// spanDistance is 0 when the citation overlaps the claim span, else the
// smallest gap between the two spans.
func spanDistance(c Citation, span model.Span) int {
	if c.Start <= span.End && c.End >= span.Start {
		return 0
	}
	d1 := abs(c.Start - span.End)
	d2 := abs(c.End - span.Start)
	if d1 < d2 {
		return d1
	}
	return d2
}

// spamScore grades citation volume: fine up to 3 citations per claim,
// scaling linearly to 1.0 at 6 or more. Citations with zero claims are
// maximal spam.
func spamScore(citations, claims int) float64 {
	if claims == 0 {
		if citations > 0 {
			return 1.0
		}
		return 0.0
	}

	perClaim := float64(citations) / float64(claims)
	if perClaim <= 3 {
		return 0.0
	}
	s := (perClaim - 3) / 3
	if s > 1 {
		return 1.0
	}
	return s
}

func buildPassageMap(passages []model.Passage, idToCitation map[string]string) map[string]model.Passage {
	passageMap := make(map[string]model.Passage, len(passages))
	for _, p := range passages {
		if idToCitation != nil {
			if citationID, ok := idToCitation[p.ID]; ok {
				passageMap[citationID] = p
			}
			continue
		}
		passageMap[p.ID] = p
	}
	return passageMap
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
