package cite

import (
	"strings"
	"testing"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

func TestExtractCitations_Formats(t *testing.T) {
	m := NewMatcher()

	text := "Paris is the capital [1]. The tower is tall (2). See also [smith] and (doe) plus [ref2020]."
	citations := m.ExtractCitations(text)

	var ids []string
	for _, c := range citations {
		ids = append(ids, c.ID)
	}
	joined := strings.Join(ids, ",")
	for _, want := range []string{"1", "2", "smith", "doe", "ref2020"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected citation id %q among %v", want, ids)
		}
	}
}

func TestExtractCitations_SortedAndDeduplicated(t *testing.T) {
	m := NewMatcher()

	citations := m.ExtractCitations("First [2] then [1] then [2] again.")
	if len(citations) != 3 {
		t.Fatalf("Expected 3 occurrences, got %d", len(citations))
	}
	for i := 1; i < len(citations); i++ {
		if citations[i].Start < citations[i-1].Start {
			t.Errorf("Expected citations sorted by position")
		}
	}
	// Same marker at the same offsets collapses to one occurrence.
	dup := m.ExtractCitations("Only [5] here.")
	if len(dup) != 1 {
		t.Errorf("Expected 1 citation, got %d", len(dup))
	}
}

func TestExtractCitations_None(t *testing.T) {
	m := NewMatcher()
	if citations := m.ExtractCitations("No markers in this text at all."); len(citations) != 0 {
		t.Errorf("Expected no citations, got %d", len(citations))
	}
}

func citationFixture() (string, []model.Claim, []model.ClaimAnalysis, []model.Passage) {
	answer := "Paris is the capital of France [1]. The tower is 330 meters tall [2]."
	claims := []model.Claim{
		{Text: "Paris is the capital of France", Span: model.Span{Start: 0, End: 30}},
		{Text: "The tower is 330 meters tall", Span: model.Span{Start: 36, End: 64}},
	}
	passages := []model.Passage{
		{ID: "1", Text: "Paris has been the capital of France since 508."},
		{ID: "2", Text: "The Eiffel Tower stands 330 meters high."},
	}
	analyses := []model.ClaimAnalysis{
		{
			Claim:              claims[0],
			Supported:          true,
			SupportScore:       0.9,
			SupportingSnippets: []model.SupportingSnippet{{PassageID: "1", Text: passages[0].Text, Score: 0.9}},
		},
		{
			Claim:              claims[1],
			Supported:          true,
			SupportScore:       0.85,
			SupportingSnippets: []model.SupportingSnippet{{PassageID: "2", Text: passages[1].Text, Score: 0.85}},
		},
	}
	return answer, claims, analyses, passages
}

func TestAnalyzeCitations_PerfectCitations(t *testing.T) {
	m := NewMatcher()
	answer, claims, analyses, passages := citationFixture()

	report := m.AnalyzeCitations(answer, claims, analyses, passages, nil)

	if report.TotalCitations != 2 {
		t.Errorf("Expected 2 citations, got %d", report.TotalCitations)
	}
	if report.OverallQuality != 1.0 {
		t.Errorf("Expected perfect overall quality, got %f", report.OverallQuality)
	}
	if report.SpamScore != 0.0 {
		t.Errorf("Expected no spam, got %f", report.SpamScore)
	}
	for _, cq := range report.Claims {
		if len(cq.MismatchedCitations) != 0 || len(cq.MissingCitations) != 0 {
			t.Errorf("Expected clean citation grade for %q, got %+v", cq.Claim, cq)
		}
	}
}

func TestAnalyzeCitations_MismatchedCitation(t *testing.T) {
	m := NewMatcher()
	answer, claims, analyses, passages := citationFixture()

	// First claim cites passage 2, which does not support it.
	answer = strings.Replace(answer, "[1]", "[2]", 1)
	report := m.AnalyzeCitations(answer, claims, analyses, passages, nil)

	first := report.Claims[0]
	if len(first.MatchingCitations) != 0 {
		t.Errorf("Expected no matching citations, got %v", first.MatchingCitations)
	}
	if len(first.MismatchedCitations) != 1 || first.MismatchedCitations[0] != "2" {
		t.Errorf("Expected mismatched citation 2, got %v", first.MismatchedCitations)
	}
	if len(first.MissingCitations) != 1 || first.MissingCitations[0] != "1" {
		t.Errorf("Expected missing citation for passage 1, got %v", first.MissingCitations)
	}
	if first.QualityScore != 0.0 {
		t.Errorf("Expected quality 0 for fully mismatched claim, got %f", first.QualityScore)
	}
}

func TestAnalyzeCitations_SupportedButUncited(t *testing.T) {
	m := NewMatcher()
	_, claims, analyses, passages := citationFixture()

	// No markers at all: supported claims should have cited something.
	report := m.AnalyzeCitations("Paris is the capital of France. The tower is 330 meters tall.", claims, analyses, passages, nil)

	if report.TotalCitations != 0 {
		t.Fatalf("Expected no citations, got %d", report.TotalCitations)
	}
	for _, cq := range report.Claims {
		if cq.HasCitations {
			t.Errorf("Expected no citations attached to %q", cq.Claim)
		}
		if cq.QualityScore != 0.0 {
			t.Errorf("Expected quality 0 for uncited supported claim, got %f", cq.QualityScore)
		}
	}
}

func TestAnalyzeCitations_UnsupportedClaimGetsNoCredit(t *testing.T) {
	m := NewMatcher()
	answer, claims, _, passages := citationFixture()

	analyses := []model.ClaimAnalysis{
		{Claim: claims[0], Supported: false, MissingInfo: "not found"},
		{Claim: claims[1], Supported: false, MissingInfo: "not found"},
	}
	report := m.AnalyzeCitations(answer, claims, analyses, passages, nil)

	for _, cq := range report.Claims {
		if cq.QualityScore != 0.0 {
			t.Errorf("Expected quality 0 for unsupported claim, got %f", cq.QualityScore)
		}
	}
}

func TestAnalyzeCitations_UnresolvableCitationDiscarded(t *testing.T) {
	m := NewMatcher()
	_, claims, analyses, passages := citationFixture()

	// [9] resolves to no passage; it neither helps nor hurts claim grades.
	answer := "Paris is the capital of France [9]. The tower is 330 meters tall [2]."
	report := m.AnalyzeCitations(answer, claims, analyses, passages, nil)

	first := report.Claims[0]
	if first.HasCitations {
		t.Errorf("Expected unresolvable citation discarded, got %+v", first)
	}
}

func TestAnalyzeCitations_FarAwayCitationNotAttached(t *testing.T) {
	m := NewMatcher()

	filler := strings.Repeat("x", 300)
	answer := "Short claim here. " + filler + " [1]"
	claims := []model.Claim{{Text: "Short claim here", Span: model.Span{Start: 0, End: 16}}}
	analyses := []model.ClaimAnalysis{{Claim: claims[0], Supported: true,
		SupportingSnippets: []model.SupportingSnippet{{PassageID: "1", Text: "evidence", Score: 0.9}}}}
	passages := []model.Passage{{ID: "1", Text: "evidence"}}

	report := m.AnalyzeCitations(answer, claims, analyses, passages, nil)
	if report.Claims[0].HasCitations {
		t.Error("Expected citation beyond the distance limit to stay unattached")
	}
}

func TestAnalyzeCitations_IDMapping(t *testing.T) {
	m := NewMatcher()
	_, claims, analyses, _ := citationFixture()

	// Passages carry document ids; the answer cites numeric markers.
	passages := []model.Passage{
		{ID: "doc-a", Text: "Paris has been the capital of France since 508."},
		{ID: "doc-b", Text: "The Eiffel Tower stands 330 meters high."},
	}
	analyses[0].SupportingSnippets[0].PassageID = "doc-a"
	analyses[1].SupportingSnippets[0].PassageID = "doc-b"

	answer := "Paris is the capital of France [1]. The tower is 330 meters tall [2]."
	report := m.AnalyzeCitations(answer, claims, analyses, passages, map[string]string{
		"doc-a": "1",
		"doc-b": "2",
	})

	if report.OverallQuality != 1.0 {
		t.Errorf("Expected mapped citations to match, got quality %f", report.OverallQuality)
	}
}

func TestSpamScore(t *testing.T) {
	tests := []struct {
		name      string
		citations int
		claims    int
		want      float64
	}{
		{"no citations no claims", 0, 0, 0.0},
		{"citations without claims", 4, 0, 1.0},
		{"reasonable ratio", 3, 2, 0.0},
		{"exactly three per claim", 6, 2, 0.0},
		{"six per claim", 12, 2, 1.0},
		{"beyond six per claim", 30, 2, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spamScore(tt.citations, tt.claims); got != tt.want {
				t.Errorf("spamScore(%d, %d) = %f, want %f", tt.citations, tt.claims, got, tt.want)
			}
		})
	}
}

func TestSpamScore_MonotonicInCitations(t *testing.T) {
	prev := 0.0
	for c := 0; c <= 20; c++ {
		s := spamScore(c, 2)
		if s < prev {
			t.Fatalf("Expected spam score non-decreasing, got %f after %f at %d citations", s, prev, c)
		}
		prev = s
	}
}

func TestSpanDistance(t *testing.T) {
	span := model.Span{Start: 10, End: 20}
	if d := spanDistance(Citation{Start: 12, End: 15}, span); d != 0 {
		t.Errorf("Expected overlap distance 0, got %d", d)
	}
	if d := spanDistance(Citation{Start: 25, End: 28}, span); d != 5 {
		t.Errorf("Expected gap 5, got %d", d)
	}
	if d := spanDistance(Citation{Start: 2, End: 5}, span); d != 5 {
		t.Errorf("Expected gap 5, got %d", d)
	}
}
