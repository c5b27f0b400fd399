package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/retrieve"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/score"
)

// stubScorer marks claims as supported when any evidence snippet contains a
// keyword from the claim.
type stubScorer struct {
	mu     sync.Mutex
	scored []string
}

func (s *stubScorer) ScoreClaim(_ context.Context, claim model.Claim, evidence []model.SupportingSnippet, _ float64) model.ClaimAnalysis {
	s.mu.Lock()
	s.scored = append(s.scored, claim.Text)
	s.mu.Unlock()

	for _, snippet := range evidence {
		if strings.Contains(strings.ToLower(snippet.Text), firstWord(claim.Text)) {
			return model.ClaimAnalysis{
				Claim:              claim,
				Supported:          true,
				SupportScore:       0.9,
				SupportingSnippets: []model.SupportingSnippet{{PassageID: snippet.PassageID, Text: snippet.Text, Score: 0.9}},
			}
		}
	}
	return model.ClaimAnalysis{Claim: claim, Supported: false, MissingInfo: "no matching evidence"}
}

func firstWord(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func testEvaluator(t *testing.T, comps Components) *Evaluator {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	ev, err := New(cfg, comps)
	if err != nil {
		t.Fatalf("Expected evaluator construction to succeed, got %v", err)
	}
	return ev
}

func parisContext() *model.Context {
	return &model.Context{Passages: []model.Passage{
		{ID: "p1", Text: "Paris has been the capital of France since the 6th century."},
		{ID: "p2", Text: "The Eiffel Tower, located in Paris, is 330 meters tall."},
	}}
}

func TestEvaluate_FullCoverage(t *testing.T) {
	ev := testEvaluator(t, Components{Scorer: &stubScorer{}})

	result, err := ev.Evaluate(context.Background(),
		"Paris is the capital of France. The Eiffel Tower is 330 meters tall.",
		parisContext())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.TotalClaims != 2 {
		t.Fatalf("Expected 2 claims, got %d", result.TotalClaims)
	}
	if result.SupportedClaims != 2 {
		t.Errorf("Expected both claims supported, got %d", result.SupportedClaims)
	}
	if result.CoverageScore != 1.0 {
		t.Errorf("Expected coverage 1.0, got %f", result.CoverageScore)
	}
	if len(result.UnsupportedClaims) != 0 {
		t.Errorf("Expected no unsupported claims, got %v", result.UnsupportedClaims)
	}
	if len(result.Feedback) != 1 || !strings.Contains(result.Feedback[0], "All claims are supported") {
		t.Errorf("Expected positive feedback, got %v", result.Feedback)
	}
}

func TestEvaluate_PartialCoverage(t *testing.T) {
	ev := testEvaluator(t, Components{Scorer: &stubScorer{}})

	result, err := ev.Evaluate(context.Background(),
		"Paris is the capital of France. Zanzibar exports the most cloves.",
		parisContext())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.TotalClaims != 2 || result.SupportedClaims != 1 {
		t.Fatalf("Expected 1 of 2 supported, got %d of %d", result.SupportedClaims, result.TotalClaims)
	}
	if result.CoverageScore != 0.5 {
		t.Errorf("Expected coverage 0.5, got %f", result.CoverageScore)
	}
	if len(result.UnsupportedClaims) != 1 {
		t.Fatalf("Expected 1 unsupported claim, got %d", len(result.UnsupportedClaims))
	}
	if !strings.Contains(result.UnsupportedClaims[0].Claim, "Zanzibar") {
		t.Errorf("Expected the Zanzibar claim unsupported, got %q", result.UnsupportedClaims[0].Claim)
	}
	if len(result.Feedback) == 0 {
		t.Error("Expected feedback for unsupported claims")
	}
}

func TestEvaluate_EmptyAnswer(t *testing.T) {
	ev := testEvaluator(t, Components{Scorer: &stubScorer{}})

	result, err := ev.Evaluate(context.Background(), "", parisContext())
	if err != nil {
		t.Fatalf("Expected no error for empty answer, got %v", err)
	}

	if result.TotalClaims != 0 || result.SupportedClaims != 0 {
		t.Errorf("Expected zero claims, got %+v", result)
	}
	if result.CoverageScore != 0.0 {
		t.Errorf("Expected coverage 0.0 with no claims, got %f", result.CoverageScore)
	}
	if len(result.Feedback) != 0 {
		t.Errorf("Expected no feedback with no claims, got %v", result.Feedback)
	}
}

func TestEvaluate_EmptyContext(t *testing.T) {
	scorer := &stubScorer{}
	ev := testEvaluator(t, Components{Scorer: scorer})

	result, err := ev.Evaluate(context.Background(),
		"Paris is the capital of France.",
		&model.Context{})
	if err != nil {
		t.Fatalf("Expected no error for empty context, got %v", err)
	}

	if result.SupportedClaims != 0 {
		t.Errorf("Expected no supported claims without passages, got %d", result.SupportedClaims)
	}
	if len(scorer.scored) != 1 {
		t.Errorf("Expected the claim still scored (with empty evidence), got %d calls", len(scorer.scored))
	}
}

func TestEvaluate_NilContext(t *testing.T) {
	ev := testEvaluator(t, Components{Scorer: &stubScorer{}})

	if _, err := ev.Evaluate(context.Background(), "anything", nil); !errors.Is(err, model.ErrInvalidContext) {
		t.Errorf("Expected ErrInvalidContext for nil context, got %v", err)
	}
}

func TestEvaluate_InvalidContext(t *testing.T) {
	ev := testEvaluator(t, Components{Scorer: &stubScorer{}})

	rc := &model.Context{Passages: []model.Passage{{ID: "p1"}, {ID: "p1"}}}
	if _, err := ev.Evaluate(context.Background(), "anything", rc); !errors.Is(err, model.ErrInvalidContext) {
		t.Errorf("Expected ErrInvalidContext for duplicate ids, got %v", err)
	}
}

func TestEvaluate_AnalysesKeepClaimOrder(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Concurrency.ScoreWorkers = 4
	ev, err := New(cfg, Components{Scorer: &stubScorer{}})
	if err != nil {
		t.Fatalf("Expected construction to succeed, got %v", err)
	}

	answer := "Paris is big. The river is long. The museum is old. The tower is tall."
	result, err := ev.Evaluate(context.Background(), answer, parisContext())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.TotalClaims != 4 {
		t.Fatalf("Expected 4 claims, got %d", result.TotalClaims)
	}
	for i := 1; i < len(result.ClaimAnalysis); i++ {
		if result.ClaimAnalysis[i].Claim.Span.Start < result.ClaimAnalysis[i-1].Claim.Span.Start {
			t.Error("Expected analyses in original claim order")
		}
	}
}

func TestEvaluate_MetadataFields(t *testing.T) {
	ev := testEvaluator(t, Components{Scorer: &stubScorer{}})

	result, err := ev.Evaluate(context.Background(), "Paris is the capital.", parisContext())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Metadata["mode"] != "nli" {
		t.Errorf("Expected mode nli, got %v", result.Metadata["mode"])
	}
	if result.Metadata["retrieval_method"] != "bm25" {
		t.Errorf("Expected retrieval_method bm25, got %v", result.Metadata["retrieval_method"])
	}
	if result.Metadata["threshold"] != 0.7 {
		t.Errorf("Expected threshold 0.7, got %v", result.Metadata["threshold"])
	}
	id, ok := result.Metadata["evaluation_id"].(string)
	if !ok || id == "" {
		t.Errorf("Expected a non-empty evaluation id, got %v", result.Metadata["evaluation_id"])
	}
	if _, found := result.Metadata["citation_analysis"]; found {
		t.Error("Expected no citation analysis without markers")
	}
}

func TestEvaluate_CitationAnalysisAttached(t *testing.T) {
	ev := testEvaluator(t, Components{Scorer: &stubScorer{}})

	result, err := ev.Evaluate(context.Background(),
		"Paris is the capital of France [p1].",
		parisContext())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	raw, found := result.Metadata["citation_analysis"]
	if !found {
		t.Fatal("Expected citation analysis when markers are present")
	}
	report, ok := raw.(*model.CitationReport)
	if !ok {
		t.Fatalf("Expected *model.CitationReport, got %T", raw)
	}
	if report.TotalCitations == 0 {
		t.Error("Expected at least one citation in the report")
	}
}

func TestNew_UnknownStrategy(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Scoring.Strategy = "vibes"
	if _, err := New(cfg, Components{}); err == nil {
		t.Error("Expected error for unknown scoring strategy")
	}
}

func TestNew_UnknownRetrievalMethod(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Retrieval.Method = "grep"
	if _, err := New(cfg, Components{Scorer: &stubScorer{}}); err == nil {
		t.Error("Expected error for unknown retrieval method")
	}
}

func TestNew_JudgeWithoutProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Scoring.Strategy = "judge"
	cfg.LLM.Provider = ""
	if _, err := New(cfg, Components{}); err == nil {
		t.Error("Expected error for judge strategy without a provider")
	}
}

func TestNew_InjectedRetrieverWins(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Retrieval.Method = "embedding" // would fail without an encoder

	r, err := retrieve.New("bm25", 3, nil)
	if err != nil {
		t.Fatalf("Expected bm25 construction to succeed, got %v", err)
	}
	if _, err := New(cfg, Components{Retriever: r, Scorer: &stubScorer{}}); err != nil {
		t.Errorf("Expected injected retriever to bypass encoder setup, got %v", err)
	}
}

// degradingScorer always fails the claim with a diagnostic.
type degradingScorer struct{}

func (degradingScorer) ScoreClaim(_ context.Context, claim model.Claim, evidence []model.SupportingSnippet, _ float64) model.ClaimAnalysis {
	if len(evidence) == 0 {
		return model.ClaimAnalysis{Claim: claim, Supported: false, MissingInfo: score.NoEvidenceMessage}
	}
	return model.ClaimAnalysis{Claim: claim, Supported: false, MissingInfo: "Entailment scoring failed: connection refused"}
}

func TestEvaluate_ScorerFailuresDegradeNotAbort(t *testing.T) {
	ev := testEvaluator(t, Components{Scorer: degradingScorer{}})

	result, err := ev.Evaluate(context.Background(),
		"Paris is the capital of France. The Eiffel Tower is 330 meters tall.",
		parisContext())
	if err != nil {
		t.Fatalf("Expected evaluation to survive scorer failures, got %v", err)
	}

	if result.SupportedClaims != 0 {
		t.Errorf("Expected no supported claims, got %d", result.SupportedClaims)
	}
	if len(result.UnsupportedClaims) != result.TotalClaims {
		t.Errorf("Expected every claim in the unsupported list, got %d of %d",
			len(result.UnsupportedClaims), result.TotalClaims)
	}
	for _, uc := range result.UnsupportedClaims {
		if uc.MissingInfo == "" {
			t.Errorf("Expected diagnostic missing info for %q", uc.Claim)
		}
	}
}
