package retrieve

import (
	"context"
	"testing"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

var bm25Passages = []model.Passage{
	{ID: "p1", Text: "Paris is the capital of France and its largest city."},
	{ID: "p2", Text: "The Eiffel Tower in Paris is 330 meters tall."},
	{ID: "p3", Text: "Berlin is the capital of Germany."},
}

func claimOf(text string) model.Claim {
	return model.Claim{Text: text}
}

func TestBM25Retriever_RanksRelevantFirst(t *testing.T) {
	r := NewBM25Retriever(3)
	r.IndexPassages(context.Background(), bm25Passages)

	snippets := r.Retrieve(context.Background(), claimOf("eiffel tower height meters"), 3)
	if len(snippets) == 0 {
		t.Fatal("Expected at least one snippet")
	}
	if snippets[0].PassageID != "p2" {
		t.Errorf("Expected p2 ranked first, got %s", snippets[0].PassageID)
	}
}

func TestBM25Retriever_DescendingScores(t *testing.T) {
	r := NewBM25Retriever(3)
	r.IndexPassages(context.Background(), bm25Passages)

	snippets := r.Retrieve(context.Background(), claimOf("paris capital france"), 3)
	for i := 1; i < len(snippets); i++ {
		if snippets[i].Score > snippets[i-1].Score {
			t.Errorf("Expected descending scores, got %f after %f",
				snippets[i].Score, snippets[i-1].Score)
		}
	}
	for _, s := range snippets {
		if s.Score <= 0 {
			t.Errorf("Expected strictly positive scores, got %f for %s", s.Score, s.PassageID)
		}
	}
}

func TestBM25Retriever_TiesKeepPassageOrder(t *testing.T) {
	r := NewBM25Retriever(3)
	// Identical texts produce identical scores.
	r.IndexPassages(context.Background(), []model.Passage{
		{ID: "a", Text: "one common phrase here"},
		{ID: "b", Text: "one common phrase here"},
		{ID: "c", Text: "one common phrase here"},
	})

	snippets := r.Retrieve(context.Background(), claimOf("common phrase"), 3)
	if len(snippets) != 3 {
		t.Fatalf("Expected 3 snippets, got %d", len(snippets))
	}
	for i, want := range []string{"a", "b", "c"} {
		if snippets[i].PassageID != want {
			t.Errorf("Expected position %d to be %s, got %s", i, want, snippets[i].PassageID)
		}
	}
}

func TestBM25Retriever_TopKLimit(t *testing.T) {
	r := NewBM25Retriever(3)
	r.IndexPassages(context.Background(), bm25Passages)

	snippets := r.Retrieve(context.Background(), claimOf("capital city"), 1)
	if len(snippets) > 1 {
		t.Errorf("Expected at most 1 snippet, got %d", len(snippets))
	}
}

func TestBM25Retriever_NoMatchReturnsEmpty(t *testing.T) {
	r := NewBM25Retriever(3)
	r.IndexPassages(context.Background(), bm25Passages)

	if snippets := r.Retrieve(context.Background(), claimOf("zanzibar spice trade"), 3); len(snippets) != 0 {
		t.Errorf("Expected no snippets for unrelated query, got %d", len(snippets))
	}
}

func TestBM25Retriever_EmptyIndex(t *testing.T) {
	r := NewBM25Retriever(3)
	r.IndexPassages(context.Background(), nil)

	if snippets := r.Retrieve(context.Background(), claimOf("anything"), 3); len(snippets) != 0 {
		t.Errorf("Expected no snippets from empty index, got %d", len(snippets))
	}
}

func TestBM25Retriever_UntokenizableCorpus(t *testing.T) {
	r := NewBM25Retriever(3)
	r.IndexPassages(context.Background(), []model.Passage{{ID: "p1", Text: "   "}})

	if snippets := r.Retrieve(context.Background(), claimOf("anything"), 3); len(snippets) != 0 {
		t.Errorf("Expected empty result from degenerate corpus, got %d", len(snippets))
	}
}

func TestBM25Retriever_ReindexReplacesIndex(t *testing.T) {
	r := NewBM25Retriever(3)
	r.IndexPassages(context.Background(), bm25Passages)
	first := r.Retrieve(context.Background(), claimOf("paris capital"), 3)

	// Identical re-index gives identical results.
	r.IndexPassages(context.Background(), bm25Passages)
	second := r.Retrieve(context.Background(), claimOf("paris capital"), 3)
	if len(first) != len(second) {
		t.Fatalf("Expected identical result size, got %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Expected identical snippet %d, got %+v then %+v", i, first[i], second[i])
		}
	}

	// A different corpus replaces the old one wholesale.
	r.IndexPassages(context.Background(), []model.Passage{{ID: "x", Text: "tokyo skyline"}})
	replaced := r.Retrieve(context.Background(), claimOf("paris capital"), 3)
	if len(replaced) != 0 {
		t.Errorf("Expected old passages gone after re-index, got %d snippets", len(replaced))
	}
}

func TestBM25Retriever_UsesNormalizedQuery(t *testing.T) {
	r := NewBM25Retriever(3)
	r.IndexPassages(context.Background(), []model.Passage{
		{ID: "p1", Text: "the route is 1000 kilometer long"},
	})

	claim := model.Claim{
		Text:       "The route is 1,000 km long.",
		Normalized: "the route is 1000 kilometer long.",
	}
	snippets := r.Retrieve(context.Background(), claim, 3)
	if len(snippets) != 1 || snippets[0].PassageID != "p1" {
		t.Fatalf("Expected normalized query to match passage, got %v", snippets)
	}
}
