// Package retrieve ranks context passages against claims and returns the
// best candidates as evidence snippets.
package retrieve

import (
	"context"
	"fmt"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

// Retriever indexes passages and ranks them against claim queries.
//
// IndexPassages replaces any prior index wholesale. If the index cannot be
// built the retriever records the failure and later Retrieve calls return
// empty results; indexing never panics or aborts an evaluation. The built
// index is read-only and safe for concurrent Retrieve calls, but callers
// must not re-index while retrievals are in flight.
type Retriever interface {
	IndexPassages(ctx context.Context, passages []model.Passage)

	// Retrieve returns up to topK snippets with strictly positive scores,
	// ordered by descending score; ties keep passage indexing order. A
	// topK <= 0 selects the retriever's configured default.
	Retrieve(ctx context.Context, claim model.Claim, topK int) []model.SupportingSnippet
}

// Encoder turns texts into fixed-dimension vectors, deterministically for
// identical input. Implementations live in internal/llm.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// New builds a retriever for the named method: "bm25" for lexical ranking
// or "embedding" for dense ranking (which requires an encoder). An unknown
// method is a configuration error, surfaced immediately.
func New(method string, topK int, enc Encoder) (Retriever, error) {
	switch method {
	case "bm25":
		return NewBM25Retriever(topK), nil
	case "embedding":
		if enc == nil {
			return nil, fmt.Errorf("embedding retrieval requires an encoder")
		}
		return NewDenseRetriever(enc, topK), nil
	default:
		return nil, fmt.Errorf("unknown retrieval method: %q (use \"bm25\" or \"embedding\")", method)
	}
}

// ranked pairs a passage index with its query score during selection.
type ranked struct {
	index int
	score float64
}

// selectTop keeps the topK strictly positive scores, descending, ties
// broken by original passage index. The sort must be stable so that equal
// scores keep indexing order.
func selectTop(scores []float64, topK int) []ranked {
	var hits []ranked
	for i, s := range scores {
		if s > 0 {
			hits = append(hits, ranked{index: i, score: s})
		}
	}

	// Insertion sort by descending score; stable, and the candidate lists
	// here are small.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].score > hits[j-1].score; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}
