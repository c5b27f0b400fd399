package retrieve

import (
	"context"
	"math"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

// DenseRetriever ranks passages by cosine similarity between precomputed
// passage embeddings and the claim embedding.
type DenseRetriever struct {
	enc  Encoder
	topK int

	passages []model.Passage
	vectors  [][]float32
	failed   bool
}

// NewDenseRetriever creates a dense retriever backed by enc.
func NewDenseRetriever(enc Encoder, topK int) *DenseRetriever {
	if topK <= 0 {
		topK = 3
	}
	return &DenseRetriever{enc: enc, topK: topK}
}

// IndexPassages precomputes one embedding per passage. An encoder failure
// puts the retriever into a failed state; retrievals then return empty.
func (r *DenseRetriever) IndexPassages(ctx context.Context, passages []model.Passage) {
	r.passages = passages
	r.vectors = nil
	r.failed = false

	if len(passages) == 0 {
		return
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	vectors, err := r.enc.Encode(ctx, texts)
	if err != nil || len(vectors) != len(passages) {
		r.failed = true
		return
	}
	r.vectors = vectors
}

// Retrieve embeds the claim and returns the topK passages with strictly
// positive cosine similarity.
func (r *DenseRetriever) Retrieve(ctx context.Context, claim model.Claim, topK int) []model.SupportingSnippet {
	if len(r.passages) == 0 || r.failed {
		return nil
	}
	if topK <= 0 {
		topK = r.topK
	}

	queryVecs, err := r.enc.Encode(ctx, []string{claim.QueryText()})
	if err != nil || len(queryVecs) != 1 {
		return nil
	}
	query := queryVecs[0]

	scores := make([]float64, len(r.passages))
	for i, vec := range r.vectors {
		scores[i] = cosineSimilarity(vec, query)
	}

	hits := selectTop(scores, topK)
	snippets := make([]model.SupportingSnippet, 0, len(hits))
	for _, h := range hits {
		snippets = append(snippets, model.SupportingSnippet{
			PassageID: r.passages[h.index].ID,
			Text:      r.passages[h.index].Text,
			Score:     h.score,
		})
	}
	return snippets
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0
// for mismatched or zero-magnitude vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
