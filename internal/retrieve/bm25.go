package retrieve

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

// Okapi BM25 parameters.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

var queryTokenRe = regexp.MustCompile(`[\pL\pN_]+`)

// BM25Retriever ranks passages lexically with the Okapi BM25 formula.
// Passages are tokenized by lowercased whitespace split at index time;
// queries by word-boundary match on the claim's normalized text.
type BM25Retriever struct {
	topK int

	passages []model.Passage
	docLens  []int
	avgLen   float64
	// termFreqs[i] is the term frequency table of passage i.
	termFreqs []map[string]int
	// docFreqs counts how many passages contain each term.
	docFreqs map[string]int

	failed bool
}

// NewBM25Retriever creates a lexical retriever returning topK candidates
// per claim by default.
func NewBM25Retriever(topK int) *BM25Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &BM25Retriever{topK: topK}
}

// IndexPassages builds the term-frequency index, replacing any prior one.
func (r *BM25Retriever) IndexPassages(_ context.Context, passages []model.Passage) {
	r.passages = passages
	r.docLens = make([]int, len(passages))
	r.termFreqs = make([]map[string]int, len(passages))
	r.docFreqs = make(map[string]int)
	r.failed = false
	r.avgLen = 0

	if len(passages) == 0 {
		return
	}

	totalLen := 0
	for i, p := range passages {
		tokens := strings.Fields(strings.ToLower(p.Text))
		r.docLens[i] = len(tokens)
		totalLen += len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		r.termFreqs[i] = tf
		for t := range tf {
			r.docFreqs[t]++
		}
	}

	if totalLen == 0 {
		// Degenerate corpus: nothing tokenizable. Record the failure so
		// retrievals come back empty instead of dividing by zero.
		r.failed = true
		return
	}
	r.avgLen = float64(totalLen) / float64(len(passages))
}

// Retrieve scores every passage against the claim query and returns the
// topK strictly positive hits.
func (r *BM25Retriever) Retrieve(_ context.Context, claim model.Claim, topK int) []model.SupportingSnippet {
	if len(r.passages) == 0 || r.failed {
		return nil
	}
	if topK <= 0 {
		topK = r.topK
	}

	query := queryTokenRe.FindAllString(strings.ToLower(claim.QueryText()), -1)
	if len(query) == 0 {
		return nil
	}

	n := float64(len(r.passages))
	scores := make([]float64, len(r.passages))
	for _, term := range query {
		df := r.docFreqs[term]
		if df == 0 {
			continue
		}
		idf := math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
		for i := range r.passages {
			tf := float64(r.termFreqs[i][term])
			if tf == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(r.docLens[i])/r.avgLen
			scores[i] += idf * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
		}
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
