// Package pipeline wires claim extraction, evidence retrieval, entailment
// scoring and citation analysis into one evaluation flow.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/cache"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/cite"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/extract"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/llm"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/retrieve"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/score"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/worker"
)

// Evaluator runs the full coverage evaluation for one answer against one
// context. The zero value is not usable; construct with New.
type Evaluator struct {
	extractor *extract.ClaimExtractor
	retriever retrieve.Retriever
	scorer    score.Scorer
	matcher   *cite.Matcher

	threshold   float64
	topK        int
	workers     int
	method      string
	strategy    string
	citationMap map[string]string

	log Logger
}

// Components lets callers swap in their own collaborators; any nil field
// is built from the configuration. Tests use it to inject fakes.
type Components struct {
	Segmenter extract.Segmenter
	Retriever retrieve.Retriever
	Scorer    score.Scorer
	Logger    Logger

	// CitationMap optionally maps passage ids to the citation ids used in
	// answers; when nil, passage ids double as citation ids.
	CitationMap map[string]string
}

// New builds an evaluator from configuration. Misconfiguration (unknown
// retrieval method, unknown scoring strategy, missing judge provider) is
// fatal here; nothing fails at evaluation time for configuration reasons.
func New(cfg *model.Config, comps Components) (*Evaluator, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	logger := comps.Logger
	if logger == nil {
		logger = NopLogger()
	}

	retriever := comps.Retriever
	if retriever == nil {
		var enc retrieve.Encoder
		if cfg.Retrieval.Method == "embedding" {
			var err error
			enc, err = llm.NewEncoder(cfg.Embedding, buildCache(cfg.Cache))
			if err != nil {
				return nil, err
			}
		}
		var err error
		retriever, err = retrieve.New(cfg.Retrieval.Method, cfg.Retrieval.TopK, enc)
		if err != nil {
			return nil, err
		}
	}

	scorer := comps.Scorer
	if scorer == nil {
		var err error
		scorer, err = buildScorer(cfg, buildCache(cfg.Cache))
		if err != nil {
			return nil, err
		}
	}

	return &Evaluator{
		extractor:   extract.NewClaimExtractor(comps.Segmenter),
		retriever:   retriever,
		scorer:      scorer,
		matcher:     cite.NewMatcher(),
		threshold:   cfg.Scoring.Threshold,
		topK:        cfg.Retrieval.TopK,
		workers:     cfg.Concurrency.ScoreWorkers,
		method:      cfg.Retrieval.Method,
		strategy:    cfg.Scoring.Strategy,
		citationMap: comps.CitationMap,
		log:         logger,
	}, nil
}

func buildScorer(cfg *model.Config, store cache.Cache) (score.Scorer, error) {
	switch cfg.Scoring.Strategy {
	case "nli":
		return score.NewNLIScorer(llm.NewNLIClient(cfg.NLI)), nil
	case "judge":
		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return nil, fmt.Errorf("judge strategy requires an LLM provider (set llm.provider)")
		}
		var completer score.Completer = provider
		if store != nil {
			completer = llm.NewCachedCompleter(provider, store)
		}
		limiter := worker.NewLimiter(cfg.LLM.RatePerSecond, 2)
		return score.NewJudgeScorer(completer, cfg.LLM.Timeout, limiter), nil
	default:
		return nil, fmt.Errorf("unknown scoring strategy: %q (use \"nli\" or \"judge\")", cfg.Scoring.Strategy)
	}
}

func buildCache(cfg model.CacheConfig) cache.Cache {
	if !cfg.Enabled {
		return nil
	}
	dir := cfg.Dir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		dir = filepath.Join(base, "ece")
	}
	return cache.NewLayeredCache(cfg.TTL, dir, cfg.TTL)
}

// Evaluate runs the pipeline: extract claims, index passages, retrieve and
// score per claim, aggregate coverage, generate feedback, and attach a
// citation report when the answer carries citation markers.
//
// Input errors (malformed context) surface before any stage runs.
// Per-claim runtime failures degrade that claim's analysis; Evaluate still
// returns a complete result.
func (e *Evaluator) Evaluate(ctx context.Context, answer string, rc *model.Context) (*model.EvaluationResult, error) {
	if rc == nil {
		return nil, fmt.Errorf("%w: context is required", model.ErrInvalidContext)
	}
	if err := rc.Validate(); err != nil {
		return nil, err
	}

	e.log.Logf("Extracting claims from answer...")
	claims := e.extractor.ExtractClaims(answer)
	e.log.Logf("Extracted %d claims", len(claims))

	e.log.Logf("Indexing %d passages for retrieval...", len(rc.Passages))
	e.retriever.IndexPassages(ctx, rc.Passages)

	// Claims are independent of each other; the passage index is read-only
	// from here on, so scoring can fan out.
	e.log.Logf("Scoring %d claims...", len(claims))
	analyses := make([]model.ClaimAnalysis, len(claims))
	worker.Run(ctx, len(claims), e.workers, func(ctx context.Context, i int) {
		evidence := e.retriever.Retrieve(ctx, claims[i], e.topK)
		analyses[i] = e.scorer.ScoreClaim(ctx, claims[i], evidence, e.threshold)
	})

	// Slots skipped on cancellation still need a well-formed analysis.
	for i := range analyses {
		if analyses[i].Claim.Text == "" {
			analyses[i] = model.ClaimAnalysis{
				Claim:       claims[i],
				Supported:   false,
				MissingInfo: "evaluation cancelled before this claim was scored",
			}
		}
	}

	supported := 0
	var unsupported []model.UnsupportedClaim
	for _, a := range analyses {
		if a.Supported {
			supported++
			continue
		}
		unsupported = append(unsupported, model.UnsupportedClaim{
			Claim:       a.Claim.Text,
			Span:        a.Claim.Span,
			MissingInfo: a.MissingInfo,
		})
	}

	coverage := 0.0
	if len(claims) > 0 {
		coverage = float64(supported) / float64(len(claims))
	}

	metadata := map[string]interface{}{
		"evaluation_id":    uuid.NewString(),
		"mode":             e.strategy,
		"threshold":        e.threshold,
		"retrieval_method": e.method,
	}

	if citations := e.matcher.ExtractCitations(answer); len(citations) > 0 {
		e.log.Logf("Analyzing %d citations...", len(citations))
		metadata["citation_analysis"] = e.matcher.AnalyzeCitations(answer, claims, analyses, rc.Passages, e.citationMap)
	}

	return &model.EvaluationResult{
		CoverageScore:     coverage,
		TotalClaims:       len(claims),
		SupportedClaims:   supported,
		UnsupportedClaims: unsupported,
		ClaimAnalysis:     analyses,
		Feedback:          generateFeedback(analyses, unsupported),
		Metadata:          metadata,
	}, nil
}
