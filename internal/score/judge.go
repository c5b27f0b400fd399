package score

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/worker"
)

// Completer sends a prompt to an external reasoning model and returns its
// raw text response. internal/llm providers implement it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// JudgeScorer asks an external reasoning model for a structured verdict on
// each claim. The response is free text that is expected, not guaranteed,
// to contain a JSON object; parsing tolerates both.
type JudgeScorer struct {
	llm     Completer
	timeout time.Duration
	limiter *worker.Limiter
}

// verdict is the JSON object the judge is asked to return.
type verdict struct {
	Supported       bool     `json:"supported"`
	Confidence      *float64 `json:"confidence"`
	SupportingTexts []string `json:"supporting_texts"`
	MissingInfo     string   `json:"missing_info"`
}

// NewJudgeScorer creates a judge-backed scorer. Every judge call runs under
// timeout; a nil limiter disables throttling.
func NewJudgeScorer(llm Completer, timeout time.Duration, limiter *worker.Limiter) *JudgeScorer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &JudgeScorer{llm: llm, timeout: timeout, limiter: limiter}
}

// ScoreClaim builds the verdict prompt, calls the judge and maps the
// response back onto the evidence snippets. Call failures and timeouts
// degrade the claim; they never abort the evaluation.
func (s *JudgeScorer) ScoreClaim(ctx context.Context, claim model.Claim, evidence []model.SupportingSnippet, threshold float64) model.ClaimAnalysis {
	if len(evidence) == 0 {
		return noEvidenceAnalysis(claim)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return degradedAnalysis(claim, fmt.Errorf("judge rate limit wait: %w", err))
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.llm.Complete(callCtx, buildJudgePrompt(claim, evidence))
	if err != nil {
		return degradedAnalysis(claim, fmt.Errorf("judge call failed: %w", err))
	}

	v := parseVerdict(response)

	confidence := 0.0
	if v.Supported {
		confidence = 1.0
	}
	if v.Confidence != nil {
		confidence = *v.Confidence
	}

	supporting := matchSupportingTexts(v, evidence, confidence)
	if v.Supported && len(supporting) == 0 {
		// The judge said yes but quoted nothing recognizable: fall back to
		// the highest-ranked candidate as the sole support.
		supporting = []model.SupportingSnippet{rescored(evidence[0], confidence)}
	}

	return model.ClaimAnalysis{
		Claim:              claim,
		Supported:          v.Supported,
		SupportScore:       confidence,
		SupportingSnippets: supporting,
		MissingInfo:        v.MissingInfo,
	}
}

func degradedAnalysis(claim model.Claim, err error) model.ClaimAnalysis {
	return model.ClaimAnalysis{
		Claim:       claim,
		Supported:   false,
		MissingInfo: err.Error(),
	}
}

// buildJudgePrompt lays out the claim and its candidate evidence, each
// snippet prefixed with its passage id, and requests a JSON verdict.
func buildJudgePrompt(claim model.Claim, evidence []model.SupportingSnippet) string {
	var sb strings.Builder
	for i, snippet := range evidence {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[Passage %s]: %s", snippet.PassageID, snippet.Text)
	}

	return fmt.Sprintf(`You are evaluating whether a claim is supported by evidence.

CLAIM: %s

EVIDENCE:
%s

Evaluate whether the claim is FULLY supported by the provided evidence. Consider:
1. Is the claim directly stated or clearly implied by the evidence?
2. Are all parts of the claim supported?
3. If not fully supported, what information is missing?

Respond in JSON format:
{
    "supported": true/false,
    "confidence": 0.0-1.0,
    "supporting_texts": ["exact quotes from evidence that support the claim"],
    "missing_info": "description of missing information (if not supported)"
}

Respond ONLY with valid JSON, no other text.`, claim.Text, sb.String())
}

// parseVerdict parses the judge response tolerantly. Markdown code fences
// are stripped first; if JSON decoding still fails the verdict falls back
// to a substring heuristic over the raw text with confidence 0.5.
func parseVerdict(response string) verdict {
	text := strings.TrimSpace(response)

	if strings.HasPrefix(text, "```") {
		if parts := strings.Split(text, "```"); len(parts) >= 2 {
			text = parts[1]
		}
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSpace(text)
	}

	var v verdict
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v
	}

	lower := strings.ToLower(response)
	half := 0.5
	return verdict{
		Supported:   strings.Contains(lower, "true") || strings.Contains(lower, "supported"),
		Confidence:  &half,
		MissingInfo: "Failed to parse judge response",
	}
}

// matchSupportingTexts maps quoted passages back to evidence snippets by
// case-insensitive substring containment in either direction. Each snippet
// is used at most once.
func matchSupportingTexts(v verdict, evidence []model.SupportingSnippet, confidence float64) []model.SupportingSnippet {
	score := confidence
	if !v.Supported {
		score = 0
	}

	used := make(map[int]bool, len(evidence))
	var supporting []model.SupportingSnippet
	for _, quote := range v.SupportingTexts {
		lowerQuote := strings.ToLower(quote)
		for i, snippet := range evidence {
			if used[i] {
				continue
			}
			lowerSnippet := strings.ToLower(snippet.Text)
			if strings.Contains(lowerSnippet, lowerQuote) || strings.Contains(lowerQuote, lowerSnippet) {
				used[i] = true
				supporting = append(supporting, rescored(snippet, score))
				break
			}
		}
	}
	return supporting
}
