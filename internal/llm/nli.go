package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/score"
)

// NLIClient talks to a textual-entailment inference service. The contract:
// POST {base_url}/v1/classify with {"premise": ..., "hypothesis": ...},
// answered with {"contradiction": c, "neutral": n, "entailment": e}.
type NLIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNLIClient creates a classifier client for the configured service.
func NewNLIClient(cfg model.NLIConfig) *NLIClient {
	return &NLIClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeoutOrDefault(cfg.Timeout, 30*time.Second),
		},
	}
}

// Classify returns the class distribution for one premise/hypothesis pair.
func (c *NLIClient) Classify(ctx context.Context, premise, hypothesis string) (score.EntailmentProbs, error) {
	body, err := json.Marshal(map[string]string{
		"premise":    premise,
		"hypothesis": hypothesis,
	})
	if err != nil {
		return score.EntailmentProbs{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/classify", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return score.EntailmentProbs{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return score.EntailmentProbs{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return score.EntailmentProbs{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return score.EntailmentProbs{}, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var probs score.EntailmentProbs
	if err := json.Unmarshal(respBody, &probs); err != nil {
		return score.EntailmentProbs{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return probs, nil
}
