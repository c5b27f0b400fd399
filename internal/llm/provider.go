// Package llm holds the clients for external model services: judge
// providers (OpenAI, Anthropic, Ollama), embedding encoders and the
// textual-entailment classifier client.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

// Provider is a reasoning-model backend for the judge scorer.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete sends a prompt and returns the model's raw text response.
	Complete(ctx context.Context, prompt string) (string, error)

	// IsAvailable checks whether the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// judgeSystemPrompt steers every provider toward machine-parseable output.
const judgeSystemPrompt = "You are a careful assistant that evaluates claim-evidence pairs. Always respond with valid JSON."

// NewProvider creates a judge provider from configuration. An unknown
// provider name is a configuration error; an empty name returns nil,
// meaning the judge strategy is unavailable.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "anthropic", "claude":
		return NewAnthropicProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", cfg.Provider)
	}
}

// timeoutOrDefault picks the configured timeout or a fallback.
func timeoutOrDefault(timeout, fallback time.Duration) time.Duration {
	if timeout <= 0 {
		return fallback
	}
	return timeout
}
