package model

import "time"

// Config is the full evaluator configuration. Defaults come from
// DefaultConfig; the CLI layers config file, environment and flags on top.
type Config struct {
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	NLI         NLIConfig         `yaml:"nli"`
	LLM         LLMConfig         `yaml:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// RetrievalConfig selects and tunes the evidence retrieval strategy.
type RetrievalConfig struct {
	// Method is "bm25" (lexical) or "embedding" (dense). Unknown values are
	// a construction-time error, never silently defaulted.
	Method string `yaml:"method"`
	// TopK is the number of evidence candidates retrieved per claim.
	TopK int `yaml:"top_k"`
}

// ScoringConfig selects the entailment scoring strategy.
type ScoringConfig struct {
	// Strategy is "nli" (entailment classifier) or "judge" (LLM verdict).
	Strategy string `yaml:"strategy"`
	// Threshold is the minimum support score for a claim to count as
	// supported.
	Threshold float64 `yaml:"threshold"`
}

// NLIConfig points at the textual-entailment classifier service.
type NLIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LLMConfig configures the judge backend.
type LLMConfig struct {
	// Provider is "openai", "anthropic" or "ollama".
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	// BaseURL overrides the provider endpoint (required for Ollama only
	// when it is not on localhost).
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
	// RatePerSecond throttles judge calls; zero disables throttling.
	RatePerSecond float64 `yaml:"rate_per_second"`

	HTTPProxy  string `yaml:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy"`
}

// EmbeddingConfig configures the dense-retrieval encoder.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheConfig controls embedding/verdict caching.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig bounds internal parallelism.
type ConcurrencyConfig struct {
	// ScoreWorkers is the number of claims scored concurrently. 1 keeps the
	// pipeline fully sequential.
	ScoreWorkers int `yaml:"score_workers"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Retrieval: RetrievalConfig{
			Method: "bm25",
			TopK:   3,
		},
		Scoring: ScoringConfig{
			Strategy:  "nli",
			Threshold: 0.7,
		},
		NLI: NLIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   60 * time.Second,
			MaxTokens: 1024,
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
			Timeout:  30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			ScoreWorkers: 1,
		},
		Output: OutputConfig{},
	}
}
