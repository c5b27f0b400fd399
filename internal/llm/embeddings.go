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

	openai "github.com/sashabaranov/go-openai"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/cache"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/retrieve"
)

const embeddingCacheTTL = 24 * time.Hour

// NewEncoder creates a dense-retrieval encoder from configuration. An
// unknown provider name is a configuration error. The optional cache
// stores vectors keyed by model and input text, so re-indexing the same
// corpus does not re-bill the embedding API.
func NewEncoder(cfg model.EmbeddingConfig, store cache.Cache) (retrieve.Encoder, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIEncoder(cfg, store)
	case "ollama":
		return newOllamaEncoder(cfg, store), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, ollama)", cfg.Provider)
	}
}

// cachedEncoder wraps a raw per-batch encode function with vector caching.
type cachedEncoder struct {
	model  string
	store  cache.Cache
	encode func(ctx context.Context, texts []string) ([][]float32, error)
}

// Encode returns one vector per input text, serving cache hits locally and
// batching the misses into a single backend call.
func (e *cachedEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if e.store == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, text)
			continue
		}
		if data, ok := e.store.Get(e.key(text)); ok {
			var vec []float32
			if err := json.Unmarshal(data, &vec); err == nil {
				vectors[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) > 0 {
		fresh, err := e.encode(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		if len(fresh) != len(missTexts) {
			return nil, fmt.Errorf("encoder returned %d vectors for %d inputs", len(fresh), len(missTexts))
		}
		for j, vec := range fresh {
			vectors[missIdx[j]] = vec
			if e.store != nil {
				if data, err := json.Marshal(vec); err == nil {
					_ = e.store.Set(e.key(missTexts[j]), data, embeddingCacheTTL)
				}
			}
		}
	}

	return vectors, nil
}

func (e *cachedEncoder) key(text string) string {
	return cache.Key("embed", e.model, text)
}

// newOpenAIEncoder builds an encoder on OpenAI's embeddings API.
func newOpenAIEncoder(cfg model.EmbeddingConfig, store cache.Cache) (*cachedEncoder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for embeddings")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	embModel := cfg.Model
	if embModel == "" {
		embModel = string(openai.SmallEmbedding3)
	}

	return &cachedEncoder{
		model: embModel,
		store: store,
		encode: func(ctx context.Context, texts []string) ([][]float32, error) {
			resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
				Input: texts,
				Model: openai.EmbeddingModel(embModel),
			})
			if err != nil {
				return nil, fmt.Errorf("OpenAI embeddings error: %w", err)
			}
			if len(resp.Data) != len(texts) {
				return nil, fmt.Errorf("OpenAI returned %d embeddings for %d inputs", len(resp.Data), len(texts))
			}
			vectors := make([][]float32, len(resp.Data))
			for i, d := range resp.Data {
				vectors[i] = d.Embedding
			}
			return vectors, nil
		},
	}, nil
}

// newOllamaEncoder builds an encoder on Ollama's embeddings endpoint. The
// endpoint takes one prompt per call, so batches turn into sequential
// requests.
func newOllamaEncoder(cfg model.EmbeddingConfig, store cache.Cache) *cachedEncoder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	embModel := cfg.Model
	if embModel == "" {
		embModel = "nomic-embed-text"
	}

	httpClient := &http.Client{Timeout: timeoutOrDefault(cfg.Timeout, 60*time.Second)}

	return &cachedEncoder{
		model: embModel,
		store: store,
		encode: func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i, text := range texts {
				vec, err := ollamaEmbed(ctx, httpClient, baseURL, embModel, text)
				if err != nil {
					return nil, err
				}
				vectors[i] = vec
			}
			return vectors, nil
		},
	}
}

func ollamaEmbed(ctx context.Context, client *http.Client, baseURL, embModel, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]string{
		"model":  embModel,
		"prompt": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embeddings", baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return parsed.Embedding, nil
}
