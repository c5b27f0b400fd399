package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/extract"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/pipeline"
)

var (
	answerPath  string
	contextPath string
	outJSON     string
	threshold   float64
	retrieval   string
	topK        int
	scorerName  string
	workers     int
	stripHTML   bool
	noCache     bool
	evalTimeout time.Duration

	nliURL        string
	llmProvider   string
	llmModel      string
	llmRate       float64
	embedProvider string
	embedModel    string
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate answer coverage against a retrieval context",
	Long: `Eval scores one generated answer against the context it was
generated from:
- Extract atomic factual claims from the answer
- Retrieve candidate evidence per claim (BM25 or dense embeddings)
- Score entailment per claim (local NLI service or LLM judge)
- Aggregate into a coverage score with feedback
- Grade citation markers when the answer carries any

Example:
  ece eval --answer answer.txt --context context.json
  ece eval --answer - --context context.json --output report.json
  ece eval --answer answer.txt --context context.json --scorer judge --llm-provider openai`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	// Input/output flags
	evalCmd.Flags().StringVar(&answerPath, "answer", "", "answer text file (\"-\" for stdin)")
	evalCmd.Flags().StringVar(&contextPath, "context", "", "context JSON file with retrieved passages")
	evalCmd.Flags().StringVar(&outJSON, "output", "", "output JSON path (default: stdout)")
	_ = evalCmd.MarkFlagRequired("answer")
	_ = evalCmd.MarkFlagRequired("context")

	// Pipeline flags
	evalCmd.Flags().Float64Var(&threshold, "threshold", 0.7, "entailment score threshold for support")
	evalCmd.Flags().StringVar(&retrieval, "retrieval", "bm25", "retrieval method (bm25, embedding)")
	evalCmd.Flags().IntVar(&topK, "top-k", 3, "evidence snippets retrieved per claim")
	evalCmd.Flags().StringVar(&scorerName, "scorer", "nli", "scoring strategy (nli, judge)")
	evalCmd.Flags().IntVar(&workers, "workers", 4, "concurrent claim scorers")
	evalCmd.Flags().BoolVar(&stripHTML, "strip-html", false, "strip HTML markup from the answer before extraction")
	evalCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable embedding/verdict cache")
	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", 5*time.Minute, "overall evaluation timeout")

	// Backend flags
	evalCmd.Flags().StringVar(&nliURL, "nli-url", "", "NLI classifier service base URL")
	evalCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "judge LLM provider (openai, anthropic, ollama)")
	evalCmd.Flags().StringVar(&llmModel, "llm-model", "", "judge LLM model name")
	evalCmd.Flags().Float64Var(&llmRate, "llm-rate", 0, "judge request rate limit per second (0 = unlimited)")
	evalCmd.Flags().StringVar(&embedProvider, "embedding-provider", "", "embedding provider for dense retrieval (openai, ollama)")
	evalCmd.Flags().StringVar(&embedModel, "embedding-model", "", "embedding model name")
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	answer, err := readAnswer(answerPath)
	if err != nil {
		return err
	}
	if stripHTML {
		answer = extract.StripHTML(answer)
	}

	data, err := os.ReadFile(contextPath)
	if err != nil {
		return fmt.Errorf("reading context file: %w", err)
	}
	rc, err := model.ParseContext(data)
	if err != nil {
		return err
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	comps := pipeline.Components{}
	if verbose {
		comps.Logger = pipeline.NewLogger(os.Stderr)
	}

	ev, err := pipeline.New(cfg, comps)
	if err != nil {
		return err
	}

	result, err := ev.Evaluate(ctx, answer, rc)
	if err != nil {
		return err
	}

	if err := pipeline.WriteJSON(result, outJSON); err != nil {
		return err
	}
	if outJSON != "" && outJSON != "-" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outJSON)
	}
	pipeline.WriteSummary(os.Stderr, result)
	return nil
}

// buildConfig layers CLI flags over the defaults and wires API keys from
// the environment.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Retrieval.Method = retrieval
	cfg.Retrieval.TopK = topK
	cfg.Scoring.Strategy = scorerName
	cfg.Scoring.Threshold = threshold
	cfg.Concurrency.ScoreWorkers = workers
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose

	if nliURL != "" {
		cfg.NLI.BaseURL = nliURL
	}

	if scorerName == "judge" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		cfg.LLM.RatePerSecond = llmRate
		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	if retrieval == "embedding" {
		cfg.Embedding.Provider = embedProvider
		cfg.Embedding.Model = embedModel
		switch embedProvider {
		case "openai":
			cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.Embedding.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.Embedding.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}

func readAnswer(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading answer from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading answer file: %w", err)
	}
	return string(data), nil
}
