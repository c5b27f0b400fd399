package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/model"
)

// WriteJSON renders the result as indented JSON. An empty path or "-" means
// stdout.
func WriteJSON(result *model.EvaluationResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// WriteSummary prints a short human-readable digest of the result.
func WriteSummary(w io.Writer, result *model.EvaluationResult) {
	fmt.Fprintf(w, "Coverage: %.1f%% (%d/%d claims supported)\n",
		result.CoverageScore*100, result.SupportedClaims, result.TotalClaims)
	if len(result.UnsupportedClaims) > 0 {
		fmt.Fprintf(w, "Unsupported claims:\n")
		for _, uc := range result.UnsupportedClaims {
			fmt.Fprintf(w, "  - %s\n", uc.Claim)
		}
	}
	for _, line := range result.Feedback {
		fmt.Fprintf(w, "Feedback: %s\n", line)
	}
	if report, ok := result.Metadata["citation_analysis"].(*model.CitationReport); ok && report != nil {
		fmt.Fprintf(w, "Citations: %d found, quality %.2f, spam %.2f\n",
			report.TotalCitations, report.OverallQuality, report.SpamScore)
	}
}
