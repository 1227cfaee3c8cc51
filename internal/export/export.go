// Package export writes batch scoring results to disk as JSONL, CSV, and
// optional markdown rationales.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

const maxCSVRationale = 1000

// WriteScores writes scores.jsonl and scores.csv into dir, creating it
// when missing. With explain set it also writes rationales.md.
func WriteScores(dir string, scored []domain.ScoredCandidate, explain bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("op=export.WriteScores: %w", err)
	}
	if err := writeJSONL(filepath.Join(dir, "scores.jsonl"), scored); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, "scores.csv"), scored); err != nil {
		return err
	}
	if explain {
		if err := writeRationales(filepath.Join(dir, "rationales.md"), scored); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONL(path string, scored []domain.ScoredCandidate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("op=export.jsonl: %w", err)
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	for _, s := range scored {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("op=export.jsonl: %w", err)
		}
	}
	return f.Close()
}

func writeCSV(path string, scored []domain.ScoredCandidate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("op=export.csv: %w", err)
	}
	defer func() { _ = f.Close() }()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"candidate_id", "fit_score", "rationale"}); err != nil {
		return fmt.Errorf("op=export.csv: %w", err)
	}
	for _, s := range scored {
		rat := s.Rationale
		if len(rat) > maxCSVRationale {
			rat = rat[:maxCSVRationale]
		}
		rec := []string{s.CandidateID, strconv.FormatFloat(s.FitScore, 'f', 1, 64), rat}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("op=export.csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("op=export.csv: %w", err)
	}
	return f.Close()
}

func writeRationales(path string, scored []domain.ScoredCandidate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("op=export.rationales: %w", err)
	}
	defer func() { _ = f.Close() }()
	for _, s := range scored {
		header := s.CandidateID
		if s.Name != "" {
			header = fmt.Sprintf("%s (%s)", s.Name, s.CandidateID)
		}
		if _, err := fmt.Fprintf(f, "## %s\n\nFit: %.1f\n\n%s\n\n", header, s.FitScore, s.Rationale); err != nil {
			return fmt.Errorf("op=export.rationales: %w", err)
		}
	}
	return f.Close()
}
