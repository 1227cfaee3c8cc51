package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/app"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/config"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/export"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/roles"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/usecase"
)

var scoreCmd = &cobra.Command{
	Use:   "score <candidates>",
	Short: "Score parsed candidates against a role",
	Long:  "Score a directory of *.parsed.json files, a JSON file, or a JSONL file against a role (built-in profile alias, JSON/YAML role file, or plain-text job description).",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

var (
	scoreRole    string
	scoreOutDir  string
	scoreExplain bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreRole, "role", "r", "", "Role reference (required)")
	scoreCmd.Flags().StringVarP(&scoreOutDir, "out", "o", "out", "Output directory")
	scoreCmd.Flags().BoolVar(&scoreExplain, "explain", false, "Write rationales.md alongside scores")
	_ = scoreCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(observability.SetupLogger(cfg))
	observability.InitMetrics()

	cands, err := loadCandidates(args[0])
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		return fmt.Errorf("%w: no candidates found at %s", domain.ErrInvalidArgument, args[0])
	}
	role, err := roles.Load(scoreRole)
	if err != nil {
		return err
	}

	scoring, err := app.BuildScoring(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = scoring.Close() }()

	batch := usecase.NewBatchService(scoring.Score, nil, cfg.BatchWorkers)
	out, err := batch.Run(cmd.Context(), cands, role, nil)
	if err != nil {
		return err
	}
	if err := export.WriteScores(scoreOutDir, out.Scored, scoreExplain); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Scored %d candidates (%d failed), run %s\n", len(out.Scored), out.Failed, out.RunID)
	fmt.Fprintf(w, "Results written to %s\n", scoreOutDir)
	return nil
}

// loadCandidates accepts a directory of *.parsed.json files, a single
// JSON file (object or array), or a JSONL stream.
func loadCandidates(path string) ([]domain.CandidateProfile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: candidates path %s", domain.ErrNotFound, path)
	}
	if info.IsDir() {
		var out []domain.CandidateProfile
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(p, ".parsed.json") {
				return nil
			}
			c, err := loadCandidateFile(p)
			if err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
		return out, err
	}
	if strings.HasSuffix(path, ".jsonl") {
		return loadJSONL(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var out []domain.CandidateProfile
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("op=cli.loadCandidates: %w", err)
		}
		return out, nil
	}
	var c domain.CandidateProfile
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("op=cli.loadCandidates: %w", err)
	}
	return []domain.CandidateProfile{c}, nil
}

func loadCandidateFile(path string) (domain.CandidateProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.CandidateProfile{}, err
	}
	var c domain.CandidateProfile
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.CandidateProfile{}, fmt.Errorf("op=cli.loadCandidates: %s: %w", path, err)
	}
	if c.CandidateID == "" {
		base := filepath.Base(path)
		c.CandidateID = strings.TrimSuffix(base, ".parsed.json")
	}
	return c, nil
}

func loadJSONL(path string) ([]domain.CandidateProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var out []domain.CandidateProfile
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var c domain.CandidateProfile
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("op=cli.loadCandidates: %w", err)
		}
		out = append(out, c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
