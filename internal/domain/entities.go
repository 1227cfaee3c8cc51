package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrNotFound               = errors.New("not found")
	ErrDimensionMismatch      = errors.New("embedding dimension mismatch")
	ErrVectorInvalid          = errors.New("vector invalid")
	ErrUpstreamTimeout        = errors.New("upstream timeout")
	ErrProviderUnavailable    = errors.New("embedding provider unavailable")
	ErrAdjudicatorUnavailable = errors.New("adjudicator unavailable")
	ErrInternal               = errors.New("internal error")
)

// Stint is one employment period. EndDate == nil means the stint is
// ongoing and must score as maximal recency.
// Invariant: EndDate >= StartDate when both present.
type Stint struct {
	Company      string     `json:"company,omitempty"`
	Title        string     `json:"title"`
	IndustryTags []string   `json:"industry_tags,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// TitleLevel pairs a normalized title with its seniority level.
type TitleLevel struct {
	Title string `json:"title"`
	Level int    `json:"level"`
}

// CandidateProfile is the read-only scoring input produced by upstream
// parsing/ETL. Titles are ordered most recent first; Stints likewise.
// Empty lists are valid: every feature degrades to a neutral score.
type CandidateProfile struct {
	CandidateID string       `json:"candidate_id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Emails      []string     `json:"emails,omitempty"`
	Titles      []TitleLevel `json:"titles_norm,omitempty"`
	Stints      []Stint      `json:"stints,omitempty"`
	SkillsBlob  string       `json:"skills_blob,omitempty"`
	BulletsBlob string       `json:"relevant_bullets_blob,omitempty"`
	BonusFlags  []float64    `json:"bonus_flags,omitempty"`
}

// RoleDefinition describes the target role a candidate is scored against.
type RoleDefinition struct {
	Name          string             `json:"role,omitempty" yaml:"role"`
	Titles        []string           `json:"titles" yaml:"titles"`
	Level         string             `json:"level,omitempty" yaml:"level"`
	Industries    []string           `json:"industries,omitempty" yaml:"industries"`
	SkillsBlob    string             `json:"jd_skills_blob,omitempty" yaml:"jd_skills_blob"`
	MinAvgMonths  float64            `json:"min_avg_months,omitempty" yaml:"min_avg_months"`
	MinLastMonths float64            `json:"min_last_months,omitempty" yaml:"min_last_months"`
	Weights       map[string]float64 `json:"weights,omitempty" yaml:"weights"`
}

// SignalSet holds the per-feature sub-scores. Every key is present even
// when the underlying data was empty; bonus is capped at 0.1, the rest
// live in [0,1].
type SignalSet struct {
	Title    float64 `json:"title"`
	Industry float64 `json:"industry"`
	Skills   float64 `json:"skills"`
	Context  float64 `json:"context"`
	Tenure   float64 `json:"tenure"`
	Recency  float64 `json:"recency"`
	Bonus    float64 `json:"bonus"`
}

// Map returns the signal set as a generic map for rationale building.
func (s SignalSet) Map() map[string]any {
	return map[string]any{
		"title":    s.Title,
		"industry": s.Industry,
		"skills":   s.Skills,
		"context":  s.Context,
		"tenure":   s.Tenure,
		"recency":  s.Recency,
		"bonus":    s.Bonus,
	}
}

// FitResult is the outcome of a single scoring call.
type FitResult struct {
	Fit  float64   `json:"fit"`
	Subs SignalSet `json:"subs"`
	Why  []string  `json:"why"`
}

// ScoredCandidate is the per-candidate export record of a batch run.
type ScoredCandidate struct {
	CandidateID       string    `json:"candidate_id"`
	FitScore          float64   `json:"fit_score"`
	Rationale         string    `json:"rationale,omitempty"`
	Signals           SignalSet `json:"signals"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	TitleCanonical    string    `json:"title_canonical"`
	IndustryCanonical string    `json:"industry_canonical"`
	CreatedAt         time.Time `json:"-"`
}

// EmbeddingProvider (port)
// Concrete variants: Ollama model server, OpenAI-compatible hosted API,
// deterministic hash-seeded generator, zero-vector mock. Selected by
// configuration at construction time.

type EmbeddingProvider interface {
	// EmbedBatch returns one vector per input text.
	EmbedBatch(ctx Context, texts []string) ([][]float64, error)
	// Name identifies the provider for cache keying and metrics.
	Name() string
	// Model identifies the model for cache keying.
	Model() string
	// Dimension is the fixed vector length per (provider, model).
	Dimension() int
}

// Embedder (port) is the single-text surface the scoring features use.
// It hides normalization, chunking, pooling, and caching.
type Embedder interface {
	EmbedText(ctx Context, text string) ([]float64, error)
}

// VectorCache (port) persists (provider, model, text) -> vector across
// runs. Entries are never explicitly invalidated; text -> vector is
// deterministic per model, so stale entries are acceptable.
type VectorCache interface {
	Get(ctx Context, provider, model string, texts []string) (map[string][]float64, error)
	Put(ctx Context, provider, model string, vectors map[string][]float64) error
	Close() error
}

// Adjudicator (port) breaks ties between near-equal normalization
// candidates. Pick returns one of options, or "" for unknown.
type Adjudicator interface {
	Pick(ctx Context, query string, options []string) (string, error)
}

// ResultRepository (port)

type ResultRepository interface {
	UpsertBatch(ctx Context, runID string, results []ScoredCandidate) error
	ListByRun(ctx Context, runID string) ([]ScoredCandidate, error)
}

// Context is an alias so adapters and usecases pass context.Context
// through without the domain importing transport packages.
type Context = context.Context
