package embedding

import (
	"log/slog"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// BackoffConfig bounds the retry behavior of remote provider calls.
type BackoffConfig struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxAttempts     uint64
}

// DefaultBackoff returns the stock retry bounds.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		MaxElapsedTime:  30 * time.Second,
		InitialInterval: 1 * time.Second,
		MaxInterval:     8 * time.Second,
		Multiplier:      2.0,
		MaxAttempts:     5,
	}
}

// ResilientProvider retries its primary with bounded exponential backoff
// and downgrades to the deterministic fallback on persistent failure, so
// scoring never blocks or crashes on provider unavailability.
type ResilientProvider struct {
	primary  domain.EmbeddingProvider
	fallback domain.EmbeddingProvider
	cfg      BackoffConfig
}

// NewResilientProvider wraps primary with a deterministic fallback of the
// same dimension.
func NewResilientProvider(primary domain.EmbeddingProvider, cfg BackoffConfig) *ResilientProvider {
	if cfg.MaxAttempts == 0 {
		cfg = DefaultBackoff()
	}
	return &ResilientProvider{
		primary:  primary,
		fallback: NewDeterministicProvider(primary.Dimension(), DefaultSalt),
		cfg:      cfg,
	}
}

// Name implements domain.EmbeddingProvider. The primary's identity is
// kept so cache entries written before an outage stay valid after it;
// fallback-served batches must therefore never be cached under it,
// which callers detect through EmbedBatchChecked.
func (p *ResilientProvider) Name() string { return p.primary.Name() }

// Model implements domain.EmbeddingProvider.
func (p *ResilientProvider) Model() string { return p.primary.Model() }

// Dimension implements domain.EmbeddingProvider.
func (p *ResilientProvider) Dimension() int { return p.primary.Dimension() }

// EmbedBatch implements domain.EmbeddingProvider.
func (p *ResilientProvider) EmbedBatch(ctx domain.Context, texts []string) ([][]float64, error) {
	vecs, _, err := p.EmbedBatchChecked(ctx, texts)
	return vecs, err
}

// EmbedBatchChecked embeds the texts and reports whether the result came
// from the deterministic fallback instead of the primary.
func (p *ResilientProvider) EmbedBatchChecked(ctx domain.Context, texts []string) ([][]float64, bool, error) {
	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = p.cfg.MaxElapsedTime
	expo.InitialInterval = p.cfg.InitialInterval
	expo.MaxInterval = p.cfg.MaxInterval
	expo.Multiplier = p.cfg.Multiplier

	var out [][]float64
	op := func() error {
		vecs, err := p.primary.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		out = vecs
		return nil
	}
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(expo, p.cfg.MaxAttempts-1), ctx))
	if err == nil {
		observability.EmbedProviderCall(p.primary.Name(), "ok")
		return out, false, nil
	}

	slog.Warn("embedding provider failed, using deterministic fallback",
		slog.String("provider", p.primary.Name()),
		slog.Int("texts", len(texts)),
		slog.Any("error", err))
	observability.EmbedProviderCall(p.primary.Name(), "fallback")
	vecs, ferr := p.fallback.EmbedBatch(ctx, texts)
	return vecs, true, ferr
}
