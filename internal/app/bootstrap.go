package app

import (
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/adjudicator"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/embedding"
	rediscache "github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/vectorcache/redis"
	sqlitecache "github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/vectorcache/sqlite"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/config"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/normalize"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/scoring"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/usecase"
)

// Scoring bundles the wired scoring stack shared by the HTTP server and
// the CLI.
type Scoring struct {
	Embedder   *embedding.Service
	Normalizer *normalize.Normalizer
	Scorer     *scoring.Scorer
	Score      usecase.ScoreService
	Cache      domain.VectorCache
}

// Close releases the cache backend.
func (s *Scoring) Close() error {
	if s.Cache != nil {
		return s.Cache.Close()
	}
	return nil
}

// BuildScoring wires the embedding provider, cache, normalizer, and scorer
// from configuration.
func BuildScoring(cfg config.Config) (*Scoring, error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}
	maxElapsed, initial, maxIv, mult := cfg.GetEmbedBackoffConfig()
	resilient := embedding.NewResilientProvider(provider, embedding.BackoffConfig{
		MaxElapsedTime:  maxElapsed,
		InitialInterval: initial,
		MaxInterval:     maxIv,
		Multiplier:      mult,
		MaxAttempts:     cfg.EmbedMaxAttempts,
	})

	cache, err := buildCache(cfg)
	if err != nil {
		return nil, err
	}

	embSvc := embedding.NewService(resilient, cache, cfg.EmbedChunkWords, cfg.EmbedBatch)

	vocab := normalize.DefaultVocabulary()
	if cfg.VocabPath != "" {
		vocab, err = normalize.LoadVocabulary(cfg.VocabPath)
		if err != nil {
			return nil, err
		}
	}

	var adj domain.Adjudicator
	if cfg.LLMProvider == "ollama" {
		adj = adjudicator.New(cfg.OllamaURL, cfg.LLMModel, cfg.LLMMaxPromptTokens, cfg.LLMTimeout)
	}

	nm := normalize.New(vocab, embSvc, adj)

	opts := scoring.DefaultOptions()
	opts.RecencyHorizonMonths = cfg.RecencyHorizonMonths
	opts.ContextSenses = scoring.ContextSenses{
		HiringSentence:    cfg.ContextHiringSentence,
		RecruitedSentence: cfg.ContextRecruitedSentence,
		Penalty:           cfg.ContextPenalty,
	}
	sc := scoring.NewScorer(embSvc, opts)

	return &Scoring{
		Embedder:   embSvc,
		Normalizer: nm,
		Scorer:     sc,
		Score:      usecase.NewScoreService(sc, nm),
		Cache:      cache,
	}, nil
}

func buildProvider(cfg config.Config) (domain.EmbeddingProvider, error) {
	switch cfg.EmbedProvider {
	case "ollama":
		return embedding.NewOllamaProvider(cfg.OllamaURL, cfg.EmbedModel, cfg.EmbedDim, cfg.EmbedTimeout), nil
	case "openai":
		return embedding.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.EmbedDim, cfg.EmbedTimeout), nil
	case "deterministic":
		return embedding.NewDeterministicProvider(cfg.EmbedDim, embedding.DefaultSalt), nil
	case "mock":
		return embedding.NewMockProvider(cfg.EmbedDim), nil
	default:
		return nil, fmt.Errorf("%w: unknown embed provider %q", domain.ErrInvalidArgument, cfg.EmbedProvider)
	}
}

func buildCache(cfg config.Config) (domain.VectorCache, error) {
	switch cfg.CacheBackend {
	case "sqlite":
		st, err := sqlitecache.Open(cfg.CachePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "redis":
		return rediscache.New(cfg.RedisAddr), nil
	case "none":
		slog.Warn("embedding cache disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", domain.ErrInvalidArgument, cfg.CacheBackend)
	}
}
