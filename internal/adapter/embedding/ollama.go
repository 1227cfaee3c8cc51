package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// OllamaProvider embeds text with a local or remote Ollama model server.
// The /api/embeddings endpoint takes one prompt per call, so a batch is
// a sequence of requests.
type OllamaProvider struct {
	baseURL string
	model   string
	dim     int
	hc      *http.Client
}

// NewOllamaProvider constructs an Ollama-backed provider.
func NewOllamaProvider(baseURL, model string, dim int, timeout time.Duration) *OllamaProvider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		dim:     dim,
		hc: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "ollama.embeddings " + r.Method
				})),
		},
	}
}

// Name implements domain.EmbeddingProvider.
func (p *OllamaProvider) Name() string { return "ollama" }

// Model implements domain.EmbeddingProvider.
func (p *OllamaProvider) Model() string { return p.model }

// Dimension implements domain.EmbeddingProvider.
func (p *OllamaProvider) Dimension() int { return p.dim }

// EmbedBatch implements domain.EmbeddingProvider.
func (p *OllamaProvider) EmbedBatch(ctx domain.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		vec, err := p.embedOne(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (p *OllamaProvider) embedOne(ctx domain.Context, text string) ([]float64, error) {
	body, _ := json.Marshal(map[string]any{"model": p.model, "prompt": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("op=ollama.embed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", domain.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: ollama status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}
	var payload struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: ollama decode: %v", domain.ErrProviderUnavailable, err)
	}
	if p.dim > 0 && len(payload.Embedding) != p.dim {
		return nil, fmt.Errorf("%w: ollama returned %d dims, want %d", domain.ErrDimensionMismatch, len(payload.Embedding), p.dim)
	}
	return payload.Embedding, nil
}
