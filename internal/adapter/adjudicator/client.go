// Package adjudicator implements the constrained LLM tie-breaker used
// by the title normalizer. The model may only choose one of the offered
// canonical titles or declare "Unknown".
package adjudicator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// Client adjudicates via an Ollama-compatible /api/generate endpoint.
type Client struct {
	baseURL         string
	model           string
	maxPromptTokens int
	hc              *http.Client
	tokens          *tokenCounter
}

// New constructs an adjudicator client with a bounded per-call timeout.
func New(baseURL, model string, maxPromptTokens int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:         baseURL,
		model:           model,
		maxPromptTokens: maxPromptTokens,
		hc: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "adjudicator.generate " + r.Method
				})),
		},
		tokens: newTokenCounter(),
	}
}

// Pick asks the model to choose one of options for the query. It
// returns "" when the model declares Unknown or answers outside the
// option list; transport failures surface as ErrAdjudicatorUnavailable
// so the normalizer can fall back without blocking.
func (c *Client) Pick(ctx domain.Context, query string, options []string) (string, error) {
	query = strings.TrimSpace(query)
	deduped := dedupe(options)
	if query == "" || len(deduped) == 0 {
		return "", nil
	}

	prompt := fmt.Sprintf(
		"You map job titles to canonical categories. Valid canonical titles: %s. "+
			"Respond with exactly one canonical title from the list that best matches the job title. "+
			"If nothing fits, reply with 'Unknown'.\nJob title: %q",
		strings.Join(deduped, ", "), query)
	if c.maxPromptTokens > 0 && c.tokens.count(c.model, prompt) > c.maxPromptTokens {
		return "", fmt.Errorf("%w: prompt exceeds %d tokens", domain.ErrInvalidArgument, c.maxPromptTokens)
	}

	body, _ := json.Marshal(map[string]any{
		"model":   c.model,
		"prompt":  prompt,
		"stream":  false,
		"options": map[string]any{"temperature": 0},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("op=adjudicator.Pick: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAdjudicatorUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", domain.ErrAdjudicatorUnavailable, resp.StatusCode)
	}
	var payload struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode: %v", domain.ErrAdjudicatorUnavailable, err)
	}
	return matchOption(payload.Response, deduped), nil
}

// matchOption extracts the model's first reply line and maps it back to
// one of the offered options; anything else counts as unknown.
func matchOption(reply string, options []string) string {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ""
	}
	first := strings.SplitN(reply, "\n", 2)[0]
	first = strings.Trim(first, "` '\"")
	normalized := strings.ToLower(strings.Trim(first, ".,;:!? "))
	if normalized == "unknown" {
		return ""
	}
	for _, opt := range options {
		if strings.ToLower(opt) == normalized {
			return opt
		}
	}
	return ""
}

func dedupe(options []string) []string {
	seen := make(map[string]struct{}, len(options))
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if opt == "" {
			continue
		}
		if _, dup := seen[opt]; dup {
			continue
		}
		seen[opt] = struct{}{}
		out = append(out, opt)
	}
	return out
}
