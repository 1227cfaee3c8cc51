package adjudicator

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// tokenCounter counts prompt tokens so adjudication requests stay inside
// the model's context window. Encodings are cached per model; models
// unknown to tiktoken fall back to a character heuristic.
type tokenCounter struct {
	mu            sync.RWMutex
	encodingCache map[string]*tiktoken.Tiktoken
}

func newTokenCounter() *tokenCounter {
	return &tokenCounter{encodingCache: make(map[string]*tiktoken.Tiktoken)}
}

func (c *tokenCounter) count(model, text string) int {
	if text == "" {
		return 0
	}
	enc := c.encodingFor(model)
	if enc == nil {
		// Rough heuristic: ~4 characters per token.
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

func (c *tokenCounter) encodingFor(model string) *tiktoken.Tiktoken {
	c.mu.RLock()
	enc, ok := c.encodingCache[model]
	c.mu.RUnlock()
	if ok {
		return enc
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodingCache[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			enc = nil
		}
	}
	c.encodingCache[model] = enc
	return enc
}
