// Package embedding provides the embedding provider adapters, the
// resilience wrapper, and the cached embedder service used by the
// scoring features.
package embedding

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
)

// NormalizeText lowercases, strips emails and phone numbers, and
// collapses whitespace. Cache keys and provider payloads both use the
// normalized form so lookups stay stable across cosmetic input changes.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = emailRe.ReplaceAllString(s, " ")
	s = phoneRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ChunkWords splits text on whitespace into pieces of at most maxWords
// words, keeping provider payload sizes predictable.
func ChunkWords(s string, maxWords int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	if maxWords <= 0 || len(words) <= maxWords {
		return []string{strings.Join(words, " ")}
	}
	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
