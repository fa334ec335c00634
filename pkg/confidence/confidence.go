// Package confidence computes a linear-space probability for a chosen
// classification from per-token log-probability data returned by a model.
package confidence

import (
	"math"
	"strings"

	"github.com/JaimeStill/tally/pkg/labels"
)

// TokenLogprob is the log-probability record for one generated token.
type TokenLogprob struct {
	Token       string       `json:"token"`
	Logprob     float64      `json:"logprob"`
	TopLogprobs []TopLogprob `json:"top_logprobs,omitempty"`
}

// TopLogprob is one ranked alternative for a generated token position.
type TopLogprob struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
}

// Extract locates the token span whose concatenation equals the chosen
// classification and returns exp(logprob) of the span's first emitted token.
// The scan direction matches the parser: first occurrence when fromStart,
// otherwise the last. Returns nil when the classification is empty or no
// span aligns with it; it never fails.
func Extract(classification string, tokens []TokenLogprob, fromStart bool) *float64 {
	target := collapse(labels.NormalizeLabel(classification))
	if target == "" || len(tokens) == 0 {
		return nil
	}

	var position = -1
	for start := range tokens {
		if !spanMatches(tokens, start, target) {
			continue
		}
		if fromStart {
			position = start
			break
		}
		position = start
	}

	if position < 0 {
		return nil
	}

	p := math.Exp(tokens[position].Logprob)
	if p > 1 {
		p = 1
	}
	return &p
}

// spanMatches reports whether the concatenated normalized tokens beginning
// at start equal the target text. Tokens that normalize to nothing (pure
// punctuation or whitespace) cannot begin a span but may not interrupt one.
func spanMatches(tokens []TokenLogprob, start int, target string) bool {
	first := collapse(labels.Normalize(tokens[start].Token))
	if first == "" {
		return false
	}

	var b strings.Builder
	for i := start; i < len(tokens); i++ {
		b.WriteString(collapse(labels.Normalize(tokens[i].Token)))

		joined := b.String()
		if joined == target {
			return true
		}
		if !strings.HasPrefix(target, joined) {
			return false
		}
	}
	return false
}

// collapse removes the word separators Normalize leaves behind so token
// fragments can be compared against label text without boundary alignment.
func collapse(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
