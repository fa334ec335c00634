package classifier

import (
	"maps"
	"slices"

	"github.com/JaimeStill/tally/pkg/confidence"
	"github.com/JaimeStill/tally/pkg/messages"
)

// State is the per-invocation record passed between state machine steps.
// Steps own the state exclusively for the duration of their execution and
// return an updated copy; nothing mutates a state concurrently.
type State struct {
	// Text is the input content; immutable for the life of one execution.
	Text string `json:"text"`

	// ChatHistory is the accumulated conversation. It is append-only until
	// a successful classification, after which no further appends occur.
	ChatHistory []messages.Message `json:"chat_history,omitempty"`

	// Messages is the serialized form of the next request. Non-empty only
	// between the prompt step and the call step.
	Messages []messages.Serialized `json:"messages,omitempty"`

	// Completion is the raw text of the most recent model invocation.
	Completion *string `json:"completion,omitempty"`

	// Classification is the parsed label, one of the configured classes,
	// or nil when not yet determined or when parsing failed.
	Classification *string `json:"classification,omitempty"`

	// Explanation preserves the full trimmed completion text verbatim for
	// audit, regardless of parse success.
	Explanation *string `json:"explanation,omitempty"`

	// Confidence is the probability attributed to the classification, or
	// nil when confidence scoring is disabled or no token aligned.
	Confidence *float64 `json:"confidence,omitempty"`

	// RawLogprobs retains per-token log-probability data from the most
	// recent response for confidence computation.
	RawLogprobs []confidence.TokenLogprob `json:"raw_logprobs,omitempty"`

	// RetryCount is the number of retry cycles consumed; never decremented.
	RetryCount int `json:"retry_count"`

	// Metadata carries free-form trace context. Steps append, never read it
	// for control flow.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Clone returns a copy safe to modify without aliasing the original's
// slices or metadata map.
func (s State) Clone() State {
	c := s
	c.ChatHistory = slices.Clone(s.ChatHistory)
	c.Messages = slices.Clone(s.Messages)
	c.RawLogprobs = slices.Clone(s.RawLogprobs)
	if s.Metadata != nil {
		c.Metadata = maps.Clone(s.Metadata)
	}
	return c
}

func stringPtr(s string) *string {
	return &s
}
