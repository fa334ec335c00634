// Package classifier implements the classification node state machine:
// prompt construction, a single model invocation per cycle, output parsing,
// and bounded retry. Every retry is observable in the chat history rather
// than hidden inside a call-level retry wrapper.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/tally/pkg/confidence"
	"github.com/JaimeStill/tally/pkg/labels"
	"github.com/JaimeStill/tally/pkg/messages"
)

// UnknownClass is the terminal sentinel reported when the retry budget is
// exhausted without a valid classification.
const UnknownClass = "unknown"

// maxRetriesExplanation is the fixed explanation paired with UnknownClass.
const maxRetriesExplanation = "Maximum retries reached"

// OutcomeKind discriminates the terminal variants of one node execution.
type OutcomeKind int

// Terminal variants.
const (
	// OutcomeSuccess: a configured label was parsed from a completion.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeUnknown: the retry budget was exhausted; the state carries the
	// unknown sentinel.
	OutcomeUnknown
	// OutcomeSuspended: batch mode paused execution before invoking the
	// model. Resume with a fresh Run carrying an externally supplied
	// completion.
	OutcomeSuspended
)

// Outcome pairs a terminal variant with the final state.
type Outcome struct {
	Kind  OutcomeKind
	State State
}

// Decision is the routing result after the parse step.
type Decision int

// Routing decisions.
const (
	DecisionSuccess Decision = iota
	DecisionRetry
	DecisionMaxRetries
)

// Classifier is one classification node. It is safe for concurrent use
// across distinct states; configuration is read-only after construction.
type Classifier struct {
	cfg    Config
	model  Model
	logger *slog.Logger
}

// New creates a Classifier, finalizing the configuration.
func New(cfg Config, model Model, logger *slog.Logger) (*Classifier, error) {
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	if model == nil && !(cfg.BatchMode && cfg.Breakpoints) {
		return nil, fmt.Errorf("model required")
	}

	return &Classifier{
		cfg:    cfg,
		model:  model,
		logger: logger.With("system", "classifier"),
	}, nil
}

// Config returns the finalized configuration.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Run drives the state machine to a terminal outcome: prompt, call, parse,
// looping through retry until success or the retry budget is exhausted.
// The budget is re-checked immediately after each retry increment, so a
// run never invokes the model more than MaxRetries times. When the
// incoming state already carries a completion (a suspended execution
// being resumed), any stale pending request is discarded and the first
// cycle skips straight to the parse step.
func (c *Classifier) Run(ctx context.Context, s State) (*Outcome, error) {
	s = s.Clone()

	resuming := s.Completion != nil
	if resuming {
		s.Messages = nil
	}

	for {
		if !resuming {
			var err error

			s, err = c.Prompt(s)
			if err != nil {
				return nil, err
			}

			var suspended bool
			s, suspended, err = c.Call(ctx, s)
			if err != nil {
				return nil, err
			}
			if suspended {
				return &Outcome{Kind: OutcomeSuspended, State: s}, nil
			}
		}
		resuming = false

		s = c.Parse(s)

		switch c.Route(s) {
		case DecisionSuccess:
			c.logger.DebugContext(
				ctx, "classification complete",
				"classification", *s.Classification,
				"retries", s.RetryCount,
			)
			return &Outcome{Kind: OutcomeSuccess, State: s}, nil
		case DecisionMaxRetries:
			return &Outcome{Kind: OutcomeUnknown, State: c.MaxRetries(s)}, nil
		case DecisionRetry:
			s = c.Retry(s)
			if s.RetryCount >= c.cfg.MaxRetries {
				return &Outcome{Kind: OutcomeUnknown, State: c.MaxRetries(s)}, nil
			}
		}
	}
}

// Prompt is the first step: it sets the pending request messages. A state
// with messages already populated passes through unchanged, supporting
// externally supplied request sequences. An empty chat history renders the
// configured templates and seeds the history; otherwise the history is
// serialized as-is.
func (c *Classifier) Prompt(s State) (State, error) {
	if len(s.Messages) > 0 {
		return s, nil
	}

	if len(s.ChatHistory) == 0 {
		initial, err := c.cfg.Prompt().Render(map[string]string{"text": s.Text})
		if err != nil {
			return s, err
		}
		s.ChatHistory = initial
	}

	s.Messages = messages.Serialize(s.ChatHistory)
	return s, nil
}

// Call is the second step and the sole suspension point. Under batch mode
// with breakpoints enabled it returns suspended=true without invoking the
// model. Otherwise it deserializes the pending request, invokes the model
// exactly once, captures the completion and logprobs, and clears the
// pending messages. A state with no pending messages fails with
// ErrNoMessages.
func (c *Classifier) Call(ctx context.Context, s State) (State, bool, error) {
	if c.cfg.BatchMode && c.cfg.Breakpoints {
		return s, true, nil
	}

	if len(s.Messages) == 0 {
		return s, false, ErrNoMessages
	}

	msgs, err := messages.Deserialize(s.Messages)
	if err != nil {
		return s, false, err
	}

	resp, err := c.model.Invoke(ctx, msgs)
	if err != nil {
		return s, false, fmt.Errorf("model invocation: %w", err)
	}

	s.Completion = stringPtr(resp.Content)
	s.RawLogprobs = resp.Logprobs
	s.Messages = nil

	return s, false, nil
}

// Parse is the third step. A state with no completion passes through
// unchanged (the suspended-then-resumed-without-result case). Otherwise the
// completion is matched against the configured classes and, when enabled,
// confidence is extracted from the retained logprobs.
func (c *Classifier) Parse(s State) State {
	if s.Completion == nil {
		return s
	}

	result := labels.Parse(*s.Completion, c.cfg.Classes(), labels.Options{
		FromStart: c.cfg.ParseFromStart,
	})

	s.Explanation = stringPtr(result.Explanation)
	if result.Classification == "" {
		s.Classification = nil
		return s
	}

	s.Classification = stringPtr(result.Classification)
	if c.cfg.Confidence {
		s.Confidence = confidence.Extract(
			result.Classification,
			s.RawLogprobs,
			c.cfg.ParseFromStart,
		)
	}

	return s
}

// Route decides the transition after parsing. The decision depends only on
// this state's own classification and retry count, never on values other
// nodes may have recorded in shared metadata.
func (c *Classifier) Route(s State) Decision {
	if s.Classification != nil && *s.Classification != "" {
		return DecisionSuccess
	}
	if s.RetryCount >= c.cfg.MaxRetries {
		return DecisionMaxRetries
	}
	return DecisionRetry
}

// Retry appends the invalid completion as an AI turn and a corrective human
// turn to the chat history, increments the retry count, and clears the
// completion so the next prompt step rebuilds the request from the full
// history. History grows by exactly two messages per cycle.
func (c *Classifier) Retry(s State) State {
	if s.Completion != nil {
		s.ChatHistory = append(s.ChatHistory, messages.AI(*s.Completion))
	}
	s.ChatHistory = append(s.ChatHistory, messages.Human(c.retryInstruction(s)))

	s.RetryCount++
	s.Completion = nil
	s.Classification = nil
	s.Confidence = nil
	s.RawLogprobs = nil

	return s
}

// MaxRetries is the terminal step after the retry budget is exhausted. It
// sets the unknown sentinel and fixed explanation, leaving every other
// field untouched.
func (c *Classifier) MaxRetries(s State) State {
	s.Classification = stringPtr(UnknownClass)
	s.Explanation = stringPtr(maxRetriesExplanation)
	return s
}

func (c *Classifier) retryInstruction(s State) string {
	return fmt.Sprintf(
		"Your response did not include a valid classification. "+
			"Respond with exactly one of: %s. This is attempt %d of %d.",
		strings.Join(c.cfg.Classes(), ", "),
		s.RetryCount+1,
		c.cfg.MaxRetries,
	)
}
