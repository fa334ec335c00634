package classifier_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/tally/pkg/classifier"
	"github.com/JaimeStill/tally/pkg/confidence"
	"github.com/JaimeStill/tally/pkg/messages"
)

// scriptedModel returns queued completions in order, recording every
// request it receives.
type scriptedModel struct {
	completions []classifier.Response
	calls       [][]messages.Message
	err         error
}

func (m *scriptedModel) Invoke(_ context.Context, msgs []messages.Message) (*classifier.Response, error) {
	m.calls = append(m.calls, msgs)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.completions) == 0 {
		return &classifier.Response{Content: ""}, nil
	}

	resp := m.completions[0]
	m.completions = m.completions[1:]
	return &resp, nil
}

func scripted(contents ...string) *scriptedModel {
	m := &scriptedModel{}
	for _, c := range contents {
		m.completions = append(m.completions, classifier.Response{Content: c})
	}
	return m
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClassifier(t *testing.T, cfg classifier.Config, model classifier.Model) *classifier.Classifier {
	t.Helper()
	c, err := classifier.New(cfg, model, testLogger())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return c
}

func TestRunSuccess(t *testing.T) {
	model := scripted("Yes, this matches the criteria.")
	c := newClassifier(t, classifier.Config{
		ValidClasses:   []string{"Yes", "No"},
		SystemTemplate: "Answer Yes or No.",
		MaxRetries:     3,
	}, model)

	outcome, err := c.Run(context.Background(), classifier.State{Text: "some transcript"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if outcome.Kind != classifier.OutcomeSuccess {
		t.Fatalf("Kind = %v, want success", outcome.Kind)
	}
	if outcome.State.Classification == nil || *outcome.State.Classification != "Yes" {
		t.Errorf("Classification = %v, want Yes", outcome.State.Classification)
	}
	if outcome.State.Explanation == nil || *outcome.State.Explanation != "Yes, this matches the criteria." {
		t.Errorf("Explanation = %v, want full completion", outcome.State.Explanation)
	}
	if outcome.State.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", outcome.State.RetryCount)
	}
	if len(model.calls) != 1 {
		t.Errorf("model invoked %d times, want 1", len(model.calls))
	}
}

func TestRunRendersInitialPrompt(t *testing.T) {
	model := scripted("No")
	c := newClassifier(t, classifier.Config{
		ValidClasses:   []string{"Yes", "No"},
		SystemTemplate: "Answer Yes or No.",
		HumanTemplate:  "Transcript: {text}",
	}, model)

	_, err := c.Run(context.Background(), classifier.State{Text: "hello there"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(model.calls) != 1 || len(model.calls[0]) != 2 {
		t.Fatalf("request = %+v, want system + human turn", model.calls)
	}

	req := model.calls[0]
	if req[0].Role != messages.RoleSystem || req[0].Content != "Answer Yes or No." {
		t.Errorf("system turn = %+v", req[0])
	}
	if req[1].Role != messages.RoleHuman || req[1].Content != "Transcript: hello there" {
		t.Errorf("human turn = %+v", req[1])
	}
}

func TestRunPromptBuildError(t *testing.T) {
	c := newClassifier(t, classifier.Config{
		HumanTemplate: "needs {missing_field}",
	}, scripted("Yes"))

	_, err := c.Run(context.Background(), classifier.State{Text: "x"})
	if !errors.Is(err, messages.ErrPromptBuild) {
		t.Errorf("error = %v, want ErrPromptBuild", err)
	}
}

func TestRunRetryMonotonicity(t *testing.T) {
	// Two invalid completions, then a valid one: retry count lands at 2 and
	// chat history grows by exactly two turns per cycle.
	model := scripted("maybe?", "hard to say", "No")
	c := newClassifier(t, classifier.Config{
		ValidClasses:   []string{"Yes", "No"},
		SystemTemplate: "Answer Yes or No.",
		MaxRetries:     5,
	}, model)

	outcome, err := c.Run(context.Background(), classifier.State{Text: "t"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if outcome.Kind != classifier.OutcomeSuccess {
		t.Fatalf("Kind = %v, want success", outcome.Kind)
	}
	if *outcome.State.Classification != "No" {
		t.Errorf("Classification = %q, want No", *outcome.State.Classification)
	}
	if outcome.State.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", outcome.State.RetryCount)
	}

	// initial system+human, plus AI + human retry instruction per cycle
	history := outcome.State.ChatHistory
	if len(history) != 2+2*2 {
		t.Fatalf("history length = %d, want 6", len(history))
	}
	if history[2].Role != messages.RoleAI || history[2].Content != "maybe?" {
		t.Errorf("first retry AI turn = %+v", history[2])
	}
	if history[3].Role != messages.RoleHuman {
		t.Errorf("first retry instruction role = %q", history[3].Role)
	}

	// each request grows monotonically
	if len(model.calls) != 3 {
		t.Fatalf("model invoked %d times, want 3", len(model.calls))
	}
	for i := 1; i < len(model.calls); i++ {
		if len(model.calls[i]) <= len(model.calls[i-1]) {
			t.Errorf(
				"request %d length %d did not grow from %d",
				i, len(model.calls[i]), len(model.calls[i-1]),
			)
		}
	}
}

func TestRunMaxRetries(t *testing.T) {
	model := scripted("nope", "negative", "refusal")
	metadata := map[string]any{"account": "acct-1", "trace": []string{"n1"}}

	c := newClassifier(t, classifier.Config{
		ValidClasses: []string{"Yes", "No"},
		MaxRetries:   3,
	}, model)

	outcome, err := c.Run(context.Background(), classifier.State{
		Text:     "t",
		Metadata: metadata,
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if outcome.Kind != classifier.OutcomeUnknown {
		t.Fatalf("Kind = %v, want unknown", outcome.Kind)
	}
	if *outcome.State.Classification != classifier.UnknownClass {
		t.Errorf("Classification = %q, want unknown", *outcome.State.Classification)
	}
	if *outcome.State.Explanation != "Maximum retries reached" {
		t.Errorf("Explanation = %q", *outcome.State.Explanation)
	}
	if outcome.State.RetryCount != 3 {
		t.Errorf("RetryCount = %d, want 3", outcome.State.RetryCount)
	}

	// the budget bounds total invocations: no call after the final retry
	if len(model.calls) != 3 {
		t.Errorf("model invoked %d times, want 3", len(model.calls))
	}

	// metadata preserved untouched
	if outcome.State.Metadata["account"] != "acct-1" {
		t.Errorf("Metadata account = %v, want preserved", outcome.State.Metadata["account"])
	}
	trace, ok := outcome.State.Metadata["trace"].([]string)
	if !ok || len(trace) != 1 || trace[0] != "n1" {
		t.Errorf("Metadata trace = %v, want preserved", outcome.State.Metadata["trace"])
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	model := scripted("bad", "Yes")
	c := newClassifier(t, classifier.Config{ValidClasses: []string{"Yes", "No"}}, model)

	input := classifier.State{
		Text:     "t",
		Metadata: map[string]any{"k": "v"},
	}

	if _, err := c.Run(context.Background(), input); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(input.ChatHistory) != 0 || input.Completion != nil || input.RetryCount != 0 {
		t.Errorf("input state mutated: %+v", input)
	}
}

func TestRunSuspended(t *testing.T) {
	c := newClassifier(t, classifier.Config{
		ValidClasses: []string{"Yes", "No"},
		BatchMode:    true,
		Breakpoints:  true,
	}, nil)

	outcome, err := c.Run(context.Background(), classifier.State{Text: "t"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if outcome.Kind != classifier.OutcomeSuspended {
		t.Fatalf("Kind = %v, want suspended", outcome.Kind)
	}
	if outcome.State.Completion != nil {
		t.Errorf("Completion = %v, want nil before resume", outcome.State.Completion)
	}
	if len(outcome.State.Messages) == 0 {
		t.Errorf("pending messages cleared; suspension must preserve the request")
	}
}

func TestRunResumeWithCompletion(t *testing.T) {
	// Resuming a suspended execution: a fresh Run with Completion populated
	// out-of-band parses without invoking the model.
	model := scripted()
	c := newClassifier(t, classifier.Config{ValidClasses: []string{"Yes", "No"}}, model)

	outcome, err := c.Run(context.Background(), classifier.State{
		Text:       "t",
		Completion: ptr("No - does not qualify"),
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if outcome.Kind != classifier.OutcomeSuccess {
		t.Fatalf("Kind = %v, want success", outcome.Kind)
	}
	if *outcome.State.Classification != "No" {
		t.Errorf("Classification = %q, want No", *outcome.State.Classification)
	}
	if len(model.calls) != 0 {
		t.Errorf("model invoked %d times, want 0", len(model.calls))
	}
}

func TestRunResumeSuspendedState(t *testing.T) {
	// The persisted suspended state still carries the pending request
	// messages. Resuming it with an externally supplied completion must
	// parse that completion, not suspend again or rebuild the request.
	c := newClassifier(t, classifier.Config{
		ValidClasses: []string{"Yes", "No"},
		BatchMode:    true,
		Breakpoints:  true,
	}, nil)

	suspended, err := c.Run(context.Background(), classifier.State{Text: "t"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if suspended.Kind != classifier.OutcomeSuspended {
		t.Fatalf("Kind = %v, want suspended", suspended.Kind)
	}
	if len(suspended.State.Messages) == 0 {
		t.Fatal("suspended state lost the pending request")
	}

	resume := suspended.State
	resume.Completion = ptr("Yes")

	outcome, err := c.Run(context.Background(), resume)
	if err != nil {
		t.Fatalf("resume Run error: %v", err)
	}

	if outcome.Kind != classifier.OutcomeSuccess {
		t.Fatalf("Kind = %v, want success on resume", outcome.Kind)
	}
	if *outcome.State.Classification != "Yes" {
		t.Errorf("Classification = %q, want Yes", *outcome.State.Classification)
	}
	if len(outcome.State.Messages) != 0 {
		t.Errorf("Messages = %+v, want stale pending request discarded", outcome.State.Messages)
	}
}

func TestRunBatchModeWithoutBreakpoints(t *testing.T) {
	model := scripted("Yes")
	c := newClassifier(t, classifier.Config{
		ValidClasses: []string{"Yes", "No"},
		BatchMode:    true,
	}, model)

	outcome, err := c.Run(context.Background(), classifier.State{Text: "t"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome.Kind != classifier.OutcomeSuccess {
		t.Errorf("Kind = %v, want success when breakpoints disabled", outcome.Kind)
	}
}

func TestRunModelError(t *testing.T) {
	wantErr := errors.New("provider unavailable")
	c := newClassifier(t, classifier.Config{}, &scriptedModel{err: wantErr})

	_, err := c.Run(context.Background(), classifier.State{Text: "t"})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want propagated model error", err)
	}
}

func TestCallNoMessages(t *testing.T) {
	c := newClassifier(t, classifier.Config{}, scripted("Yes"))

	_, _, err := c.Call(context.Background(), classifier.State{})
	if !errors.Is(err, classifier.ErrNoMessages) {
		t.Errorf("error = %v, want ErrNoMessages", err)
	}
}

func TestPromptPassthrough(t *testing.T) {
	c := newClassifier(t, classifier.Config{}, scripted("Yes"))

	pending := messages.Serialize([]messages.Message{messages.Human("external request")})
	s, err := c.Prompt(classifier.State{Messages: pending})
	if err != nil {
		t.Fatalf("Prompt error: %v", err)
	}

	if len(s.Messages) != 1 || s.Messages[0].Content != "external request" {
		t.Errorf("Messages = %+v, want externally supplied request preserved", s.Messages)
	}
	if len(s.ChatHistory) != 0 {
		t.Errorf("ChatHistory = %+v, want untouched on passthrough", s.ChatHistory)
	}
}

func TestPromptSerializesHistory(t *testing.T) {
	c := newClassifier(t, classifier.Config{}, scripted("Yes"))

	history := []messages.Message{
		messages.System("sys"),
		messages.Human("h1"),
		messages.AI("a1"),
	}

	s, err := c.Prompt(classifier.State{ChatHistory: history})
	if err != nil {
		t.Fatalf("Prompt error: %v", err)
	}

	if len(s.Messages) != 3 {
		t.Fatalf("Messages length = %d, want 3", len(s.Messages))
	}
	if s.Messages[2].Type != "ai" || s.Messages[2].Content != "a1" {
		t.Errorf("Messages[2] = %+v", s.Messages[2])
	}
}

func TestParsePassthroughWithoutCompletion(t *testing.T) {
	c := newClassifier(t, classifier.Config{}, scripted())

	s := c.Parse(classifier.State{Text: "t", RetryCount: 1})
	if s.Classification != nil || s.Explanation != nil {
		t.Errorf("Parse modified state without completion: %+v", s)
	}
}

func TestParseWithConfidence(t *testing.T) {
	c := newClassifier(t, classifier.Config{
		ValidClasses: []string{"Yes", "No"},
		Confidence:   true,
	}, scripted())

	s := c.Parse(classifier.State{
		Completion: ptr("Yes"),
		RawLogprobs: []confidence.TokenLogprob{
			{Token: "Yes", Logprob: -0.25},
		},
	})

	if s.Confidence == nil {
		t.Fatal("Confidence = nil, want value")
	}
	if *s.Confidence <= 0 || *s.Confidence > 1 {
		t.Errorf("Confidence = %v, want within (0,1]", *s.Confidence)
	}
}

func TestParseConfidenceDisabled(t *testing.T) {
	c := newClassifier(t, classifier.Config{ValidClasses: []string{"Yes", "No"}}, scripted())

	s := c.Parse(classifier.State{
		Completion: ptr("Yes"),
		RawLogprobs: []confidence.TokenLogprob{
			{Token: "Yes", Logprob: -0.25},
		},
	})

	if s.Confidence != nil {
		t.Errorf("Confidence = %v, want nil when disabled", *s.Confidence)
	}
}

func TestStateIsolation(t *testing.T) {
	// Node B's retry decision must depend only on B's own state, regardless
	// of what node A recorded in shared trace metadata.
	modelA := scripted("approve")
	a := newClassifier(t, classifier.Config{
		ValidClasses: []string{"approve", "reject"},
		MaxRetries:   2,
	}, modelA)

	shared := map[string]any{"trace": []string{}}

	outcomeA, err := a.Run(context.Background(), classifier.State{
		Text:     "t",
		Metadata: shared,
	})
	if err != nil {
		t.Fatalf("node A Run error: %v", err)
	}
	if outcomeA.Kind != classifier.OutcomeSuccess {
		t.Fatalf("node A Kind = %v, want success", outcomeA.Kind)
	}

	// B sees A's success in shared metadata but has disjoint classes and an
	// unparseable completion stream; it must still retry to exhaustion.
	modelB := scripted("approve", "approve")
	b := newClassifier(t, classifier.Config{
		ValidClasses: []string{"high", "low"},
		MaxRetries:   2,
	}, modelB)

	metadataB := outcomeA.State.Metadata
	metadataB["prior_classification"] = *outcomeA.State.Classification

	outcomeB, err := b.Run(context.Background(), classifier.State{
		Text:     "t",
		Metadata: metadataB,
	})
	if err != nil {
		t.Fatalf("node B Run error: %v", err)
	}

	if outcomeB.Kind != classifier.OutcomeUnknown {
		t.Errorf("node B Kind = %v, want unknown despite A's success", outcomeB.Kind)
	}
	if outcomeB.State.RetryCount != 2 {
		t.Errorf("node B RetryCount = %d, want 2", outcomeB.State.RetryCount)
	}
}

func TestRetryInstructionNamesAttempt(t *testing.T) {
	c := newClassifier(t, classifier.Config{
		ValidClasses: []string{"Yes", "No"},
		MaxRetries:   3,
	}, scripted())

	s := c.Retry(classifier.State{
		Completion: ptr("unclear"),
		ChatHistory: []messages.Message{
			messages.Human("classify"),
		},
	})

	if s.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", s.RetryCount)
	}
	if s.Completion != nil {
		t.Errorf("Completion = %v, want cleared", *s.Completion)
	}

	last := s.ChatHistory[len(s.ChatHistory)-1]
	if last.Role != messages.RoleHuman {
		t.Fatalf("last turn role = %q, want human", last.Role)
	}
	for _, want := range []string{"Yes", "No", "attempt 1 of 3"} {
		if !strings.Contains(last.Content, want) {
			t.Errorf("instruction %q missing %q", last.Content, want)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Run("yes no fallback", func(t *testing.T) {
		cfg := classifier.Config{}
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		classes := cfg.Classes()
		if len(classes) != 2 || classes[0] != "Yes" || classes[1] != "No" {
			t.Errorf("Classes = %v, want [Yes No]", classes)
		}
		if cfg.MaxRetries != classifier.DefaultMaxRetries {
			t.Errorf("MaxRetries = %d, want default", cfg.MaxRetries)
		}
	})

	t.Run("legacy two class form", func(t *testing.T) {
		cfg := classifier.Config{PositiveClass: "Pass", NegativeClass: "Fail"}
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		classes := cfg.Classes()
		if len(classes) != 2 || classes[0] != "Pass" || classes[1] != "Fail" {
			t.Errorf("Classes = %v, want [Pass Fail]", classes)
		}
	})

	t.Run("empty label rejected", func(t *testing.T) {
		cfg := classifier.Config{ValidClasses: []string{"Yes", ""}}
		if err := cfg.Finalize(); err == nil {
			t.Error("Finalize accepted empty label")
		}
	})
}

func ptr(s string) *string {
	return &s
}
