package workflow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/tally/internal/items"
	"github.com/JaimeStill/tally/internal/scorecards"
	"github.com/JaimeStill/tally/internal/workflow"
	"github.com/JaimeStill/tally/pkg/classifier"
	"github.com/JaimeStill/tally/pkg/messages"
	"github.com/JaimeStill/tally/pkg/pagination"
	"github.com/JaimeStill/tally/pkg/router"
)

type fakeItems struct {
	item    *items.Item
	content string
	findErr error
}

func (f *fakeItems) Handler(maxUploadSize int64) *items.Handler { return nil }

func (f *fakeItems) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters items.Filters,
) (*pagination.PageResult[items.Item], error) {
	return nil, nil
}

func (f *fakeItems) Find(ctx context.Context, id uuid.UUID) (*items.Item, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.item, nil
}

func (f *fakeItems) Content(ctx context.Context, id uuid.UUID) (string, error) {
	if f.findErr != nil {
		return "", f.findErr
	}
	return f.content, nil
}

func (f *fakeItems) Create(ctx context.Context, cmd items.CreateCommand) (*items.Item, error) {
	return nil, nil
}

func (f *fakeItems) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type scriptedModel struct {
	completions []string
	calls       int
}

func (m *scriptedModel) Invoke(ctx context.Context, msgs []messages.Message) (*classifier.Response, error) {
	var content string
	if m.calls < len(m.completions) {
		content = m.completions[m.calls]
	}
	m.calls++
	return &classifier.Response{Content: content}, nil
}

func testRuntime(model classifier.Model, content string) (*workflow.Runtime, uuid.UUID) {
	itemID := uuid.New()

	return &workflow.Runtime{
		Items: &fakeItems{
			item: &items.Item{
				ID:   itemID,
				Name: "call-1024.txt",
			},
			content: content,
		},
		Model:  model,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, itemID
}

func score(name string, position int, routing router.Rules) scorecards.Score {
	return scorecards.Score{
		ID:       uuid.New(),
		Name:     name,
		Position: position,
		Config: classifier.Config{
			SystemTemplate: "Did the agent complete the " + name + " step? Answer Yes or No.",
			MaxRetries:     1,
		},
		Routing: routing,
	}
}

func card(scores ...scorecards.Score) *scorecards.Scorecard {
	return &scorecards.Scorecard{
		ID:     uuid.New(),
		Name:   "qa-review",
		Active: true,
		Scores: scores,
	}
}

func TestExecuteSequential(t *testing.T) {
	model := &scriptedModel{completions: []string{"Yes", "No"}}
	rt, itemID := testRuntime(model, "Agent: hello, thanks for calling.")

	c := card(
		score("greeting", 0, router.Rules{}),
		score("resolution", 1, router.Rules{}),
	)

	result, err := workflow.Execute(context.Background(), rt, itemID, c)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.ItemID != itemID {
		t.Errorf("ItemID = %v, want %v", result.ItemID, itemID)
	}
	if result.ScorecardID != c.ID {
		t.Errorf("ScorecardID = %v, want %v", result.ScorecardID, c.ID)
	}
	if result.Halted {
		t.Error("Halted = true, want false")
	}
	if len(result.Scores) != 2 {
		t.Fatalf("len(Scores) = %d, want 2", len(result.Scores))
	}

	if result.Scores[0].Classification != "Yes" {
		t.Errorf("Scores[0].Classification = %q, want Yes", result.Scores[0].Classification)
	}
	if result.Scores[0].Target != "resolution" {
		t.Errorf("Scores[0].Target = %q, want resolution", result.Scores[0].Target)
	}

	if result.Scores[1].Classification != "No" {
		t.Errorf("Scores[1].Classification = %q, want No", result.Scores[1].Classification)
	}
	if result.Scores[1].Target != router.End {
		t.Errorf("Scores[1].Target = %q, want %q", result.Scores[1].Target, router.End)
	}

	if model.calls != 2 {
		t.Errorf("model calls = %d, want 2", model.calls)
	}
}

func TestExecuteHaltsOnCondition(t *testing.T) {
	model := &scriptedModel{completions: []string{"No"}}
	rt, itemID := testRuntime(model, "Caller: I want to cancel.")

	c := card(
		score("consent", 0, router.Rules{
			Conditions: []router.Condition{
				{Value: "No", Target: ""},
			},
		}),
		score("disclosure", 1, router.Rules{}),
		score("resolution", 2, router.Rules{}),
	)

	result, err := workflow.Execute(context.Background(), rt, itemID, c)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !result.Halted {
		t.Error("Halted = false, want true")
	}
	if len(result.Scores) != 1 {
		t.Fatalf("len(Scores) = %d, want 1", len(result.Scores))
	}
	if result.Scores[0].Target != router.End {
		t.Errorf("Scores[0].Target = %q, want %q", result.Scores[0].Target, router.End)
	}
	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1", model.calls)
	}
}

func TestExecuteRoutingJump(t *testing.T) {
	model := &scriptedModel{completions: []string{"Yes", "No"}}
	rt, itemID := testRuntime(model, "Caller: this is urgent.")

	c := card(
		score("urgency", 0, router.Rules{
			Conditions: []router.Condition{
				{Value: "Yes", Target: "escalation"},
			},
		}),
		score("smalltalk", 1, router.Rules{}),
		score("escalation", 2, router.Rules{}),
	)

	result, err := workflow.Execute(context.Background(), rt, itemID, c)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !result.Halted {
		t.Error("Halted = false, want true")
	}
	if len(result.Scores) != 2 {
		t.Fatalf("len(Scores) = %d, want 2", len(result.Scores))
	}

	if result.Scores[0].Name != "urgency" {
		t.Errorf("Scores[0].Name = %q, want urgency", result.Scores[0].Name)
	}
	if result.Scores[0].Target != "escalation" {
		t.Errorf("Scores[0].Target = %q, want escalation", result.Scores[0].Target)
	}
	if result.Scores[1].Name != "escalation" {
		t.Errorf("Scores[1].Name = %q, want escalation", result.Scores[1].Name)
	}
}

func TestExecuteConditionOutputs(t *testing.T) {
	model := &scriptedModel{completions: []string{"Yes"}}
	rt, itemID := testRuntime(model, "Agent: let me verify your identity.")

	c := card(
		score("verification", 0, router.Rules{
			Conditions: []router.Condition{
				{Value: "Yes", Output: map[string]string{"flag": "review"}},
			},
			Aliases: map[string]string{"label": "classification"},
		}),
	)

	result, err := workflow.Execute(context.Background(), rt, itemID, c)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	outputs := result.Scores[0].Outputs
	if outputs["flag"] != "review" {
		t.Errorf("Outputs[flag] = %q, want review", outputs["flag"])
	}
	if outputs["label"] != "Yes" {
		t.Errorf("Outputs[label] = %q, want Yes", outputs["label"])
	}
}

func TestExecuteNoScores(t *testing.T) {
	model := &scriptedModel{}
	rt, itemID := testRuntime(model, "transcript")

	_, err := workflow.Execute(context.Background(), rt, itemID, card())
	if !errors.Is(err, workflow.ErrNoScores) {
		t.Fatalf("Execute() error = %v, want ErrNoScores", err)
	}
}

func TestExecuteInvalidTarget(t *testing.T) {
	model := &scriptedModel{}
	rt, itemID := testRuntime(model, "transcript")

	c := card(
		score("greeting", 0, router.Rules{
			Conditions: []router.Condition{
				{Value: "Yes", Target: "missing"},
			},
		}),
	)

	_, err := workflow.Execute(context.Background(), rt, itemID, c)
	if !errors.Is(err, workflow.ErrInvalidTarget) {
		t.Fatalf("Execute() error = %v, want ErrInvalidTarget", err)
	}
	if model.calls != 0 {
		t.Errorf("model calls = %d, want 0", model.calls)
	}
}

func TestExecuteItemLookupFailure(t *testing.T) {
	model := &scriptedModel{}
	rt := &workflow.Runtime{
		Items:  &fakeItems{findErr: errors.New("blob missing")},
		Model:  model,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	c := card(score("greeting", 0, router.Rules{}))

	_, err := workflow.Execute(context.Background(), rt, uuid.New(), c)
	if err == nil {
		t.Fatal("Execute() error = nil, want error")
	}
	if model.calls != 0 {
		t.Errorf("model calls = %d, want 0", model.calls)
	}
}

func TestExecuteStructuredExplanation(t *testing.T) {
	completion := "Yes\n```json\n{\"explanation\": \"agent confirmed the account holder's identity\"}\n```"
	model := &scriptedModel{completions: []string{completion}}
	rt, itemID := testRuntime(model, "Agent: can you verify your date of birth?")

	c := card(score("verification", 0, router.Rules{}))

	result, err := workflow.Execute(context.Background(), rt, itemID, c)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Scores) != 1 {
		t.Fatalf("Scores length = %d, want 1", len(result.Scores))
	}

	outcome := result.Scores[0]
	if outcome.Classification != "Yes" {
		t.Errorf("Classification = %q, want Yes", outcome.Classification)
	}
	if outcome.Explanation != "agent confirmed the account holder's identity" {
		t.Errorf("Explanation = %q, want rationale from structured response", outcome.Explanation)
	}
}

func TestExecuteProseExplanationPreserved(t *testing.T) {
	model := &scriptedModel{completions: []string{"Yes, the greeting was delivered."}}
	rt, itemID := testRuntime(model, "Agent: hello, thanks for calling.")

	c := card(score("greeting", 0, router.Rules{}))

	result, err := workflow.Execute(context.Background(), rt, itemID, c)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Scores[0].Explanation != "Yes, the greeting was delivered." {
		t.Errorf("Explanation = %q, want raw completion", result.Scores[0].Explanation)
	}
}
