package workflow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/tally/internal/scorecards"
	"github.com/JaimeStill/tally/pkg/classifier"
	"github.com/JaimeStill/tally/pkg/formatting"
)

// structuredExplanation is the optional JSON shape a model may emit
// alongside its label, directly or in a markdown code fence.
type structuredExplanation struct {
	Explanation string `json:"explanation"`
}

// ScoreNode returns a state node that executes one score's classifier
// against the transcript and records its outcome. After classification the
// node resolves the routing target: a matching routing condition names the
// next node, otherwise execution falls through to defaultNext.
func ScoreNode(
	rt *Runtime,
	model classifier.Model,
	score scorecards.Score,
	defaultNext string,
) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		text, outcomes, err := extractScoreState(s)
		if err != nil {
			return s, fmt.Errorf("score %s: %w", score.Name, err)
		}

		cls, err := classifier.New(score.Config, model, rt.Logger)
		if err != nil {
			return s, fmt.Errorf("score %s: %w: %w", score.Name, ErrScoreFailed, err)
		}

		run := classifier.State{
			Text:     text,
			Metadata: map[string]any{"score": score.Name},
		}

		result, err := cls.Run(ctx, run)
		if err != nil {
			return s, fmt.Errorf("score %s: %w: %w", score.Name, ErrScoreFailed, err)
		}
		if result.Kind == classifier.OutcomeSuspended {
			return s, fmt.Errorf("score %s: %w", score.Name, ErrSuspended)
		}

		outcome := buildOutcome(score, result.State, defaultNext)

		rt.Logger.InfoContext(
			ctx, "score node complete",
			"score", score.Name,
			"classification", outcome.Classification,
			"retries", outcome.Retries,
			"next", outcome.Target,
		)

		s = s.Set(KeyOutcomes, append(outcomes, outcome))
		s = s.Set(KeyNext, outcome.Target)

		return s, nil
	})
}

func buildOutcome(score scorecards.Score, final classifier.State, defaultNext string) ScoreOutcome {
	outcome := ScoreOutcome{
		ScoreID:    score.ID,
		Name:       score.Name,
		Position:   score.Position,
		Confidence: final.Confidence,
		Retries:    final.RetryCount,
		Target:     defaultNext,
	}

	if final.Classification != nil {
		outcome.Classification = *final.Classification
	}
	if final.Explanation != nil {
		outcome.Explanation = refineExplanation(*final.Explanation)
	}

	if target, ok := score.Routing.Route(outcome.Classification); ok {
		outcome.Target = target
	}

	fields := map[string]string{
		"classification": outcome.Classification,
		"explanation":    outcome.Explanation,
	}
	if outcome.Confidence != nil {
		fields["confidence"] = strconv.FormatFloat(*outcome.Confidence, 'f', -1, 64)
	}

	outcome.Outputs = score.Routing.Apply(outcome.Classification, fields)
	return outcome
}

// refineExplanation surfaces the rationale when the model answered with a
// structured JSON response instead of prose. Unparseable or empty
// responses keep the raw completion text.
func refineExplanation(raw string) string {
	parsed, err := formatting.Parse[structuredExplanation](raw)
	if err != nil || parsed.Explanation == "" {
		return raw
	}
	return parsed.Explanation
}

func extractScoreState(s state.State) (string, []ScoreOutcome, error) {
	textVal, ok := s.Get(KeyText)
	if !ok {
		return "", nil, fmt.Errorf("%w: missing %s in state", ErrScoreFailed, KeyText)
	}

	text, ok := textVal.(string)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s is not string", ErrScoreFailed, KeyText)
	}

	outcomes, err := extractOutcomes(s)
	if err != nil {
		return "", nil, err
	}

	return text, outcomes, nil
}

func extractOutcomes(s state.State) ([]ScoreOutcome, error) {
	val, ok := s.Get(KeyOutcomes)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s in state", ErrScoreFailed, KeyOutcomes)
	}

	outcomes, ok := val.([]ScoreOutcome)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not []ScoreOutcome", ErrScoreFailed, KeyOutcomes)
	}

	return outcomes, nil
}

// nextIs builds an edge predicate matching the routing target recorded by
// the node that just executed.
func nextIs(target string) func(state.State) bool {
	return func(s state.State) bool {
		val, ok := s.Get(KeyNext)
		if !ok {
			return false
		}

		next, ok := val.(string)
		return ok && next == target
	}
}
