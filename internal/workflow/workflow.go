package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/tally/internal/scorecards"
	"github.com/JaimeStill/tally/pkg/agents"
	"github.com/JaimeStill/tally/pkg/classifier"
	"github.com/JaimeStill/tally/pkg/router"
)

const (
	nodeInit     = "init"
	nodeFinalize = "finalize"
)

// Execute runs a scorecard against a single transcript item. It builds the
// state graph (init → score₀ … scoreₙ → finalize, with routing edges between
// scores), executes it, and extracts the RunResult from the final state.
func Execute(
	ctx context.Context,
	rt *Runtime,
	itemID uuid.UUID,
	card *scorecards.Scorecard,
) (*RunResult, error) {
	if len(card.Scores) == 0 {
		return nil, ErrNoScores
	}

	model, err := resolveModel(rt)
	if err != nil {
		return nil, fmt.Errorf("resolve model: %w", err)
	}

	graph, err := buildGraph(rt, model, card)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyItemID, itemID)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(finalState)
}

func resolveModel(rt *Runtime) (classifier.Model, error) {
	if rt.Model != nil {
		return rt.Model, nil
	}
	return agents.New(&rt.Agent)
}

func buildGraph(
	rt *Runtime,
	model classifier.Model,
	card *scorecards.Scorecard,
) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("tally-run")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(card.Scores))
	for _, score := range card.Scores {
		names[score.Name] = true
	}

	if err := graph.AddNode(nodeInit, InitNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode(
		nodeFinalize,
		FinalizeNode(rt, card.ID, len(card.Scores)),
	); err != nil {
		return nil, err
	}

	for i, score := range card.Scores {
		if err := graph.AddNode(
			score.Name,
			ScoreNode(rt, model, score, defaultNext(card.Scores, i)),
		); err != nil {
			return nil, err
		}
	}

	// init → first score (unconditional)
	if err := graph.AddEdge(nodeInit, card.Scores[0].Name, nil); err != nil {
		return nil, err
	}

	// each score → every target its routing can name, matched against the
	// recorded next value
	for i, score := range card.Scores {
		for _, target := range targets(score, defaultNext(card.Scores, i)) {
			if target == router.End {
				if err := graph.AddEdge(score.Name, nodeFinalize, nextIs(router.End)); err != nil {
					return nil, err
				}
				continue
			}

			if !names[target] {
				return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTarget, score.Name, target)
			}

			if err := graph.AddEdge(score.Name, target, nextIs(target)); err != nil {
				return nil, err
			}
		}
	}

	if err := graph.SetEntryPoint(nodeInit); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(nodeFinalize); err != nil {
		return nil, err
	}

	return graph, nil
}

// defaultNext names the node a score falls through to when no routing
// condition matches: the next score in declaration order, or finalize.
func defaultNext(scores []scorecards.Score, i int) string {
	if i+1 < len(scores) {
		return scores[i+1].Name
	}
	return router.End
}

// targets collects the distinct routing destinations a score can reach.
func targets(score scorecards.Score, fallback string) []string {
	seen := map[string]bool{}
	var out []string

	add := func(t string) {
		if t == "" {
			t = router.End
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}

	add(fallback)
	for _, c := range score.Routing.Conditions {
		add(c.Target)
	}

	return out
}

func extractResult(s state.State) (*RunResult, error) {
	val, ok := s.Get(KeyResult)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyResult)
	}

	result, ok := val.(RunResult)
	if !ok {
		return nil, fmt.Errorf("%s is not RunResult", KeyResult)
	}

	return &result, nil
}
