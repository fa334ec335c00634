package classifier

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Node adapts the classifier to a state graph node. The node reads and
// writes its own State under stateKey, keeping each node's results in a
// namespace no other node consults; the terminal outcome kind is stored
// under OutcomeKey(stateKey) for edge predicates.
func (c *Classifier) Node(stateKey string) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ns, err := ExtractState(s, stateKey)
		if err != nil {
			return s, fmt.Errorf("classifier %s: %w", stateKey, err)
		}

		outcome, err := c.Run(ctx, ns)
		if err != nil {
			return s, fmt.Errorf("classifier %s: %w", stateKey, err)
		}

		s = s.Set(stateKey, outcome.State)
		s = s.Set(OutcomeKey(stateKey), outcome.Kind)
		return s, nil
	})
}

// OutcomeKey returns the graph state key carrying a node's terminal
// OutcomeKind.
func OutcomeKey(stateKey string) string {
	return stateKey + ":outcome"
}

// ExtractState pulls a node's State from graph state.
func ExtractState(s state.State, stateKey string) (State, error) {
	val, ok := s.Get(stateKey)
	if !ok {
		return State{}, fmt.Errorf("missing %s in state", stateKey)
	}

	ns, ok := val.(State)
	if !ok {
		return State{}, fmt.Errorf("%s is not classifier.State", stateKey)
	}

	return ns, nil
}

// ExtractOutcome pulls a node's terminal outcome kind from graph state.
func ExtractOutcome(s state.State, stateKey string) (OutcomeKind, bool) {
	val, ok := s.Get(OutcomeKey(stateKey))
	if !ok {
		return 0, false
	}

	kind, ok := val.(OutcomeKind)
	return kind, ok
}
