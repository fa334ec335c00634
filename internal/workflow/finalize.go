package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// FinalizeNode returns a state node that assembles the RunResult from the
// accumulated score outcomes. A run that reached finalize before every score
// executed was halted by a routing rule.
func FinalizeNode(rt *Runtime, scorecardID uuid.UUID, total int) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		itemID, err := extractItemID(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		outcomes, err := extractOutcomes(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		result := RunResult{
			ItemID:      itemID,
			ScorecardID: scorecardID,
			Scores:      outcomes,
			Halted:      len(outcomes) < total,
			CompletedAt: time.Now(),
		}

		rt.Logger.InfoContext(
			ctx, "finalize node complete",
			"item_id", itemID,
			"scores", len(outcomes),
			"halted", result.Halted,
		)

		return s.Set(KeyResult, result), nil
	})
}
