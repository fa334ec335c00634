package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/tally/internal/items"
)

// InitNode returns a state node that loads the transcript text for the run's
// item and seeds the state bag for the score nodes.
func InitNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		itemID, err := extractItemID(s)
		if err != nil {
			return s, fmt.Errorf("init: %w", err)
		}

		var (
			item *items.Item
			text string
		)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			found, err := rt.Items.Find(gctx, itemID)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrItemNotFound, err)
			}
			item = found
			return nil
		})

		g.Go(func() error {
			content, err := rt.Items.Content(gctx, itemID)
			if err != nil {
				return fmt.Errorf("load transcript: %w", err)
			}
			text = content
			return nil
		})

		if err := g.Wait(); err != nil {
			return s, fmt.Errorf("init: %w", err)
		}

		rt.Logger.InfoContext(
			ctx, "init node complete",
			"item_id", itemID,
			"item", item.Name,
			"length", len(text),
		)

		s = s.Set(KeyItemName, item.Name)
		s = s.Set(KeyText, text)
		s = s.Set(KeyOutcomes, []ScoreOutcome{})

		return s, nil
	})
}

func extractItemID(s state.State) (uuid.UUID, error) {
	val, ok := s.Get(KeyItemID)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing %s in state", ErrItemNotFound, KeyItemID)
	}

	itemID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s is not uuid.UUID", ErrItemNotFound, KeyItemID)
	}

	return itemID, nil
}
