package scorecards

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/tally/pkg/pagination"
)

// System defines the public contract for scorecard domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Scorecard], error)

	Find(ctx context.Context, id uuid.UUID) (*Scorecard, error)
	Create(ctx context.Context, cmd CreateCommand) (*Scorecard, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Scorecard, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Scorecard, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Scorecard, error)
}
