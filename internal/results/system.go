package results

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/tally/pkg/pagination"
)

// System defines the public contract for result domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Result], error)

	Find(ctx context.Context, id uuid.UUID) (*Result, error)
	Run(ctx context.Context, cmd RunCommand) (*Result, error)
	Validate(ctx context.Context, id uuid.UUID, cmd ValidateCommand) (*Result, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
