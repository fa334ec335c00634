package items

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/tally/pkg/pagination"
)

// System defines the public contract for transcript item operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Item], error)

	Find(ctx context.Context, id uuid.UUID) (*Item, error)
	Content(ctx context.Context, id uuid.UUID) (string, error)
	Create(ctx context.Context, cmd CreateCommand) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
