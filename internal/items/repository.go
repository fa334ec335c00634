package items

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JaimeStill/tally/pkg/pagination"
	"github.com/JaimeStill/tally/pkg/query"
	"github.com/JaimeStill/tally/pkg/repository"
	"github.com/JaimeStill/tally/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an item repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "items"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Item], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Source")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	list, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanItem)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	result := pagination.NewPageResult(list, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Item, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	i, err := repository.QueryOne(ctx, r.db, q, args, scanItem)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &i, nil
}

// Content downloads the transcript text for an item.
func (r *repo) Content(ctx context.Context, id uuid.UUID) (string, error) {
	item, err := r.Find(ctx, id)
	if err != nil {
		return "", err
	}

	result, err := r.storage.Download(ctx, item.StorageKey)
	if err != nil {
		return "", fmt.Errorf("download item blob: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return "", fmt.Errorf("read item blob: %w", err)
	}

	return string(data), nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Item, error) {
	id := uuid.New()
	key := buildStorageKey(id, sanitizeName(cmd.Name))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload item blob: %w", err)
	}

	q := `
		INSERT INTO items(id, name, source, content_type, size_bytes, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, source, content_type, size_bytes, storage_key, created_at, updated_at`

	insertArgs := []any{
		id,
		cmd.Name,
		cmd.Source,
		cmd.ContentType,
		int64(len(cmd.Data)),
		key,
	}

	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Item, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanItem)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("item created", "id", i.ID, "name", i.Name)
	return &i, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM items WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, item.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", item.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("item deleted", "id", id)
	return nil
}

func buildStorageKey(id uuid.UUID, name string) string {
	return fmt.Sprintf("items/%s/%s", id, name)
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "item"
	}
	return url.PathEscape(name)
}
