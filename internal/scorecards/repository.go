package scorecards

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/tally/pkg/pagination"
	"github.com/JaimeStill/tally/pkg/query"
	"github.com/JaimeStill/tally/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a scorecard repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "scorecards"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Scorecard], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count scorecards: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	cards, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanScorecard)
	if err != nil {
		return nil, fmt.Errorf("query scorecards: %w", err)
	}

	result := pagination.NewPageResult(cards, total, page.Page, page.PageSize)
	return &result, nil
}

// Find loads a scorecard with its ordered scores.
func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Scorecard, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	card, err := repository.QueryOne(ctx, r.db, q, args, scanScorecard)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	scores, err := r.scores(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	card.Scores = scores
	return &card, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Scorecard, error) {
	if err := Validate(cmd.Name, cmd.Scores); err != nil {
		return nil, err
	}

	card, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Scorecard, error) {
		q := `
			INSERT INTO scorecards(id, name, description)
			VALUES ($1, $2, $3)
			RETURNING id, name, description, active, created_at, updated_at`

		card, err := repository.QueryOne(
			ctx, tx, q,
			[]any{uuid.New(), cmd.Name, cmd.Description},
			scanScorecard,
		)
		if err != nil {
			return card, err
		}

		card.Scores, err = r.insertScores(ctx, tx, card.ID, cmd.Scores)
		return card, err
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("scorecard created", "id", card.ID, "name", card.Name, "scores", len(card.Scores))
	return &card, nil
}

// Update replaces the scorecard metadata and its full score set.
func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Scorecard, error) {
	if err := Validate(cmd.Name, cmd.Scores); err != nil {
		return nil, err
	}

	card, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Scorecard, error) {
		q := `
			UPDATE scorecards
			SET name = $1, description = $2, updated_at = now()
			WHERE id = $3
			RETURNING id, name, description, active, created_at, updated_at`

		card, err := repository.QueryOne(
			ctx, tx, q,
			[]any{cmd.Name, cmd.Description, id},
			scanScorecard,
		)
		if err != nil {
			return card, err
		}

		if _, err := tx.ExecContext(
			ctx,
			"DELETE FROM scores WHERE scorecard_id = $1",
			id,
		); err != nil {
			return card, fmt.Errorf("clear scores: %w", err)
		}

		card.Scores, err = r.insertScores(ctx, tx, id, cmd.Scores)
		return card, err
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("scorecard updated", "id", card.ID, "name", card.Name)
	return &card, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM scorecards WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("scorecard deleted", "id", id)
	return nil
}

func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Scorecard, error) {
	return r.setActive(ctx, id, true)
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Scorecard, error) {
	return r.setActive(ctx, id, false)
}

func (r *repo) setActive(ctx context.Context, id uuid.UUID, active bool) (*Scorecard, error) {
	q := `
		UPDATE scorecards SET active = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, name, description, active, created_at, updated_at`

	card, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Scorecard, error) {
		return repository.QueryOne(ctx, tx, q, []any{active, id}, scanScorecard)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("scorecard active state changed", "id", card.ID, "active", card.Active)
	return &card, nil
}

func (r *repo) scores(ctx context.Context, q repository.Querier, scorecardID uuid.UUID) ([]Score, error) {
	stmt := `
		SELECT id, scorecard_id, name, position, config, routing
		FROM scores
		WHERE scorecard_id = $1
		ORDER BY position`

	scores, err := repository.QueryMany(ctx, q, stmt, []any{scorecardID}, scanScore)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	return scores, nil
}

func (r *repo) insertScores(
	ctx context.Context,
	tx *sql.Tx,
	scorecardID uuid.UUID,
	cmds []ScoreCommand,
) ([]Score, error) {
	q := `
		INSERT INTO scores(id, scorecard_id, name, position, config, routing)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, scorecard_id, name, position, config, routing`

	scores := make([]Score, 0, len(cmds))
	for position, cmd := range cmds {
		config, err := json.Marshal(cmd.Config)
		if err != nil {
			return nil, fmt.Errorf("encode score config: %w", err)
		}

		routing, err := json.Marshal(cmd.Routing)
		if err != nil {
			return nil, fmt.Errorf("encode score routing: %w", err)
		}

		args := []any{uuid.New(), scorecardID, cmd.Name, position, config, routing}

		score, err := repository.QueryOne(ctx, tx, q, args, scanScore)
		if err != nil {
			return nil, fmt.Errorf("insert score %q: %w", cmd.Name, err)
		}

		scores = append(scores, score)
	}

	return scores, nil
}

// Validate checks a scorecard name and score set before persistence. Each
// score's classifier config must finalize cleanly.
func Validate(name string, scores []ScoreCommand) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(scores) == 0 {
		return ErrNoScores
	}

	for i, s := range scores {
		if s.Name == "" {
			return fmt.Errorf("%w: score %d has no name", ErrInvalid, i)
		}

		cfg := s.Config
		if err := cfg.Finalize(); err != nil {
			return fmt.Errorf("%w: score %q: %w", ErrInvalid, s.Name, err)
		}
	}

	return nil
}
