package results

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/tally/internal/items"
	"github.com/JaimeStill/tally/internal/scorecards"
	"github.com/JaimeStill/tally/internal/workflow"
	"github.com/JaimeStill/tally/pkg/pagination"
	"github.com/JaimeStill/tally/pkg/query"
	"github.com/JaimeStill/tally/pkg/repository"
)

type repo struct {
	db         *sql.DB
	rt         *workflow.Runtime
	scorecards scorecards.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a result repository implementing the System interface.
// It internally constructs the workflow runtime from the provided dependencies.
func New(
	db *sql.DB,
	agent gaconfig.AgentConfig,
	logger *slog.Logger,
	pagination pagination.Config,
	items items.System,
	cards scorecards.System,
) System {
	rt := &workflow.Runtime{
		Agent:  agent,
		Items:  items,
		Logger: logger.With("workflow", "run"),
	}
	return &repo{
		db:         db,
		rt:         rt,
		scorecards: cards,
		logger:     logger.With("system", "results"),
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
) (*pagination.PageResult[Result], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ModelName", "ProviderName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count results: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	list, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanResult)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	result := pagination.NewPageResult(list, total, page.Page, page.PageSize)
	return &result, nil
}

// Find loads a result with its score outcomes.
func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Result, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	res, err := repository.QueryOne(ctx, r.db, q, args, scanResult)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	scores, err := r.scoreResults(ctx, id)
	if err != nil {
		return nil, err
	}

	res.Scores = scores
	return &res, nil
}

// Run executes a scorecard against an item and persists the outcome. Only
// active scorecards accept new runs.
func (r *repo) Run(ctx context.Context, cmd RunCommand) (*Result, error) {
	card, err := r.scorecards.Find(ctx, cmd.ScorecardID)
	if err != nil {
		return nil, fmt.Errorf("load scorecard %s: %w", cmd.ScorecardID, err)
	}
	if !card.Active {
		return nil, ErrInactive
	}

	run, err := workflow.Execute(ctx, r.rt, cmd.ItemID, card)
	if err != nil {
		return nil, fmt.Errorf("run scorecard %s: %w", cmd.ScorecardID, err)
	}

	insertQ := `
		INSERT INTO results(id, item_id, scorecard_id, halted, model_name, provider_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, item_id, scorecard_id, halted, model_name, provider_name,
				  created_at, validated_by, validated_at`

	insertArgs := []any{
		uuid.New(),
		cmd.ItemID,
		cmd.ScorecardID,
		run.Halted,
		r.rt.Agent.Model.Name,
		r.rt.Agent.Provider.Name,
	}

	res, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Result, error) {
		res, err := repository.QueryOne(ctx, tx, insertQ, insertArgs, scanResult)
		if err != nil {
			return Result{}, fmt.Errorf("insert result: %w", err)
		}

		res.Scores, err = insertScoreResults(ctx, tx, res.ID, run.Scores)
		return res, err
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("scorecard run complete",
		"id", res.ID,
		"item_id", cmd.ItemID,
		"scorecard_id", cmd.ScorecardID,
		"scores", len(res.Scores),
		"halted", res.Halted,
	)
	return &res, nil
}

// Validate records the human who confirmed a run's outcomes.
func (r *repo) Validate(ctx context.Context, id uuid.UUID, cmd ValidateCommand) (*Result, error) {
	q := `
		UPDATE results
		SET validated_by = $1, validated_at = NOW()
		WHERE id = $2
		RETURNING id, item_id, scorecard_id, halted, model_name, provider_name,
				  created_at, validated_by, validated_at`

	res, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Result, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.ValidatedBy, id}, scanResult)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("result validated", "id", res.ID, "validated_by", cmd.ValidatedBy)
	return &res, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM results WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("result deleted", "id", id)
	return nil
}

func (r *repo) scoreResults(ctx context.Context, resultID uuid.UUID) ([]ScoreResult, error) {
	stmt := `
		SELECT id, result_id, score_id, name, position, classification,
			   explanation, confidence, retries, target
		FROM result_scores
		WHERE result_id = $1
		ORDER BY position`

	scores, err := repository.QueryMany(ctx, r.db, stmt, []any{resultID}, scanScoreResult)
	if err != nil {
		return nil, fmt.Errorf("query result scores: %w", err)
	}
	return scores, nil
}

func insertScoreResults(
	ctx context.Context,
	tx *sql.Tx,
	resultID uuid.UUID,
	outcomes []workflow.ScoreOutcome,
) ([]ScoreResult, error) {
	q := `
		INSERT INTO result_scores(
			id, result_id, score_id, name, position, classification,
			explanation, confidence, retries, target
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, result_id, score_id, name, position, classification,
				  explanation, confidence, retries, target`

	scores := make([]ScoreResult, 0, len(outcomes))
	for _, o := range outcomes {
		args := []any{
			uuid.New(),
			resultID,
			o.ScoreID,
			o.Name,
			o.Position,
			o.Classification,
			o.Explanation,
			o.Confidence,
			o.Retries,
			o.Target,
		}

		score, err := repository.QueryOne(ctx, tx, q, args, scanScoreResult)
		if err != nil {
			return nil, fmt.Errorf("insert score result %q: %w", o.Name, err)
		}

		scores = append(scores, score)
	}

	return scores, nil
}
