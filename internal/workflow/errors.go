package workflow

import "errors"

// Workflow execution errors.
var (
	ErrItemNotFound  = errors.New("item not found")
	ErrNoScores      = errors.New("scorecard has no scores")
	ErrInvalidTarget = errors.New("routing target does not name a score")
	ErrScoreFailed   = errors.New("score execution failed")
	ErrSuspended     = errors.New("score suspended outside batch execution")
)
