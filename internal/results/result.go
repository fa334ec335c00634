// Package results implements the run result domain for Tally. It provides
// types, data access, and business logic for executing scorecard runs and
// storing, querying, validating, and updating the results they produce.
package results

import (
	"time"

	"github.com/google/uuid"
)

// Result represents a stored scorecard run for a transcript item.
type Result struct {
	ID           uuid.UUID    `json:"id"`
	ItemID       uuid.UUID    `json:"item_id"`
	ScorecardID  uuid.UUID    `json:"scorecard_id"`
	Halted       bool         `json:"halted"`
	ModelName    string       `json:"model_name"`
	ProviderName string       `json:"provider_name"`
	CreatedAt    time.Time    `json:"created_at"`
	ValidatedBy  *string      `json:"validated_by"`
	ValidatedAt  *time.Time   `json:"validated_at"`
	Scores       []ScoreResult `json:"scores,omitempty"`
}

// ScoreResult represents one score's outcome within a stored run.
type ScoreResult struct {
	ID             uuid.UUID `json:"id"`
	ResultID       uuid.UUID `json:"result_id"`
	ScoreID        uuid.UUID `json:"score_id"`
	Name           string    `json:"name"`
	Position       int       `json:"position"`
	Classification string    `json:"classification"`
	Explanation    string    `json:"explanation"`
	Confidence     *float64  `json:"confidence"`
	Retries        int       `json:"retries"`
	Target         string    `json:"target"`
}

// RunCommand carries the data needed to execute a scorecard run.
type RunCommand struct {
	ItemID      uuid.UUID `json:"item_id"`
	ScorecardID uuid.UUID `json:"scorecard_id"`
}

// ValidateCommand carries the data needed to validate a run result.
// ValidatedBy identifies the human who confirmed the scored outcomes.
type ValidateCommand struct {
	ValidatedBy string `json:"validated_by"`
}
