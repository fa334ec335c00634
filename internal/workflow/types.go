// Package workflow implements the scorecard run engine for Tally. A run
// loads a transcript, executes each score's classifier node in a state
// graph, and follows per-score routing rules until the sequence completes
// or a rule terminates the run early.
package workflow

import (
	"time"

	"github.com/google/uuid"
)

// State bag keys shared across workflow nodes.
const (
	KeyItemID   = "item_id"
	KeyItemName = "item_name"
	KeyText     = "text"
	KeyNext     = "next"
	KeyOutcomes = "outcomes"
	KeyResult   = "result"
)

// ScoreOutcome captures the terminal state of one score node within a run.
type ScoreOutcome struct {
	ScoreID        uuid.UUID         `json:"score_id"`
	Name           string            `json:"name"`
	Position       int               `json:"position"`
	Classification string            `json:"classification"`
	Explanation    string            `json:"explanation"`
	Confidence     *float64          `json:"confidence"`
	Retries        int               `json:"retries"`
	Target         string            `json:"target"`
	Outputs        map[string]string `json:"outputs,omitempty"`
}

// RunResult is the aggregate outcome of executing a scorecard against a
// transcript item. Halted reports whether a routing rule ended the run
// before every score executed.
type RunResult struct {
	ItemID      uuid.UUID      `json:"item_id"`
	ScorecardID uuid.UUID      `json:"scorecard_id"`
	Scores      []ScoreOutcome `json:"scores"`
	Halted      bool           `json:"halted"`
	CompletedAt time.Time      `json:"completed_at"`
}
