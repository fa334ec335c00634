// Package scorecards implements the scorecard domain for Tally.
// A scorecard is a named, ordered collection of scores; each score carries
// the classifier configuration and routing rules for one evaluation
// question applied to a transcript.
package scorecards

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/tally/pkg/classifier"
	"github.com/JaimeStill/tally/pkg/router"
)

// Scorecard represents a named evaluation rubric.
type Scorecard struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Scores      []Score   `json:"scores,omitempty"`
}

// Score represents one evaluation question within a scorecard. Position
// orders execution; Routing decides where a run proceeds after this score
// resolves.
type Score struct {
	ID          uuid.UUID         `json:"id"`
	ScorecardID uuid.UUID         `json:"scorecard_id"`
	Name        string            `json:"name"`
	Position    int               `json:"position"`
	Config      classifier.Config `json:"config"`
	Routing     router.Rules      `json:"routing"`
}

// CreateCommand carries the data needed to create a scorecard with its scores.
type CreateCommand struct {
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Scores      []ScoreCommand `json:"scores"`
}

// UpdateCommand carries the data needed to replace a scorecard's metadata
// and score set.
type UpdateCommand struct {
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Scores      []ScoreCommand `json:"scores"`
}

// ScoreCommand carries one score definition within a create or update.
type ScoreCommand struct {
	Name    string            `json:"name"`
	Config  classifier.Config `json:"config"`
	Routing router.Rules      `json:"routing"`
}
