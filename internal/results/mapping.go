package results

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/tally/pkg/query"
	"github.com/JaimeStill/tally/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "results", "r").
	Project("id", "ID").
	Project("item_id", "ItemID").
	Project("scorecard_id", "ScorecardID").
	Project("halted", "Halted").
	Project("model_name", "ModelName").
	Project("provider_name", "ProviderName").
	Project("created_at", "CreatedAt").
	Project("validated_by", "ValidatedBy").
	Project("validated_at", "ValidatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for result queries. Nil
// fields are ignored. All fields use exact matching.
type Filters struct {
	ItemID      *uuid.UUID `json:"item_id,omitempty"`
	ScorecardID *uuid.UUID `json:"scorecard_id,omitempty"`
	Halted      *bool      `json:"halted,omitempty"`
	ValidatedBy *string    `json:"validated_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ItemID", f.ItemID).
		WhereEquals("ScorecardID", f.ScorecardID).
		WhereEquals("Halted", f.Halted).
		WhereEquals("ValidatedBy", f.ValidatedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("item_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.ItemID = &id
		}
	}

	if v := values.Get("scorecard_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.ScorecardID = &id
		}
	}

	if v := values.Get("halted"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Halted = &b
		}
	}

	if v := values.Get("validated_by"); v != "" {
		f.ValidatedBy = &v
	}

	return f
}

func scanResult(s repository.Scanner) (Result, error) {
	var r Result
	err := s.Scan(
		&r.ID,
		&r.ItemID,
		&r.ScorecardID,
		&r.Halted,
		&r.ModelName,
		&r.ProviderName,
		&r.CreatedAt,
		&r.ValidatedBy,
		&r.ValidatedAt,
	)
	return r, err
}

func scanScoreResult(s repository.Scanner) (ScoreResult, error) {
	var sr ScoreResult
	err := s.Scan(
		&sr.ID,
		&sr.ResultID,
		&sr.ScoreID,
		&sr.Name,
		&sr.Position,
		&sr.Classification,
		&sr.Explanation,
		&sr.Confidence,
		&sr.Retries,
		&sr.Target,
	)
	return sr, err
}
