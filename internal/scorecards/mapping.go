package scorecards

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/JaimeStill/tally/pkg/query"
	"github.com/JaimeStill/tally/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "scorecards", "s").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("active", "Active").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field: "Name",
}

// Filters contains optional filtering criteria for scorecard queries.
// Nil fields are ignored.
type Filters struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}

	return f
}

func scanScorecard(s repository.Scanner) (Scorecard, error) {
	var sc Scorecard
	err := s.Scan(
		&sc.ID,
		&sc.Name,
		&sc.Description,
		&sc.Active,
		&sc.CreatedAt,
		&sc.UpdatedAt,
	)
	return sc, err
}

// scanScore decodes the JSONB config and routing columns alongside the
// scalar fields.
func scanScore(s repository.Scanner) (Score, error) {
	var (
		sc      Score
		config  []byte
		routing []byte
	)

	if err := s.Scan(
		&sc.ID,
		&sc.ScorecardID,
		&sc.Name,
		&sc.Position,
		&config,
		&routing,
	); err != nil {
		return sc, err
	}

	if err := json.Unmarshal(config, &sc.Config); err != nil {
		return sc, fmt.Errorf("decode score config: %w", err)
	}
	if err := json.Unmarshal(routing, &sc.Routing); err != nil {
		return sc, fmt.Errorf("decode score routing: %w", err)
	}

	return sc, nil
}
