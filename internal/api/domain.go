package api

import (
	"github.com/JaimeStill/tally/internal/items"
	"github.com/JaimeStill/tally/internal/results"
	"github.com/JaimeStill/tally/internal/scorecards"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Items      items.System
	Scorecards scorecards.System
	Results    results.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	itemsSystem := items.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	scorecardsSystem := scorecards.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	resultsSystem := results.New(
		runtime.Database.Connection(),
		runtime.Agent,
		runtime.Logger,
		runtime.Pagination,
		itemsSystem,
		scorecardsSystem,
	)

	return &Domain{
		Items:      itemsSystem,
		Scorecards: scorecardsSystem,
		Results:    resultsSystem,
	}
}
