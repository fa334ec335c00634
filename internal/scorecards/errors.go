package scorecards

import (
	"errors"
	"net/http"
)

// Domain errors for scorecard operations.
var (
	ErrNotFound  = errors.New("scorecard not found")
	ErrDuplicate = errors.New("scorecard already exists")
	ErrInvalid   = errors.New("invalid scorecard")
	ErrNoScores  = errors.New("scorecard has no scores")
)

// MapHTTPStatus maps scorecard domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalid) || errors.Is(err, ErrNoScores) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
