package results

import (
	"errors"
	"net/http"
)

// Domain errors for result operations.
var (
	ErrNotFound  = errors.New("result not found")
	ErrDuplicate = errors.New("result already exists")
	ErrInactive  = errors.New("scorecard is not active")
)

// MapHTTPStatus maps result domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInactive) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
