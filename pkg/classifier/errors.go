package classifier

import "errors"

// Sentinel errors for classifier state machine misuse.
var (
	// ErrNoMessages indicates the call step ran with no pending request,
	// meaning the prompt step was skipped or produced nothing.
	ErrNoMessages = errors.New("no messages to send")
)
