package messages

import "errors"

// Sentinel errors for message operations.
var (
	ErrPromptBuild     = errors.New("prompt build failed")
	ErrDeserialization = errors.New("message deserialization failed")
)
