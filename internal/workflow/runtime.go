package workflow

import (
	"log/slog"

	"github.com/JaimeStill/tally/internal/items"
	"github.com/JaimeStill/tally/pkg/classifier"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Runtime bundles the dependencies that workflow nodes require. It is
// constructed by higher-level composition code from Infrastructure and
// Domain systems. Model, when set, overrides the agent-backed model; tests
// use it to script completions.
type Runtime struct {
	Agent  gaconfig.AgentConfig
	Items  items.System
	Model  classifier.Model
	Logger *slog.Logger
}
