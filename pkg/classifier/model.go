package classifier

import (
	"context"

	"github.com/JaimeStill/tally/pkg/confidence"
	"github.com/JaimeStill/tally/pkg/messages"
)

// Response is the result of one model invocation. Logprobs is nil when the
// provider does not report token log-probabilities.
type Response struct {
	Content  string
	Logprobs []confidence.TokenLogprob
}

// Model is the invocation interface the classifier depends on. The model
// client may be shared across concurrent node executions; implementations
// must be stateless request/response calls.
type Model interface {
	Invoke(ctx context.Context, msgs []messages.Message) (*Response, error)
}
