// Package agents adapts a go-agents chat agent to the classifier model
// interface. The chat transport takes a single flattened prompt string, so
// conversation history is rendered with role markers before each call.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/tally/pkg/classifier"
	"github.com/JaimeStill/tally/pkg/messages"
)

// Model invokes a go-agents chat agent. The underlying transport does not
// surface token logprobs, so responses carry content only; confidence
// extraction requires a provider that returns logprobs alongside text.
type Model struct {
	agent agent.Agent
}

// New creates a Model from an agent configuration.
func New(cfg *gaconfig.AgentConfig) (*Model, error) {
	a, err := agent.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return &Model{agent: a}, nil
}

// Invoke flattens the conversation and performs one chat call.
func (m *Model) Invoke(ctx context.Context, msgs []messages.Message) (*classifier.Response, error) {
	resp, err := m.agent.Chat(ctx, Flatten(msgs))
	if err != nil {
		return nil, fmt.Errorf("chat call: %w", err)
	}

	return &classifier.Response{Content: resp.Content()}, nil
}

// Flatten renders a conversation as a single prompt string. System turns
// lead unmarked; human and AI turns carry role markers so the model can
// follow the exchange.
func Flatten(msgs []messages.Message) string {
	var b strings.Builder

	for _, m := range msgs {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}

		switch m.Role {
		case messages.RoleSystem:
			b.WriteString(m.Content)
		case messages.RoleAI:
			b.WriteString("Assistant: ")
			b.WriteString(m.Content)
		default:
			b.WriteString("User: ")
			b.WriteString(m.Content)
		}
	}

	return b.String()
}
