package agents_test

import (
	"testing"

	"github.com/JaimeStill/tally/pkg/agents"
	"github.com/JaimeStill/tally/pkg/messages"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		msgs []messages.Message
		want string
	}{
		{
			name: "empty conversation",
			msgs: nil,
			want: "",
		},
		{
			name: "system only",
			msgs: []messages.Message{
				messages.System("You are a classifier."),
			},
			want: "You are a classifier.",
		},
		{
			name: "system and human",
			msgs: []messages.Message{
				messages.System("Answer Yes or No."),
				messages.Human("Did the agent greet the caller?"),
			},
			want: "Answer Yes or No.\n\nUser: Did the agent greet the caller?",
		},
		{
			name: "retry history with ai turn",
			msgs: []messages.Message{
				messages.System("Answer Yes or No."),
				messages.Human("transcript"),
				messages.AI("maybe"),
				messages.Human("Respond with exactly one of: Yes, No."),
			},
			want: "Answer Yes or No.\n\nUser: transcript\n\nAssistant: maybe\n\nUser: Respond with exactly one of: Yes, No.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agents.Flatten(tt.msgs)
			if got != tt.want {
				t.Errorf("Flatten() = %q, want %q", got, tt.want)
			}
		})
	}
}
