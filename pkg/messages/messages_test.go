package messages_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/tally/pkg/messages"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name      string
		message   messages.Message
		wantType  string
		wantClass string
	}{
		{"system", messages.System("be precise"), "system", "SystemMessage"},
		{"human", messages.Human("classify this"), "human", "HumanMessage"},
		{"ai", messages.AI("Yes"), "ai", "AIMessage"},
		{"generic", messages.Generic("note"), "chat", "ChatMessage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := messages.Serialize([]messages.Message{tt.message})
			if len(records) != 1 {
				t.Fatalf("Serialize returned %d records, want 1", len(records))
			}

			r := records[0]
			if r.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", r.Type, tt.wantType)
			}
			if r.Class != tt.wantClass {
				t.Errorf("Class = %q, want %q", r.Class, tt.wantClass)
			}
			if r.Content != tt.message.Content {
				t.Errorf("Content = %q, want %q", r.Content, tt.message.Content)
			}
		})
	}
}

func TestSerializePreservesOrder(t *testing.T) {
	msgs := []messages.Message{
		messages.System("a"),
		messages.Human("b"),
		messages.AI("c"),
		messages.Human("d"),
	}

	records := messages.Serialize(msgs)
	if len(records) != len(msgs) {
		t.Fatalf("Serialize returned %d records, want %d", len(records), len(msgs))
	}

	for i, r := range records {
		if r.Content != msgs[i].Content {
			t.Errorf("record %d content = %q, want %q", i, r.Content, msgs[i].Content)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	msgs := []messages.Message{
		messages.System("you are a classifier"),
		messages.Human("is this spam?"),
		messages.AI("Yes"),
		messages.Generic("aside"),
	}

	restored, err := messages.Deserialize(messages.Serialize(msgs))
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}

	if len(restored) != len(msgs) {
		t.Fatalf("round trip returned %d messages, want %d", len(restored), len(msgs))
	}

	for i, m := range restored {
		if m != msgs[i] {
			t.Errorf("message %d = %+v, want %+v", i, m, msgs[i])
		}
	}
}

func TestDeserializeUnknownType(t *testing.T) {
	records := []messages.Serialized{
		{Type: "function", Content: "tool output", Class: "FunctionMessage"},
	}

	msgs, err := messages.Deserialize(records)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}

	if msgs[0].Role != messages.RoleGeneric {
		t.Errorf("Role = %q, want generic fallback", msgs[0].Role)
	}
	if msgs[0].Content != "tool output" {
		t.Errorf("Content = %q, want preserved", msgs[0].Content)
	}
}

func TestDecode(t *testing.T) {
	t.Run("valid records", func(t *testing.T) {
		data := []byte(`[{"type":"human","content":"hello","_type":"HumanMessage"}]`)

		msgs, err := messages.Decode(data)
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		if len(msgs) != 1 || msgs[0].Role != messages.RoleHuman || msgs[0].Content != "hello" {
			t.Errorf("Decode = %+v, want one human message", msgs)
		}
	})

	t.Run("missing content field", func(t *testing.T) {
		data := []byte(`[{"type":"human","_type":"HumanMessage"}]`)

		_, err := messages.Decode(data)
		if !errors.Is(err, messages.ErrDeserialization) {
			t.Errorf("error = %v, want ErrDeserialization", err)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := messages.Decode([]byte(`{not json`))
		if !errors.Is(err, messages.ErrDeserialization) {
			t.Errorf("error = %v, want ErrDeserialization", err)
		}
	})
}

func TestTemplateRender(t *testing.T) {
	t.Run("substitutes values", func(t *testing.T) {
		tpl := messages.NewTemplate(messages.RoleHuman, "Classify: {text}")

		m, err := tpl.Render(map[string]string{"text": "hello world"})
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}
		if m.Content != "Classify: hello world" {
			t.Errorf("Content = %q", m.Content)
		}
		if m.Role != messages.RoleHuman {
			t.Errorf("Role = %q, want human", m.Role)
		}
	})

	t.Run("missing value fails", func(t *testing.T) {
		tpl := messages.NewTemplate(messages.RoleSystem, "Use {labels} for {text}")

		_, err := tpl.Render(map[string]string{"text": "hi"})
		if !errors.Is(err, messages.ErrPromptBuild) {
			t.Errorf("error = %v, want ErrPromptBuild", err)
		}
	})

	t.Run("no placeholders", func(t *testing.T) {
		tpl := messages.NewTemplate(messages.RoleSystem, "You are a classifier.")

		m, err := tpl.Render(nil)
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}
		if m.Content != "You are a classifier." {
			t.Errorf("Content = %q", m.Content)
		}
	})
}

func TestPromptRender(t *testing.T) {
	prompt := messages.Prompt{
		messages.NewTemplate(messages.RoleSystem, "Answer Yes or No."),
		messages.NewTemplate(messages.RoleHuman, "{text}"),
	}

	msgs, err := prompt.Render(map[string]string{"text": "is water wet?"})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("Render returned %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != messages.RoleSystem || msgs[1].Role != messages.RoleHuman {
		t.Errorf("roles = %q, %q, want system, human", msgs[0].Role, msgs[1].Role)
	}
	if msgs[1].Content != "is water wet?" {
		t.Errorf("human content = %q", msgs[1].Content)
	}
}
