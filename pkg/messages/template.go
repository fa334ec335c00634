package messages

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Template renders a message of a fixed role by substituting {name}
// placeholders against a value map.
type Template struct {
	Role Role
	Text string
}

// NewTemplate creates a Template for the given role and text.
func NewTemplate(role Role, text string) Template {
	return Template{Role: role, Text: text}
}

// Render substitutes placeholders and returns the resulting message.
// A placeholder with no matching value fails with ErrPromptBuild.
func (t Template) Render(values map[string]string) (Message, error) {
	var missing []string

	text := placeholderPattern.ReplaceAllStringFunc(t.Text, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})

	if len(missing) > 0 {
		return Message{}, fmt.Errorf(
			"%w: missing value for %s",
			ErrPromptBuild, strings.Join(missing, ", "),
		)
	}

	return Message{Role: t.Role, Content: text}, nil
}

// Prompt is an ordered set of templates that produce the first turn of a
// conversation.
type Prompt []Template

// Render renders each template in order against the value map.
func (p Prompt) Render(values map[string]string) ([]Message, error) {
	msgs := make([]Message, 0, len(p))
	for _, t := range p {
		m, err := t.Render(values)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
