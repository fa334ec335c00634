package messages

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Serialized is the plain record form of a Message. Type is the lowercase
// class name with the "message" suffix stripped; Class preserves the exact
// class name for round-tripping.
type Serialized struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Class   string `json:"_type"`
}

// UnmarshalJSON decodes a serialized record, failing with ErrDeserialization
// when the record lacks a content field.
func (s *Serialized) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrDeserialization, err)
	}

	content, ok := raw["content"]
	if !ok {
		return fmt.Errorf("%w: record missing content field", ErrDeserialization)
	}
	if err := json.Unmarshal(content, &s.Content); err != nil {
		return fmt.Errorf("%w: invalid content field: %w", ErrDeserialization, err)
	}

	if t, ok := raw["type"]; ok {
		if err := json.Unmarshal(t, &s.Type); err != nil {
			return fmt.Errorf("%w: invalid type field: %w", ErrDeserialization, err)
		}
	}
	if c, ok := raw["_type"]; ok {
		if err := json.Unmarshal(c, &s.Class); err != nil {
			return fmt.Errorf("%w: invalid _type field: %w", ErrDeserialization, err)
		}
	}

	return nil
}

// Serialize converts messages to their plain record form. It is total and
// order-preserving.
func Serialize(msgs []Message) []Serialized {
	records := make([]Serialized, len(msgs))
	for i, m := range msgs {
		records[i] = Serialized{
			Type:    m.Role.TypeTag(),
			Content: m.Content,
			Class:   m.Role.ClassName(),
		}
	}
	return records
}

// Deserialize reconstructs messages from their plain record form. Unknown
// type values fall back to a generic message carrying only the content.
func Deserialize(records []Serialized) ([]Message, error) {
	msgs := make([]Message, len(records))
	for i, r := range records {
		switch Role(r.Type) {
		case RoleSystem:
			msgs[i] = System(r.Content)
		case RoleHuman:
			msgs[i] = Human(r.Content)
		case RoleAI:
			msgs[i] = AI(r.Content)
		default:
			msgs[i] = Generic(r.Content)
		}
	}
	return msgs, nil
}

// Decode parses a JSON array of serialized records into messages.
// Records missing a content field fail with ErrDeserialization.
func Decode(data []byte) ([]Message, error) {
	var records []Serialized
	if err := json.Unmarshal(data, &records); err != nil {
		if errors.Is(err, ErrDeserialization) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return Deserialize(records)
}
