// Package messages provides the chat message model for classifier
// conversations: a closed role enum, constructors, and a codec between
// rich messages and the plain record form used across suspension
// boundaries.
package messages

import "strings"

// Role identifies the author of a chat message.
type Role string

// Valid message roles.
const (
	RoleSystem  Role = "system"
	RoleHuman   Role = "human"
	RoleAI      Role = "ai"
	RoleGeneric Role = "generic"
)

// Message is a single turn in a classifier conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System creates a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// Human creates a human message.
func Human(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// AI creates an AI message.
func AI(content string) Message {
	return Message{Role: RoleAI, Content: content}
}

// Generic creates a message with no specific role.
func Generic(content string) Message {
	return Message{Role: RoleGeneric, Content: content}
}

// ClassName returns the rich class name recorded in the serialized form.
func (r Role) ClassName() string {
	switch r {
	case RoleSystem:
		return "SystemMessage"
	case RoleHuman:
		return "HumanMessage"
	case RoleAI:
		return "AIMessage"
	default:
		return "ChatMessage"
	}
}

// TypeTag returns the serialized type tag: the class name lowercased with
// the message suffix stripped. The generic role therefore serializes as
// "chat", matching its ChatMessage class; deserialization maps it back
// through the generic fallback.
func (r Role) TypeTag() string {
	return strings.ToLower(strings.TrimSuffix(r.ClassName(), "Message"))
}
