package metachat

import "time"

// Message is a sealed interface representing a conversation message.
// The unexported marker method prevents external implementations.
// Role() returns the message's role without requiring a type switch.
type Message interface {
	isMessage()
	Role() Role
}

// UserMessage represents a message from the user.
type UserMessage struct {
	Content   string
	Timestamp time.Time
}

func (UserMessage) isMessage() {}

// Role returns RoleUser.
func (UserMessage) Role() Role { return RoleUser }

// AssistantMessage represents the user-visible reply produced by the
// enhanced pass.
type AssistantMessage struct {
	Content   string
	Timestamp time.Time
}

func (AssistantMessage) isMessage() {}

// Role returns RoleAssistant.
func (AssistantMessage) Role() Role { return RoleAssistant }

// MetaMessage holds supervisory advice produced by the meta pass. Meta
// messages are never part of the visible conversation thread; they are
// conditioning input for the enhanced pass and an optional display artifact.
type MetaMessage struct {
	Content   string
	Timestamp time.Time
}

func (MetaMessage) isMessage() {}

// Role returns RoleMeta.
func (MetaMessage) Role() Role { return RoleMeta }

// Interface compliance checks.
var (
	_ Message = UserMessage{}
	_ Message = AssistantMessage{}
	_ Message = MetaMessage{}
)
