package metachat

import (
	"fmt"
	"strings"
	"time"
)

// RoleLabels are the display names substituted for the user and assistant
// roles when the conversation is rendered for display or for inclusion in
// prompts that reference role names. They are purely cosmetic and never
// change control flow.
type RoleLabels struct {
	User      string
	Assistant string
}

// DefaultRoleLabels returns the built-in role labels.
func DefaultRoleLabels() RoleLabels {
	return RoleLabels{User: "Inquirer", Assistant: "Sales Assistant"}
}

// PromptPair selects which registered system prompts drive a session's two
// passes: Meta for stage 1 (supervisory advice), Enhanced for stage 2 (the
// user-visible reply). Which prompt plays which role is a configuration
// choice, not a structural one.
type PromptPair struct {
	Meta     int
	Enhanced int
}

// Validate checks that both prompt ids are set.
func (p PromptPair) Validate() error {
	if p.Meta == 0 {
		return fmt.Errorf("meta prompt id must be set: %w", ErrValidation)
	}
	if p.Enhanced == 0 {
		return fmt.Errorf("enhanced prompt id must be set: %w", ErrValidation)
	}
	return nil
}

// Session represents a conversation session. Sessions are created explicitly,
// mutated only by appending completed turns, and deleted only explicitly.
type Session struct {
	ID         string
	RoleLabels RoleLabels
	PromptPair PromptPair
	Messages   []Message
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Visible returns the user and assistant messages in order, excluding meta
// messages. This is the conversation thread as the user role sees it.
func (s Session) Visible() []Message {
	visible := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		switch m.(type) {
		case UserMessage, AssistantMessage:
			visible = append(visible, m)
		}
	}
	return visible
}

// Transcript renders the visible conversation using the session's role
// labels, one "<label>: <content>" line per message. Messages passed as
// extra are rendered after the persisted history, which lets a caller
// include a not-yet-committed user message.
func (s Session) Transcript(extra ...Message) string {
	labels := s.RoleLabels
	if labels.User == "" {
		labels.User = string(RoleUser)
	}
	if labels.Assistant == "" {
		labels.Assistant = string(RoleAssistant)
	}
	var b strings.Builder
	render := func(m Message) {
		switch m := m.(type) {
		case UserMessage:
			fmt.Fprintf(&b, "%s: %s\n", labels.User, m.Content)
		case AssistantMessage:
			fmt.Fprintf(&b, "%s: %s\n", labels.Assistant, m.Content)
		}
	}
	for _, m := range s.Messages {
		render(m)
	}
	for _, m := range extra {
		render(m)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Turn is the atomic unit of pipeline execution: one user message, the meta
// advice derived from it, and the assistant reply derived from both,
// committed together. A session's message sequence always decomposes into
// complete turns; a failed pipeline run appends nothing.
type Turn struct {
	User      UserMessage
	Meta      MetaMessage
	Assistant AssistantMessage
}

// Messages returns the turn's messages in commit order.
func (t Turn) Messages() []Message {
	return []Message{t.User, t.Meta, t.Assistant}
}

// SessionSummary is the listing view of a session.
type SessionSummary struct {
	ID           string
	CreatedAt    time.Time
	MessageCount int
}
