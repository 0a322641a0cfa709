package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/metachat"
)

// envelope is the v1 wire format for a persisted session.
type envelope struct {
	Version    int           `json:"version"`
	ID         string        `json:"id"`
	RoleLabels roleLabelsDTO `json:"role_labels"`
	PromptPair promptPairDTO `json:"prompt_pair"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Messages   []messageDTO  `json:"messages"`
}

type roleLabelsDTO struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

type promptPairDTO struct {
	Meta     int `json:"meta"`
	Enhanced int `json:"enhanced"`
}

// messageDTO is the JSON representation of a Message with a role
// discriminator.
type messageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalSession serializes a Session to JSON in v1 envelope format.
func MarshalSession(s metachat.Session) ([]byte, error) {
	env := envelope{
		Version:    1,
		ID:         s.ID,
		RoleLabels: roleLabelsDTO{User: s.RoleLabels.User, Assistant: s.RoleLabels.Assistant},
		PromptPair: promptPairDTO{Meta: s.PromptPair.Meta, Enhanced: s.PromptPair.Enhanced},
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		Messages:   make([]messageDTO, len(s.Messages)),
	}
	for i, msg := range s.Messages {
		dto, err := marshalMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		env.Messages[i] = dto
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSession deserializes a Session from JSON in v1 envelope format.
func UnmarshalSession(data []byte) (metachat.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return metachat.Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return metachat.Session{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]metachat.Message, len(env.Messages))
	for i, dto := range env.Messages {
		msg, err := unmarshalMessage(dto)
		if err != nil {
			return metachat.Session{}, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = msg
	}
	return metachat.Session{
		ID:         env.ID,
		RoleLabels: metachat.RoleLabels{User: env.RoleLabels.User, Assistant: env.RoleLabels.Assistant},
		PromptPair: metachat.PromptPair{Meta: env.PromptPair.Meta, Enhanced: env.PromptPair.Enhanced},
		CreatedAt:  env.CreatedAt,
		UpdatedAt:  env.UpdatedAt,
		Messages:   msgs,
	}, nil
}

func marshalMessage(msg metachat.Message) (messageDTO, error) {
	switch m := msg.(type) {
	case metachat.UserMessage:
		return messageDTO{Role: string(metachat.RoleUser), Content: m.Content, Timestamp: m.Timestamp}, nil
	case metachat.AssistantMessage:
		return messageDTO{Role: string(metachat.RoleAssistant), Content: m.Content, Timestamp: m.Timestamp}, nil
	case metachat.MetaMessage:
		return messageDTO{Role: string(metachat.RoleMeta), Content: m.Content, Timestamp: m.Timestamp}, nil
	default:
		return messageDTO{}, fmt.Errorf("unknown message type: %T", msg)
	}
}

func unmarshalMessage(dto messageDTO) (metachat.Message, error) {
	switch metachat.Role(dto.Role) {
	case metachat.RoleUser:
		return metachat.UserMessage{Content: dto.Content, Timestamp: dto.Timestamp}, nil
	case metachat.RoleAssistant:
		return metachat.AssistantMessage{Content: dto.Content, Timestamp: dto.Timestamp}, nil
	case metachat.RoleMeta:
		return metachat.MetaMessage{Content: dto.Content, Timestamp: dto.Timestamp}, nil
	default:
		return nil, fmt.Errorf("unknown message role: %q", dto.Role)
	}
}
