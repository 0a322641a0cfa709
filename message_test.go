package metachat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fwojciec/metachat"
)

func TestMessage_Roles(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tests := []struct {
		name string
		msg  metachat.Message
		want metachat.Role
	}{
		{"user", metachat.UserMessage{Content: "hello", Timestamp: now}, metachat.RoleUser},
		{"assistant", metachat.AssistantMessage{Content: "hi", Timestamp: now}, metachat.RoleAssistant},
		{"meta", metachat.MetaMessage{Content: "advice", Timestamp: now}, metachat.RoleMeta},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.msg.Role())
		})
	}
}

func TestMessageTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	messages := []metachat.Message{
		metachat.UserMessage{Content: "hello"},
		metachat.AssistantMessage{Content: "hi"},
		metachat.MetaMessage{Content: "advice"},
	}
	for _, msg := range messages {
		switch msg.(type) {
		case metachat.UserMessage, metachat.AssistantMessage, metachat.MetaMessage:
		default:
			t.Fatalf("unexpected message type: %T", msg)
		}
	}
}

func TestDefaultPrompts(t *testing.T) {
	t.Parallel()
	prompts := metachat.DefaultPrompts()
	assert.Len(t, prompts, 4)
	ids := make(map[int]bool)
	for _, p := range prompts {
		assert.False(t, ids[p.ID], "duplicate prompt id %d", p.ID)
		ids[p.ID] = true
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Message)
		assert.Equal(t, metachat.DefaultModel, p.Model)
	}
}
