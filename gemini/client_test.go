package gemini_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/metachat"
	"github.com/fwojciec/metachat/gemini"
)

func TestConvertMessages(t *testing.T) {
	t.Parallel()

	contents := gemini.ConvertMessages([]metachat.Message{
		metachat.UserMessage{Content: "hi"},
		metachat.AssistantMessage{Content: "hello"},
		metachat.MetaMessage{Content: "be brief"},
	})

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "hi", contents[0].Parts[0].Text)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "hello", contents[1].Parts[0].Text)
	// Supervisory advice reaches the backend as a user-role turn.
	assert.Equal(t, "user", contents[2].Role)
	assert.Equal(t, "be brief", contents[2].Parts[0].Text)
}

func TestConvertMessages_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, gemini.ConvertMessages(nil))
}
