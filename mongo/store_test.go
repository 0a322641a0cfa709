package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fwojciec/metachat"
	"github.com/fwojciec/metachat/mongo"
)

// newTestStore connects to the MongoDB instance named by MONGO_URI, skipping
// the test when none is configured. Each test uses its own collection.
func newTestStore(t *testing.T) *mongo.Store {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	client, err := driver.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database("metachat_test")
	coll := "sessions_" + t.Name()
	t.Cleanup(func() {
		_ = db.Collection(coll).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return mongo.NewStore(db, mongo.WithCollection(coll))
}

func testTurn(user, advice, reply string) metachat.Turn {
	now := time.Now()
	return metachat.Turn{
		User:      metachat.UserMessage{Content: user, Timestamp: now},
		Meta:      metachat.MetaMessage{Content: advice, Timestamp: now},
		Assistant: metachat.AssistantMessage{Content: reply, Timestamp: now},
	}
}

func TestStore_CreateGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	labels := metachat.RoleLabels{User: "Inquirer", Assistant: "Sales Assistant"}
	pair := metachat.PromptPair{Meta: 1, Enhanced: 2}
	created, err := store.Create(ctx, "s1", labels, pair)
	require.NoError(t, err)
	assert.Equal(t, "s1", created.ID)

	_, err = store.Create(ctx, "s1", labels, pair)
	assert.ErrorIs(t, err, metachat.ErrAlreadyExists)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, labels, got.RoleLabels)
	assert.Equal(t, pair, got.PromptPair)
	assert.Empty(t, got.Messages)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, metachat.ErrNotFound)

	// Deleting a missing session is not an error.
	assert.NoError(t, store.Delete(ctx, "s1"))
}

func TestStore_AppendTurn(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "s1", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
	require.NoError(t, err)

	updated, err := store.AppendTurn(ctx, "s1", testTurn("hi", "be brief", "hello"))
	require.NoError(t, err)
	require.Len(t, updated.Messages, 3)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "hi", got.Messages[0].(metachat.UserMessage).Content)
	assert.Equal(t, "be brief", got.Messages[1].(metachat.MetaMessage).Content)
	assert.Equal(t, "hello", got.Messages[2].(metachat.AssistantMessage).Content)
}

func TestStore_AppendTurn_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.AppendTurn(context.Background(), "missing", testTurn("a", "b", "c"))
	assert.ErrorIs(t, err, metachat.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "a", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
	require.NoError(t, err)
	_, err = store.Create(ctx, "b", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
	require.NoError(t, err)
	_, err = store.AppendTurn(ctx, "b", testTurn("hi", "advice", "reply"))
	require.NoError(t, err)

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "a", summaries[0].ID)
	assert.Equal(t, 0, summaries[0].MessageCount)
	assert.Equal(t, "b", summaries[1].ID)
	assert.Equal(t, 3, summaries[1].MessageCount)
}
