package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/metachat"
	"github.com/fwojciec/metachat/redis"
)

// newTestStore connects to the Redis instance named by REDIS_ADDR, skipping
// the test when none is configured.
func newTestStore(t *testing.T) *redis.Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewStore(client)
}

// cleanupSession removes a session after the test regardless of outcome.
func cleanupSession(t *testing.T, store *redis.Store, id string) {
	t.Helper()
	t.Cleanup(func() { _ = store.Delete(context.Background(), id) })
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
	id := "test-create-" + t.Name()
	cleanupSession(t, store, id)

	labels := metachat.RoleLabels{User: "Inquirer", Assistant: "Sales Assistant"}
	pair := metachat.PromptPair{Meta: 1, Enhanced: 2}
	created, err := store.Create(ctx, id, labels, pair)
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)

	_, err = store.Create(ctx, id, labels, pair)
	assert.ErrorIs(t, err, metachat.ErrAlreadyExists)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, labels, got.RoleLabels)
	assert.Equal(t, pair, got.PromptPair)
	assert.Empty(t, got.Messages)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, metachat.ErrNotFound)

	// Deleting a missing session is not an error.
	assert.NoError(t, store.Delete(ctx, id))
}

func TestStore_AppendTurn(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := "test-append-" + t.Name()
	cleanupSession(t, store, id)

	_, err := store.Create(ctx, id, metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
	require.NoError(t, err)

	updated, err := store.AppendTurn(ctx, id, testTurn("hi", "be brief", "hello"))
	require.NoError(t, err)
	require.Len(t, updated.Messages, 3)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "hi", got.Messages[0].(metachat.UserMessage).Content)
	assert.Equal(t, "be brief", got.Messages[1].(metachat.MetaMessage).Content)
	assert.Equal(t, "hello", got.Messages[2].(metachat.AssistantMessage).Content)
}

func TestStore_AppendTurn_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.AppendTurn(context.Background(), "test-missing-session", testTurn("a", "b", "c"))
	assert.ErrorIs(t, err, metachat.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := "test-list-" + t.Name()
	cleanupSession(t, store, id)

	_, err := store.Create(ctx, id, metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
	require.NoError(t, err)

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	var found bool
	for _, s := range summaries {
		if s.ID == id {
			found = true
			assert.Equal(t, 0, s.MessageCount)
		}
	}
	assert.True(t, found, "created session missing from listing")
}
