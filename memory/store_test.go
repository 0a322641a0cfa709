package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/metachat"
	"github.com/fwojciec/metachat/memory"
)

func testTurn(user, advice, reply string) metachat.Turn {
	now := time.Now()
	return metachat.Turn{
		User:      metachat.UserMessage{Content: user, Timestamp: now},
		Meta:      metachat.MetaMessage{Content: advice, Timestamp: now},
		Assistant: metachat.AssistantMessage{Content: reply, Timestamp: now},
	}
}

func TestStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("creates an empty session", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := memory.NewStore()
		labels := metachat.RoleLabels{User: "Inquirer", Assistant: "Sales Assistant"}
		pair := metachat.PromptPair{Meta: 1, Enhanced: 2}

		created, err := store.Create(ctx, "s1", labels, pair)
		require.NoError(t, err)
		assert.Equal(t, "s1", created.ID)
		assert.Empty(t, created.Messages)

		got, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, labels, got.RoleLabels)
		assert.Equal(t, pair, got.PromptPair)
	})

	t.Run("fails when the session already exists", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := memory.NewStore()
		_, err := store.Create(ctx, "s1", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
		require.NoError(t, err)
		_, err = store.Create(ctx, "s1", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
		assert.ErrorIs(t, err, metachat.ErrAlreadyExists)
	})

	t.Run("rejects an empty id", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		_, err := store.Create(context.Background(), "", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
		assert.ErrorIs(t, err, metachat.ErrValidation)
	})
}

func TestStore_Get_NotFound(t *testing.T) {
	t.Parallel()
	store := memory.NewStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, metachat.ErrNotFound)
}

func TestStore_AppendTurn(t *testing.T) {
	t.Parallel()

	t.Run("appends three messages in order", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := memory.NewStore()
		_, err := store.Create(ctx, "s1", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
		require.NoError(t, err)

		updated, err := store.AppendTurn(ctx, "s1", testTurn("hi", "be brief", "hello"))
		require.NoError(t, err)
		require.Len(t, updated.Messages, 3)
		assert.Equal(t, "hi", updated.Messages[0].(metachat.UserMessage).Content)
		assert.Equal(t, "be brief", updated.Messages[1].(metachat.MetaMessage).Content)
		assert.Equal(t, "hello", updated.Messages[2].(metachat.AssistantMessage).Content)
	})

	t.Run("fails for a missing session", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStore()
		_, err := store.AppendTurn(context.Background(), "missing", testTurn("a", "b", "c"))
		assert.ErrorIs(t, err, metachat.ErrNotFound)
	})

	t.Run("returned sessions do not share message slices with the store", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := memory.NewStore()
		_, err := store.Create(ctx, "s1", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
		require.NoError(t, err)
		got, err := store.AppendTurn(ctx, "s1", testTurn("hi", "advice", "hello"))
		require.NoError(t, err)

		got.Messages[0] = metachat.UserMessage{Content: "mutated"}
		fresh, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "hi", fresh.Messages[0].(metachat.UserMessage).Content)
	})
}

func TestStore_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewStore()
	summaries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	_, err = store.Create(ctx, "a", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
	require.NoError(t, err)
	_, err = store.Create(ctx, "b", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
	require.NoError(t, err)
	_, err = store.AppendTurn(ctx, "b", testTurn("hi", "advice", "reply"))
	require.NoError(t, err)

	summaries, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "a", summaries[0].ID)
	assert.Equal(t, 0, summaries[0].MessageCount)
	assert.Equal(t, "b", summaries[1].ID)
	assert.Equal(t, 3, summaries[1].MessageCount)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewStore()
	_, err := store.Create(ctx, "s1", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, metachat.ErrNotFound)
	assert.NoError(t, store.Delete(ctx, "s1"))
}

func TestStore_ConcurrentAppends(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewStore()
	_, err := store.Create(ctx, "s1", metachat.DefaultRoleLabels(), metachat.PromptPair{Meta: 1, Enhanced: 2})
	require.NoError(t, err)

	const turns = 10
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AppendTurn(ctx, "s1", testTurn("hi", "advice", "reply"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, sess.Messages, 3*turns)
}
