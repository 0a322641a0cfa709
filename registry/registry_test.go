package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/metachat"
	"github.com/fwojciec/metachat/registry"
)

func TestRegistry_Register(t *testing.T) {
	t.Parallel()
	t.Run("registers and retrieves a prompt", func(t *testing.T) {
		t.Parallel()
		r := registry.New()
		p := metachat.SystemPrompt{ID: 7, Name: "Advisor", Message: "Advise.", Model: "gpt-4o"}
		require.NoError(t, r.Register(p))
		got, err := r.Get(7)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("duplicate id fails and keeps the first registration", func(t *testing.T) {
		t.Parallel()
		r := registry.New()
		first := metachat.SystemPrompt{ID: 1, Name: "First", Message: "one", Model: "gpt-4o"}
		require.NoError(t, r.Register(first))
		err := r.Register(metachat.SystemPrompt{ID: 1, Name: "Second", Message: "two", Model: "gpt-4o"})
		assert.ErrorIs(t, err, metachat.ErrDuplicateID)
		got, err := r.Get(1)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	})
}

func TestRegistry_Get_NotFound(t *testing.T) {
	t.Parallel()
	r := registry.New()
	_, err := r.Get(42)
	assert.ErrorIs(t, err, metachat.ErrNotFound)
}

func TestRegistry_List_InsertionOrder(t *testing.T) {
	t.Parallel()
	r := registry.New()
	require.NoError(t, r.Register(metachat.SystemPrompt{ID: 3, Name: "c"}))
	require.NoError(t, r.Register(metachat.SystemPrompt{ID: 1, Name: "a"}))
	require.NoError(t, r.Register(metachat.SystemPrompt{ID: 2, Name: "b"}))
	var ids []int
	for _, p := range r.List() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int{3, 1, 2}, ids)
}

func TestNew_SeedsDefaults(t *testing.T) {
	t.Parallel()
	r := registry.New(metachat.DefaultPrompts()...)
	assert.Len(t, r.List(), 4)
	p, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Sales Manager Advisor", p.Name)
}

func TestNew_PanicsOnDuplicateSeed(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		registry.New(
			metachat.SystemPrompt{ID: 1, Name: "a"},
			metachat.SystemPrompt{ID: 1, Name: "b"},
		)
	})
}
