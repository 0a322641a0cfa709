// Package registry provides the in-memory implementation of
// [metachat.PromptRegistry].
package registry

import (
	"fmt"
	"sync"

	"github.com/fwojciec/metachat"
)

// Interface compliance check.
var _ metachat.PromptRegistry = (*Registry)(nil)

// Registry is an insertion-ordered, in-memory prompt registry. It is safe
// for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byID  map[int]metachat.SystemPrompt
	order []int
}

// New creates a Registry seeded with the given prompts. It panics on a
// duplicate seed id, which is a startup configuration error.
func New(seed ...metachat.SystemPrompt) *Registry {
	r := &Registry{byID: make(map[int]metachat.SystemPrompt, len(seed))}
	for _, p := range seed {
		if err := r.Register(p); err != nil {
			panic(fmt.Sprintf("registry: seed prompt %d: %v", p.ID, err))
		}
	}
	return r
}

// Register adds a prompt. It returns metachat.ErrDuplicateID if the id is
// already present; the existing registration is left unchanged.
func (r *Registry) Register(p metachat.SystemPrompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; ok {
		return fmt.Errorf("prompt %d: %w", p.ID, metachat.ErrDuplicateID)
	}
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Get returns the prompt with the given id, or metachat.ErrNotFound.
func (r *Registry) Get(id int) (metachat.SystemPrompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return metachat.SystemPrompt{}, fmt.Errorf("prompt %d: %w", id, metachat.ErrNotFound)
	}
	return p, nil
}

// List returns all prompts in insertion order.
func (r *Registry) List() []metachat.SystemPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]metachat.SystemPrompt, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
