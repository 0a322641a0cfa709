// Package memory implements an in-memory [metachat.SessionStore]. It is
// useful for tests and as an ephemeral backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fwojciec/metachat"
)

// Interface compliance check.
var _ metachat.SessionStore = (*Store)(nil)

// Store is an in-memory session store. It is safe for concurrent use and
// returns defensive copies so callers never share message slices with the
// store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]metachat.Session
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]metachat.Session)}
}

// Create persists a new empty session.
func (s *Store) Create(ctx context.Context, id string, labels metachat.RoleLabels, pair metachat.PromptPair) (metachat.Session, error) {
	if id == "" {
		return metachat.Session{}, fmt.Errorf("session id must not be empty: %w", metachat.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		return metachat.Session{}, fmt.Errorf("session %q: %w", id, metachat.ErrAlreadyExists)
	}
	now := time.Now()
	sess := metachat.Session{
		ID:         id,
		RoleLabels: labels,
		PromptPair: pair,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.sessions[id] = sess
	return copySession(sess), nil
}

// Get returns the session with the given id.
func (s *Store) Get(ctx context.Context, id string) (metachat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return metachat.Session{}, fmt.Errorf("session %q: %w", id, metachat.ErrNotFound)
	}
	return copySession(sess), nil
}

// AppendTurn appends a completed turn and returns the post-turn state.
func (s *Store) AppendTurn(ctx context.Context, id string, turn metachat.Turn) (metachat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return metachat.Session{}, fmt.Errorf("session %q: %w", id, metachat.ErrNotFound)
	}
	sess.Messages = append(sess.Messages, turn.Messages()...)
	sess.UpdatedAt = time.Now()
	s.sessions[id] = sess
	return copySession(sess), nil
}

// List returns summaries of all sessions, ordered by creation time.
func (s *Store) List(ctx context.Context) ([]metachat.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]metachat.SessionSummary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		summaries = append(summaries, metachat.SessionSummary{
			ID:           sess.ID,
			CreatedAt:    sess.CreatedAt,
			MessageCount: len(sess.Messages),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func copySession(sess metachat.Session) metachat.Session {
	out := sess
	out.Messages = make([]metachat.Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return out
}
