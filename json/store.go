// Package json implements a file-backed [metachat.SessionStore] that keeps
// one JSON document per session under a data directory. Writes go through a
// temp file and an atomic rename, and a per-session lock serializes appends
// to the same id without blocking other sessions.
package json

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/metachat"
)

// Interface compliance check.
var _ metachat.SessionStore = (*Store)(nil)

// Store is a file-backed session store rooted at a data directory.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a Store rooted at dir. The directory is created on first
// write.
func NewStore(dir string) *Store {
	return &Store{dir: dir, locks: make(map[string]*sync.Mutex)}
}

// Create persists a new empty session.
func (s *Store) Create(ctx context.Context, id string, labels metachat.RoleLabels, pair metachat.PromptPair) (metachat.Session, error) {
	if err := validateID(id); err != nil {
		return metachat.Session{}, err
	}
	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(s.path(id)); err == nil {
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
	if err := s.save(sess); err != nil {
		return metachat.Session{}, err
	}
	return sess, nil
}

// Get returns the session with the given id.
func (s *Store) Get(ctx context.Context, id string) (metachat.Session, error) {
	if err := validateID(id); err != nil {
		return metachat.Session{}, err
	}
	return s.load(id)
}

// AppendTurn appends a completed turn and returns the post-turn state.
func (s *Store) AppendTurn(ctx context.Context, id string, turn metachat.Turn) (metachat.Session, error) {
	if err := validateID(id); err != nil {
		return metachat.Session{}, err
	}
	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.load(id)
	if err != nil {
		return metachat.Session{}, err
	}
	sess.Messages = append(sess.Messages, turn.Messages()...)
	sess.UpdatedAt = time.Now()
	if err := s.save(sess); err != nil {
		return metachat.Session{}, err
	}
	return sess, nil
}

// List returns summaries of all sessions, ordered by creation time.
func (s *Store) List(ctx context.Context) ([]metachat.SessionSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data directory: %v: %w", err, metachat.ErrPersistence)
	}
	var summaries []metachat.SessionSummary
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		sess, err := s.load(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			return nil, err
		}
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
	if err := validateID(id); err != nil {
		return err
	}
	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %v: %w", err, metachat.ErrPersistence)
	}
	return nil
}

// lock returns the mutex guarding the given session id, allocating it on
// first use.
func (s *Store) lock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) load(id string) (metachat.Session, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return metachat.Session{}, fmt.Errorf("session %q: %w", id, metachat.ErrNotFound)
	}
	if err != nil {
		return metachat.Session{}, fmt.Errorf("read session file: %v: %w", err, metachat.ErrPersistence)
	}
	sess, err := UnmarshalSession(data)
	if err != nil {
		return metachat.Session{}, fmt.Errorf("session %q: %v: %w", id, err, metachat.ErrPersistence)
	}
	return sess, nil
}

// save writes the session to a temp file and renames it into place so
// readers never observe a partially written document.
func (s *Store) save(sess metachat.Session) error {
	data, err := MarshalSession(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %v: %w", err, metachat.ErrPersistence)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %v: %w", err, metachat.ErrPersistence)
	}
	path := s.path(sess.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %v: %w", err, metachat.ErrPersistence)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %v: %w", err, metachat.ErrPersistence)
	}
	return nil
}

// validateID rejects ids that would escape the data directory or collide
// with temp files.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("session id must not be empty: %w", metachat.ErrValidation)
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("session id %q contains path elements: %w", id, metachat.ErrValidation)
	}
	return nil
}
