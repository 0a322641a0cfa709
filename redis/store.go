// Package redis implements a Redis-backed [metachat.SessionStore] using
// go-redis. Sessions are stored as JSON documents in the v1 envelope format
// shared with the file store; appends use WATCH/MULTI/EXEC so a concurrent
// reader of the same id observes either the pre-turn or the post-turn state.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fwojciec/metachat"
	mcjson "github.com/fwojciec/metachat/json"
)

// keyPrefix namespaces session keys.
const keyPrefix = "metachat:session:"

// Interface compliance check.
var _ metachat.SessionStore = (*Store)(nil)

// Store is a Redis-backed session store.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// Option configures a [Store].
type Option func(*Store)

// WithTTL sets an expiry on session keys, refreshed on every write. The
// default is no expiry: sessions are deleted only explicitly.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// NewStore creates a Store backed by the given Redis client.
func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create persists a new empty session.
func (s *Store) Create(ctx context.Context, id string, labels metachat.RoleLabels, pair metachat.PromptPair) (metachat.Session, error) {
	if id == "" {
		return metachat.Session{}, fmt.Errorf("session id must not be empty: %w", metachat.ErrValidation)
	}
	now := time.Now()
	sess := metachat.Session{
		ID:         id,
		RoleLabels: labels,
		PromptPair: pair,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	data, err := mcjson.MarshalSession(sess)
	if err != nil {
		return metachat.Session{}, fmt.Errorf("marshal session: %v: %w", err, metachat.ErrPersistence)
	}
	ok, err := s.client.SetNX(ctx, s.key(id), data, s.ttl).Result()
	if err != nil {
		return metachat.Session{}, fmt.Errorf("redis setnx: %v: %w", err, metachat.ErrPersistence)
	}
	if !ok {
		return metachat.Session{}, fmt.Errorf("session %q: %w", id, metachat.ErrAlreadyExists)
	}
	return sess, nil
}

// Get returns the session with the given id.
func (s *Store) Get(ctx context.Context, id string) (metachat.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return metachat.Session{}, fmt.Errorf("session %q: %w", id, metachat.ErrNotFound)
	}
	if err != nil {
		return metachat.Session{}, fmt.Errorf("redis get: %v: %w", err, metachat.ErrPersistence)
	}
	sess, err := mcjson.UnmarshalSession([]byte(val))
	if err != nil {
		return metachat.Session{}, fmt.Errorf("session %q: %v: %w", id, err, metachat.ErrPersistence)
	}
	return sess, nil
}

// AppendTurn appends a completed turn and returns the post-turn state. The
// update runs under WATCH so a concurrent write to the same id aborts the
// transaction rather than losing messages.
func (s *Store) AppendTurn(ctx context.Context, id string, turn metachat.Turn) (metachat.Session, error) {
	key := s.key(id)
	var updated metachat.Session
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("session %q: %w", id, metachat.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("redis get: %v: %w", err, metachat.ErrPersistence)
		}
		sess, err := mcjson.UnmarshalSession([]byte(val))
		if err != nil {
			return fmt.Errorf("session %q: %v: %w", id, err, metachat.ErrPersistence)
		}
		sess.Messages = append(sess.Messages, turn.Messages()...)
		sess.UpdatedAt = time.Now()
		data, err := mcjson.MarshalSession(sess)
		if err != nil {
			return fmt.Errorf("marshal session: %v: %w", err, metachat.ErrPersistence)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return fmt.Errorf("redis set: %v: %w", err, metachat.ErrPersistence)
		}
		updated = sess
		return nil
	}, key)
	if err != nil {
		return metachat.Session{}, err
	}
	return updated, nil
}

// List returns summaries of all sessions, ordered by creation time.
func (s *Store) List(ctx context.Context) ([]metachat.SessionSummary, error) {
	var summaries []metachat.SessionSummary
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		sess, err := s.Get(ctx, strings.TrimPrefix(iter.Val(), keyPrefix))
		if errors.Is(err, metachat.ErrNotFound) {
			continue // expired or deleted mid-scan
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, metachat.SessionSummary{
			ID:           sess.ID,
			CreatedAt:    sess.CreatedAt,
			MessageCount: len(sess.Messages),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %v: %w", err, metachat.ErrPersistence)
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
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %v: %w", err, metachat.ErrPersistence)
	}
	return nil
}

func (s *Store) key(id string) string {
	return keyPrefix + id
}
