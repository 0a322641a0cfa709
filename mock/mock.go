// Package mock provides test doubles for metachat interfaces using
// function fields.
package mock

import (
	"context"

	"github.com/fwojciec/metachat"
)

// Interface compliance checks.
var (
	_ metachat.Completer      = (*Completer)(nil)
	_ metachat.SessionStore   = (*SessionStore)(nil)
	_ metachat.PromptRegistry = (*PromptRegistry)(nil)
)

// Completer is a test double for metachat.Completer.
// Set CompleteFn before calling Complete.
type Completer struct {
	CompleteFn func(ctx context.Context, req metachat.Request) (string, error)
}

// Complete delegates to CompleteFn.
func (c *Completer) Complete(ctx context.Context, req metachat.Request) (string, error) {
	return c.CompleteFn(ctx, req)
}

// SessionStore is a test double for metachat.SessionStore.
// Set the function fields for the methods you need.
type SessionStore struct {
	CreateFn     func(ctx context.Context, id string, labels metachat.RoleLabels, pair metachat.PromptPair) (metachat.Session, error)
	GetFn        func(ctx context.Context, id string) (metachat.Session, error)
	AppendTurnFn func(ctx context.Context, id string, turn metachat.Turn) (metachat.Session, error)
	ListFn       func(ctx context.Context) ([]metachat.SessionSummary, error)
	DeleteFn     func(ctx context.Context, id string) error
}

// Create delegates to CreateFn.
func (s *SessionStore) Create(ctx context.Context, id string, labels metachat.RoleLabels, pair metachat.PromptPair) (metachat.Session, error) {
	return s.CreateFn(ctx, id, labels, pair)
}

// Get delegates to GetFn.
func (s *SessionStore) Get(ctx context.Context, id string) (metachat.Session, error) {
	return s.GetFn(ctx, id)
}

// AppendTurn delegates to AppendTurnFn.
func (s *SessionStore) AppendTurn(ctx context.Context, id string, turn metachat.Turn) (metachat.Session, error) {
	return s.AppendTurnFn(ctx, id, turn)
}

// List delegates to ListFn.
func (s *SessionStore) List(ctx context.Context) ([]metachat.SessionSummary, error) {
	return s.ListFn(ctx)
}

// Delete delegates to DeleteFn.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.DeleteFn(ctx, id)
}

// PromptRegistry is a test double for metachat.PromptRegistry.
// Set the function fields for the methods you need.
type PromptRegistry struct {
	RegisterFn func(p metachat.SystemPrompt) error
	GetFn      func(id int) (metachat.SystemPrompt, error)
	ListFn     func() []metachat.SystemPrompt
}

// Register delegates to RegisterFn.
func (r *PromptRegistry) Register(p metachat.SystemPrompt) error {
	return r.RegisterFn(p)
}

// Get delegates to GetFn.
func (r *PromptRegistry) Get(id int) (metachat.SystemPrompt, error) {
	return r.GetFn(id)
}

// List delegates to ListFn.
func (r *PromptRegistry) List() []metachat.SystemPrompt {
	return r.ListFn()
}
