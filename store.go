package metachat

import "context"

// SessionStore persists conversation sessions keyed by session id. Any
// keyed document backend satisfying these operations and the AppendTurn
// atomicity guarantee is substitutable; the persisted representation is
// opaque to the core.
type SessionStore interface {
	// Create persists a new empty session. It fails with ErrAlreadyExists
	// if the id is in use.
	Create(ctx context.Context, id string, labels RoleLabels, pair PromptPair) (Session, error)

	// Get returns the session with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)

	// AppendTurn appends a completed turn to the session and returns the
	// post-turn state. The append is atomic with respect to readers of the
	// same id: a concurrent reader observes either the pre-turn or the
	// post-turn state, never a partial turn.
	AppendTurn(ctx context.Context, id string, turn Turn) (Session, error)

	// List returns summaries of all sessions.
	List(ctx context.Context) ([]SessionSummary, error)

	// Delete removes the session with the given id. It is idempotent: a
	// missing id is not an error.
	Delete(ctx context.Context, id string) error
}
