// Package pipeline orchestrates the two-stage completion flow: a meta pass
// that produces supervisory advice from the conversation history, and an
// enhanced pass that produces the user-facing reply conditioned on that
// advice. A successful run commits the (user, meta, assistant) turn to the
// session store as a single operation; a failed run commits nothing.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fwojciec/metachat"
)

// defaultAdviceLimit bounds advice length so context growth stays bounded
// across turns.
const defaultAdviceLimit = 4096

// Orchestrator runs the meta pipeline against a session store, a prompt
// registry, and a completion gateway.
type Orchestrator struct {
	store       metachat.SessionStore
	registry    metachat.PromptRegistry
	completer   metachat.Completer
	logger      *zap.Logger
	attempts    int
	backoff     time.Duration
	adviceLimit int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithRetry enables retries of retryable gateway errors (transient,
// rate_limited) with linear backoff. attempts is the total number of tries
// per gateway call. Default is a single attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(o *Orchestrator) {
		o.attempts = attempts
		o.backoff = backoff
	}
}

// WithAdviceLimit bounds the meta pass output to n runes; longer advice is
// truncated before injection and persistence. n <= 0 disables the bound.
func WithAdviceLimit(n int) Option {
	return func(o *Orchestrator) { o.adviceLimit = n }
}

// New creates an Orchestrator with the given collaborators and options.
func New(store metachat.SessionStore, registry metachat.PromptRegistry, completer metachat.Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		registry:    registry,
		completer:   completer,
		logger:      zap.NewNop(),
		attempts:    1,
		backoff:     time.Second,
		adviceLimit: defaultAdviceLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result carries the outputs of a pipeline run.
type Result struct {
	Reply  string
	Advice string
}

// HandleMessage runs the two-stage pipeline for one user message. The
// session must already exist. On success the completed turn has been
// committed and the session's message count has grown by exactly three; on
// any failure nothing has been persisted and the returned error is a
// *StageError wrapping the cause.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID, userText string) (Result, error) {
	sess, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return Result{}, &StageError{Stage: StageLoad, Err: err}
	}
	metaPrompt, err := o.registry.Get(sess.PromptPair.Meta)
	if err != nil {
		return Result{}, &StageError{Stage: StageLoad, Err: err}
	}
	enhancedPrompt, err := o.registry.Get(sess.PromptPair.Enhanced)
	if err != nil {
		return Result{}, &StageError{Stage: StageLoad, Err: err}
	}

	userMsg := metachat.UserMessage{Content: userText, Timestamp: time.Now()}

	advice, err := o.complete(ctx, metachat.Request{
		Model:        metaPrompt.Model,
		SystemPrompt: metaPrompt.Message,
		Messages:     metaContext(sess, userMsg),
	})
	if err != nil {
		return Result{}, &StageError{Stage: StageMeta, Err: err}
	}
	advice = o.boundAdvice(sessionID, advice)
	metaMsg := metachat.MetaMessage{Content: advice, Timestamp: time.Now()}

	reply, err := o.complete(ctx, metachat.Request{
		Model:        enhancedPrompt.Model,
		SystemPrompt: enhancedPrompt.Message,
		Messages:     enhancedContext(sess, userMsg, metaMsg),
	})
	if err != nil {
		return Result{}, &StageError{Stage: StageEnhanced, Err: err}
	}

	turn := metachat.Turn{
		User:      userMsg,
		Meta:      metaMsg,
		Assistant: metachat.AssistantMessage{Content: reply, Timestamp: time.Now()},
	}
	if _, err := o.store.AppendTurn(ctx, sessionID, turn); err != nil {
		return Result{}, &StageError{Stage: StageCommit, Err: err}
	}
	o.logger.Debug("turn committed",
		zap.String("session_id", sessionID),
		zap.Int("advice_len", len(advice)),
		zap.Int("reply_len", len(reply)))
	return Result{Reply: reply, Advice: advice}, nil
}

// CreateSession creates a new session after validating the prompt pair
// against the registry.
func (o *Orchestrator) CreateSession(ctx context.Context, id string, labels metachat.RoleLabels, pair metachat.PromptPair) (metachat.Session, error) {
	if err := pair.Validate(); err != nil {
		return metachat.Session{}, err
	}
	if _, err := o.registry.Get(pair.Meta); err != nil {
		return metachat.Session{}, fmt.Errorf("meta prompt: %w", err)
	}
	if _, err := o.registry.Get(pair.Enhanced); err != nil {
		return metachat.Session{}, fmt.Errorf("enhanced prompt: %w", err)
	}
	return o.store.Create(ctx, id, labels, pair)
}

// ListSessions returns summaries of all sessions.
func (o *Orchestrator) ListSessions(ctx context.Context) ([]metachat.SessionSummary, error) {
	return o.store.List(ctx)
}

// DeleteSession removes a session. Deleting a missing session is not an
// error.
func (o *Orchestrator) DeleteSession(ctx context.Context, id string) error {
	return o.store.Delete(ctx, id)
}

// complete invokes the gateway, retrying retryable failures when retries
// are configured. The context deadline spans all attempts.
func (o *Orchestrator) complete(ctx context.Context, req metachat.Request) (string, error) {
	for attempt := 1; ; attempt++ {
		text, err := o.completer.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		ge, ok := metachat.AsGatewayError(err)
		if !ok || !ge.Retryable() || attempt >= o.attempts {
			return "", err
		}
		o.logger.Warn("retrying gateway call",
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(o.backoff * time.Duration(attempt)):
		}
	}
}

// boundAdvice truncates advice that exceeds the configured limit.
func (o *Orchestrator) boundAdvice(sessionID, advice string) string {
	if o.adviceLimit <= 0 {
		return advice
	}
	runes := []rune(advice)
	if len(runes) <= o.adviceLimit {
		return advice
	}
	o.logger.Warn("advice truncated",
		zap.String("session_id", sessionID),
		zap.Int("limit", o.adviceLimit),
		zap.Int("length", len(runes)))
	return string(runes[:o.adviceLimit])
}

// metaContext builds the stage-1 input: the role-labeled transcript of the
// visible history with the new user message as the latest labeled turn,
// presented as a single user-role message for the supervisory model.
func metaContext(sess metachat.Session, userMsg metachat.UserMessage) []metachat.Message {
	transcript := sess.Transcript(userMsg)
	return []metachat.Message{
		metachat.UserMessage{
			Content:   "The conversation so far:\n\n" + transcript,
			Timestamp: userMsg.Timestamp,
		},
	}
}

// enhancedContext builds the stage-2 input: the visible history as
// structured turns, the new user message, and the advice injected as a
// meta-role message immediately preceding the point where the reply is
// generated. Prior meta messages are never replayed.
func enhancedContext(sess metachat.Session, userMsg metachat.UserMessage, metaMsg metachat.MetaMessage) []metachat.Message {
	msgs := sess.Visible()
	msgs = append(msgs, userMsg)
	msgs = append(msgs, metachat.MetaMessage{
		Content:   frameAdvice(metaMsg.Content),
		Timestamp: metaMsg.Timestamp,
	})
	return msgs
}

// frameAdvice wraps supervisory advice so the enhanced model can tell it
// apart from customer text when it reaches the backend as a user-role turn.
// The persisted meta message keeps the advice verbatim; framing is a
// serialization concern of the transient context only.
func frameAdvice(advice string) string {
	return "You have received the following advice from your supervisor:\n\n" + advice
}
