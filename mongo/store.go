// Package mongo implements a MongoDB-backed [metachat.SessionStore] using
// the official driver. Each session is a single document, so AppendTurn
// rides on MongoDB's single-document atomicity: a concurrent reader of the
// same id observes either the pre-turn or the post-turn document.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fwojciec/metachat"
)

const defaultCollection = "sessions"

// Interface compliance check.
var _ metachat.SessionStore = (*Store)(nil)

// sessionDoc is the persisted form of a session. The session id doubles as
// the document id, which makes Create conflict detection a unique-key
// insert.
type sessionDoc struct {
	ID             string       `bson:"_id"`
	UserLabel      string       `bson:"user_label"`
	AssistantLabel string       `bson:"assistant_label"`
	MetaPrompt     int          `bson:"meta_prompt"`
	EnhancedPrompt int          `bson:"enhanced_prompt"`
	CreatedAt      time.Time    `bson:"created_at"`
	UpdatedAt      time.Time    `bson:"updated_at"`
	Messages       []messageDoc `bson:"messages"`
}

type messageDoc struct {
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
}

// Store is a MongoDB-backed session store.
type Store struct {
	coll *mongo.Collection
}

// Option configures a [Store].
type Option func(*config)

type config struct {
	collection string
}

// WithCollection sets the collection name. Default is "sessions".
func WithCollection(name string) Option {
	return func(c *config) { c.collection = name }
}

// NewStore creates a Store on the given database.
func NewStore(db *mongo.Database, opts ...Option) *Store {
	cfg := config{collection: defaultCollection}
	for _, o := range opts {
		o(&cfg)
	}
	return &Store{coll: db.Collection(cfg.collection)}
}

// Create persists a new empty session.
func (s *Store) Create(ctx context.Context, id string, labels metachat.RoleLabels, pair metachat.PromptPair) (metachat.Session, error) {
	if id == "" {
		return metachat.Session{}, fmt.Errorf("session id must not be empty: %w", metachat.ErrValidation)
	}
	now := time.Now().UTC()
	doc := sessionDoc{
		ID:             id,
		UserLabel:      labels.User,
		AssistantLabel: labels.Assistant,
		MetaPrompt:     pair.Meta,
		EnhancedPrompt: pair.Enhanced,
		CreatedAt:      now,
		UpdatedAt:      now,
		Messages:       []messageDoc{},
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return metachat.Session{}, fmt.Errorf("session %q: %w", id, metachat.ErrAlreadyExists)
		}
		return metachat.Session{}, fmt.Errorf("mongo insert: %v: %w", err, metachat.ErrPersistence)
	}
	return toSession(doc)
}

// Get returns the session with the given id.
func (s *Store) Get(ctx context.Context, id string) (metachat.Session, error) {
	var doc sessionDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return metachat.Session{}, fmt.Errorf("session %q: %w", id, metachat.ErrNotFound)
	}
	if err != nil {
		return metachat.Session{}, fmt.Errorf("mongo find: %v: %w", err, metachat.ErrPersistence)
	}
	return toSession(doc)
}

// AppendTurn appends a completed turn in one document update and returns
// the post-turn state.
func (s *Store) AppendTurn(ctx context.Context, id string, turn metachat.Turn) (metachat.Session, error) {
	docs := make([]messageDoc, 0, 3)
	for _, m := range turn.Messages() {
		d, err := toMessageDoc(m)
		if err != nil {
			return metachat.Session{}, err
		}
		docs = append(docs, d)
	}
	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": docs}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	var doc sessionDoc
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return metachat.Session{}, fmt.Errorf("session %q: %w", id, metachat.ErrNotFound)
	}
	if err != nil {
		return metachat.Session{}, fmt.Errorf("mongo update: %v: %w", err, metachat.ErrPersistence)
	}
	return toSession(doc)
}

// List returns summaries of all sessions, ordered by creation time.
func (s *Store) List(ctx context.Context) ([]metachat.SessionSummary, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo find: %v: %w", err, metachat.ErrPersistence)
	}
	defer cur.Close(ctx)

	var summaries []metachat.SessionSummary
	for cur.Next(ctx) {
		var doc sessionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo decode: %v: %w", err, metachat.ErrPersistence)
		}
		summaries = append(summaries, metachat.SessionSummary{
			ID:           doc.ID,
			CreatedAt:    doc.CreatedAt,
			MessageCount: len(doc.Messages),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor: %v: %w", err, metachat.ErrPersistence)
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
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo delete: %v: %w", err, metachat.ErrPersistence)
	}
	return nil
}

func toSession(doc sessionDoc) (metachat.Session, error) {
	msgs := make([]metachat.Message, len(doc.Messages))
	for i, d := range doc.Messages {
		m, err := toMessage(d)
		if err != nil {
			return metachat.Session{}, fmt.Errorf("session %q message %d: %v: %w", doc.ID, i, err, metachat.ErrPersistence)
		}
		msgs[i] = m
	}
	return metachat.Session{
		ID:         doc.ID,
		RoleLabels: metachat.RoleLabels{User: doc.UserLabel, Assistant: doc.AssistantLabel},
		PromptPair: metachat.PromptPair{Meta: doc.MetaPrompt, Enhanced: doc.EnhancedPrompt},
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
		Messages:   msgs,
	}, nil
}

func toMessage(d messageDoc) (metachat.Message, error) {
	switch metachat.Role(d.Role) {
	case metachat.RoleUser:
		return metachat.UserMessage{Content: d.Content, Timestamp: d.Timestamp}, nil
	case metachat.RoleAssistant:
		return metachat.AssistantMessage{Content: d.Content, Timestamp: d.Timestamp}, nil
	case metachat.RoleMeta:
		return metachat.MetaMessage{Content: d.Content, Timestamp: d.Timestamp}, nil
	default:
		return nil, fmt.Errorf("unknown message role: %q", d.Role)
	}
}

func toMessageDoc(m metachat.Message) (messageDoc, error) {
	switch m := m.(type) {
	case metachat.UserMessage:
		return messageDoc{Role: string(metachat.RoleUser), Content: m.Content, Timestamp: m.Timestamp}, nil
	case metachat.AssistantMessage:
		return messageDoc{Role: string(metachat.RoleAssistant), Content: m.Content, Timestamp: m.Timestamp}, nil
	case metachat.MetaMessage:
		return messageDoc{Role: string(metachat.RoleMeta), Content: m.Content, Timestamp: m.Timestamp}, nil
	default:
		return messageDoc{}, fmt.Errorf("unknown message type %T: %w", m, metachat.ErrValidation)
	}
}
