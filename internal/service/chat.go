package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/repository"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
	"go.uber.org/zap"
)

const (
	defaultSessionTitle = "New Chat"
	maxTitleLength      = 50
)

// ChatStore owns chat sessions and the current-session pointer
type ChatStore struct {
	store    repository.DocumentStore
	mu       sync.Mutex
	now      func() time.Time
	location *time.Location
	logger   *zap.Logger
}

// NewChatStore creates a ChatStore persisting through store
func NewChatStore(store repository.DocumentStore, logger *zap.Logger) *ChatStore {
	return &ChatStore{
		store:    store,
		now:      time.Now,
		location: time.Local,
		logger:   logger,
	}
}

func (s *ChatStore) loadSessions(ctx context.Context) ([]model.ChatSession, error) {
	sessions, err := loadDocument[[]model.ChatSession](ctx, s.store, chatsKey, s.logger)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []model.ChatSession{}
	}
	for i := range sessions {
		if sessions[i].Messages == nil {
			sessions[i].Messages = []model.StoredMessage{}
		}
	}
	return sessions, nil
}

func (s *ChatStore) currentID(ctx context.Context) (string, error) {
	raw, err := s.store.Get(ctx, currentSessionKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load current session pointer: %w", err)
	}
	return string(raw), nil
}

// CurrentSession resolves the pointer. It returns nil when the pointer is
// absent or refers to a session that no longer exists.
func (s *ChatStore) CurrentSession(ctx context.Context) (*model.ChatSession, error) {
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.currentID(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOfSession(sessions, id); i >= 0 {
		return &sessions[i], nil
	}
	return nil, nil
}

// CreateSession inserts a new empty session at the front and makes it current
func (s *ChatStore) CreateSession(ctx context.Context) (model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return model.ChatSession{}, err
	}

	session := s.newSession()
	sessions = append([]model.ChatSession{session}, sessions...)
	if err := s.persist(ctx, sessions, &session.ID); err != nil {
		return model.ChatSession{}, err
	}

	s.logger.Info("chat session created", zap.String("session_id", session.ID))
	return session, nil
}

// SetCurrent moves the pointer. The id is not checked against stored sessions;
// an unknown id makes CurrentSession return nil.
func (s *ChatStore) SetCurrent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Put(ctx, currentSessionKey, []byte(id)); err != nil {
		return fmt.Errorf("failed to set current session: %w", err)
	}
	return nil
}

// SaveMessage appends message to the current session, creating one first when
// there is none. It returns the session after the append.
func (s *ChatStore) SaveMessage(ctx context.Context, message model.StoredMessage) (model.ChatSession, error) {
	if !message.Role.Valid() {
		return model.ChatSession{}, fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, message.Role)
	}
	if message.ID == "" {
		message.ID = uuid.Must(uuid.NewV7()).String()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return model.ChatSession{}, err
	}
	currentID, err := s.currentID(ctx)
	if err != nil {
		return model.ChatSession{}, err
	}

	var pointer *string
	i := indexOfSession(sessions, currentID)
	if i < 0 {
		session := s.newSession()
		sessions = append([]model.ChatSession{session}, sessions...)
		pointer = &session.ID
		i = 0
	}

	session := &sessions[i]
	session.Messages = append(session.Messages, message)
	session.LastUpdated = s.now()
	// A freshly created session always gets a derived title; an existing one
	// only when this is its first message and it came from the user.
	if pointer != nil || (len(session.Messages) == 1 && message.Role == model.MessageRoleUser) {
		session.Title = s.deriveTitle(session.Messages)
	}

	if err := s.persist(ctx, sessions, pointer); err != nil {
		return model.ChatSession{}, err
	}
	return *session, nil
}

// AllSessions returns every session, most recently active first
func (s *ChatStore) AllSessions(ctx context.Context) ([]model.ChatSession, error) {
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastUpdated.After(sessions[j].LastUpdated)
	})
	return sessions, nil
}

// GetSession returns the session with id, or ErrSessionNotFound
func (s *ChatStore) GetSession(ctx context.Context, id string) (model.ChatSession, error) {
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return model.ChatSession{}, err
	}
	if i := indexOfSession(sessions, id); i >= 0 {
		return sessions[i], nil
	}
	return model.ChatSession{}, ErrSessionNotFound
}

// DeleteSession removes a session and clears the pointer if it referenced it.
// Deleting an unknown id is not an error.
func (s *ChatStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return err
	}
	currentID, err := s.currentID(ctx)
	if err != nil {
		return err
	}

	kept := make([]model.ChatSession, 0, len(sessions))
	for _, session := range sessions {
		if session.ID != id {
			kept = append(kept, session)
		}
	}

	raw, err := encodeDocument(chatsKey, kept)
	if err != nil {
		return err
	}
	err = s.store.Update(ctx, func(b *repository.Batch) error {
		b.Put(chatsKey, raw)
		if currentID == id {
			b.Delete(currentSessionKey)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Info("chat session deleted", zap.String("session_id", id))
	return nil
}

// ClearAll removes every session and the pointer
func (s *ChatStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &repository.Batch{}
	if err := s.stageReplace(b, nil); err != nil {
		return err
	}
	if err := s.applyBatch(ctx, b); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	s.logger.Info("chat history cleared")
	return nil
}

// UpdateTitle renames a session and bumps its lastUpdated
func (s *ChatStore) UpdateTitle(ctx context.Context, id, title string) (model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		return model.ChatSession{}, err
	}
	i := indexOfSession(sessions, id)
	if i < 0 {
		return model.ChatSession{}, ErrSessionNotFound
	}

	sessions[i].Title = title
	sessions[i].LastUpdated = s.now()
	if err := saveDocument(ctx, s.store, chatsKey, sessions, s.logger); err != nil {
		return model.ChatSession{}, err
	}
	return sessions[i], nil
}

// ImportReplace overwrites every session and clears the pointer
func (s *ChatStore) ImportReplace(ctx context.Context, sessions []model.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &repository.Batch{}
	if err := s.stageReplace(b, sessions); err != nil {
		return err
	}
	return s.applyBatch(ctx, b)
}

// stageReplace records the replacement of all sessions in a batch
func (s *ChatStore) stageReplace(b *repository.Batch, sessions []model.ChatSession) error {
	if sessions == nil {
		sessions = []model.ChatSession{}
	}
	raw, err := encodeDocument(chatsKey, sessions)
	if err != nil {
		return err
	}
	b.Put(chatsKey, raw)
	b.Delete(currentSessionKey)
	return nil
}

func (s *ChatStore) applyBatch(ctx context.Context, staged *repository.Batch) error {
	return s.store.Update(ctx, func(b *repository.Batch) error {
		*b = *staged
		return nil
	})
}

// persist writes sessions and, when pointer is set, the current-session pointer together
func (s *ChatStore) persist(ctx context.Context, sessions []model.ChatSession, pointer *string) error {
	raw, err := encodeDocument(chatsKey, sessions)
	if err != nil {
		return err
	}
	err = s.store.Update(ctx, func(b *repository.Batch) error {
		b.Put(chatsKey, raw)
		if pointer != nil {
			b.Put(currentSessionKey, []byte(*pointer))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to persist chat sessions", zap.Error(err))
		return fmt.Errorf("failed to save chat sessions: %w", err)
	}
	return nil
}

func (s *ChatStore) newSession() model.ChatSession {
	now := s.now()
	return model.ChatSession{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Title:       defaultSessionTitle,
		Messages:    []model.StoredMessage{},
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// deriveTitle uses the first user message, truncated to 50 characters,
// or a dated default when there is none
func (s *ChatStore) deriveTitle(messages []model.StoredMessage) string {
	for _, m := range messages {
		if m.Role != model.MessageRoleUser {
			continue
		}
		runes := []rune(m.Content)
		if len(runes) > maxTitleLength {
			return string(runes[:maxTitleLength]) + "..."
		}
		return m.Content
	}
	return "Chat " + s.now().In(s.location).Format("2006-01-02")
}

func indexOfSession(sessions []model.ChatSession, id string) int {
	if id == "" {
		return -1
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}
