package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/kv"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// SlotKey is the storage key for a document's conversation.
func SlotKey(documentID string) string {
	return "chat-" + documentID
}

// Store is the durable, ordered conversation log for exactly one document.
// Slots are keyed by document id, so stores for different documents never
// read or write each other's log. The slot is read once at construction and
// owned by this instance afterwards; two processes writing the same slot are
// not coordinated (last writer wins).
//
// The log is not scoped per authenticated user: on a shared state directory
// a second user sees the first user's conversations. Kept as-is from the
// original system rather than silently changed.
type Store struct {
	documentID string
	kv         kv.Store
	logger     logger.Logger

	mu       sync.Mutex
	messages []models.ChatMessage
}

// NewStore loads the document's persisted conversation. A missing or
// unparsable slot yields an empty conversation and a logged diagnostic,
// never an error.
func NewStore(ctx context.Context, documentID string, store kv.Store, log logger.Logger) *Store {
	s := &Store{
		documentID: documentID,
		kv:         store,
		logger:     log,
	}
	s.messages = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []models.ChatMessage {
	data, err := s.kv.Get(ctx, SlotKey(s.documentID))
	if err != nil {
		if err != kv.ErrNotFound {
			s.logger.Warn("failed to read chat history",
				logger.String("documentId", s.documentID),
				logger.Error(err),
			)
		}
		return nil
	}

	var messages []models.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		s.logger.Warn("failed to parse chat history, starting empty",
			logger.String("documentId", s.documentID),
			logger.Error(err),
		)
		return nil
	}
	return messages
}

// DocumentID returns the document this conversation belongs to.
func (s *Store) DocumentID() string {
	return s.documentID
}

// AddMessage assigns a fresh id and the current time, appends the message,
// and persists the whole log. Messages are immutable once added. User
// messages must not carry sources.
func (s *Store) AddMessage(ctx context.Context, role models.MessageRole, content string, sources []models.SourceChunk) (*models.ChatMessage, error) {
	if role == models.RoleUser && len(sources) > 0 {
		return nil, fmt.Errorf("user messages cannot carry sources")
	}

	message := models.ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Sources:   sources,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, message)
	if err := s.persistLocked(ctx); err != nil {
		return nil, err
	}
	return &message, nil
}

// Messages returns the conversation in insertion order.
func (s *Store) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// ClearHistory empties the log and removes the persisted slot entirely.
// Idempotent.
func (s *Store) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	if err := s.kv.Delete(ctx, SlotKey(s.documentID)); err != nil {
		return fmt.Errorf("remove chat history slot: %w", err)
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.messages)
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}
	if err := s.kv.Set(ctx, SlotKey(s.documentID), data); err != nil {
		return fmt.Errorf("persist chat history: %w", err)
	}
	return nil
}
