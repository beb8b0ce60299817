package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/kv"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

func newTestStore(t *testing.T, documentID string, store kv.Store) *Store {
	t.Helper()
	return NewStore(context.Background(), documentID, store, logger.NewTestLogger())
}

func TestAddMessagePersists(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	s := newTestStore(t, "doc-42", mem)

	msg, err := s.AddMessage(ctx, models.RoleUser, "Hello", nil)
	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())

	messages := s.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Hello", messages[0].Content)
	assert.Equal(t, models.RoleUser, messages[0].Role)

	raw, err := mem.Get(ctx, "chat-doc-42")
	require.NoError(t, err)

	var persisted []models.ChatMessage
	require.NoError(t, json.Unmarshal(raw, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, "Hello", persisted[0].Content)
}

func TestConversationsAreIsolatedPerDocument(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()

	s1 := newTestStore(t, "doc-1", mem)
	s2 := newTestStore(t, "doc-2", mem)

	_, err := s1.AddMessage(ctx, models.RoleUser, "about the lease", nil)
	require.NoError(t, err)
	_, err = s2.AddMessage(ctx, models.RoleUser, "about the merger", nil)
	require.NoError(t, err)

	require.Len(t, s1.Messages(), 1)
	require.Len(t, s2.Messages(), 1)
	assert.Equal(t, "about the lease", s1.Messages()[0].Content)
	assert.Equal(t, "about the merger", s2.Messages()[0].Content)

	// Reloading each document sees only its own log.
	r1 := newTestStore(t, "doc-1", mem)
	r2 := newTestStore(t, "doc-2", mem)
	require.Len(t, r1.Messages(), 1)
	require.Len(t, r2.Messages(), 1)
	assert.NotEqual(t, r1.Messages()[0].Content, r2.Messages()[0].Content)
}

func TestReloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	s := newTestStore(t, "doc-9", mem)

	page := 3
	sources := []models.SourceChunk{{
		Content:    "The term of this agreement is five years.",
		ChunkIndex: 2,
		Similarity: 0.87,
		Metadata:   models.ChunkMetadata{PageNumber: &page},
	}}

	original, err := s.AddMessage(ctx, models.RoleAssistant, "Five years.", sources)
	require.NoError(t, err)

	reloaded := newTestStore(t, "doc-9", mem)
	messages := reloaded.Messages()
	require.Len(t, messages, 1)

	got := messages[0]
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, models.RoleAssistant, got.Role)
	assert.Equal(t, "Five years.", got.Content)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, 0.87, got.Sources[0].Similarity)
	require.NotNil(t, got.Sources[0].Metadata.PageNumber)
	assert.Equal(t, 3, *got.Sources[0].Metadata.PageNumber)
	assert.WithinDuration(t, original.Timestamp, got.Timestamp, time.Second)
}

func TestClearHistoryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	s := newTestStore(t, "doc-5", mem)

	_, err := s.AddMessage(ctx, models.RoleUser, "hi", nil)
	require.NoError(t, err)

	require.NoError(t, s.ClearHistory(ctx))
	assert.Empty(t, s.Messages())

	_, err = mem.Get(ctx, "chat-doc-5")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// Second clear on an already-empty store.
	require.NoError(t, s.ClearHistory(ctx))
	assert.Empty(t, s.Messages())
}

func TestCorruptSlotYieldsEmptyConversation(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	require.NoError(t, mem.Set(ctx, "chat-doc-7", []byte("not-json")))

	log := logger.NewTestLogger()
	s := NewStore(ctx, "doc-7", mem, log)

	assert.Empty(t, s.Messages())
	require.NotEmpty(t, log.Entries(), "parse failure should be logged")
	assert.Equal(t, "WARN", log.Entries()[0].Level)

	// The store is still usable afterwards.
	_, err := s.AddMessage(ctx, models.RoleUser, "still works", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestUserMessagesCannotCarrySources(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "doc-3", kv.NewMemoryStore())

	_, err := s.AddMessage(ctx, models.RoleUser, "hi", []models.SourceChunk{{Content: "x"}})
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}
