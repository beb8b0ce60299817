package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavaniTiago/jurista-ai-frontend/internal/client"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/history"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/query"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/kv"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

type stubQuerier struct {
	fn func(question string) (*models.QueryResponse, error)
}

func (s stubQuerier) QueryDocument(ctx context.Context, documentID, question string, opts ...client.QueryOption) (*models.QueryResponse, error) {
	return s.fn(question)
}

func newTestSession(t *testing.T, status models.DocumentStatus, fn func(question string) (*models.QueryResponse, error)) (*Session, *history.Store) {
	t.Helper()
	log := logger.NewTestLogger()
	doc := models.Document{ID: "doc-1", Filename: "contract.pdf", Status: status}
	hist := history.NewStore(context.Background(), doc.ID, kv.NewMemoryStore(), log)
	controller := query.NewController(stubQuerier{fn: fn}, doc.ID, log)
	return NewSession(doc, controller, hist, log), hist
}

func TestAskAppendsQuestionAndGroundedAnswer(t *testing.T) {
	sources := []models.SourceChunk{{Content: "Clause 7.2: either party may terminate", ChunkIndex: 4, Similarity: 0.91}}
	sess, _ := newTestSession(t, models.StatusCompleted, func(question string) (*models.QueryResponse, error) {
		return &models.QueryResponse{Answer: "Either party may terminate under clause 7.2.", Sources: sources, Model: "gpt-4"}, nil
	})

	answer, err := sess.Ask(context.Background(), "Can the contract be terminated?")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistant, answer.Role)
	assert.Equal(t, sources, answer.Sources)

	messages := sess.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "Can the contract be terminated?", messages[0].Content)
	assert.Nil(t, messages[0].Sources)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)
	assert.Equal(t, "Either party may terminate under clause 7.2.", messages[1].Content)
}

func TestAskRejectsDocumentStillProcessing(t *testing.T) {
	sess, _ := newTestSession(t, models.StatusProcessing, func(question string) (*models.QueryResponse, error) {
		t.Fatal("no query may be issued for a non-completed document")
		return nil, nil
	})

	_, err := sess.Ask(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready for questions")
	assert.Contains(t, err.Error(), "processing")
	assert.Empty(t, sess.Messages())
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	sess, _ := newTestSession(t, models.StatusCompleted, func(question string) (*models.QueryResponse, error) {
		t.Fatal("no query may be issued for an empty question")
		return nil, nil
	})

	_, err := sess.Ask(context.Background(), "   ")
	require.Error(t, err)
	assert.Empty(t, sess.Messages())
}

func TestFailedQueryKeepsUserMessage(t *testing.T) {
	sess, _ := newTestSession(t, models.StatusCompleted, func(question string) (*models.QueryResponse, error) {
		return nil, errors.New("service unavailable")
	})

	_, err := sess.Ask(context.Background(), "What is the notice period?")
	require.Error(t, err)
	assert.Equal(t, "service unavailable", err.Error())

	messages := sess.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "service unavailable", sess.State().Err)
}

func TestClearResetsConversationAndState(t *testing.T) {
	sess, hist := newTestSession(t, models.StatusCompleted, func(question string) (*models.QueryResponse, error) {
		return &models.QueryResponse{Answer: "yes", Sources: []models.SourceChunk{}}, nil
	})

	_, err := sess.Ask(context.Background(), "Is the NDA mutual?")
	require.NoError(t, err)
	require.Len(t, sess.Messages(), 2)

	require.NoError(t, sess.Clear(context.Background()))
	assert.Empty(t, sess.Messages())
	assert.Zero(t, hist.Len())

	state := sess.State()
	assert.Empty(t, state.Answer)
	assert.Empty(t, state.Err)
	assert.Nil(t, state.Sources)
}

func TestAskAfterClearStartsFreshLog(t *testing.T) {
	sess, _ := newTestSession(t, models.StatusCompleted, func(question string) (*models.QueryResponse, error) {
		return &models.QueryResponse{Answer: "answer to " + question}, nil
	})

	_, err := sess.Ask(context.Background(), "first")
	require.NoError(t, err)
	require.NoError(t, sess.Clear(context.Background()))

	_, err = sess.Ask(context.Background(), "second")
	require.NoError(t, err)

	messages := sess.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "second", messages[0].Content)
}
