package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PavaniTiago/jurista-ai-frontend/internal/history"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/query"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// Session is the unit a conversation screen is built on: one document, its
// query controller, and its persisted history. The document-status
// precondition lives here; the controller below never re-checks it.
type Session struct {
	doc        models.Document
	controller *query.Controller
	history    *history.Store
	logger     logger.Logger
}

func NewSession(doc models.Document, controller *query.Controller, hist *history.Store, log logger.Logger) *Session {
	return &Session{
		doc:        doc,
		controller: controller,
		history:    hist,
		logger:     log,
	}
}

// Ask runs one question/answer exchange: append the user's message, query
// the service, and on success append the assistant's grounded answer with
// its source chunks verbatim. On failure the user message stays in the log
// (the question was asked, the answer never came) and the controller's
// state error is returned.
func (s *Session) Ask(ctx context.Context, question string) (*models.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("question cannot be empty")
	}
	if !s.doc.Status.Queryable() {
		return nil, fmt.Errorf("document %q is not ready for questions (status %s)", s.doc.Filename, s.doc.Status)
	}

	if _, err := s.history.AddMessage(ctx, models.RoleUser, question, nil); err != nil {
		return nil, err
	}

	result := s.controller.Query(ctx, question)
	if result == nil {
		state := s.controller.State()
		if state.Err != "" {
			return nil, errors.New(state.Err)
		}
		return nil, errors.New("query was superseded")
	}

	answer, err := s.history.AddMessage(ctx, models.RoleAssistant, result.Answer, result.Sources)
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// Messages returns the conversation in order.
func (s *Session) Messages() []models.ChatMessage {
	return s.history.Messages()
}

// Clear removes the whole conversation for this document.
func (s *Session) Clear(ctx context.Context) error {
	s.controller.Reset()
	return s.history.ClearHistory(ctx)
}

// Document returns the document this session talks about.
func (s *Session) Document() models.Document {
	return s.doc
}

// State exposes the controller snapshot for rendering spinners and inline
// errors.
func (s *Session) State() query.State {
	return s.controller.State()
}
