package query

import (
	"context"
	"errors"
	"sync"

	"github.com/PavaniTiago/jurista-ai-frontend/internal/client"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/session"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// queryFallbackMessage is shown when a failure has no recognized type.
const queryFallbackMessage = "Failed to query document"

// Querier is the slice of the API client the controller needs.
type Querier interface {
	QueryDocument(ctx context.Context, documentID, question string, opts ...client.QueryOption) (*models.QueryResponse, error)
}

// State is a snapshot of the controller. Err carries the human-readable
// message of the last failure; empty means none.
type State struct {
	Loading bool
	Err     string
	Answer  string
	Sources []models.SourceChunk
}

// Controller manages the lifecycle of one in-flight question against one
// document. Starting a new query while one is in flight supersedes it:
// each call is tagged with a sequence number and a completion whose tag is
// no longer current is discarded whole, so the state never mixes the answer
// of one call with the sources of another.
//
// The controller does not re-validate document status; refusing to query a
// non-completed document is the caller's job.
type Controller struct {
	client     Querier
	documentID string
	logger     logger.Logger

	mu    sync.Mutex
	seq   uint64
	state State
}

func NewController(querier Querier, documentID string, log logger.Logger) *Controller {
	return &Controller{
		client:     querier,
		documentID: documentID,
		logger:     log,
	}
}

// Query runs one question. On success the response is returned and stored
// in state; on failure nil is returned and the failure is reported through
// state only, so callers render an inline error and stay alive. Loading
// always clears when the owning call finishes.
func (c *Controller) Query(ctx context.Context, question string) *models.QueryResponse {
	c.mu.Lock()
	c.seq++
	mine := c.seq
	c.state.Loading = true
	c.state.Err = ""
	c.mu.Unlock()

	result, err := c.client.QueryDocument(ctx, c.documentID, question)

	c.mu.Lock()
	defer c.mu.Unlock()

	if mine != c.seq {
		// Superseded by a newer query; this completion is discarded
		// without touching any state, including loading.
		c.logger.Debug("discarding superseded query result",
			logger.String("documentId", c.documentID),
		)
		return nil
	}

	c.state.Loading = false

	if err != nil {
		c.state.Err = errorMessage(err)
		c.logger.Warn("query failed",
			logger.String("documentId", c.documentID),
			logger.Error(err),
		)
		return nil
	}

	c.state.Answer = result.Answer
	c.state.Sources = result.Sources
	return result
}

// Reset clears answer, sources and error back to initial values without
// touching loading.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Answer = ""
	c.state.Sources = nil
	c.state.Err = ""
}

// State returns a snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.state
	if c.state.Sources != nil {
		snapshot.Sources = make([]models.SourceChunk, len(c.state.Sources))
		copy(snapshot.Sources, c.state.Sources)
	}
	return snapshot
}

// errorMessage extracts the human-readable message. The API client already
// normalizes its failures, so an error's own message is trusted; the
// generic fallback only covers a blank one.
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, session.ErrNotAuthenticated) {
		return session.ErrNotAuthenticated.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return queryFallbackMessage
}
