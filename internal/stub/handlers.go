package stub

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// ErrorResponse mirrors the real service's error body: a single error
// string field.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handlers serves the document/query contract from fixtures plus whatever
// was uploaded during the run.
type Handlers struct {
	fixtures *Fixtures
	logger   logger.Logger

	mu        sync.RWMutex
	documents map[string]*models.Document
	chunks    map[string][]models.SourceChunk
}

func NewHandlers(fixtures *Fixtures, log logger.Logger) *Handlers {
	h := &Handlers{
		fixtures:  fixtures,
		logger:    log,
		documents: make(map[string]*models.Document),
		chunks:    make(map[string][]models.SourceChunk),
	}
	h.seed()
	return h
}

func (h *Handlers) seed() {
	now := time.Now()
	for _, fd := range h.fixtures.Documents {
		h.documents[fd.ID] = &models.Document{
			ID:        fd.ID,
			UserID:    "stub-user",
			Filename:  fd.Filename,
			Status:    models.DocumentStatus(fd.Status),
			FileSize:  fd.FileSize,
			MimeType:  fd.MimeType,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	for _, fc := range h.fixtures.Chunks {
		h.chunks[fc.DocumentID] = append(h.chunks[fc.DocumentID], models.SourceChunk{
			Content:    fc.Content,
			ChunkIndex: fc.ChunkIndex,
			Similarity: fc.Similarity,
			Metadata: models.ChunkMetadata{
				PageNumber:   fc.PageNumber,
				SectionTitle: fc.SectionTitle,
			},
		})
	}
}

// UploadDocument registers a pending document and advances it through the
// pipeline after the configured delay.
func (h *Handlers) UploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file provided"})
		return
	}

	doc := &models.Document{
		ID:        uuid.New().String(),
		UserID:    "stub-user",
		Filename:  file.Filename,
		Status:    models.StatusPending,
		FileSize:  file.Size,
		MimeType:  file.Header.Get("Content-Type"),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	h.mu.Lock()
	h.documents[doc.ID] = doc
	h.mu.Unlock()

	go h.advance(doc.ID)

	h.logger.Info("upload accepted",
		logger.String("documentId", doc.ID),
		logger.String("filename", doc.Filename),
	)

	c.JSON(http.StatusOK, models.UploadResponse{
		DocumentID:      doc.ID,
		Filename:        doc.Filename,
		ChunksCount:     3,
		EmbeddingsCount: 3,
		Message:         "Document uploaded successfully",
	})
}

// advance walks the document through processing to completed.
func (h *Handlers) advance(documentID string) {
	delay := time.Duration(h.fixtures.ProcessingDelay)
	if delay <= 0 {
		delay = time.Second
	}

	h.setStatus(documentID, models.StatusProcessing)
	time.Sleep(delay)
	h.setStatus(documentID, models.StatusCompleted)
}

func (h *Handlers) setStatus(documentID string, status models.DocumentStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if doc, ok := h.documents[documentID]; ok {
		doc.Status = status
		doc.UpdatedAt = time.Now()
	}
}

func (h *Handlers) ListDocuments(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	docs := make([]models.Document, 0, len(h.documents))
	for _, doc := range h.documents {
		docs = append(docs, *doc)
	}

	c.JSON(http.StatusOK, models.DocumentListResponse{
		Documents: docs,
		Total:     len(docs),
	})
}

func (h *Handlers) GetDocument(c *gin.Context) {
	h.mu.RLock()
	doc, ok := h.documents[c.Param("id")]
	h.mu.RUnlock()

	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Document not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc})
}

func (h *Handlers) DeleteDocument(c *gin.Context) {
	id := c.Param("id")

	h.mu.Lock()
	_, ok := h.documents[id]
	delete(h.documents, id)
	delete(h.chunks, id)
	h.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Document not found"})
		return
	}

	c.JSON(http.StatusOK, models.DeleteResponse{Message: "Document deleted successfully"})
}

func (h *Handlers) QueryDocument(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query request"})
		return
	}

	h.mu.RLock()
	doc, ok := h.documents[req.DocumentID]
	chunks := h.chunks[req.DocumentID]
	h.mu.RUnlock()

	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Document not found"})
		return
	}
	if !doc.Status.Queryable() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("Document is not ready for queries (status: %s)", doc.Status),
		})
		return
	}

	limit := req.MaxContextChunks
	if limit <= 0 {
		limit = 5
	}
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}

	c.JSON(http.StatusOK, models.QueryResponse{
		Answer:  h.answerFor(req.Question),
		Sources: chunks,
		Model:   h.fixtures.Model,
	})
}

func (h *Handlers) answerFor(question string) string {
	lowered := strings.ToLower(question)
	for _, canned := range h.fixtures.Answers {
		if strings.Contains(lowered, strings.ToLower(canned.Match)) {
			return canned.Answer
		}
	}
	if h.fixtures.DefaultAnswer != "" {
		return h.fixtures.DefaultAnswer
	}
	return "The document does not address that question."
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().Format(time.RFC3339),
		Environment: h.fixtures.Environment,
	})
}
