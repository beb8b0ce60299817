package stub

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T, fixtures *Fixtures) *gin.Engine {
	t.Helper()
	if fixtures == nil {
		fixtures = DefaultFixtures()
	}
	return NewEngine(fixtures, logger.NewTestLogger())
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer stub-token")
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAPIRequiresBearerToken(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := doJSON(t, engine, http.MethodGet, "/api/documents", nil, false)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Missing or invalid authorization token", resp.Error)
}

func TestHealthNeedsNoToken(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := doJSON(t, engine, http.MethodGet, "/health", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "development", health.Environment)
}

func TestListDocumentsServesFixtures(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := doJSON(t, engine, http.MethodGet, "/api/documents", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var list models.DocumentListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "service-agreement.pdf", list.Documents[0].Filename)
	assert.Equal(t, models.StatusCompleted, list.Documents[0].Status)
}

func TestGetDocumentEnvelopeAndNotFound(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := doJSON(t, engine, http.MethodGet, "/api/documents/doc-fixture-1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Document models.Document `json:"document"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "doc-fixture-1", envelope.Document.ID)

	w = doJSON(t, engine, http.MethodGet, "/api/documents/missing", nil, true)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Document not found", resp.Error)
}

func TestQueryReturnsCannedAnswerAndChunks(t *testing.T) {
	fixtures := DefaultFixtures()
	fixtures.Answers = []CannedAnswer{{Match: "terminate", Answer: "Thirty days written notice ends it."}}
	engine := newTestEngine(t, fixtures)

	w := doJSON(t, engine, http.MethodPost, "/api/query", models.QueryRequest{
		DocumentID: "doc-fixture-1",
		Question:   "How do I terminate the agreement?",
	}, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Thirty days written notice ends it.", resp.Answer)
	assert.Equal(t, "stub-model", resp.Model)
	require.Len(t, resp.Sources, 1)
	assert.Contains(t, resp.Sources[0].Content, "thirty days")
}

func TestQueryFallsBackToDefaultAnswer(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := doJSON(t, engine, http.MethodPost, "/api/query", models.QueryRequest{
		DocumentID: "doc-fixture-1",
		Question:   "Who owns the moon?",
	}, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Based on the document, no specific provision addresses that question.", resp.Answer)
}

func TestQueryRejectsDocumentStillProcessing(t *testing.T) {
	fixtures := DefaultFixtures()
	fixtures.Documents = append(fixtures.Documents, FixtureDocument{
		ID:       "doc-pending",
		Filename: "draft.pdf",
		Status:   string(models.StatusProcessing),
	})
	engine := newTestEngine(t, fixtures)

	w := doJSON(t, engine, http.MethodPost, "/api/query", models.QueryRequest{
		DocumentID: "doc-pending",
		Question:   "anything",
	}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Document is not ready for queries (status: processing)", resp.Error)
}

func TestQueryUnknownDocument(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := doJSON(t, engine, http.MethodPost, "/api/query", models.QueryRequest{
		DocumentID: "missing",
		Question:   "anything",
	}, true)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestQueryLimitsChunks(t *testing.T) {
	fixtures := DefaultFixtures()
	for i := 1; i < 8; i++ {
		fixtures.Chunks = append(fixtures.Chunks, FixtureChunk{
			DocumentID: "doc-fixture-1",
			Content:    "chunk",
			ChunkIndex: i,
			Similarity: 0.5,
		})
	}
	engine := newTestEngine(t, fixtures)

	w := doJSON(t, engine, http.MethodPost, "/api/query", models.QueryRequest{
		DocumentID: "doc-fixture-1",
		Question:   "anything",
	}, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sources, 5, "default retrieval depth caps the sources")

	w = doJSON(t, engine, http.MethodPost, "/api/query", models.QueryRequest{
		DocumentID:       "doc-fixture-1",
		Question:         "anything",
		MaxContextChunks: 2,
	}, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sources, 2)
}

func TestUploadRegistersPendingDocument(t *testing.T) {
	fixtures := DefaultFixtures()
	fixtures.ProcessingDelay = Duration(time.Hour) // keep the document pending for the assertion
	engine := newTestEngine(t, fixtures)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "nda.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer stub-token")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "nda.pdf", resp.Filename)
	assert.Equal(t, "Document uploaded successfully", resp.Message)
	assert.NotEmpty(t, resp.DocumentID)

	get := doJSON(t, engine, http.MethodGet, "/api/documents/"+resp.DocumentID, nil, true)
	require.Equal(t, http.StatusOK, get.Code)
}

func TestUploadWithoutFile(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := doJSON(t, engine, http.MethodPost, "/api/documents", nil, true)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "No file provided", resp.Error)
}

func TestDeleteDocumentRemovesIt(t *testing.T) {
	engine := newTestEngine(t, nil)

	w := doJSON(t, engine, http.MethodDelete, "/api/documents/doc-fixture-1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DeleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Document deleted successfully", resp.Message)

	w = doJSON(t, engine, http.MethodGet, "/api/documents/doc-fixture-1", nil, true)
	require.Equal(t, http.StatusNotFound, w.Code)
}
