package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/session"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// defaultMaxContextChunks matches the query service's default retrieval
// depth.
const defaultMaxContextChunks = 5

// Client is the sole authenticated gateway to the document/query service.
// It is constructed explicitly and injected; there is no package singleton,
// so tests substitute a fake TokenSource or transport without touching
// globals. Every call performs exactly one round trip; retry policy, if
// any, belongs to callers.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  session.TokenSource
	logger  logger.Logger
}

// Option adjusts a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport, mainly for tests and timeouts.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

func New(baseURL string, tokens session.TokenSource, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    http.DefaultClient,
		tokens:  tokens,
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// authToken fetches the bearer token, aborting the operation before any
// network I/O when no session exists.
func (c *Client) authToken(ctx context.Context) (string, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	return token, nil
}

// UploadDocument posts the file as multipart form field "file".
func (c *Client) UploadDocument(ctx context.Context, filename string, file io.Reader) (*models.UploadResponse, error) {
	const op = "upload document"
	const fallback = "Failed to upload document"

	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%s: build form: %w", op, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("%s: read file: %w", op, err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%s: finish form: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents", &body)
	if err != nil {
		return nil, transportError(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return nil, newAPIError(op, resp, fallback)
	}

	var result models.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	c.logger.Info("document uploaded",
		logger.String("documentId", result.DocumentID),
		logger.String("filename", result.Filename),
		logger.Int("chunks", result.ChunksCount),
	)

	return &result, nil
}

// ListDocuments fetches every document owned by the authenticated user.
func (c *Client) ListDocuments(ctx context.Context) (*models.DocumentListResponse, error) {
	const op = "list documents"
	const fallback = "Failed to fetch documents"

	var result models.DocumentListResponse
	if err := c.getJSON(ctx, op, fallback, "/api/documents", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDocument fetches one document by id. A 404 maps to ErrNotFound.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	const op = "get document"
	const fallback = "Failed to fetch document"

	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/documents/"+documentID, nil)
	if err != nil {
		return nil, transportError(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if !is2xx(resp.StatusCode) {
		return nil, newAPIError(op, resp, fallback)
	}

	var result struct {
		Document models.Document `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return &result.Document, nil
}

// DeleteDocument removes a document. Deletion is terminal; the service
// drops the document's query capability with it.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) (*models.DeleteResponse, error) {
	const op = "delete document"
	const fallback = "Failed to delete document"

	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/documents/"+documentID, nil)
	if err != nil {
		return nil, transportError(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return nil, newAPIError(op, resp, fallback)
	}

	var result models.DeleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return &result, nil
}

// QueryOption adjusts a single query.
type QueryOption func(*models.QueryRequest)

// WithMaxContextChunks caps how many source chunks the service retrieves.
func WithMaxContextChunks(n int) QueryOption {
	return func(r *models.QueryRequest) {
		r.MaxContextChunks = n
	}
}

// QueryDocument asks one question about one document and returns the
// grounded answer.
func (c *Client) QueryDocument(ctx context.Context, documentID, question string, opts ...QueryOption) (*models.QueryResponse, error) {
	const op = "query document"
	const fallback = "Failed to query document"

	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	request := models.QueryRequest{
		DocumentID:       documentID,
		Question:         question,
		MaxContextChunks: defaultMaxContextChunks,
	}
	for _, opt := range opts {
		opt(&request)
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/query", bytes.NewReader(payload))
	if err != nil {
		return nil, transportError(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return nil, newAPIError(op, resp, fallback)
	}

	var result models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	c.logger.Debug("query answered",
		logger.String("documentId", documentID),
		logger.String("model", result.Model),
		logger.Int("sources", len(result.Sources)),
	)

	return &result, nil
}

// CheckHealth probes the service without authentication. The conversation
// flow never calls this; it exists for harnesses and the chat client's
// startup banner.
func (c *Client) CheckHealth(ctx context.Context) (*models.HealthResponse, error) {
	const op = "check health"
	const fallback = "API is not healthy"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, transportError(op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return nil, newAPIError(op, resp, fallback)
	}

	var result models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return &result, nil
}

// getJSON covers the plain authenticated GETs.
func (c *Client) getJSON(ctx context.Context, op, fallback, path string, out interface{}) error {
	token, err := c.authToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return transportError(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return newAPIError(op, resp, fallback)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func is2xx(status int) bool {
	return status >= 200 && status <= 299
}
