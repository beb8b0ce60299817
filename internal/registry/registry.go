package registry

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/PavaniTiago/jurista-ai-frontend/internal/models"
	"github.com/PavaniTiago/jurista-ai-frontend/internal/utils/validator"
	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

const (
	documentsCacheKey = "documents"

	defaultCacheTTL     = 5 * time.Minute
	defaultPollInterval = 2 * time.Second
)

func documentCacheKey(id string) string {
	return "document:" + id
}

// API is the slice of the client the registry orchestrates.
type API interface {
	ListDocuments(ctx context.Context) (*models.DocumentListResponse, error)
	GetDocument(ctx context.Context, documentID string) (*models.Document, error)
	UploadDocument(ctx context.Context, filename string, file io.Reader) (*models.UploadResponse, error)
	DeleteDocument(ctx context.Context, documentID string) (*models.DeleteResponse, error)
}

// HistoryPurger removes a document's conversation slot. Deleting a document
// purges its chat history with it; pass nothing to keep the log orphaned
// the way the original web client did.
type HistoryPurger interface {
	PurgeConversation(ctx context.Context, documentID string) error
}

// Registry layers list/get/upload/delete over the API client with a shared
// cache: reads go through it, successful mutations invalidate it so the
// next list reflects the change.
type Registry struct {
	api       API
	cache     *gocache.Cache
	notifier  Notifier
	validator *validator.UploadValidator
	purger    HistoryPurger
	logger    logger.Logger
}

// Option adjusts a Registry.
type Option func(*Registry)

func WithNotifier(n Notifier) Option {
	return func(r *Registry) {
		r.notifier = n
	}
}

func WithValidator(v *validator.UploadValidator) Option {
	return func(r *Registry) {
		r.validator = v
	}
}

func WithHistoryPurger(p HistoryPurger) Option {
	return func(r *Registry) {
		r.purger = p
	}
}

func NewRegistry(api API, log logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		api:      api,
		cache:    gocache.New(defaultCacheTTL, 2*defaultCacheTTL),
		notifier: NopNotifier{},
		logger:   log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns the user's documents, served from cache when fresh.
func (r *Registry) List(ctx context.Context) (*models.DocumentListResponse, error) {
	if cached, ok := r.cache.Get(documentsCacheKey); ok {
		return cached.(*models.DocumentListResponse), nil
	}

	list, err := r.api.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(documentsCacheKey, list, gocache.DefaultExpiration)
	return list, nil
}

// Get returns one document, served from cache when fresh.
func (r *Registry) Get(ctx context.Context, documentID string) (*models.Document, error) {
	key := documentCacheKey(documentID)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*models.Document), nil
	}

	doc, err := r.api.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, doc, gocache.DefaultExpiration)
	return doc, nil
}

// Upload validates the file, sends it, and invalidates the document list so
// the next List shows the new entry. The outcome goes to the notifier
// either way; the error is also returned so callers can react.
func (r *Registry) Upload(ctx context.Context, path string) (*models.UploadResponse, error) {
	if r.validator != nil {
		result, err := r.validator.ValidateFile(path)
		if err != nil {
			r.notifier.Error(err.Error())
			return nil, err
		}
		if !result.IsValid {
			err := fmt.Errorf("invalid document: %s", result.Errors[0].Message)
			r.notifier.Error(err.Error())
			return nil, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("open %s: %w", path, err)
		r.notifier.Error(err.Error())
		return nil, err
	}
	defer file.Close()

	resp, err := r.api.UploadDocument(ctx, filepath.Base(path), file)
	if err != nil {
		r.notifier.Error(err.Error())
		return nil, err
	}

	r.cache.Delete(documentsCacheKey)
	r.notifier.Success(resp.Message)
	return resp, nil
}

// Delete removes the document, invalidates its cache entries, and purges
// its conversation slot when a purger is configured.
func (r *Registry) Delete(ctx context.Context, documentID string) error {
	resp, err := r.api.DeleteDocument(ctx, documentID)
	if err != nil {
		r.notifier.Error(err.Error())
		return err
	}

	r.cache.Delete(documentsCacheKey)
	r.cache.Delete(documentCacheKey(documentID))

	if r.purger != nil {
		if err := r.purger.PurgeConversation(ctx, documentID); err != nil {
			// The document is gone either way; an orphaned log is the
			// original system's behavior, so warn and carry on.
			r.logger.Warn("failed to purge conversation for deleted document",
				logger.String("documentId", documentID),
				logger.Error(err),
			)
		}
	}

	r.notifier.Success(resp.Message)
	return nil
}

// WaitForCompletion polls the document, bypassing the cache, until the
// pipeline reaches a terminal status or the context ends. Zero interval
// means the default.
func (r *Registry) WaitForCompletion(ctx context.Context, documentID string, interval time.Duration) (*models.Document, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		doc, err := r.api.GetDocument(ctx, documentID)
		if err != nil {
			return nil, err
		}
		r.cache.Set(documentCacheKey(documentID), doc, gocache.DefaultExpiration)

		if doc.Status.Terminal() {
			return doc, nil
		}

		select {
		case <-ctx.Done():
			return doc, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Invalidate drops every cached entry; mainly for callers that know the
// server-side state changed behind the registry's back.
func (r *Registry) Invalidate() {
	r.cache.Flush()
}
