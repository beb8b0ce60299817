package models

import (
	"time"
)

// DocumentStatus tracks a document through the external processing pipeline.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Terminal reports whether the pipeline is done with the document,
// successfully or not.
func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Queryable reports whether the document accepts questions. Only completed
// documents do.
func (s DocumentStatus) Queryable() bool {
	return s == StatusCompleted
}

// Document is one uploaded legal file as the service reports it.
type Document struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Filename    string         `json:"filename"`
	StoragePath string         `json:"storagePath"`
	Status      DocumentStatus `json:"status"`
	FileSize    int64          `json:"fileSize"`
	MimeType    string         `json:"mimeType"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// DocumentListResponse is the body of GET /api/documents.
type DocumentListResponse struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
}

// UploadResponse is the body of POST /api/documents.
type UploadResponse struct {
	DocumentID      string `json:"documentId"`
	Filename        string `json:"filename"`
	ChunksCount     int    `json:"chunksCount"`
	EmbeddingsCount int    `json:"embeddingsCount"`
	Message         string `json:"message"`
}

// DeleteResponse is the body of DELETE /api/documents/{id}.
type DeleteResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}
