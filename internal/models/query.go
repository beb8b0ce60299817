package models

// ChunkMetadata locates a source excerpt inside the original document. All
// fields are optional; the query service fills what the extractor knew.
type ChunkMetadata struct {
	PageNumber     *int    `json:"pageNumber,omitempty"`
	SectionTitle   *string `json:"sectionTitle,omitempty"`
	CharacterStart *int    `json:"characterStart,omitempty"`
	CharacterEnd   *int    `json:"characterEnd,omitempty"`
	TokenCount     *int    `json:"tokenCount,omitempty"`
}

// SourceChunk is a scored excerpt of document text cited as evidence for an
// answer. Produced only by the query service; read-only here.
type SourceChunk struct {
	Content    string        `json:"content"`
	ChunkIndex int           `json:"chunkIndex"`
	Similarity float64       `json:"similarity"`
	Metadata   ChunkMetadata `json:"metadata"`
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	DocumentID       string `json:"documentId"`
	Question         string `json:"question"`
	MaxContextChunks int    `json:"maxContextChunks,omitempty"`
}

// QueryResponse is the body of a successful query.
type QueryResponse struct {
	Answer  string        `json:"answer"`
	Sources []SourceChunk `json:"sources"`
	Model   string        `json:"model"`
}
