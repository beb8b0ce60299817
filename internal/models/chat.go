package models

import (
	"time"
)

// MessageRole identifies who produced a chat turn.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one turn in a per-document conversation. Messages are
// immutable once created; user messages never carry sources.
type ChatMessage struct {
	ID        string        `json:"id"`
	Role      MessageRole   `json:"role"`
	Content   string        `json:"content"`
	Sources   []SourceChunk `json:"sources,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// ConversationHistory is the ordered log of messages for exactly one
// document.
type ConversationHistory struct {
	DocumentID string        `json:"documentId"`
	Messages   []ChatMessage `json:"messages"`
}
