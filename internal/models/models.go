package models

import (
	"time"
)

// Session is one user's workspace: at most one active document and its retriever.
type Session struct {
	ID           string    `json:"id"`
	DocumentName string    `json:"document_name,omitempty"`
	DocumentHash string    `json:"document_hash,omitempty"`
	ChunkCount   int       `json:"chunk_count,omitempty"`
	StagedURL    string    `json:"staged_url,omitempty"`
	Status       string    `json:"status"` // empty | ready
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

const (
	SessionEmpty = "empty"
	SessionReady = "ready"
)

// DocumentChunk represents one text chunk from a document.
type DocumentChunk struct {
	ID         string    `db:"id" json:"id"`
	IndexKey   string    `db:"index_key" json:"index_key"`
	Text       string    `db:"text" json:"text"`
	Embedding  []float32 `db:"embedding" json:"-"` // pgvector column
	Position   int       `db:"position" json:"position"`
	TokenCount int       `db:"token_count" json:"token_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RetrievedChunk is a chunk returned by similarity search, best first.
type RetrievedChunk struct {
	Position int     `json:"position"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// QueryAnswer is the outcome of one question against one document.
// Found is false when the model produced no answer text.
type QueryAnswer struct {
	Query   string           `json:"query"`
	Text    string           `json:"answer,omitempty"`
	Found   bool             `json:"found"`
	Sources []RetrievedChunk `json:"sources,omitempty"`
}

// ContactInfo is a validated (name, phone, email) bundle.
type ContactInfo struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
}

// AppointmentRequest is produced only after contact validation and date extraction succeed.
type AppointmentRequest struct {
	Contact ContactInfo `json:"contact"`
	Date    string      `json:"date"` // YYYY-MM-DD
	Status  string      `json:"status"`
}

const AppointmentConfirmed = "confirmed"
