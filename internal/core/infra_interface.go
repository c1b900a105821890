package core

import (
	"context"

	"github.com/markdave123-py/Deskmate/internal/models"
)

// VectorStore holds embedded chunks grouped under an index key and answers
// nearest-neighbour queries scoped to one key. Keys never see each other's chunks.
type VectorStore interface {
	InsertChunks(ctx context.Context, indexKey string, chunks []models.DocumentChunk) error
	SearchChunks(ctx context.Context, indexKey string, queryVec []float32, limit int) ([]models.RetrievedChunk, error)
	DropIndex(ctx context.Context, indexKey string) error
	Close() error
}

// ObjectClient stages extracted document text somewhere outside the process
// (local temp dir or S3). It’s optional: a nil client disables staging.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, key string) error
}
