package ingestion_engine

import (
	"context"

	"github.com/markdave123-py/Deskmate/internal/core/retrieval"
)

type Ingestor interface {
	Build(ctx context.Context, indexKey string, text string) (*retrieval.Retriever, error)
}

var _ Ingestor = (*DocumentIngestor)(nil)
