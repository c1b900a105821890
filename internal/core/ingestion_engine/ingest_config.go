package ingestion_engine

import (
	"go.uber.org/zap"

	"github.com/markdave123-py/Deskmate/internal/core"
)

// IngestConfig tunes the index-building pipeline.
//
// TargetTokens:     approximate tokens per chunk (e.g., 100).
// OverlapTokens:    token overlap between consecutive chunks for context bleed (e.g., 5).
// BatchSize:        how many chunks to embed in one provider call (e.g., 16).
// Concurrency:      embedding batches in flight at once.
// MaxFragmentLen:   soft upper bound (runes) for individual fragments cut from the text.
// TopK:             chunks returned per retrieval by the retrievers this ingestor builds.
type IngestConfig struct {
	TargetTokens   int
	OverlapTokens  int
	BatchSize      int
	Concurrency    int
	MaxFragmentLen int
	TopK           int
}

func (c *IngestConfig) withDefaults() *IngestConfig {
	out := IngestConfig{}
	if c != nil {
		out = *c
	}
	if out.TargetTokens <= 0 {
		out.TargetTokens = 100
	}
	if out.OverlapTokens < 0 {
		out.OverlapTokens = 0
	}
	if out.BatchSize <= 0 {
		out.BatchSize = 16
	}
	if out.Concurrency <= 0 {
		out.Concurrency = 1
	}
	if out.MaxFragmentLen <= 0 {
		out.MaxFragmentLen = 2000
	}
	if out.TopK <= 0 {
		out.TopK = 4
	}
	return &out
}

// chunk is the internal representation passed through the pipeline.
//
// Pos:      stable, zero-based position of the chunk inside the document.
// Text:     chunk content (built from one or more fragments).
// TokenCnt: approximate token count (used for batching and overlap math).
type chunk struct {
	Pos      int
	Text     string
	TokenCnt int
}

// DocumentIngestor builds retrievers from document text:
//
// store:     vector index the chunks are written to.
// embedder:  embedding provider (Gemini or a test stub).
// cfg:       runtime tuning knobs for the pipeline.
type DocumentIngestor struct {
	store    core.VectorStore
	embedder core.EmbeddingProvider
	cfg      *IngestConfig
	log      *zap.SugaredLogger
}
