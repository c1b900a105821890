// Package retrieval holds the handle to a built document index.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/models"
)

// Retriever is valid only for the document text it was built from. Callers
// replace it on a new upload; they never add chunks to an existing one.
type Retriever struct {
	key      string
	chunks   int
	topK     int
	store    core.VectorStore
	embedder core.EmbeddingProvider
}

func NewRetriever(key string, chunks int, store core.VectorStore, emb core.EmbeddingProvider, topK int) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{key: key, chunks: chunks, topK: topK, store: store, embedder: emb}
}

func (r *Retriever) Key() string     { return r.key }
func (r *Retriever) ChunkCount() int { return r.chunks }
func (r *Retriever) TopK() int       { return r.topK }

// Retrieve embeds query and returns the topK most similar chunks, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]models.RetrievedChunk, error) {
	vecs, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		if errors.Is(err, core.ErrEmbeddingProvider) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrEmbeddingProvider, err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned for query", core.ErrEmbeddingProvider)
	}

	chunks, err := r.store.SearchChunks(ctx, r.key, vecs[0], r.topK)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return chunks, nil
}
