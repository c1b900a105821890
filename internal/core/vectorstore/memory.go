// Package vectorstore provides the in-process vector index.
package vectorstore

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/models"
)

var _ core.VectorStore = (*Memory)(nil)

// Memory is a brute-force cosine-similarity store keyed by index.
type Memory struct {
	mu      sync.RWMutex
	indexes map[string]*memIndex
}

type memIndex struct {
	dimension int
	chunks    []models.DocumentChunk
	norms     []float64
}

func NewMemory() *Memory {
	return &Memory{indexes: make(map[string]*memIndex)}
}

// InsertChunks adds chunks to indexKey. All vectors of one index must share a dimension.
func (m *Memory) InsertChunks(_ context.Context, indexKey string, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.indexes[indexKey]
	if !ok {
		idx = &memIndex{dimension: len(chunks[0].Embedding)}
	}
	if idx.dimension == 0 {
		return errors.New("empty embedding vector")
	}
	for i := range chunks {
		if len(chunks[i].Embedding) != idx.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for i := range chunks {
		idx.chunks = append(idx.chunks, chunks[i])
		idx.norms = append(idx.norms, norm(chunks[i].Embedding))
	}
	m.indexes[indexKey] = idx
	return nil
}

func (m *Memory) SearchChunks(_ context.Context, indexKey string, queryVec []float32, limit int) ([]models.RetrievedChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.indexes[indexKey]
	if !ok {
		return nil, nil
	}
	if len(queryVec) != idx.dimension {
		return nil, errors.New("query vector dimension mismatch")
	}
	if limit <= 0 {
		limit = 4
	}

	qn := norm(queryVec)
	out := make([]models.RetrievedChunk, len(idx.chunks))
	for i := range idx.chunks {
		out[i] = models.RetrievedChunk{
			Position: idx.chunks[i].Position,
			Text:     idx.chunks[i].Text,
			Score:    cosine(idx.chunks[i].Embedding, queryVec, idx.norms[i], qn),
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) DropIndex(_ context.Context, indexKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexes, indexKey)
	return nil
}

// Len reports how many chunks indexKey holds.
func (m *Memory) Len(indexKey string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if idx, ok := m.indexes[indexKey]; ok {
		return len(idx.chunks)
	}
	return 0
}

func (m *Memory) Close() error { return nil }

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (na * nb)
}
