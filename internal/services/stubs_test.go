package services

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/core/ingestion_engine"
	"github.com/markdave123-py/Deskmate/internal/core/vectorstore"
)

// countingEmbedder returns letter-frequency vectors and counts provider calls.
type countingEmbedder struct {
	calls atomic.Int32
	err   error
}

func (e *countingEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 27)
		for _, r := range strings.ToLower(t) {
			if r >= 'a' && r <= 'z' {
				v[r-'a']++
			}
		}
		v[26] = 1
		out[i] = v
	}
	return out, nil
}

// contextLLM answers with the first line of the context it was given.
type contextLLM struct {
	calls  atomic.Int32
	answer *string
	err    error
}

func (l *contextLLM) Generate(_ context.Context, _ string, userPrompt string) (string, error) {
	l.calls.Add(1)
	if l.err != nil {
		return "", l.err
	}
	if l.answer != nil {
		return *l.answer, nil
	}
	body := strings.TrimPrefix(userPrompt, "Context:\n")
	first, _, _ := strings.Cut(body, "\n")
	return first, nil
}

var (
	_ core.EmbeddingProvider = (*countingEmbedder)(nil)
	_ core.LLMProvider       = (*contextLLM)(nil)
)

type fixture struct {
	store *vectorstore.Memory
	emb   *countingEmbedder
	llm   *contextLLM
	cache *RetrieverCache
	qa    *QAService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: vectorstore.NewMemory(),
		emb:   &countingEmbedder{},
		llm:   &contextLLM{},
	}
	ing := ingestion_engine.NewDocumentIngestor(f.store, f.emb, &ingestion_engine.IngestConfig{TopK: 2}, nil)
	f.cache = NewRetrieverCache(ing, f.store, nil)
	f.qa = NewQAService(f.llm, nil)
	require.NotNil(t, f.cache)
	return f
}
