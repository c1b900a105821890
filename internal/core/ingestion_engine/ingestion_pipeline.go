package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/core/retrieval"
	"github.com/markdave123-py/Deskmate/internal/models"
)

// NewDocumentIngestor wires the chunk → embed → store pipeline.
func NewDocumentIngestor(store core.VectorStore, emb core.EmbeddingProvider, cfg *IngestConfig, log *zap.SugaredLogger) *DocumentIngestor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DocumentIngestor{
		store: store, embedder: emb, cfg: cfg.withDefaults(), log: log,
	}
}

// Build chunks text, embeds every chunk and writes the vectors under indexKey.
// The index is written only after every batch embedded successfully, so a failed
// build leaves nothing behind.
func (i *DocumentIngestor) Build(ctx context.Context, indexKey string, text string) (*retrieval.Retriever, error) {
	started := time.Now()

	// Build an errgroup to tie the pipeline stages together.
	g, gctx := errgroup.WithContext(ctx)

	// text -> fragments (receive-only channel).
	fragCh := i.streamFragments(gctx, g, text, i.cfg.MaxFragmentLen)

	// fragments -> chunks (receive-only channel).
	chunkCh := i.streamChunk(gctx, g, fragCh, i.cfg.TargetTokens, i.cfg.OverlapTokens)

	// chunks -> embedded rows.
	var rows []models.DocumentChunk
	g.Go(func() error {
		var err error
		rows, err = i.embedChunks(gctx, indexKey, chunkCh, i.cfg.BatchSize)
		return err
	})

	// Wait for all stages. Any error cancels the rest.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.ErrEmptyDocument
	}

	if err := i.store.InsertChunks(ctx, indexKey, rows); err != nil {
		_ = i.store.DropIndex(context.WithoutCancel(ctx), indexKey)
		return nil, fmt.Errorf("insert chunks: %w", err)
	}

	i.log.Infow("index built", "index", indexKey, "chunks", len(rows), "elapsed", time.Since(started).String())
	return retrieval.NewRetriever(indexKey, len(rows), i.store, i.embedder, i.cfg.TopK), nil
}

// embedChunks consumes chunks and embeds them in batches, keeping at most
// cfg.Concurrency provider calls in flight. Rows come back in chunk order.
func (i *DocumentIngestor) embedChunks(
	ctx context.Context,
	indexKey string,
	in <-chan chunk,
	batchSize int,
) ([]models.DocumentChunk, error) {
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(i.cfg.Concurrency)

	var (
		mu   sync.Mutex
		rows []models.DocumentChunk
	)

	// flush embeds one batch and appends the resulting rows.
	flush := func(items []chunk) {
		if len(items) == 0 {
			return
		}
		eg.Go(func() error {
			texts := make([]string, len(items))
			for idx := range items {
				texts[idx] = items[idx].Text
			}

			vecs, err := i.embedder.EmbedTexts(ectx, texts)
			if err != nil {
				if errors.Is(err, core.ErrEmbeddingProvider) {
					return err
				}
				return fmt.Errorf("%w: %v", core.ErrEmbeddingProvider, err)
			}
			if len(vecs) != len(items) {
				return fmt.Errorf("%w: embed size mismatch: got %d want %d", core.ErrEmbeddingProvider, len(vecs), len(items))
			}

			now := time.Now()
			batch := make([]models.DocumentChunk, len(items))
			for k := range items {
				batch[k] = models.DocumentChunk{
					ID:         uuid.NewString(),
					IndexKey:   indexKey,
					Text:       items[k].Text,
					Embedding:  vecs[k],
					Position:   items[k].Pos,
					TokenCount: items[k].TokenCnt,
					CreatedAt:  now,
				}
			}

			mu.Lock()
			rows = append(rows, batch...)
			mu.Unlock()
			return nil
		})
	}

	batch := make([]chunk, 0, batchSize)
	for c := range in {
		batch = append(batch, c)
		if len(batch) == batchSize {
			flush(batch)
			batch = make([]chunk, 0, batchSize)
		}
	}
	// Final tail.
	flush(batch)

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(a, b int) bool { return rows[a].Position < rows[b].Position })
	return rows, nil
}
