package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/core/ingestion_engine"
	"github.com/markdave123-py/Deskmate/internal/core/retrieval"
)

// RetrieverCache holds one retriever per session. A slot is replaced, never
// merged, when the session uploads a different document.
type RetrieverCache struct {
	ingestor ingestion_engine.Ingestor
	store    core.VectorStore
	log      *zap.SugaredLogger

	mu    sync.Mutex
	slots map[string]*retrieval.Retriever
	group singleflight.Group
}

func NewRetrieverCache(ing ingestion_engine.Ingestor, store core.VectorStore, log *zap.SugaredLogger) *RetrieverCache {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RetrieverCache{
		ingestor: ing,
		store:    store,
		log:      log,
		slots:    make(map[string]*retrieval.Retriever),
	}
}

// IndexKey scopes a document's index to its session.
func IndexKey(sessionID, text string) string {
	sum := sha256.Sum256([]byte(text))
	return sessionID + "/" + hex.EncodeToString(sum[:])
}

// Acquire returns the session's retriever for text, building it at most once.
// reused is true when the slot already held an index for identical text.
// Concurrent callers asking for the same key wait for the single build in flight.
func (c *RetrieverCache) Acquire(ctx context.Context, sessionID, text string) (r *retrieval.Retriever, reused bool, err error) {
	key := IndexKey(sessionID, text)

	if cur := c.Current(sessionID); cur != nil && cur.Key() == key {
		return cur, true, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have finished between our check and Do.
		if cur := c.Current(sessionID); cur != nil && cur.Key() == key {
			return acquired{r: cur, cached: true}, nil
		}

		built, err := c.ingestor.Build(ctx, key, text)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		old := c.slots[sessionID]
		c.slots[sessionID] = built
		c.mu.Unlock()

		if old != nil && old.Key() != key {
			c.drop(ctx, old.Key())
		}
		return acquired{r: built}, nil
	})
	if err != nil {
		return nil, false, err
	}
	a := v.(acquired)
	return a.r, a.cached || shared, nil
}

type acquired struct {
	r      *retrieval.Retriever
	cached bool
}

// Current returns the session's retriever, or nil before any upload.
func (c *RetrieverCache) Current(sessionID string) *retrieval.Retriever {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots[sessionID]
}

// Evict forgets the session's retriever and drops its index.
func (c *RetrieverCache) Evict(ctx context.Context, sessionID string) {
	c.mu.Lock()
	old := c.slots[sessionID]
	delete(c.slots, sessionID)
	c.mu.Unlock()

	if old != nil {
		c.drop(ctx, old.Key())
	}
}

func (c *RetrieverCache) drop(ctx context.Context, key string) {
	if err := c.store.DropIndex(context.WithoutCancel(ctx), key); err != nil {
		c.log.Warnw("failed to drop index", "index", key, "error", err)
		return
	}
	c.log.Debugw("index dropped", "index", key)
}
