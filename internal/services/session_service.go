package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/core/retrieval"
	"github.com/markdave123-py/Deskmate/internal/models"
)

// SessionService owns the in-memory sessions and drives upload and query
// through the loader, the retriever cache and the QA pipeline.
type SessionService struct {
	loader core.DocumentExtractor
	cache  *RetrieverCache
	qa     *QAService
	docs   *DocumentService
	ttl    time.Duration
	now    func() time.Time
	log    *zap.SugaredLogger

	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewSessionService(
	loader core.DocumentExtractor,
	cache *RetrieverCache,
	qa *QAService,
	docs *DocumentService,
	ttl time.Duration,
	log *zap.SugaredLogger,
) *SessionService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SessionService{
		loader:   loader,
		cache:    cache,
		qa:       qa,
		docs:     docs,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
		sessions: make(map[string]*models.Session),
	}
}

func (s *SessionService) Create() *models.Session {
	now := s.now()
	sess := &models.Session{
		ID:           uuid.NewString(),
		Status:       models.SessionEmpty,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Infow("session created", "session", sess.ID)
	cp := *sess
	return &cp
}

// Get returns a snapshot of the session.
func (s *SessionService) Get(id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

// End removes the session together with its index and staged text.
func (s *SessionService) End(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return core.ErrSessionNotFound
	}
	s.release(ctx, sess)
	s.log.Infow("session ended", "session", id)
	return nil
}

// Upload extracts the file, builds or reuses its index, stages the text and makes it the session's only
// document. Uploading identical content again reuses the existing index.
func (s *SessionService) Upload(ctx context.Context, id, filename string, data []byte) (*models.Session, error) {
	prev, err := s.touch(id)
	if err != nil {
		return nil, err
	}

	text, err := s.loader.Load(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	r, reused, err := s.cache.Acquire(ctx, id, text)
	if err != nil {
		return nil, err
	}

	if prev.DocumentName != "" && prev.DocumentName != filename {
		if err := s.docs.Unstage(ctx, id, prev.DocumentName); err != nil {
			s.log.Warnw("failed to remove staged text", "session", id, "file", prev.DocumentName, "error", err)
		}
	}
	stagedURL, err := s.docs.Stage(ctx, id, filename, text)
	if err != nil {
		s.log.Warnw("failed to stage document text", "session", id, "file", filename, "error", err)
	}

	sum := sha256.Sum256([]byte(text))
	cp, committed, ok := s.commitUpload(id, filename, r, hex.EncodeToString(sum[:]), stagedURL)
	if !ok {
		// Ended while the index was being built.
		s.cache.Evict(ctx, id)
		_ = s.docs.Unstage(ctx, id, filename)
		return nil, core.ErrSessionNotFound
	}
	if !committed {
		s.log.Infow("upload superseded", "session", id, "file", filename, "current", cp.DocumentName)
		return &cp, nil
	}

	s.log.Infow("document ready", "session", id, "file", filename, "chunks", cp.ChunkCount, "reused", reused)
	return &cp, nil
}

// commitUpload records the uploaded document on the session, but only while r
// still occupies the session's cache slot. A newer upload that replaced the slot
// wins and the session is returned unchanged. found is false when the session is gone.
func (s *SessionService) commitUpload(id, filename string, r *retrieval.Retriever, hash, stagedURL string) (sess models.Session, committed, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[id]
	if !ok {
		return models.Session{}, false, false
	}
	if slot := s.cache.Current(id); slot == nil || slot.Key() != r.Key() {
		return *cur, false, true
	}

	cur.DocumentName = filename
	cur.DocumentHash = hash
	cur.ChunkCount = r.ChunkCount()
	cur.StagedURL = stagedURL
	cur.Status = models.SessionReady
	cur.LastActiveAt = s.now()
	return *cur, true, true
}

// Query answers against the session's current document.
func (s *SessionService) Query(ctx context.Context, id, query string) (*models.QueryAnswer, error) {
	if _, err := s.touch(id); err != nil {
		return nil, err
	}
	return s.qa.Answer(ctx, query, s.cache.Current(id))
}

// Start runs the idle-session janitor until ctx is done. A non-positive TTL disables it.
func (s *SessionService) Start(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}

	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	if interval > time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(ctx); n > 0 {
					s.log.Infow("expired idle sessions", "count", n)
				}
			}
		}
	}()
}

// Sweep ends every session idle for longer than the TTL and returns how many it ended.
func (s *SessionService) Sweep(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*models.Session
	for id, sess := range s.sessions {
		if sess.LastActiveAt.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.release(ctx, sess)
	}
	return len(expired)
}

// touch marks the session active and returns a snapshot taken before the update.
func (s *SessionService) touch(id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.Session{}, core.ErrSessionNotFound
	}
	prev := *sess
	sess.LastActiveAt = s.now()
	return prev, nil
}

func (s *SessionService) release(ctx context.Context, sess *models.Session) {
	s.cache.Evict(ctx, sess.ID)
	if err := s.docs.Unstage(ctx, sess.ID, sess.DocumentName); err != nil {
		s.log.Warnw("failed to remove staged text", "session", sess.ID, "error", err)
	}
}
