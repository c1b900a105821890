package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/core/ingestion_engine"
	objectclient "github.com/markdave123-py/Deskmate/internal/core/object-client"
	"github.com/markdave123-py/Deskmate/internal/models"
)

func newSessionService(t *testing.T, staging *DocumentService, ttl time.Duration) (*SessionService, *fixture) {
	t.Helper()
	f := newFixture(t)
	if staging == nil {
		staging = NewDocumentService(nil)
	}
	return NewSessionService(ingestion_engine.NewDocumentLoader(nil), f.cache, f.qa, staging, ttl, nil), f
}

func TestSession_UploadAndQuery(t *testing.T) {
	svc, f := newSessionService(t, nil, time.Hour)
	ctx := context.Background()

	sess := svc.Create()
	assert.Equal(t, models.SessionEmpty, sess.Status)

	_, err := svc.Query(ctx, sess.ID, "What color is the sky?")
	assert.ErrorIs(t, err, core.ErrNoDocument)

	got, err := svc.Upload(ctx, sess.ID, "facts.txt", []byte("The sky is blue."))
	require.NoError(t, err)
	assert.Equal(t, models.SessionReady, got.Status)
	assert.Equal(t, "facts.txt", got.DocumentName)
	assert.Equal(t, 1, got.ChunkCount)
	assert.Len(t, got.DocumentHash, 64)

	ans, err := svc.Query(ctx, sess.ID, "What color is the sky?")
	require.NoError(t, err)
	assert.Contains(t, ans.Text, "blue")

	// Same content again: no new embedding calls for the index.
	before := f.emb.calls.Load()
	_, err = svc.Upload(ctx, sess.ID, "facts-copy.txt", []byte("The sky is blue."))
	require.NoError(t, err)
	assert.Equal(t, before, f.emb.calls.Load())
}

func TestSession_UploadErrors(t *testing.T) {
	svc, _ := newSessionService(t, nil, time.Hour)
	ctx := context.Background()
	sess := svc.Create()

	_, err := svc.Upload(ctx, sess.ID, "sheet.xlsx", []byte("a,b"))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	_, err = svc.Upload(ctx, sess.ID, "bad.txt", []byte{0xff, 0xfe})
	assert.ErrorIs(t, err, core.ErrDecode)

	_, err = svc.Upload(ctx, "missing", "facts.txt", []byte("The sky is blue."))
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	got, err := svc.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionEmpty, got.Status)
}

func TestSession_EndReleasesIndexAndStagedText(t *testing.T) {
	local, err := objectclient.NewLocalClient(t.TempDir())
	require.NoError(t, err)
	svc, f := newSessionService(t, NewDocumentService(local), time.Hour)
	ctx := context.Background()

	sess := svc.Create()
	got, err := svc.Upload(ctx, sess.ID, "facts.txt", []byte("The sky is blue."))
	require.NoError(t, err)
	require.NotEmpty(t, got.StagedURL)

	staged := filepath.FromSlash(got.StagedURL[len("file://"):])
	data, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", string(data))

	key := f.cache.Current(sess.ID).Key()
	require.NoError(t, svc.End(ctx, sess.ID))

	assert.Equal(t, 0, f.store.Len(key))
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))

	_, err = svc.Get(sess.ID)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.ErrorIs(t, svc.End(ctx, sess.ID), core.ErrSessionNotFound)
}

func TestSession_SweepExpiresIdleSessions(t *testing.T) {
	svc, f := newSessionService(t, nil, 10*time.Minute)
	ctx := context.Background()

	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	idle := svc.Create()
	_, err := svc.Upload(ctx, idle.ID, "facts.txt", []byte("The sky is blue."))
	require.NoError(t, err)
	key := f.cache.Current(idle.ID).Key()

	now = now.Add(8 * time.Minute)
	active := svc.Create()

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, svc.Sweep(ctx))

	_, err = svc.Get(idle.ID)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.Equal(t, 0, f.store.Len(key))

	_, err = svc.Get(active.ID)
	assert.NoError(t, err)
}

func TestSession_StaleUploadDoesNotOverwriteNewerDocument(t *testing.T) {
	svc, f := newSessionService(t, nil, time.Hour)
	ctx := context.Background()
	sess := svc.Create()

	older, _, err := f.cache.Acquire(ctx, sess.ID, "The sky is blue.")
	require.NoError(t, err)
	newer, _, err := f.cache.Acquire(ctx, sess.ID, "Grass is green.")
	require.NoError(t, err)
	require.Equal(t, newer.Key(), f.cache.Current(sess.ID).Key())

	got, committed, found := svc.commitUpload(sess.ID, "sky.txt", older, "hash", "")
	assert.True(t, found)
	assert.False(t, committed)
	assert.Empty(t, got.DocumentName)

	got, committed, found = svc.commitUpload(sess.ID, "grass.txt", newer, "hash", "")
	assert.True(t, found)
	assert.True(t, committed)
	assert.Equal(t, "grass.txt", got.DocumentName)
	assert.Equal(t, models.SessionReady, got.Status)

	stored, err := svc.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "grass.txt", stored.DocumentName)

	_, _, found = svc.commitUpload("missing", "x.txt", newer, "hash", "")
	assert.False(t, found)
}
