package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/models"
)

type lookupStub map[string]*models.Session

func (l lookupStub) Get(id string) (*models.Session, error) {
	if s, ok := l[id]; ok {
		return s, nil
	}
	return nil, core.ErrSessionNotFound
}

func newRouter(sessions SessionLookup) *chi.Mux {
	r := chi.NewRouter()
	r.With(SessionMiddleware(sessions)).Get("/s/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sess.ID))
	})
	return r
}

func TestSessionMiddleware(t *testing.T) {
	r := newRouter(lookupStub{"abc": {ID: "abc"}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/s/abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/s/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Session not found."}`, rec.Body.String())
}

func TestSessionFrom_Missing(t *testing.T) {
	_, ok := SessionFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	obs, logs := observer.New(zap.DebugLevel)
	log := zap.New(obs).Sugar()

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/x", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(15), fields["bytes"])
	assert.Equal(t, "/api/x", fields["path"])
}
