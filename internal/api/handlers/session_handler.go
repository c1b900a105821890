package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	middleware "github.com/markdave123-py/Deskmate/internal/api/middlewares"
	"github.com/markdave123-py/Deskmate/internal/services"
)

type SessionHandler struct {
	sessions *services.SessionService
	log      *zap.SugaredLogger
}

func NewSessionHandler(sessions *services.SessionService, log *zap.SugaredLogger) *SessionHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SessionHandler{sessions: sessions, log: log}
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.sessions.Create())
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, h.log, errSessionContext)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
