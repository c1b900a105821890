package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	middleware "github.com/markdave123-py/Deskmate/internal/api/middlewares"
	"github.com/markdave123-py/Deskmate/internal/models"
	"github.com/markdave123-py/Deskmate/internal/services"
)

type ChatHandler struct {
	sessions *services.SessionService
	log      *zap.SugaredLogger
}

func NewChatHandler(sessions *services.SessionService, log *zap.SugaredLogger) *ChatHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ChatHandler{sessions: sessions, log: log}
}

type ChatRequest struct {
	Query string `json:"query"`
}

type ChatResponse struct {
	*models.QueryAnswer
	Message string `json:"message,omitempty"`
}

func (h *ChatHandler) QueryDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, h.log, errSessionContext)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	ans, err := h.sessions.Query(r.Context(), sess.ID, req.Query)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	resp := ChatResponse{QueryAnswer: ans}
	if !ans.Found {
		resp.Message = services.MsgNoAnswer
	}
	writeJSON(w, http.StatusOK, resp)
}
