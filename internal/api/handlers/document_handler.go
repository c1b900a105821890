package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	middleware "github.com/markdave123-py/Deskmate/internal/api/middlewares"
	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/models"
	"github.com/markdave123-py/Deskmate/internal/services"
)

var errSessionContext = errors.New("session missing from request context")

type DocumentHandler struct {
	sessions *services.SessionService
	maxBytes int64
	log      *zap.SugaredLogger
}

func NewDocumentHandler(sessions *services.SessionService, maxUploadMB int, log *zap.SugaredLogger) *DocumentHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DocumentHandler{sessions: sessions, maxBytes: int64(maxUploadMB) << 20, log: log}
}

type uploadResponse struct {
	Message string          `json:"message"`
	Session *models.Session `json:"session"`
}

// UploadDocument reads the multipart "file" field and makes it the session's document.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, h.log, errSessionContext)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || r.ContentLength > h.maxBytes {
			writeError(w, h.log, &http.MaxBytesError{Limit: h.maxBytes})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file"})
		return
	}
	defer file.Close()

	// Removes any path components
	filename := filepath.Base(header.Filename)

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, h.log, fmt.Errorf("read upload: %w", err))
		return
	}

	updated, err := h.sessions.Upload(r.Context(), sess.ID, filename, data)
	if err != nil {
		if !errors.Is(err, core.ErrUnsupportedFormat) {
			h.log.Infow("upload rejected", "session", sess.ID, "file", filename, "error", err)
		}
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Message: services.MsgUploadSuccess, Session: updated})
}
