package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/services"
)

const msgInternal = "Something went wrong. Please try again."

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {"error": msg} with a status picked from the error taxonomy.
func writeError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	status := statusFor(err)
	msg := services.UserMessage(err)
	if status == http.StatusInternalServerError {
		log.Errorw("request failed", "error", err)
		msg = msgInternal
	} else if status >= http.StatusBadGateway {
		log.Warnw("provider failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func statusFor(err error) int {
	var (
		ve     *core.ValidationError
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &ve),
		errors.Is(err, core.ErrDecode),
		errors.Is(err, core.ErrEmptyDocument),
		errors.Is(err, core.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrEmptyQuery),
		errors.Is(err, core.ErrMissingFields):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoDocument):
		return http.StatusConflict
	case errors.Is(err, core.ErrEmbeddingProvider),
		errors.Is(err, core.ErrGenerationProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
