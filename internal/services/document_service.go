package services

import (
	"context"
	"path"
	"strings"

	"github.com/markdave123-py/Deskmate/internal/core"
)

// DocumentService stages extracted document text outside the process. A nil
// object client turns staging into a no-op.
type DocumentService struct {
	storage core.ObjectClient
}

func NewDocumentService(storage core.ObjectClient) *DocumentService {
	return &DocumentService{storage: storage}
}

func (s *DocumentService) Enabled() bool { return s != nil && s.storage != nil }

// Stage writes text under the session's key, replacing the previous upload.
// It returns the object's URL, or "" when staging is disabled.
func (s *DocumentService) Stage(ctx context.Context, sessionID, filename, text string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	return s.storage.UploadFile(ctx, s.objectKey(sessionID, filename), []byte(text), "text/plain; charset=utf-8")
}

// Unstage removes whatever was staged for filename in the session.
func (s *DocumentService) Unstage(ctx context.Context, sessionID, filename string) error {
	if !s.Enabled() || filename == "" {
		return nil
	}
	return s.storage.DeleteFile(ctx, s.objectKey(sessionID, filename))
}

// objectKey creates a consistent key layout.
func (s *DocumentService) objectKey(sessionID, filename string) string {
	filename = strings.TrimSpace(path.Base(filename))
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("sessions", sessionID, "documents", filename+".txt")
}
