package services

import (
	"errors"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/core/validation"
)

const (
	MsgUploadSuccess = "Document uploaded successfully! You can now ask questions."
	MsgNoAnswer      = "No answer found."
)

// UserMessage renders err as the text shown to the user. Provider failures
// are surfaced verbatim.
func UserMessage(err error) string {
	var ve *core.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		if ve.Field == validation.FieldPhone {
			return "Invalid phone number format."
		}
		return "Validation Error: " + ve.Error()
	case errors.Is(err, core.ErrUnsupportedFormat):
		return "Only .txt, .pdf, and .docx files are supported."
	case errors.Is(err, core.ErrDecode):
		return "Could not read the document. Make sure it is a valid, UTF-8 encoded file."
	case errors.Is(err, core.ErrEmptyDocument):
		return "The document does not contain any text."
	case errors.Is(err, core.ErrEmptyQuery):
		return "Please enter a query."
	case errors.Is(err, core.ErrMissingFields):
		return "Please fill in all the fields."
	case errors.Is(err, core.ErrParse):
		return "Could not parse date. Please try again."
	case errors.Is(err, core.ErrNoDocument):
		return "Please upload a document first."
	case errors.Is(err, core.ErrSessionNotFound):
		return "Session not found."
	default:
		return err.Error()
	}
}
