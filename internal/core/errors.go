package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat  = errors.New("only .txt, .pdf, and .docx files are supported")
	ErrDecode             = errors.New("could not decode document")
	ErrEmptyDocument      = errors.New("document contains no extractable text")
	ErrEmbeddingProvider  = errors.New("embedding provider error")
	ErrGenerationProvider = errors.New("generation provider error")
	ErrParse              = errors.New("could not parse date. Please try again")
	ErrEmptyQuery         = errors.New("please enter a query")
	ErrMissingFields      = errors.New("please fill in all the fields")
	ErrNoDocument         = errors.New("no document uploaded for this session")
	ErrSessionNotFound    = errors.New("session not found")
)

// ValidationError reports one rejected contact field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return e.Reason
}
