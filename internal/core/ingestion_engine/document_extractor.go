package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/markdave123-py/Deskmate/internal/core"
)

var _ core.DocumentExtractor = (*DocumentLoader)(nil)

// DocumentLoader converts uploaded txt, pdf and docx files to text in memory.
type DocumentLoader struct {
	log *zap.SugaredLogger
}

func NewDocumentLoader(log *zap.SugaredLogger) *DocumentLoader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DocumentLoader{log: log}
}

// Load picks a parser from the final extension of filename (case-insensitive).
func (l *DocumentLoader) Load(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := Extension(filename)
	var (
		text string
		err  error
	)
	switch ext {
	case "txt":
		text, err = decodeText(data)
	case "pdf":
		text, err = extractPDF(data)
	case "docx":
		text, err = extractDocx(data)
	default:
		return "", fmt.Errorf("%w (got %q)", core.ErrUnsupportedFormat, filename)
	}
	if err != nil {
		l.log.Warnw("document extraction failed", "file", filename, "format", ext, "error", err)
		return "", err
	}

	l.log.Debugw("document extracted", "file", filename, "format", ext, "chars", utf8.RuneCountInString(text))
	return text, nil
}

// Extension returns the lower-cased suffix after the last dot, or "" when there is none.
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

func decodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text file is not valid UTF-8", core.ErrDecode)
	}
	return string(data), nil
}

// extractPDF concatenates every page's text with no separator. Pages that yield
// nothing contribute an empty segment.
func extractPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: pdf: %v", core.ErrDecode, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", core.ErrDecode, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}

// extractDocx returns the paragraphs of the main document part joined by newlines.
func extractDocx(data []byte) (string, error) {
	body, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", core.ErrDecode, err)
	}
	// docconv wraps the body in header/footer separators and opens every paragraph with a break.
	return strings.Trim(body, "\n"), nil
}
