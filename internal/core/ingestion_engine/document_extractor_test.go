package ingestion_engine

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Deskmate/internal/core"
)

// createTestDocx builds a minimal DOCX archive around documentXML.
func createTestDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	files := []struct{ name, body string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`},
		{"word/document.xml", documentXML},
		{"docProps/core.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
			`<dc:title>Test</dc:title></cp:coreProperties>`},
	}
	for _, f := range files {
		fw, err := w.Create(f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// createTestPDF builds a single-font PDF with one page per entry in pages.
// An empty entry becomes a page without a content stream.
func createTestPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	const fontObj = 3
	next := fontObj + 1
	pageObjs := make([]int, len(pages))
	contentObjs := make([]int, len(pages))
	for i, text := range pages {
		pageObjs[i] = next
		next++
		if text != "" {
			contentObjs[i] = next
			next++
		}
	}

	objects := make([]string, next)
	kids := make([]string, len(pages))
	for i, n := range pageObjs {
		kids[i] = fmt.Sprintf("%d 0 R", n)
	}
	objects[1] = "<< /Type /Catalog /Pages 2 0 R >>"
	objects[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))
	objects[fontObj] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"
	for i, text := range pages {
		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >>", fontObj)
		if text != "" {
			page += fmt.Sprintf(" /Contents %d 0 R", contentObjs[i])
			stream := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
			objects[contentObjs[i]] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
		}
		objects[pageObjs[i]] = page + " >>"
	}

	buf := new(bytes.Buffer)
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, next)
	for n := 1; n < next; n++ {
		offsets[n] = buf.Len()
		fmt.Fprintf(buf, "%d 0 obj\n%s\nendobj\n", n, objects[n])
	}

	xref := buf.Len()
	fmt.Fprintf(buf, "xref\n0 %d\n0000000000 65535 f \n", next)
	for n := 1; n < next; n++ {
		fmt.Fprintf(buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", next, xref)
	return buf.Bytes()
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"notes.txt":        "txt",
		"REPORT.PDF":       "pdf",
		"archive.tar.docx": "docx",
		"README":           "",
		"trailing.":        "",
		".env":             "env",
	}
	for in, want := range tests {
		assert.Equal(t, want, Extension(in), in)
	}
}

func TestLoad_Text(t *testing.T) {
	l := NewDocumentLoader(nil)

	text, err := l.Load(context.Background(), "notes.TXT", []byte("The sky is blue.\nGrass is green."))
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.\nGrass is green.", text)
}

func TestLoad_InvalidUTF8(t *testing.T) {
	l := NewDocumentLoader(nil)

	_, err := l.Load(context.Background(), "bad.txt", []byte{0xff, 0xfe, 0xfd})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDecode))
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	l := NewDocumentLoader(nil)

	for _, name := range []string{"sheet.xlsx", "image.png", "README"} {
		_, err := l.Load(context.Background(), name, []byte("whatever"))
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, core.ErrUnsupportedFormat), name)
		assert.Contains(t, err.Error(), ".txt, .pdf, and .docx")
	}
}

func TestLoad_CorruptPDF(t *testing.T) {
	l := NewDocumentLoader(nil)

	_, err := l.Load(context.Background(), "broken.pdf", []byte("this is not a pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDecode))
}

func TestLoad_PDF(t *testing.T) {
	l := NewDocumentLoader(nil)

	text, err := l.Load(context.Background(), "report.pdf", createTestPDF(t, "Hello", "World", ""))
	require.NoError(t, err)

	hello := strings.Index(text, "Hello")
	world := strings.Index(text, "World")
	require.GreaterOrEqual(t, hello, 0)
	assert.Greater(t, world, hello)
	assert.Equal(t, 1, strings.Count(text, "Hello"))
	assert.Equal(t, 1, strings.Count(text, "World"))
}

func TestLoad_PDFWithOnlyBlankPages(t *testing.T) {
	text, err := NewDocumentLoader(nil).Load(context.Background(), "blank.pdf", createTestPDF(t, "", ""))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(text))
}

func TestLoad_Docx(t *testing.T) {
	l := NewDocumentLoader(nil)

	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := l.Load(context.Background(), "memo.docx", createTestDocx(t, doc))
	require.NoError(t, err)

	first := strings.Index(text, "First paragraph")
	second := strings.Index(text, "Second paragraph")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	assert.Contains(t, text[first:second], "\n")
}

func TestLoad_DocxTabBecomesLineBreak(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>tabbed</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := NewDocumentLoader(nil).Load(context.Background(), "memo.docx", createTestDocx(t, doc))
	require.NoError(t, err)
	assert.Contains(t, text, "Second\ntabbed")
}

func TestLoad_CorruptDocx(t *testing.T) {
	l := NewDocumentLoader(nil)

	_, err := l.Load(context.Background(), "memo.docx", []byte("PK not really"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDecode))
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDocumentLoader(nil).Load(ctx, "notes.txt", []byte("hi"))
	assert.ErrorIs(t, err, context.Canceled)
}
