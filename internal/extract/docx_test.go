package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/minutex/internal/domain"
)

// buildDocx assembles a minimal DOCX container around the given
// document.xml body.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Action items from the</w:t></w:r><w:r><w:t xml:space="preserve"> sprint review</w:t></w:r></w:p>
    <w:p><w:r><w:t>Budget approved</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestDocxExtractor_Extract(t *testing.T) {
	data := buildDocx(t, docxBody)

	text, err := (&DocxExtractor{}).Extract(data)
	require.NoError(t, err)

	assert.Contains(t, text, "Action items from the sprint review")
	assert.Contains(t, text, "Budget approved")
}

func TestDocxExtractor_NotAZip(t *testing.T) {
	_, err := (&DocxExtractor{}).Extract([]byte("plain bytes, not a zip"))

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestDocxExtractor_MissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = (&DocxExtractor{}).Extract(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}

func TestRegistry_Extract_Docx(t *testing.T) {
	registry := NewRegistry()
	data := buildDocx(t, docxBody)

	text, err := registry.Extract("docx", data)
	require.NoError(t, err)
	assert.Contains(t, text, "Budget approved")
}

func TestRegistry_Extract_NormalizesFormatTag(t *testing.T) {
	registry := NewRegistry()

	text, err := registry.Extract(".TXT", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestRegistry_Extract_UnsupportedFormat(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Extract("pdf", []byte("%PDF-1.7"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestRegistry_Extract_EmptyContent(t *testing.T) {
	registry := NewRegistry()

	emptyDoc := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body><w:p><w:r><w:t>   </w:t></w:r></w:p></w:body>
</w:document>`)

	_, err := registry.Extract("docx", emptyDoc)
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}

func TestRegistry_Supported(t *testing.T) {
	registry := NewRegistry()

	assert.True(t, registry.Supported("docx"))
	assert.True(t, registry.Supported("md"))
	assert.False(t, registry.Supported("pdf"))
}
