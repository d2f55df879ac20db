package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/veldt-labs/minutex/internal/domain"
)

const docxDocumentPath = "word/document.xml"

// DocxExtractor pulls the paragraph text out of a DOCX container.
// A DOCX file is a zip archive whose main content lives in
// word/document.xml; runs of text sit in <w:t> elements, grouped into
// <w:p> paragraphs.
type DocxExtractor struct{}

func (e *DocxExtractor) Extract(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "file is not a valid docx archive", err)
	}

	var document *zip.File
	for _, f := range reader.File {
		if f.Name == docxDocumentPath {
			document = f
			break
		}
	}
	if document == nil {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "docx archive has no word/document.xml")
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	text, err := extractDocumentXML(rc)
	if err != nil {
		return "", fmt.Errorf("failed to parse document.xml: %w", err)
	}

	return text, nil
}

// extractDocumentXML walks the WordprocessingML token stream collecting
// text runs. Paragraph ends become newlines, explicit breaks and tabs
// become whitespace.
func extractDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	var inText bool

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
