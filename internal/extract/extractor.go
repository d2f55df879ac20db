// Package extract converts uploaded document bytes into plain text.
package extract

import (
	"strings"

	"github.com/veldt-labs/minutex/internal/domain"
)

// Extractor converts raw document bytes of one format into plain text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// Registry maps a declared format tag (normalized file extension, e.g.
// "docx") to the extractor handling it.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry creates a registry with the default extractors installed.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	r.Register("docx", &DocxExtractor{})
	r.Register("txt", &PlainTextExtractor{})
	r.Register("md", &PlainTextExtractor{})
	return r
}

// Register installs an extractor for a format tag, replacing any existing one.
func (r *Registry) Register(format string, e Extractor) {
	r.extractors[normalizeFormat(format)] = e
}

// Extract resolves the extractor for the declared format and runs it.
// Returns domain.ErrUnsupportedFormat for unknown formats and
// domain.ErrEmptyContent when extraction yields only whitespace.
func (r *Registry) Extract(format string, data []byte) (string, error) {
	e, ok := r.extractors[normalizeFormat(format)]
	if !ok {
		return "", domain.ErrUnsupportedFormat
	}

	text, err := e.Extract(data)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyContent
	}

	return text, nil
}

// Supported reports whether a format tag has a registered extractor.
func (r *Registry) Supported(format string) bool {
	_, ok := r.extractors[normalizeFormat(format)]
	return ok
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}

// PlainTextExtractor passes UTF-8 text documents through unchanged.
type PlainTextExtractor struct{}

func (e *PlainTextExtractor) Extract(data []byte) (string, error) {
	return string(data), nil
}
