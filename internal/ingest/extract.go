// Package ingest extracts plain text from uploaded files. PDF support uses
// github.com/ledongthuc/pdf; plain text and markdown pass through as-is.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

// SupportedExtensions lists the accepted upload file types.
var SupportedExtensions = []string{".pdf", ".txt", ".md"}

// Supported reports whether the filename has an accepted extension.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ExtractText extracts text from a saved upload based on its extension.
// Returns ErrUnsupportedFileType for unknown extensions and
// ErrExtractionFailed when a readable file yields no text.
func ExtractText(path, filename string) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = extractPDF(path)
	case ".txt", ".md":
		text, err = extractPlain(path)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, filepath.Ext(filename))
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: file may be image-based or corrupted", domain.ErrExtractionFailed)
	}
	return text, nil
}

func extractPDF(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", domain.ErrExtractionFailed, err)
	}
	defer f.Close()

	b, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", domain.ErrExtractionFailed, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", fmt.Errorf("%w: read pdf buffer: %v", domain.ErrExtractionFailed, err)
	}
	return buf.String(), nil
}

func extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read file: %v", domain.ErrExtractionFailed, err)
	}
	return string(data), nil
}
