package domain

import "strings"

// DocumentStatus is the processing state of an uploaded document.
type DocumentStatus string

// Document status values.
const (
	StatusPending          DocumentStatus = "pending"
	StatusProcessed        DocumentStatus = "processed"
	StatusExtractionFailed DocumentStatus = "extraction_failed"
)

// Document is an uploaded source document with its extracted text.
// The engine only reads ID and Text; the rest is bookkeeping for the API.
type Document struct {
	ID       string
	Filename string
	FileType string
	Text     string
	Status   DocumentStatus
}

// TextLength returns the extracted text length in characters.
func (d Document) TextLength() int { return len(d.Text) }

// WordCount returns the extracted text length in words.
func (d Document) WordCount() int { return len(strings.Fields(d.Text)) }
