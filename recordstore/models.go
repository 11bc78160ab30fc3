package recordstore

import "time"

// Document is a stored corpus document. Text holds optional manual notes,
// ExtractedText what the extraction collaborator pulled out of the attached
// source file. Either may be empty.
type Document struct {
	ID            int64
	Title         string
	Text          string
	ExtractedText string
	File          string
	Crc           uint32
	CreatedAt     time.Time
}

// BestText prefers extracted text over manual notes.
func (d Document) BestText() string {
	if d.ExtractedText != "" {
		return d.ExtractedText
	}
	return d.Text
}

// IngestedDoc identifies a document the store already holds for a source
// file, with the checksum of the file content it was extracted from.
type IngestedDoc struct {
	File string
	Crc  uint32
}

// Tag is a named label attachable to documents.
type Tag struct {
	ID   int64
	Name string
	Slug string
}

// Question is a stored question, its answer once synthesized and the
// documents retrieval linked it to.
type Question struct {
	ID        int64
	Text      string
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
