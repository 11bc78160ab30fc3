// Package readers turns stored files into plain text for indexing.
package readers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv/v2"
)

// FileReader extracts plain text from a file it knows how to handle.
type FileReader interface {
	CanRead(path string) bool
	ReadText(path string) (string, error)
}

// TxtFileReader reads plain .txt files verbatim.
type TxtFileReader struct{}

func (r *TxtFileReader) CanRead(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

func (r *TxtFileReader) ReadText(path string) (string, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	return string(buf), nil
}

// DocconvFileReader extracts text from rich document formats via docconv.
type DocconvFileReader struct{}

func (r *DocconvFileReader) CanRead(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".odt", ".rtf", ".html", ".xml":
		return true
	}
	return false
}

func (r *DocconvFileReader) ReadText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to extract document text: %w", err)
	}
	return res.Body, nil
}

// For picks the reader handling path, or nil when the file type is not
// supported.
func For(rs []FileReader, path string) FileReader {
	for _, r := range rs {
		if r.CanRead(path) {
			return r
		}
	}
	return nil
}

// Default returns the reader set the service ships with.
func Default() []FileReader {
	return []FileReader{&TxtFileReader{}, &DocconvFileReader{}}
}
