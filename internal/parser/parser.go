package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Metadata is the extracted description of one document.
type Metadata struct {
	Title  string         `json:"title"`
	Format string         `json:"format"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Parser derives a Metadata from raw document bytes.
type Parser interface {
	Extract(r io.Reader, filename string) (*Metadata, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// stripExt removes a known extension from a filename for use as a
// fallback title.
func stripExt(filename string) string {
	ext := filepath.Ext(filename)
	if SupportedExtensions[strings.ToLower(ext)] {
		return strings.TrimSuffix(filename, ext)
	}
	return filename
}
