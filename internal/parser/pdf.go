package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser probes PDF files for a title and page count. It tries the
// Go library first, then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Extract(r io.Reader, filename string) (*Metadata, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "frontmark-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, firstPage, err := probePDF(tmpPath)
	if err != nil && p.FallbackPdftotext {
		firstPage, err = probePdftotext(tmpPath)
		pages = 0
	}
	if err != nil {
		return nil, fmt.Errorf("probe pdf: %w", err)
	}

	meta := &Metadata{
		Format: "pdf",
		Title:  stripExt(filename),
	}
	if t := firstLine(firstPage); t != "" {
		meta.Title = t
	}
	if pages > 0 {
		meta.Fields = map[string]any{"pages": pages}
	}
	return meta, nil
}

func probePDF(path string) (int, string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	pages := reader.NumPage()
	var first string
	if pages > 0 {
		page := reader.Page(1)
		if !page.V.IsNull() {
			if text, err := page.GetPlainText(nil); err == nil {
				first = text
			}
		}
	}
	return pages, first, nil
}

func probePdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", "-l", "1", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
