package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser probes plain text files: the first non-empty line becomes
// the title.
type TextParser struct{}

func (p *TextParser) Extract(r io.Reader, filename string) (*Metadata, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := 0
	title := ""
	for scanner.Scan() {
		lines++
		if title == "" {
			if t := strings.TrimSpace(scanner.Text()); t != "" {
				title = t
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	meta := &Metadata{
		Format: "text",
		Title:  stripExt(filename),
		Fields: map[string]any{"lines": lines},
	}
	if title != "" {
		meta.Title = title
	}
	return meta, nil
}
