package parser

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVParser probes CSV files: header columns and row count.
type CSVParser struct{}

func (p *CSVParser) Extract(r io.Reader, filename string) (*Metadata, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	meta := &Metadata{
		Format: "csv",
		Title:  stripExt(filename),
	}
	if len(records) == 0 {
		return meta, nil
	}

	// First row is headers.
	columns := make([]any, 0, len(records[0]))
	for _, h := range records[0] {
		columns = append(columns, h)
	}
	meta.Fields = map[string]any{
		"columns": columns,
		"rows":    len(records) - 1,
	}
	return meta, nil
}
