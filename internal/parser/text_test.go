package parser

import (
	"strings"
	"testing"
)

func TestTextParser_TitleFromFirstLine(t *testing.T) {
	input := "Meeting notes for Q3\n\nAttendees: everyone.\nDecisions: none.\n"
	p := &TextParser{}
	meta, err := p.Extract(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if meta.Format != "text" {
		t.Errorf("expected format %q, got %q", "text", meta.Format)
	}
	if meta.Title != "Meeting notes for Q3" {
		t.Errorf("expected first line as title, got %q", meta.Title)
	}
	if got := meta.Fields["lines"]; got != 4 {
		t.Errorf("expected 4 lines, got %v", got)
	}
}

func TestTextParser_LeadingBlankLines(t *testing.T) {
	// Blank lines before the first content line are skipped for the title.
	input := "\n   \nActual title line\nmore\n"
	p := &TextParser{}
	meta, err := p.Extract(strings.NewReader(input), "padded.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Title != "Actual title line" {
		t.Errorf("expected %q, got %q", "Actual title line", meta.Title)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	meta, err := p.Extract(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Title != "empty" {
		t.Errorf("expected filename fallback title %q, got %q", "empty", meta.Title)
	}
	if got := meta.Fields["lines"]; got != 0 {
		t.Errorf("expected 0 lines, got %v", got)
	}
}

func TestForFile_Dispatch(t *testing.T) {
	tests := []struct {
		filename string
		ok       bool
	}{
		{"a.md", true},
		{"a.markdown", true},
		{"a.txt", true},
		{"a.csv", true},
		{"a.html", true},
		{"a.htm", true},
		{"a.pdf", true},
		{"a.docx", true},
		{"a.exe", false},
		{"a", false},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.filename, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%s: expected error for unsupported extension", tt.filename)
		}
		if got := IsSupportedExtension(tt.filename); got != tt.ok {
			t.Errorf("IsSupportedExtension(%q) = %v, want %v", tt.filename, got, tt.ok)
		}
	}
}
