package frontmatter

import (
	"fmt"
	"strings"
)

// DiagnosticKind identifies one of the closed set of frontmatter
// parsing problems.
type DiagnosticKind int

const (
	// MissingSpaceBefore: fence not preceded by a blank line or the
	// start of the document.
	MissingSpaceBefore DiagnosticKind = iota
	// MissingSpaceAfter: fence not followed by a blank line or the end
	// of the document.
	MissingSpaceAfter
	// EmptyLineInFrontmatter: a blank line appears inside the fence pair.
	EmptyLineInFrontmatter
	// ForbiddenYamlPayload: interior decodes cleanly but is not a mapping.
	ForbiddenYamlPayload
	// CorruptedYamlPayload: interior is not valid YAML at all.
	CorruptedYamlPayload
)

func (k DiagnosticKind) String() string {
	switch k {
	case MissingSpaceBefore:
		return "missing_space_before"
	case MissingSpaceAfter:
		return "missing_space_after"
	case EmptyLineInFrontmatter:
		return "empty_line_in_frontmatter"
	case ForbiddenYamlPayload:
		return "forbidden_yaml_payload"
	case CorruptedYamlPayload:
		return "corrupted_yaml_payload"
	}
	return "unknown"
}

// Diagnostic describes one rejected or ambiguous fence pair.
type Diagnostic struct {
	Kind DiagnosticKind

	// Node-index range the pair spans, inclusive. EndIndex may be one
	// past the last node when the pair closes on the document sentinel.
	StartIndex int
	EndIndex   int

	// Line is the 1-based line the excerpt numbering starts at: the
	// ending line of the first offending node.
	Line int

	// Excerpt is the verbatim source of the offending fence pair,
	// delimiters included.
	Excerpt string

	// Cause carries the YAML parser error for CorruptedYamlPayload.
	Cause error
}

// Message returns a human-readable description of the failed rule.
func (d *Diagnostic) Message() string {
	switch d.Kind {
	case MissingSpaceBefore:
		return "frontmatter fence must be preceded by a blank line or the start of the document"
	case MissingSpaceAfter:
		return "frontmatter fence must be followed by a blank line or the end of the document"
	case EmptyLineInFrontmatter:
		return "frontmatter must not contain blank lines"
	case ForbiddenYamlPayload:
		return "frontmatter must be a YAML mapping, not a scalar, sequence or null"
	case CorruptedYamlPayload:
		if d.Cause != nil {
			return fmt.Sprintf("frontmatter is not valid YAML: %s", d.Cause)
		}
		return "frontmatter is not valid YAML"
	}
	return "frontmatter parsing problem"
}

// Render returns the excerpt with line numbers, one source line per
// output line, numbered from the diagnostic's starting line.
func (d *Diagnostic) Render() string {
	lines := strings.Split(strings.TrimSuffix(d.Excerpt, "\n"), "\n")
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "    %d | %s", d.Line+i, line)
	}
	return sb.String()
}

// ParseError is the terminal error surfaced by Extract: the first
// diagnostic encountered in document order.
type ParseError struct {
	Diag *Diagnostic
}

func (e *ParseError) Error() string {
	return e.Diag.Message() + "\n" + e.Diag.Render()
}

func (e *ParseError) Unwrap() error {
	return e.Diag.Cause
}
