// Package frontmatter identifies "---"-delimited YAML frontmatter in a
// parsed markdown block sequence and splices it back into the document
// as metadata nodes.
//
// The block AST alone cannot tell a frontmatter fence from a horizontal
// rule or a setext heading underline: all three surface as the same
// node kinds. The scanner re-derives that context from raw source
// offsets, and the classifier applies adjacency rules over pairs of
// qualifying fences.
package frontmatter

import (
	"github.com/dgallion1/frontmark/internal/mddoc"
)

// FenceCandidate is a block whose source matched the fence grammar:
// a line of exactly three dashes plus optional trailing whitespace.
type FenceCandidate struct {
	NodeIndex int
	Heading   bool // setext-heading underline rather than thematic break

	// Separator is the exact byte span of the matched --- line,
	// trailing newline excluded.
	Separator mddoc.Span

	BlankBefore bool
	BlankAfter  bool

	sentinel bool
}

// Scan walks the top-level blocks and returns every fence candidate in
// document order. Pure function of the document; blocks without source
// spans are never candidates.
func Scan(doc *mddoc.Document) []FenceCandidate {
	var cands []FenceCandidate
	for i, b := range doc.Blocks {
		if !b.HasSpan {
			continue
		}
		switch {
		case b.Kind == mddoc.KindThematicBreak:
		case b.Kind == mddoc.KindHeading && b.Level == 2:
		default:
			continue
		}
		sep, ok := matchSeparator(doc.Source, b.Span)
		if !ok {
			continue
		}
		cands = append(cands, FenceCandidate{
			NodeIndex:   i,
			Heading:     b.Kind == mddoc.KindHeading,
			Separator:   sep,
			BlankBefore: blankBefore(doc.Source, sep.Start),
			BlankAfter:  blankAfter(doc.Source, sep.End),
		})
	}
	return cands
}

// matchSeparator finds the last line inside the span that satisfies the
// fence grammar and returns its absolute span. A setext heading's slice
// contains the heading text too; the underline is its last line.
func matchSeparator(src []byte, span mddoc.Span) (mddoc.Span, bool) {
	var found mddoc.Span
	ok := false
	ls := span.Start
	for ls < span.End {
		le := ls
		for le < span.End && src[le] != '\n' {
			le++
		}
		if separatorLine(src, ls, le) {
			found = mddoc.Span{Start: ls, End: le}
			ok = true
		}
		ls = le + 1
	}
	return found, ok
}

// separatorLine reports whether src[ls:le] is exactly three dashes
// followed only by horizontal whitespace, starting at the beginning of
// the text or right after a newline. Four or more dashes never qualify.
func separatorLine(src []byte, ls, le int) bool {
	if ls != 0 && src[ls-1] != '\n' {
		return false
	}
	if le-ls < 3 || src[ls] != '-' || src[ls+1] != '-' || src[ls+2] != '-' {
		return false
	}
	for i := ls + 3; i < le; i++ {
		if !isHorizWS(src[i]) {
			return false
		}
	}
	return true
}

// blankBefore reports whether the line preceding the separator is blank.
// Vacuously true at the start of the document.
func blankBefore(src []byte, sepStart int) bool {
	if sepStart == 0 {
		return true
	}
	// sepStart-1 is the newline ending the previous line.
	for i := sepStart - 2; i >= 0; i-- {
		if src[i] == '\n' {
			return true
		}
		if !isHorizWS(src[i]) {
			return false
		}
	}
	return true
}

// blankAfter is the mirror condition looking forward. Vacuously true at
// the end of the document.
func blankAfter(src []byte, sepEnd int) bool {
	if sepEnd >= len(src) {
		return true
	}
	if src[sepEnd] != '\n' {
		return false
	}
	for i := sepEnd + 1; i < len(src); i++ {
		if src[i] == '\n' {
			return true
		}
		if !isHorizWS(src[i]) {
			return false
		}
	}
	return true
}

func isHorizWS(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}
