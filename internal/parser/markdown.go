package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/frontmark/internal/frontmatter"
	"github.com/dgallion1/frontmark/internal/mddoc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Metadata comes
// from YAML frontmatter; a malformed frontmatter block fails the whole
// extraction with a *frontmatter.ParseError.
type MarkdownParser struct{}

func (p *MarkdownParser) Extract(r io.Reader, filename string) (*Metadata, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := ParseDocument(src)
	if err := frontmatter.Extract(doc); err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}

	meta := &Metadata{
		Format: "markdown",
		Fields: doc.Metadata(),
	}
	meta.Title = markdownTitle(doc, filename)
	return meta, nil
}

func markdownTitle(doc *mddoc.Document, filename string) string {
	if t, ok := doc.Metadata()["title"].(string); ok && t != "" {
		return t
	}
	for _, b := range doc.Blocks {
		if b.Kind == mddoc.KindHeading && b.HasSpan {
			t := string(doc.Source[b.Span.Start:b.Span.End])
			// Setext heading spans include the underline.
			if i := strings.IndexByte(t, '\n'); i >= 0 {
				t = t[:i]
			}
			t = strings.TrimSpace(strings.TrimLeft(t, "# "))
			if t != "" {
				return t
			}
		}
	}
	return stripExt(filename)
}

// ParseDocument parses markdown source into the block-level document
// model, deriving byte spans for every top-level block. goldmark keeps
// line segments for most blocks but records none for thematic breaks,
// and setext heading segments cover only the text lines; both gaps are
// repaired from the raw source so the frontmatter scanner can see the
// actual separator lines.
func ParseDocument(src []byte) *mddoc.Document {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	var blocks []*mddoc.Block
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		b := &mddoc.Block{Kind: kindOf(n)}
		if h, ok := n.(*ast.Heading); ok {
			b.Level = h.Level
		}
		if lines := n.Lines(); lines.Len() > 0 {
			b.Span = mddoc.Span{
				Start: lines.At(0).Start,
				End:   lines.At(lines.Len() - 1).Stop,
			}
			b.HasSpan = true
		}
		blocks = append(blocks, b)
	}

	// Underlines must be claimed by their headings before gap filling,
	// or a spanless thematic break scans the gap and takes the underline
	// line as its own span.
	extendSetextUnderlines(src, blocks)
	fillGapSpans(src, blocks)
	return mddoc.NewDocument(src, blocks)
}

func kindOf(n ast.Node) mddoc.Kind {
	switch n.(type) {
	case *ast.Heading:
		return mddoc.KindHeading
	case *ast.ThematicBreak:
		return mddoc.KindThematicBreak
	case *ast.Paragraph:
		return mddoc.KindParagraph
	}
	return mddoc.KindOther
}

// fillGapSpans assigns a span to each block goldmark left without
// segments: the first non-blank line in the source gap between its
// already-spanned neighbours.
func fillGapSpans(src []byte, blocks []*mddoc.Block) {
	cursor := 0
	for i, b := range blocks {
		if b.HasSpan {
			if b.Span.End > cursor {
				cursor = b.Span.End
			}
			continue
		}

		limit := len(src)
		for _, nb := range blocks[i+1:] {
			if nb.HasSpan {
				limit = nb.Span.Start
				break
			}
		}

		ls := cursor
		for ls < limit {
			le := ls
			for le < limit && src[le] != '\n' {
				le++
			}
			if !blankLine(src[ls:le]) {
				b.Span = mddoc.Span{Start: ls, End: le}
				b.HasSpan = true
				cursor = le
				break
			}
			ls = le + 1
		}
	}
}

// extendSetextUnderlines pulls a setext heading's underline line into
// its span. ATX headings are left alone.
func extendSetextUnderlines(src []byte, blocks []*mddoc.Block) {
	for _, b := range blocks {
		if !b.HasSpan || b.Kind != mddoc.KindHeading {
			continue
		}
		if atxHeading(src, b.Span.Start) {
			continue
		}

		pos := b.Span.End
		if pos > 0 && pos <= len(src) && src[pos-1] != '\n' {
			for pos < len(src) && src[pos] != '\n' {
				pos++
			}
			pos++
		}
		if pos >= len(src) {
			continue
		}
		le := pos
		for le < len(src) && src[le] != '\n' {
			le++
		}
		if underlineLine(src[pos:le]) {
			b.Span.End = le
		}
	}
}

// atxHeading reports whether the line containing the offset starts
// with '#' markers.
func atxHeading(src []byte, offset int) bool {
	ls := offset
	for ls > 0 && src[ls-1] != '\n' {
		ls--
	}
	for ls < len(src) && (src[ls] == ' ' || src[ls] == '\t') {
		ls++
	}
	return ls < len(src) && src[ls] == '#'
}

func underlineLine(line []byte) bool {
	seen := false
	for _, c := range line {
		switch {
		case c == '-' || c == '=':
			seen = true
		case c == ' ' || c == '\t' || c == '\r':
		default:
			return false
		}
	}
	return seen
}

func blankLine(line []byte) bool {
	for _, c := range line {
		if c != ' ' && c != '\t' && c != '\r' {
			return false
		}
	}
	return true
}
