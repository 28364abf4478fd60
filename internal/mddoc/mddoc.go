// Package mddoc holds the block-level document model shared by the
// markdown parser and the frontmatter extractor.
package mddoc

// Kind classifies a top-level block.
type Kind int

const (
	KindOther Kind = iota
	KindHeading
	KindThematicBreak
	KindParagraph
	KindMetadata
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindThematicBreak:
		return "thematicBreak"
	case KindParagraph:
		return "paragraph"
	case KindMetadata:
		return "metadata"
	}
	return "other"
}

// Span is a half-open byte range [Start, End) into the document source.
type Span struct {
	Start int
	End   int
}

// Block is a single top-level block node.
type Block struct {
	Kind    Kind
	Level   int  // heading level, 0 otherwise
	Span    Span // valid only when HasSpan
	HasSpan bool
	Line    int // 1-based line of Span.Start
	EndLine int // 1-based line of the last byte in Span

	// Payload carries the decoded mapping for KindMetadata blocks.
	Payload map[string]any
}

// Document is an immutable source plus its ordered top-level blocks.
// Block spans are non-overlapping and monotonically increasing; the
// upstream parser guarantees this.
type Document struct {
	Source []byte
	Blocks []*Block

	lineStarts []int
}

// NewDocument builds a Document and fills in block line numbers.
func NewDocument(src []byte, blocks []*Block) *Document {
	d := &Document{Source: src, Blocks: blocks}
	d.lineStarts = append(d.lineStarts, 0)
	for i, b := range src {
		if b == '\n' && i+1 < len(src) {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
	for _, b := range blocks {
		if !b.HasSpan {
			continue
		}
		b.Line = d.LineNumber(b.Span.Start)
		end := b.Span.End - 1
		if end < b.Span.Start {
			end = b.Span.Start
		}
		b.EndLine = d.LineNumber(end)
	}
	return d
}

// LineNumber returns the 1-based line number containing the byte offset.
// Offsets at or past the end of the source map to the last line.
func (d *Document) LineNumber(offset int) int {
	lo, hi := 0, len(d.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// Metadata merges the payloads of all metadata blocks in document order.
// Later blocks win on key collisions. Returns nil when the document has
// no metadata blocks.
func (d *Document) Metadata() map[string]any {
	var merged map[string]any
	for _, b := range d.Blocks {
		if b.Kind != KindMetadata || b.Payload == nil {
			continue
		}
		if merged == nil {
			merged = make(map[string]any, len(b.Payload))
		}
		for k, v := range b.Payload {
			merged[k] = v
		}
	}
	return merged
}
