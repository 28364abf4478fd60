package frontmatter

import (
	"github.com/dgallion1/frontmark/internal/mddoc"
)

// Apply splices every confirmed block into the document, collapsing the
// covered node range to a single metadata node carrying the payload. It
// fails on the first diagnostic in document order; nothing is applied
// in that case.
//
// The output sequence is rebuilt in a single pass over the original
// nodes, consuming confirmed ranges in order, so no index arithmetic
// survives replacements.
func Apply(doc *mddoc.Document, items []Item) error {
	var blocks []*FrontmatterBlock
	for _, it := range items {
		if it.Diag != nil {
			return &ParseError{Diag: it.Diag}
		}
		blocks = append(blocks, it.Block)
	}
	if len(blocks) == 0 {
		return nil
	}

	out := make([]*mddoc.Block, 0, len(doc.Blocks))
	next := 0
	for i := 0; i < len(doc.Blocks); i++ {
		if next < len(blocks) && blocks[next].StartIndex == i {
			fb := blocks[next]
			start, end := doc.Blocks[fb.StartIndex], doc.Blocks[fb.EndIndex]
			out = append(out, &mddoc.Block{
				Kind:    mddoc.KindMetadata,
				Span:    mddoc.Span{Start: start.Span.Start, End: end.Span.End},
				HasSpan: true,
				Line:    start.Line,
				EndLine: end.EndLine,
				Payload: fb.Payload,
			})
			i = fb.EndIndex
			next++
			continue
		}
		out = append(out, doc.Blocks[i])
	}
	doc.Blocks = out
	return nil
}

// Extract runs the full pipeline: scan for fence candidates, classify
// adjacent pairs, then splice confirmed frontmatter blocks into the
// document. Returns a *ParseError for the first diagnostic found.
func Extract(doc *mddoc.Document) error {
	return Apply(doc, Classify(Scan(doc), doc))
}

// Lint returns every diagnostic for the document without mutating it.
// Callers that want to report all problems at once (rather than the
// fail-fast Extract contract) consume this.
func Lint(doc *mddoc.Document) []*Diagnostic {
	var diags []*Diagnostic
	for _, it := range Classify(Scan(doc), doc) {
		if it.Diag != nil {
			diags = append(diags, it.Diag)
		}
	}
	return diags
}
