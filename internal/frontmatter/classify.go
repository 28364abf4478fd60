package frontmatter

import (
	"fmt"

	"github.com/dgallion1/frontmark/internal/mddoc"
	"gopkg.in/yaml.v3"
)

// FrontmatterBlock is a confirmed fence pair with its decoded payload.
// The payload is always a mapping; scalars, sequences and null are
// rejected by the classifier.
type FrontmatterBlock struct {
	StartIndex int // node index of the opening fence, inclusive
	EndIndex   int // node index of the closing fence, inclusive
	Payload    map[string]any
}

// Item is one element of the classified stream: exactly one of Block or
// Diag is set. Items preserve the document order of the candidate pairs
// that produced them.
type Item struct {
	Block *FrontmatterBlock
	Diag  *Diagnostic
}

// Classify slides a window of two over the candidates, deciding for
// each adjacent pair whether it is an ignorable non-frontmatter pair, a
// confirmed frontmatter block, or a diagnostic. A synthetic sentinel at
// the end of the document ensures a trailing unpaired fence is reported
// rather than silently dropped. Deterministic in (candidates, document).
func Classify(cands []FenceCandidate, doc *mddoc.Document) []Item {
	if len(cands) == 0 {
		return nil
	}

	end := len(doc.Source)
	cs := make([]FenceCandidate, 0, len(cands)+1)
	cs = append(cs, cands...)
	cs = append(cs, FenceCandidate{
		NodeIndex: len(doc.Blocks),
		Separator: mddoc.Span{Start: end, End: end},
		sentinel:  true,
	})

	var items []Item
	for i := 0; i+1 < len(cs); i++ {
		first, last := cs[i], cs[i+1]
		if selfSufficient(first) && selfSufficient(last) {
			// Ordinary underlined headings and bare horizontal rules
			// produce no output.
			continue
		}
		switch {
		case !first.BlankBefore:
			items = append(items, diagItem(MissingSpaceBefore, first, last, doc, nil))
		case last.sentinel || !last.BlankAfter:
			items = append(items, diagItem(MissingSpaceAfter, first, last, doc, nil))
		default:
			items = append(items, classifyInterior(first, last, doc))
		}
	}

	return suppressAdjacent(items)
}

// selfSufficient reports whether a candidate explains itself without a
// partner: a heading underline followed by a blank line, or a pure
// horizontal rule blank on both sides. The sentinel is always
// self-sufficient so that well-formed trailing constructs never warn.
func selfSufficient(c FenceCandidate) bool {
	if c.sentinel {
		return true
	}
	if c.Heading && c.BlankAfter {
		return true
	}
	return c.BlankBefore && c.BlankAfter
}

func classifyInterior(first, last FenceCandidate, doc *mddoc.Document) Item {
	interior := doc.Source[first.Separator.End:last.Separator.Start]
	if containsBlankLine(interior) {
		return diagItem(EmptyLineInFrontmatter, first, last, doc, nil)
	}

	var decoded any
	if err := yaml.Unmarshal(interior, &decoded); err != nil {
		return diagItem(CorruptedYamlPayload, first, last, doc, err)
	}
	payload, ok := asMapping(decoded)
	if !ok {
		return diagItem(ForbiddenYamlPayload, first, last, doc, nil)
	}

	return Item{Block: &FrontmatterBlock{
		StartIndex: first.NodeIndex,
		EndIndex:   last.NodeIndex,
		Payload:    payload,
	}}
}

// containsBlankLine reports whether s holds a newline, optional
// horizontal whitespace, then another newline.
func containsBlankLine(s []byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' {
			continue
		}
		j := i + 1
		for j < len(s) && isHorizWS(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '\n' {
			return true
		}
	}
	return false
}

func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out, true
	}
	return nil, false
}

func diagItem(kind DiagnosticKind, first, last FenceCandidate, doc *mddoc.Document, cause error) Item {
	end := last.Separator.End
	if end > len(doc.Source) {
		end = len(doc.Source)
	}
	return Item{Diag: &Diagnostic{
		Kind:       kind,
		StartIndex: first.NodeIndex,
		EndIndex:   last.NodeIndex,
		Line:       doc.LineNumber(first.Separator.Start),
		Excerpt:    string(doc.Source[first.Separator.Start:end]),
		Cause:      cause,
	}}
}

// suppressAdjacent drops MissingSpace* diagnostics whose range ends
// exactly where the next confirmed block begins. That pseudo-gap
// naturally appears between the closing fence of one frontmatter block
// and the opening fence of the next candidate pairing; it is not an
// error of its own.
func suppressAdjacent(items []Item) []Item {
	out := items[:0]
	for i, it := range items {
		if it.Diag != nil &&
			(it.Diag.Kind == MissingSpaceBefore || it.Diag.Kind == MissingSpaceAfter) &&
			i+1 < len(items) && items[i+1].Block != nil &&
			items[i+1].Block.StartIndex == it.Diag.EndIndex {
			continue
		}
		out = append(out, it)
	}
	return out
}
