package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser probes HTML files for <title> and <meta> metadata.
type HTMLParser struct{}

func (p *HTMLParser) Extract(r io.Reader, filename string) (*Metadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	meta := &Metadata{
		Format: "html",
		Title:  stripExt(filename),
		Fields: map[string]any{},
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if t := textContent(n); t != "" {
					meta.Title = t
				}
			case "meta":
				name := attr(n, "name")
				if name == "" {
					name = attr(n, "property")
				}
				content := attr(n, "content")
				if name != "" && content != "" {
					meta.Fields[name] = content
				}
			case "body":
				// Metadata lives in <head>; no need to descend further.
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if t, ok := meta.Fields["title"].(string); ok && t != "" {
		meta.Title = t
	}
	if len(meta.Fields) == 0 {
		meta.Fields = nil
	}
	return meta, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}
