package reader

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// fromHTML extracts readable text from an HTML filing. It prefers <main> or
// <article> over <body>, drops navigation chrome, and flattens tables one
// row per line with cells joined by spaces, since financial statements in
// HTML filings are almost always tabular and the metric scanner works on
// physical lines.
func fromHTML(input []byte) string {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return ""
	}

	root := findElement(node, "main")
	if root == nil {
		root = findElement(node, "article")
	}
	if root == nil {
		root = findElement(node, "body")
	}
	if root == nil {
		return ""
	}

	var b strings.Builder
	walkText(&b, root)
	return b.String()
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func walkText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "head":
			return
		case "tr":
			// One statement row per physical line.
			b.WriteString("\n")
			writeRow(b, n)
			return
		case "br", "hr":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "div", "table":
			b.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(b, c)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "table":
			b.WriteString("\n\n")
		case "li", "div":
			b.WriteString("\n")
		}
	}
}

// writeRow renders the cells of a table row as a single space-joined line.
func writeRow(b *strings.Builder, tr *html.Node) {
	first := true
	var cell func(*html.Node)
	cell = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "td", "th":
				text := strings.TrimSpace(nodeText(n))
				if text != "" {
					if !first {
						b.WriteString(" ")
					}
					b.WriteString(text)
					first = false
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			cell(c)
		}
	}
	cell(tr)
	b.WriteString("\n")
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
