package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// visibleText joins every text node in document order with newlines, then
// trims each resulting line and drops the blank ones. Call it after pruning
// script and style subtrees.
func visibleText(doc *goquery.Document) string {
	var parts []string
	for _, root := range doc.Nodes {
		collectText(root, &parts)
	}

	lines := make([]string, 0, len(parts))
	for _, line := range strings.Split(strings.Join(parts, "\n"), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// excerpt returns the first limit runes, with an ellipsis when truncated.
func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}
