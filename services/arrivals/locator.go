package arrivals

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// ArrivalBlockSelector identifies the transit widget container on the map page.
	// This is the only part of the upstream markup the scraper depends on.
	ArrivalBlockSelector = "div.masstransit-brief-schedule-view"
)

// LocateBlock finds the arrival widget in the snapshot and returns its flattened text.
// The second return value is false if the widget is missing or has no text; the upstream page
// renders the widget lazily so this is an expected, transient state.
func LocateBlock(snapshot string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot))
	if err != nil {
		return "", false
	}

	block := doc.Find(ArrivalBlockSelector).First()
	if block.Length() < 1 {
		return "", false
	}

	var parts []string
	for _, node := range block.Nodes {
		parts = appendText(parts, node)
	}

	// Adjacent elements run together, the same way the entries themselves do.
	text := strings.Join(parts, "")
	if len(text) < 1 {
		return "", false
	}
	return text, true
}

// appendText collects the trimmed, whitespace-collapsed content of every text node under n.
func appendText(parts []string, n *html.Node) []string {
	if n.Type == html.TextNode {
		if text := strings.Join(strings.Fields(n.Data), " "); len(text) > 0 {
			parts = append(parts, text)
		}
		return parts
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = appendText(parts, c)
	}
	return parts
}
