package thread

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	spacePattern        = regexp.MustCompile(`[ \t\r\f\v]+`)
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
)

var blockElements = map[string]bool{
	"div": true, "p": true, "li": true, "ul": true, "ol": true,
	"section": true, "article": true, "header": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Snapshot is a DocumentReader over a saved HTML page.
type Snapshot struct {
	root *html.Node
}

// ParseSnapshot parses an HTML document.
func ParseSnapshot(r io.Reader) (*Snapshot, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Snapshot{root: root}, nil
}

// TextsOf implements DocumentReader.
func (s *Snapshot) TextsOf(_ context.Context, selector string) ([]string, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}

	nodes := sel.MatchAll(s.root)
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		texts = append(texts, renderedText(n))
	}
	return texts, nil
}

// TextOf implements DocumentReader.
func (s *Snapshot) TextOf(_ context.Context, selector string) (string, bool, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return "", false, fmt.Errorf("compile selector %q: %w", selector, err)
	}

	n := sel.MatchFirst(s.root)
	if n == nil {
		return "", false, nil
	}
	return renderedText(n), true, nil
}

// renderedText approximates innerText: block elements and <br> break lines,
// runs of inline whitespace collapse, scripts and styles are dropped.
func renderedText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb)

	lines := strings.Split(sb.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
	}

	text := strings.Join(lines, "\n")
	text = multiNewlinePattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript":
			return
		case "br":
			sb.WriteString("\n")
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		sb.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if block {
		sb.WriteString("\n")
	}
}
