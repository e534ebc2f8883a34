// Package ingest turns argument sources into analyzable text. Sources are
// either raw text, pasted HTML, or a URL; HTML is reduced to its visible
// prose before it reaches the analysis pipeline.
package ingest

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// textBlockTags are elements whose content ends a prose run
var textBlockTags = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "article": true, "section": true,
}

// LooksLikeHTML reports whether the input is markup rather than plain prose
func LooksLikeHTML(input string) bool {
	s := strings.TrimSpace(input)
	if strings.HasPrefix(s, "<!DOCTYPE") || strings.HasPrefix(s, "<!doctype") {
		return true
	}
	lower := strings.ToLower(s)
	for _, tag := range []string{"<html", "<body", "<p>", "<p ", "<div", "<article", "<br"} {
		if strings.Contains(lower, tag) {
			return true
		}
	}
	return false
}

// ExtractText reduces HTML to its visible prose, skipping scripts, styles,
// and navigation chrome. Block boundaries become newlines so paragraph
// structure survives into the prompt.
func ExtractText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return collapseWhitespace(visibleText(doc)), nil
}

// Normalize prepares any input for analysis: HTML is reduced to prose, plain
// text passes through with whitespace collapsed.
func Normalize(input string) (string, error) {
	if LooksLikeHTML(input) {
		return ExtractText(input)
	}
	return collapseWhitespace(input), nil
}

func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "header", "footer", "aside":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && textBlockTags[n.Data] {
			buf.WriteString("\n")
		}
	}

	walk(n)
	return buf.String()
}

// collapseWhitespace squeezes runs of spaces and blank lines while keeping
// single newlines as paragraph separators.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
