// Package htmlutil provides DOM helpers shared by the extraction strategies.
package htmlutil

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var multiSpacePattern = regexp.MustCompile(`\s+`)

// NodeText returns the concatenated text of node and its descendants.
// Unlike goquery's Text it works on raw script nodes as well.
func NodeText(node *html.Node) string {
	var buf bytes.Buffer
	nodeText(node, &buf)
	return buf.String()
}

func nodeText(node *html.Node, buf *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buf.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		nodeText(child, buf)
	}
}

// VisibleText returns the text a browser would render for node: script,
// style, and template contents are skipped and whitespace is collapsed.
func VisibleText(node *html.Node) string {
	var buf bytes.Buffer
	visibleText(node, &buf)
	return CollapseSpace(buf.String())
}

func visibleText(node *html.Node, buf *bytes.Buffer) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buf.WriteString(node.Data)
		buf.WriteByte(' ')
		return
	case html.ElementNode:
		switch node.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		visibleText(child, buf)
	}
}

// CollapseSpace trims s and folds runs of whitespace into single spaces.
func CollapseSpace(s string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}

// Meta returns the content of the first meta tag whose property or name
// matches one of keys, tried in order.
func Meta(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		for _, attr := range []string{"property", "name"} {
			sel := doc.Find(`meta[` + attr + `="` + key + `"]`).First()
			if v, ok := sel.Attr("content"); ok {
				if v = strings.TrimSpace(v); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// SecureURL rewrites an http:// URL to https:// and resolves protocol-relative URLs.
func SecureURL(u string) string {
	u = strings.TrimSpace(u)
	switch {
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case len(u) >= 7 && strings.EqualFold(u[:7], "http://"):
		return "https://" + u[7:]
	}
	return u
}

// IsNotFound detects "profile missing" pages that are served with a 200 status.
func IsNotFound(text string) bool {
	lower := strings.ToLower(text)
	patterns := []string{
		"page not found",
		"user not found",
		"this account has been suspended",
		"user does not exist",
		"usuário não encontrado",
		"página não encontrada",
		"esta conta foi suspensa",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
