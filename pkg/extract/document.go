// Package extract turns a fetched profile page into a profile.Record.
//
// Extraction is a cascade of independent strategies run in a fixed order.
// Every strategy may fill any field, but only fields that are still empty
// (strings) or not yet valid (counts) are written, so the first valid value
// found for a field wins.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeGROOVE-dev/fanscope/pkg/htmlutil"
)

// Document is a parsed page plus the text corpora the strategies search.
type Document struct {
	DOM         *goquery.Document
	URL         string   // normalized profile URL the page was fetched from
	HTML        string   // raw page source
	Description string   // og:description, or name=description
	Text        string   // rendered page text
	Scripts     []string // inline script bodies in document order
}

// NewDocument parses body. pageURL is the normalized profile URL.
func NewDocument(body []byte, pageURL string) (*Document, error) {
	dom, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	d := &Document{
		DOM:         dom,
		URL:         pageURL,
		HTML:        string(body),
		Description: htmlutil.Meta(dom, "og:description", "description"),
	}
	if root := dom.Find("body"); root.Length() > 0 {
		d.Text = htmlutil.VisibleText(root.Nodes[0])
	} else if len(dom.Nodes) > 0 {
		d.Text = htmlutil.VisibleText(dom.Nodes[0])
	}
	dom.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		if text := strings.TrimSpace(htmlutil.NodeText(s.Nodes[0])); text != "" {
			d.Scripts = append(d.Scripts, text)
		}
	})
	return d, nil
}

// Corpus is the rendered text, meta description, and raw HTML joined together.
func (d *Document) Corpus() string {
	return d.Text + "\n" + d.Description + "\n" + d.HTML
}

// ScriptText is every inline script joined together.
func (d *Document) ScriptText() string {
	return strings.Join(d.Scripts, "\n")
}

// NotFound reports whether the rendered text reads as a missing or suspended profile.
func (d *Document) NotFound() bool {
	return htmlutil.IsNotFound(d.Text)
}
