// Package dump reads MediaWiki XML export files one page at a time.
package dump

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Page is one <page> element of an export.
type Page struct {
	Title     string
	NS        int
	Timestamp string
	Redirect  bool
	Text      string
}

type xmlPage struct {
	Title    string `xml:"title"`
	NS       int    `xml:"ns"`
	Redirect *struct {
		Title string `xml:"title,attr"`
	} `xml:"redirect"`
	Revisions []struct {
		Timestamp string `xml:"timestamp"`
		Text      string `xml:"text"`
	} `xml:"revision"`
}

// Reader streams pages from an export.
type Reader struct {
	dec *xml.Decoder
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	return &Reader{dec: dec}
}

// Next returns the next page. It returns io.EOF after the last page.
func (r *Reader) Next() (Page, error) {
	for {
		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			return Page{}, io.EOF
		}
		if err != nil {
			return Page{}, fmt.Errorf("read dump: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "page" {
			continue
		}
		var xp xmlPage
		if err := r.dec.DecodeElement(&xp, &start); err != nil {
			return Page{}, fmt.Errorf("decode page: %w", err)
		}
		p := Page{Title: xp.Title, NS: xp.NS, Redirect: xp.Redirect != nil}
		if n := len(xp.Revisions); n > 0 {
			last := xp.Revisions[n-1]
			p.Timestamp = last.Timestamp
			p.Text = last.Text
		}
		if strings.Contains(p.Text, "#REDIRECT") {
			p.Redirect = true
		}
		return p, nil
	}
}

// All reads every remaining page.
func (r *Reader) All() ([]Page, error) {
	var pages []Page
	for {
		p, err := r.Next()
		if errors.Is(err, io.EOF) {
			return pages, nil
		}
		if err != nil {
			return pages, err
		}
		pages = append(pages, p)
	}
}

// excludedTitles mark main namespace pages that are site furniture rather
// than content.
var excludedTitles = []string{
	"Css:", "Forum:", "Home:", "Includepopup:", "Includes:", "Legal:",
	"Main:", "Maps Home", "Popuptes:", "Search:", "Sitema:", "System:",
	"Tes:", "Events:", "Help:", "Sitemap", "Broken links", "Edit Cheat Sheet",
}

// contentNamespaces are the custom namespaces holding content pages.
var contentNamespaces = map[int]bool{3000: true, 3002: true, 3004: true, 3006: true, 3008: true}

// Retain reports whether p is a content page worth scanning.
func Retain(p Page) bool {
	if contentNamespaces[p.NS] {
		return true
	}
	if p.NS != 0 || p.Redirect {
		return false
	}
	for _, s := range excludedTitles {
		if strings.Contains(p.Title, s) {
			return false
		}
	}
	return true
}
