package linkcheck

import (
	"regexp"
	"strings"
)

var bracketed = regexp.MustCompile(`(?s)\[(.+?)\]`)

// Link is an external link found in clean page text.
type Link struct {
	URL string
	// Pos is the byte offset of the opening bracket.
	Pos int
}

// ExternalLinks returns the bracketed http links in text, in order.
// Internal links must already have been stripped.
func ExternalLinks(text string) []Link {
	var links []Link
	for _, m := range bracketed.FindAllStringSubmatchIndex(text, -1) {
		fields := strings.Fields(text[m[2]:m[3]])
		if len(fields) == 0 || !strings.HasPrefix(fields[0], "http") {
			continue
		}
		links = append(links, Link{URL: fields[0], Pos: m[0]})
	}
	return links
}

// Percent returns how far into a text of length n the offset pos lies.
func Percent(pos, n int) int {
	if n == 0 {
		return 0
	}
	return pos * 100 / n
}
