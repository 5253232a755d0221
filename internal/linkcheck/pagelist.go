package linkcheck

import (
	"strings"

	"github.com/julianshen/wikimaint/internal/dump"
	"github.com/julianshen/wikimaint/internal/refpages"
)

// PageListEntry returns the reference list line for a dumped page:
// "reformatted title | title | categories | Mon yyyy | lifespan". The
// lifespan is read from the page's clean text.
func PageListEntry(page dump.Page, categories []string, clean string) string {
	ts := page.Timestamp
	if ts == "" {
		ts = "none"
	}
	return strings.Join([]string{
		refpages.Reformat(page.Title),
		page.Title,
		strings.Join(categories, "; "),
		refpages.MonthYear(ts),
		refpages.Lifespan(clean),
	}, " | ")
}
