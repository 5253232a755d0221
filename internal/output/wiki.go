// internal/output/wiki.go
package output

import (
	"fmt"
	"strings"
)

// WikiFormatter renders a Report as wikitext ready to paste into the
// broken links page: one section per region that has broken links, then an
// OtherRegion section for pages outside every region.
type WikiFormatter struct{}

// NewWikiFormatter creates a new WikiFormatter.
func NewWikiFormatter() *WikiFormatter {
	return &WikiFormatter{}
}

// Format renders the Report as wikitext.
func (f *WikiFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder
	for _, region := range report.Regions {
		writeSection(&b, region, report.InRegion(region))
	}
	writeSection(&b, OtherRegion, report.Unplaced())
	return []byte(b.String()), nil
}

func writeSection(b *strings.Builder, heading string, links []BrokenLink) {
	if len(links) == 0 {
		return
	}
	b.WriteString("\n\n==" + heading + "==\n\n")
	for _, l := range links {
		fmt.Fprintf(b, "[[%s]] at %d%% has link error %s for URL [%s %s]<br>\n",
			l.Page, l.Percent, l.Code, l.URL, l.URL)
	}
	b.WriteString("\n\n")
}
