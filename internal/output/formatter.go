// internal/output/formatter.go
package output

import "strings"

// BrokenLink is one external link that failed its check and is not a known
// exception.
type BrokenLink struct {
	Page       string   `json:"page"`
	Percent    int      `json:"percent"`
	Code       string   `json:"code"`
	URL        string   `json:"url"`
	Categories []string `json:"categories,omitempty"`
}

// InCategory reports whether the link's page belongs to category.
func (b BrokenLink) InCategory(category string) bool {
	for _, c := range b.Categories {
		if strings.TrimSpace(c) == category {
			return true
		}
	}
	return false
}

// Report holds the outcome of a link check run.
type Report struct {
	RunID      string       `json:"run_id,omitempty"`
	Pages      int          `json:"pages"`
	Checked    int          `json:"checked"`
	Excepted   int          `json:"excepted"`
	DurationMs int64        `json:"duration_ms"`
	Regions    []string     `json:"regions"`
	Broken     []BrokenLink `json:"broken,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// InRegion returns the broken links whose page belongs to region, in report
// order.
func (r *Report) InRegion(region string) []BrokenLink {
	var out []BrokenLink
	for _, b := range r.Broken {
		if b.InCategory(region) {
			out = append(out, b)
		}
	}
	return out
}

// OtherRegion heads the report section for broken links whose page is in
// none of the report regions.
const OtherRegion = "Other"

// Unplaced returns the broken links whose page belongs to none of the report
// regions, in report order.
func (r *Report) Unplaced() []BrokenLink {
	var out []BrokenLink
	for _, b := range r.Broken {
		placed := false
		for _, region := range r.Regions {
			if b.InCategory(region) {
				placed = true
				break
			}
		}
		if !placed {
			out = append(out, b)
		}
	}
	return out
}

// Formatter formats a Report into output bytes.
type Formatter interface {
	Format(report *Report) ([]byte, error)
}
