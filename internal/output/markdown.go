// internal/output/markdown.go
package output

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter outputs a Report as a human-readable Markdown summary.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the Report as Markdown.
func (f *MarkdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	if report.Error != "" {
		b.WriteString("## Error\n\n")
		b.WriteString(report.Error)
		b.WriteString("\n")
		return []byte(b.String()), nil
	}

	b.WriteString("# Link check\n\n")
	if len(report.Broken) == 0 {
		b.WriteString("No new broken links.\n")
	} else {
		b.WriteString("| Page | At | Error | URL |\n|---|---|---|---|\n")
		for _, l := range report.Broken {
			b.WriteString(fmt.Sprintf("| %s | %d%% | %s | %s |\n", l.Page, l.Percent, l.Code, l.URL))
		}
	}

	pageLabel := "pages"
	if report.Pages == 1 {
		pageLabel = "page"
	}
	d := time.Duration(report.DurationMs) * time.Millisecond
	b.WriteString(fmt.Sprintf("\n---\n*Checked %d links on %d %s (%d known exceptions) in %s*\n",
		report.Checked, report.Pages, pageLabel, report.Excepted, d.Round(100*time.Millisecond)))

	return []byte(b.String()), nil
}
