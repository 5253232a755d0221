package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/julianshen/wikimaint/internal/crosslink"
	"github.com/julianshen/wikimaint/internal/refpages"
)

// Proposal is a candidate link reported by a headless review.
type Proposal struct {
	Page    string `json:"page"`
	Target  string `json:"target"`
	Text    string `json:"text"`
	Percent int    `json:"percent"`
	Status  string `json:"status"`
}

// HeadlessReviewer records every candidate without accepting any, so a
// session run with it never changes a page.
type HeadlessReviewer struct {
	mu        sync.Mutex
	proposals []Proposal
}

// NewHeadlessReviewer creates an empty HeadlessReviewer.
func NewHeadlessReviewer() *HeadlessReviewer {
	return &HeadlessReviewer{}
}

var _ crosslink.Reviewer = (*HeadlessReviewer)(nil)

// Review walks the candidates of one page and finishes the review.
func (h *HeadlessReviewer) Review(ctx context.Context, page refpages.Entry, r *crosslink.Review) (crosslink.Result, error) {
	clean := r.Map().Derived()
	seen := make(map[int]bool)
	for !r.Finished() {
		if err := ctx.Err(); err != nil {
			return crosslink.Result{}, err
		}
		c, ok := r.Current()
		if !ok || seen[r.Cursor()] {
			break
		}
		seen[r.Cursor()] = true
		if !c.Excluded {
			h.add(Proposal{
				Page:    page.Link,
				Target:  c.Target,
				Text:    clean[c.MatchStart:c.MatchEnd],
				Percent: r.Percent(),
				Status:  c.Status.String(),
			})
		}
		r.Apply(crosslink.Next)
	}
	r.Apply(crosslink.Done)
	return r.Result(), nil
}

func (h *HeadlessReviewer) add(p Proposal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.proposals = append(h.proposals, p)
}

// Proposals returns the candidates recorded so far.
func (h *HeadlessReviewer) Proposals() []Proposal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Proposal(nil), h.proposals...)
}

// WriteProposals writes ps to w as a table, or as JSON when format is
// "json".
func WriteProposals(w io.Writer, ps []Proposal, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if ps == nil {
			ps = []Proposal{}
		}
		return enc.Encode(ps)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tAT\tTEXT\tTARGET\tSTATUS")
	for _, p := range ps {
		fmt.Fprintf(tw, "%s\t%d%%\t%s\t%s\t%s\n", p.Page, p.Percent, p.Text, p.Target, p.Status)
	}
	return tw.Flush()
}
