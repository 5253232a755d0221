// Package crosslink proposes internal links from a page's plain text to other
// wiki pages and drives the operator review that accepts them.
package crosslink

import "github.com/julianshen/wikimaint/internal/refpages"

// Status is the review state of a candidate.
type Status int

const (
	// Proposed candidates can be accepted.
	Proposed Status = iota
	// BlockedAmbiguous candidates overlap another proposal; either may be
	// accepted, after which the other becomes BlockedByAccepted.
	BlockedAmbiguous
	// Accepted candidates have their link written into the original text.
	Accepted
	// BlockedByAccepted candidates overlap an accepted neighbour.
	BlockedByAccepted
)

func (s Status) String() string {
	switch s {
	case Proposed:
		return "proposed"
	case Accepted:
		return "accepted"
	case BlockedAmbiguous:
		return "ambiguous"
	case BlockedByAccepted:
		return "blocked"
	default:
		return "unknown"
	}
}

// Info is the context shown to the operator for a candidate.
type Info struct {
	Page      refpages.Entry
	MatchName string
	Match     refpages.Entry
}

// Candidate is a proposed link from a span of the clean text to a target page.
type Candidate struct {
	// MatchStart and MatchEnd bound the name found in the clean text.
	MatchStart int
	MatchEnd   int
	// SelStart and SelEnd bound the text that will become the link label.
	SelStart int
	SelEnd   int
	Status   Status
	// Excluded candidates were rejected for their target and are skipped.
	Excluded bool
	// Blocking is set on accepted candidates that currently block a
	// neighbour.
	Blocking bool
	Target   string
	// Label is the original text wrapped by an accepted link.
	Label string
	Info  Info
}

// Reviewable reports whether the cursor may rest on the candidate.
func (c *Candidate) Reviewable() bool { return !c.Excluded }

// Adjustable reports whether the selection may be changed or accepted.
func (c *Candidate) Adjustable() bool {
	return !c.Excluded && (c.Status == Proposed || c.Status == BlockedAmbiguous)
}

// LinkText renders the internal link that replaces label.
func LinkText(target, label string) string {
	return "[[" + target + "|" + label + "]]"
}
