// Package markup removes wiki markup from page text by snipping matches of
// an ordered list of patterns out of an editlist.PositionMap.
package markup

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/editlist"
)

// lookback is how far before a snip a pass resumes searching, so a removal
// that joins two halves of a delimiter is still seen.
const lookback = 3

// Pass is one stripping step.
type Pass struct {
	Name    string
	Pattern *regexp.Regexp
	// Once stops the pass after its first match.
	Once bool
	// ToEnd snips from the match start to the end of the text.
	ToEnd bool
	// Prefix snips from the start of the text to the match end.
	Prefix bool
}

// Standard passes, in the order they run for page text.
var (
	XMLPrefix  = Pass{Name: "xml-prefix", Pattern: regexp.MustCompile(`<text(.+?)>`), Once: true, Prefix: true}
	References = Pass{Name: "references", Pattern: regexp.MustCompile(`References`), Once: true, ToEnd: true}
	Refs       = Pass{Name: "refs", Pattern: regexp.MustCompile(`<ref(.+?)</ref>`)}
	Templates  = Pass{Name: "templates", Pattern: regexp.MustCompile(`\{\{(.+?)\}\}`)}
	Links      = Pass{Name: "links", Pattern: regexp.MustCompile(`(?s)\[\[(.+?)\]\]`)}
	Tags       = Pass{Name: "tags", Pattern: regexp.MustCompile(`<(.+?)>`)}
)

// PagePasses prepares page text for link candidate search.
func PagePasses() []Pass {
	return []Pass{XMLPrefix, References, Refs, Templates, Links, Tags}
}

// DumpPasses prepares dump text for external link scanning. Internal links
// go so that only single-bracket external links remain.
func DumpPasses() []Pass {
	return []Pass{Templates, Links, Tags}
}

// Stats counts snips per pass.
type Stats map[string]int

// Stripper runs a fixed sequence of passes.
type Stripper struct {
	passes []Pass
	logger *zap.Logger
}

// New returns a Stripper running passes in order. A nil logger discards.
func New(passes []Pass, logger *zap.Logger) *Stripper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stripper{passes: passes, logger: logger}
}

// Strip applies every pass to m in order.
func (s *Stripper) Strip(m *editlist.PositionMap) (Stats, error) {
	stats := make(Stats, len(s.passes))
	for _, p := range s.passes {
		n, err := s.run(p, m)
		if err != nil {
			return stats, fmt.Errorf("pass %s: %w", p.Name, err)
		}
		if n > 0 {
			stats[p.Name] = n
		}
	}
	s.logger.Debug("stripped markup",
		zap.Any("snips", stats),
		zap.Int("original_len", len(m.Original())),
		zap.Int("derived_len", len(m.Derived())))
	return stats, nil
}

func (s *Stripper) run(p Pass, m *editlist.PositionMap) (int, error) {
	n := 0
	cursor := 0
	for {
		text := m.Derived()
		if cursor > len(text) {
			return n, nil
		}
		loc := p.Pattern.FindStringIndex(text[cursor:])
		if loc == nil {
			return n, nil
		}
		start, end := cursor+loc[0], cursor+loc[1]
		switch {
		case p.ToEnd:
			end = len(text)
		case p.Prefix:
			start = 0
		}
		if err := m.Snip(start, end); err != nil {
			return n, err
		}
		n++
		if p.Once || start == end {
			return n, nil
		}
		cursor = max(0, start-lookback)
	}
}

// Clean strips text and returns the resulting map.
func (s *Stripper) Clean(text string) (*editlist.PositionMap, error) {
	m := editlist.New(text)
	if _, err := s.Strip(m); err != nil {
		return nil, err
	}
	return m, nil
}
