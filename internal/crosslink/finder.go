package crosslink

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/refpages"
)

// tailLimit stops the search for a name once fewer bytes remain after a match.
const tailLimit = 30

// skipPages are never scanned for links.
var skipPages = map[string]bool{
	"Sitemap":          true,
	"Broken Links":     true,
	"Edit Cheat Sheet": true,
}

var apostrophes = strings.NewReplacer("'", "['’]", "’", "['’]")

// namePattern matches name as a whole word. Straight and curly apostrophes
// match each other.
func namePattern(name string) *regexp.Regexp {
	quoted := apostrophes.Replace(regexp.QuoteMeta(name))
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(` + quoted + `)(?:[^\p{L}\p{N}_]|$)`)
}

// Finder searches clean page text for the names of reference pages.
type Finder struct {
	entries  []refpages.Entry
	patterns map[string]*regexp.Regexp
	logger   *zap.Logger
}

// NewFinder returns a Finder over the reference entries.
func NewFinder(entries []refpages.Entry, logger *zap.Logger) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{
		entries:  entries,
		patterns: make(map[string]*regexp.Regexp),
		logger:   logger,
	}
}

func (f *Finder) pattern(name string) *regexp.Regexp {
	re, ok := f.patterns[name]
	if !ok {
		re = namePattern(name)
		f.patterns[name] = re
	}
	return re
}

// Find returns a Proposed candidate for every occurrence of a reference
// page's name in text, sorted by position. Names matching the page's own
// identity and links back to the page itself are skipped.
func (f *Finder) Find(text string, page refpages.Entry) []Candidate {
	if skipPages[page.Link] || skipPages[page.Title] {
		f.logger.Debug("page excluded from scanning", zap.String("page", page.Link))
		return nil
	}

	own, next := page.Identity()
	var cands []Candidate
	for _, e := range f.entries {
		name := e.MatchName()
		if name == "" || name == own || name == next || e.Link == page.Link {
			continue
		}
		re := f.pattern(name)
		pos := 0
		for {
			m := re.FindStringSubmatchIndex(text[pos:])
			if m == nil {
				break
			}
			start, end := pos+m[2], pos+m[3]
			cands = append(cands, Candidate{
				MatchStart: start,
				MatchEnd:   end,
				SelStart:   start,
				SelEnd:     end,
				Status:     Proposed,
				Target:     e.Link,
				Info:       Info{Page: page, MatchName: name, Match: e},
			})
			pos = end
			if len(text)-pos < tailLimit {
				break
			}
		}
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].MatchStart < cands[j].MatchStart })
	f.logger.Debug("link candidates found",
		zap.String("page", page.Link),
		zap.String("identity", own),
		zap.Int("count", len(cands)))
	return cands
}
