package crosslink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/julianshen/wikimaint/internal/editlist"
	"github.com/julianshen/wikimaint/internal/markup"
	"github.com/julianshen/wikimaint/internal/refpages"
)

func mustEntry(t *testing.T, line string) refpages.Entry {
	t.Helper()
	e, err := refpages.ParseLine(line, refpages.BatchFields)
	require.NoError(t, err)
	return e
}

func testEntries(t *testing.T) []refpages.Entry {
	return []refpages.Entry{
		mustEntry(t, "Person:Bradfield, John|John Bradfield|New South Wales|2024-01-01|1867-1943|Bridge designer"),
		mustEntry(t, "Person:Freeman, Ralph|Ralph Freeman|National|2024-01-01|1880-1950|Consulting engineer"),
		mustEntry(t, "Place:Sydney Harbour Bridge|Sydney Harbour Bridge|New South Wales|2024-01-01|Steel arch bridge"),
		mustEntry(t, "Place:Sydney|Sydney|New South Wales|2024-01-01|Capital of New South Wales"),
		mustEntry(t, "Person:O'Connor, Charles|C. Y. O'Connor|Western Australia|2024-01-01|1843-1902|Engineer"),
	}
}

const bridgeText = "Ralph Freeman worked with Bradfield on the Sydney Harbour Bridge. " +
	"Later Freeman returned to London while Bradfield stayed in Sydney for many years afterwards."

func TestFindProposesSortedCandidates(t *testing.T) {
	page := mustEntry(t, "Organisation:Dorman Long|Dorman Long|National|2024-01-01|Bridge builders")
	f := NewFinder(testEntries(t), nil)
	cands := f.Find(bridgeText, page)

	var got []string
	for i, c := range cands {
		assert.Equal(t, Proposed, c.Status)
		assert.Equal(t, c.MatchStart, c.SelStart)
		assert.Equal(t, c.MatchEnd, c.SelEnd)
		if i > 0 {
			assert.LessOrEqual(t, cands[i-1].MatchStart, c.MatchStart)
		}
		got = append(got, bridgeText[c.MatchStart:c.MatchEnd]+"->"+c.Target)
	}
	assert.Equal(t, []string{
		"Freeman->Ralph Freeman",
		"Bradfield->John Bradfield",
		"Sydney Harbour Bridge->Sydney Harbour Bridge",
		"Sydney->Sydney",
		"Freeman->Ralph Freeman",
		"Bradfield->John Bradfield",
		"Sydney->Sydney",
	}, got)
}

func TestFindSkipsOwnIdentity(t *testing.T) {
	f := NewFinder(testEntries(t), nil)

	// A page about Bradfield must not link to itself.
	page := mustEntry(t, "Person:Bradfield, John|John Bradfield|New South Wales|2024-01-01|1867-1943|Bridge designer")
	for _, c := range f.Find(bridgeText, page) {
		assert.NotEqual(t, "John Bradfield", c.Target)
	}

	// A page whose first forename is "Sydney" skips the place called Sydney.
	other := mustEntry(t, "Person:Kidman, Sydney|Sidney Kidman|National|2024-01-01|1857-1935|Pastoralist")
	for _, c := range f.Find(bridgeText, other) {
		assert.NotEqual(t, "Sydney", c.Target)
	}

	// Skipped pages are never scanned.
	sitemap := mustEntry(t, "Sitemap|Sitemap|National|2024-01-01")
	assert.Empty(t, f.Find(bridgeText, sitemap))
}

func TestFindWholeWordAndApostrophes(t *testing.T) {
	f := NewFinder(testEntries(t), nil)
	page := mustEntry(t, "Place:Perth|Perth|Western Australia|2024-01-01|City")

	text := "Bradfieldian ideas differ. The pipeline of O’Connor reached the goldfields in 1903 at last."
	cands := f.Find(text, page)
	require.Len(t, cands, 1)
	assert.Equal(t, "C. Y. O'Connor", cands[0].Target)
	assert.Equal(t, "O’Connor", text[cands[0].MatchStart:cands[0].MatchEnd])
}

func TestFindStopsNearEndOfText(t *testing.T) {
	f := NewFinder(testEntries(t), nil)
	page := mustEntry(t, "Place:Perth|Perth|Western Australia|2024-01-01|City")

	// The second Freeman lies within the tail after the first match.
	cands := f.Find("Freeman and Freeman.", page)
	require.Len(t, cands, 1)
	assert.Equal(t, 0, cands[0].MatchStart)
}

func cand(start, end int, st Status) Candidate {
	return Candidate{MatchStart: start, MatchEnd: end, SelStart: start, SelEnd: end, Status: st, Target: "T"}
}

func TestResolveOverlapTable(t *testing.T) {
	tests := []struct {
		name       string
		prev, cur  Status
		wantPrev   Status
		wantCur    Status
		wantBlocks bool
	}{
		{"both proposed", Proposed, Proposed, BlockedAmbiguous, BlockedAmbiguous, false},
		{"accepted then proposed", Accepted, Proposed, Accepted, BlockedByAccepted, true},
		{"proposed then accepted", Proposed, Accepted, BlockedByAccepted, Accepted, true},
		{"both accepted", Accepted, Accepted, Accepted, Accepted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cands := []Candidate{cand(0, 10, tt.prev), cand(5, 15, tt.cur)}
			Resolve(cands, nil)
			assert.Equal(t, tt.wantPrev, cands[0].Status)
			assert.Equal(t, tt.wantCur, cands[1].Status)
			assert.Equal(t, tt.wantBlocks, cands[0].Blocking || cands[1].Blocking)
		})
	}
}

func TestResolveBlockedStaysBlockedInChain(t *testing.T) {
	cands := []Candidate{cand(10, 20, Accepted), cand(15, 25, Proposed), cand(22, 30, Proposed)}
	Resolve(cands, nil)
	assert.Equal(t, Accepted, cands[0].Status)
	assert.True(t, cands[0].Blocking)
	assert.Equal(t, BlockedByAccepted, cands[1].Status)
	assert.Equal(t, Proposed, cands[2].Status)

	// A fourth candidate clashing with the free one makes both ambiguous.
	cands = append(cands, cand(28, 35, Proposed))
	Resolve(cands, nil)
	assert.Equal(t, BlockedByAccepted, cands[1].Status)
	assert.Equal(t, BlockedAmbiguous, cands[2].Status)
	assert.Equal(t, BlockedAmbiguous, cands[3].Status)
}

func TestStatusEncoding(t *testing.T) {
	assert.Equal(t, 0, int(Proposed))
	assert.Equal(t, 1, int(BlockedAmbiguous))
	assert.Equal(t, 2, int(Accepted))
	assert.Equal(t, 3, int(BlockedByAccepted))
}

func TestResolveAdjacentSpansDoNotOverlap(t *testing.T) {
	cands := []Candidate{cand(0, 5, Proposed), cand(5, 9, Proposed)}
	Resolve(cands, nil)
	assert.Equal(t, Proposed, cands[0].Status)
	assert.Equal(t, Proposed, cands[1].Status)
}

func TestResolveIsIdempotent(t *testing.T) {
	cands := []Candidate{
		cand(0, 10, Accepted),
		cand(5, 12, Proposed),
		cand(11, 20, Proposed),
		cand(30, 35, Proposed),
		cand(33, 40, Accepted),
		cand(50, 55, Proposed),
	}
	Resolve(cands, nil)
	first := append([]Candidate(nil), cands...)
	Resolve(cands, nil)
	assert.Equal(t, first, cands)

	assert.Equal(t, BlockedByAccepted, cands[1].Status)
	assert.Equal(t, Proposed, cands[2].Status)
	assert.Equal(t, BlockedByAccepted, cands[3].Status)
	assert.True(t, cands[4].Blocking)
	assert.Equal(t, Proposed, cands[5].Status)
}

func TestResolveSkipsExcluded(t *testing.T) {
	cands := []Candidate{cand(0, 10, Proposed), cand(5, 15, Proposed), cand(12, 20, Proposed)}
	cands[1].Excluded = true
	Resolve(cands, nil)
	assert.Equal(t, Proposed, cands[0].Status)
	assert.Equal(t, Proposed, cands[2].Status)
}

func TestResolveLogsAcceptedOverlap(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cands := []Candidate{cand(0, 10, Accepted), cand(5, 15, Accepted)}
	Resolve(cands, zap.New(core))
	assert.Equal(t, 1, logs.FilterMessage("overlapping accepted links").Len())
	assert.Equal(t, Accepted, cands[0].Status)
	assert.Equal(t, Accepted, cands[1].Status)
}

// newOverlapReview sets up "...the Sydney Harbour Bridge..." with candidates
// for both "Sydney Harbour Bridge" and "Sydney".
func newOverlapReview(t *testing.T) *Review {
	t.Helper()
	m, err := markup.New(markup.PagePasses(), nil).Clean("{{Infobox}}" + bridgeText)
	require.NoError(t, err)
	page := mustEntry(t, "Organisation:Dorman Long|Dorman Long|National|2024-01-01|Bridge builders")
	cands := NewFinder(testEntries(t)[2:4], nil).Find(m.Derived(), page)
	require.GreaterOrEqual(t, len(cands), 2)
	return NewReview(m, cands, nil)
}

func TestReviewOverlapScenario(t *testing.T) {
	r := newOverlapReview(t)
	cands := r.Result().Candidates
	assert.Equal(t, BlockedAmbiguous, cands[0].Status)
	assert.Equal(t, BlockedAmbiguous, cands[1].Status)

	// Accept "Sydney Harbour Bridge"; the nested "Sydney" becomes blocked.
	require.Equal(t, "Sydney Harbour Bridge", mustCurrent(t, r).Target)
	out := r.Apply(Accept)
	require.False(t, out.Rejected, out.Notice)
	cands = r.Result().Candidates
	assert.Equal(t, Accepted, cands[0].Status)
	assert.True(t, cands[0].Blocking)
	assert.Equal(t, BlockedByAccepted, cands[1].Status)

	// The cursor moved to the blocked candidate; accepting it is refused.
	assert.Equal(t, 1, r.Cursor())
	out = r.Apply(Accept)
	assert.True(t, out.Rejected)
	assert.Equal(t, "cannot create overlapping link", out.Notice)

	// Undo the first link; both are ambiguous again.
	r.Apply(Prev)
	out = r.Apply(Undo)
	require.False(t, out.Rejected)
	cands = r.Result().Candidates
	assert.Equal(t, BlockedAmbiguous, cands[0].Status)
	assert.Equal(t, BlockedAmbiguous, cands[1].Status)
	assert.Equal(t, "{{Infobox}}"+bridgeText, r.Result().Text)
}

func mustCurrent(t *testing.T, r *Review) Candidate {
	t.Helper()
	c, ok := r.Current()
	require.True(t, ok)
	return c
}

func TestReviewAcceptWritesLinkIntoOriginal(t *testing.T) {
	src := "Intro {{cite}} text. Ralph Freeman designed the arch of the bridge over the harbour."
	m, err := markup.New(markup.PagePasses(), nil).Clean(src)
	require.NoError(t, err)
	page := mustEntry(t, "Organisation:Dorman Long|Dorman Long|National|2024-01-01|Bridge builders")
	cands := NewFinder(testEntries(t), nil).Find(m.Derived(), page)
	require.Len(t, cands, 1)

	r := NewReview(m, cands, nil)
	for i := 0; i < len("Ralph "); i++ {
		r.Apply(GrowLeft)
	}
	c := mustCurrent(t, r)
	assert.Equal(t, "Ralph Freeman", m.Derived()[c.SelStart:c.SelEnd])

	out := r.Apply(Accept)
	require.False(t, out.Rejected)
	assert.Equal(t, "end of suggested links", out.Notice)

	r.Apply(Done)
	res := r.Result()
	assert.False(t, res.Quit)
	assert.Equal(t, 1, res.Accepted)
	assert.Equal(t, "Intro {{cite}} text. [[Ralph Freeman|Ralph Freeman]] designed the arch of the bridge over the harbour.", res.Text)
	require.NoError(t, m.Verify())
}

func TestReviewSelectionIsClamped(t *testing.T) {
	m := editlist.New("ab<x>Freeman<y>cd and a great deal more text follows here")
	s := markup.New([]markup.Pass{markup.Tags}, nil)
	_, err := s.Strip(m)
	require.NoError(t, err)

	page := mustEntry(t, "Place:Perth|Perth|Western Australia|2024-01-01|City")
	cands := NewFinder(testEntries(t), nil).Find(m.Derived(), page)
	// No word boundary around "Freeman" once the tags are gone.
	assert.Empty(t, cands)

	m = editlist.New("ab <x>Freeman<y> cd and a great deal more text follows here")
	_, err = s.Strip(m)
	require.NoError(t, err)
	cands = NewFinder(testEntries(t), nil).Find(m.Derived(), page)
	require.Len(t, cands, 1)
	r := NewReview(m, cands, nil)

	out := r.Apply(GrowLeft)
	assert.Equal(t, "selection is at the edge of editable text", out.Notice)
	r.Apply(GrowRight)
	c := mustCurrent(t, r)
	assert.Equal(t, "Freeman", m.Derived()[c.SelStart:c.SelEnd])

	r.Apply(Shrink)
	c = mustCurrent(t, r)
	assert.Equal(t, "reema", m.Derived()[c.SelStart:c.SelEnd])
	r.Apply(ShiftRight)
	c = mustCurrent(t, r)
	assert.Equal(t, "eeman", m.Derived()[c.SelStart:c.SelEnd])
	r.Apply(Reset)
	c = mustCurrent(t, r)
	assert.Equal(t, "Freeman", m.Derived()[c.SelStart:c.SelEnd])
}

func TestReviewShrinkKeepsSelectionNonEmpty(t *testing.T) {
	m := editlist.New("Sydney is a city with a long history of bridges and ferries.")
	page := mustEntry(t, "Person:Kidman, Sidney|Sidney Kidman|National|2024-01-01|x|y")
	cands := NewFinder(testEntries(t), nil).Find(m.Derived(), page)
	require.Len(t, cands, 1)
	r := NewReview(m, cands, nil)

	r.Apply(Shrink)
	r.Apply(Shrink)
	out := r.Apply(Shrink)
	assert.True(t, out.Rejected)
	c := mustCurrent(t, r)
	assert.Greater(t, c.SelEnd, c.SelStart)
}

func TestReviewExcludeSkipsTarget(t *testing.T) {
	m := editlist.New(bridgeText)
	page := mustEntry(t, "Organisation:Dorman Long|Dorman Long|National|2024-01-01|Bridge builders")
	cands := NewFinder(testEntries(t)[:2], nil).Find(m.Derived(), page)
	require.Len(t, cands, 4)
	r := NewReview(m, cands, nil)

	// Freeman, Bradfield, Freeman, Bradfield
	require.Equal(t, "Ralph Freeman", mustCurrent(t, r).Target)
	out := r.Apply(Exclude)
	assert.Equal(t, "excluded 2 links to Ralph Freeman", out.Notice)
	assert.Equal(t, 1, r.Cursor())

	r.Apply(Next)
	assert.Equal(t, 3, r.Cursor())
	out = r.Apply(Next)
	assert.Equal(t, "end of suggested links", out.Notice)
	r.Apply(Prev)
	assert.Equal(t, 1, r.Cursor())
	out = r.Apply(Prev)
	assert.Equal(t, "no earlier suggested links", out.Notice)

	// Excluded candidates cannot be accepted.
	for _, c := range r.Result().Candidates {
		if c.Target == "Ralph Freeman" {
			assert.True(t, c.Excluded)
		}
	}
}

func TestReviewQuitAndEmpty(t *testing.T) {
	m := editlist.New(bridgeText)
	page := mustEntry(t, "Organisation:Dorman Long|Dorman Long|National|2024-01-01|Bridge builders")
	r := NewReview(m, NewFinder(testEntries(t)[:1], nil).Find(bridgeText, page), nil)

	require.False(t, r.Finished())
	r.Apply(Accept)
	out := r.Apply(Quit)
	assert.True(t, out.Finished)
	res := r.Result()
	assert.True(t, res.Quit)
	assert.Equal(t, 1, res.Accepted)

	// Commands after the end are ignored.
	assert.Equal(t, Outcome{Finished: true}, r.Apply(Next))

	empty := NewReview(editlist.New("nothing"), nil, nil)
	assert.True(t, empty.Finished())
	assert.Equal(t, 0, empty.Result().Accepted)
}

func TestReviewPreviewShowsInsertedLink(t *testing.T) {
	r := newOverlapReview(t)
	r.Apply(Accept)
	out := r.Apply(Preview)
	require.NotEmpty(t, out.Preview)

	var inserted, hidden []string
	for _, s := range out.Preview {
		switch s.Kind {
		case editlist.Inserted:
			inserted = append(inserted, s.Text)
		case editlist.Hidden:
			hidden = append(hidden, s.Text)
		}
	}
	assert.Equal(t, []string{"[[Sydney Harbour Bridge|Sydney Harbour Bridge]]"}, inserted)
	assert.Equal(t, []string{"{{Infobox}}"}, hidden)
	assert.True(t, strings.HasPrefix(r.Result().Text, "{{Infobox}}Ralph Freeman"))
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "accept-prev", AcceptPrev.String())
	assert.Equal(t, "command(99)", Command(99).String())
}
