package editlist

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnipBypassesDeletedRegion(t *testing.T) {
	m := New("abcXXXdef")
	require.NoError(t, m.Snip(3, 6))

	assert.Equal(t, "abcdef", m.Derived())
	assert.Equal(t, "abcXXXdef", m.Original())
	assert.Equal(t, 0, m.Offset(0))
	assert.Equal(t, 0, m.Offset(2))
	assert.Equal(t, 3, m.Offset(3))
	assert.Equal(t, 3, m.Offset(5))

	// Derived position 3 now maps past the removed Xs.
	assert.Equal(t, m.Derived()[3:4], m.Original()[3+3:4+3])
	require.NoError(t, m.Verify())
}

func TestSnipRejectsBadSpans(t *testing.T) {
	m := New("hello")
	assert.ErrorIs(t, m.Snip(-1, 2), ErrOutOfRange)
	assert.ErrorIs(t, m.Snip(3, 2), ErrOutOfRange)
	assert.ErrorIs(t, m.Snip(0, 6), ErrOutOfRange)
	assert.NoError(t, m.Snip(2, 2))
	assert.Empty(t, m.Edits())
}

func TestSnipAbsorbsInnerDeletions(t *testing.T) {
	m := New("a{{b}}c[[d]]e")
	require.NoError(t, m.Snip(1, 6)) // {{b}}
	require.NoError(t, m.Snip(2, 7)) // [[d]]
	assert.Equal(t, "ace", m.Derived())
	require.Len(t, m.Edits(), 2)

	// Removing "c" merges both neighbours into a single deletion.
	require.NoError(t, m.Snip(1, 2))
	assert.Equal(t, "ae", m.Derived())
	edits := m.Edits()
	require.Len(t, edits, 1)
	assert.Equal(t, Edit{OrigStart: 1, OrigEnd: 12, DerivedStart: 1, DerivedEnd: 1, Kind: Deletion}, edits[0])
	require.NoError(t, m.Verify())
}

func TestReplaceAndUndoRestoreOriginal(t *testing.T) {
	text := "The Sydney Harbour Bridge was designed by John Bradfield."
	m := New(text)
	require.NoError(t, m.Snip(0, 4)) // drop "The "
	before := *m
	before.edits = m.Edits()

	ds := strings.Index(m.Derived(), "John Bradfield")
	de := ds + len("John Bradfield")
	os, oe := m.OriginalSpan(ds, de)
	require.Equal(t, "John Bradfield", m.Original()[os:oe])

	require.NoError(t, m.Replace(os, oe, "[[Person:Bradfield, John|John Bradfield]]"))
	require.NoError(t, m.Mask(ds, de))
	assert.Contains(t, m.Original(), "[[Person:Bradfield, John|John Bradfield]].")
	assert.Equal(t, before.Derived(), m.Derived())
	assert.Equal(t, strings.Repeat("-", de-ds), m.Masked()[ds:de])
	require.NoError(t, m.Verify())

	require.True(t, m.Undo(ds, de))
	assert.Equal(t, before.Original(), m.Original())
	assert.Equal(t, before.Derived(), m.Derived())
	assert.Equal(t, before.Masked(), m.Masked())
	assert.Equal(t, before.edits, m.Edits())
}

func TestReplaceShiftsLaterRecords(t *testing.T) {
	m := New("alpha beta {{x}} gamma")
	require.NoError(t, m.Snip(11, 16)) // {{x}}
	require.NoError(t, m.Replace(0, 5, "[[Alpha]]"))

	edits := m.Edits()
	require.Len(t, edits, 2)
	assert.Equal(t, Substitution, edits[0].Kind)
	assert.Equal(t, 15, edits[1].OrigStart)
	assert.Equal(t, "{{x}}", m.Original()[edits[1].OrigStart:edits[1].OrigEnd])
	require.NoError(t, m.Verify())

	ds := strings.Index(m.Derived(), "gamma")
	os, oe := m.OriginalSpan(ds, ds+5)
	assert.Equal(t, "gamma", m.Original()[os:oe])
}

func TestReplaceRejectsOverlap(t *testing.T) {
	m := New("one two three")
	require.NoError(t, m.Replace(4, 7, "[[Two]]"))
	assert.ErrorIs(t, m.Replace(5, 9, "x"), ErrOverlap)
	assert.ErrorIs(t, m.Replace(0, 0, "x"), ErrOutOfRange)

	// Snipping part of the substitution's derived span is refused.
	assert.ErrorIs(t, m.Snip(5, 9), ErrOverlap)
}

func TestUndoDeletion(t *testing.T) {
	m := New("keep<b>this</b>")
	require.NoError(t, m.Snip(4, 7))
	require.NoError(t, m.Snip(8, 12))
	assert.Equal(t, "keepthis", m.Derived())

	require.True(t, m.Undo(4, 4))
	assert.Equal(t, "keep<b>this", m.Derived())
	require.NoError(t, m.Verify())

	assert.False(t, m.Undo(0, 3))
}

func TestSelectableBounds(t *testing.T) {
	m := New("aa<x>bbbb<y>cc")
	require.NoError(t, m.Snip(2, 5))
	require.NoError(t, m.Snip(6, 9))
	// derived "aabbbbcc", deletions at 2 and 6
	low, high := m.SelectableBounds(3)
	assert.Equal(t, 2, low)
	assert.Equal(t, 6, high)

	low, high = m.SelectableBounds(0)
	assert.Equal(t, 0, low)
	assert.Equal(t, 2, high)

	low, high = m.SelectableBounds(7)
	assert.Equal(t, 6, low)
	assert.Equal(t, 8, high)

	os, oe := m.OriginalSpan(3, 5)
	require.NoError(t, m.Replace(os, oe, "[[B]]"))
	low, high = m.SelectableBounds(4)
	assert.Equal(t, 3, low)
	assert.Equal(t, 5, high)
	low, high = m.SelectableBounds(5)
	assert.Equal(t, 5, low)
	assert.Equal(t, 6, high)
}

func TestSegmentsConcatenateToOriginal(t *testing.T) {
	m := New("x{{t}}y z")
	require.NoError(t, m.Snip(1, 6))
	os, oe := m.OriginalSpan(3, 4)
	require.NoError(t, m.Replace(os, oe, "[[Z]]"))

	segs := m.Segments()
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	assert.Equal(t, m.Original(), b.String())
	assert.Equal(t, []Segment{
		{Text: "x", Kind: Plain},
		{Text: "{{t}}", Kind: Hidden},
		{Text: "y ", Kind: Plain},
		{Text: "[[Z]]", Kind: Inserted},
	}, segs)
}

func TestRandomEditsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const alphabet = "abcdefgh {}[]<>"
	for round := 0; round < 200; round++ {
		buf := make([]byte, 40+rng.Intn(40))
		for i := range buf {
			buf[i] = alphabet[rng.Intn(len(alphabet))]
		}
		m := New(string(buf))

		for step := 0; step < 12; step++ {
			if rng.Intn(3) > 0 && len(m.Derived()) > 2 {
				s := rng.Intn(len(m.Derived()) - 1)
				e := s + 1 + rng.Intn(len(m.Derived())-s)
				_ = m.Snip(s, e)
			} else if len(m.Derived()) > 0 {
				p := rng.Intn(len(m.Derived()))
				low, high := m.SelectableBounds(p)
				if high-low < 1 {
					continue
				}
				for _, e := range m.Edits() {
					if e.Kind == Substitution && e.DerivedStart == low && e.DerivedEnd == high {
						low = high
					}
				}
				if low >= high {
					continue
				}
				os, oe := m.OriginalSpan(low, high)
				_ = m.Replace(os, oe, "[[L]]")
			}
			require.NoError(t, m.Verify(), "round %d step %d\n%s", round, step, m)
		}

		for _, e := range m.Edits() {
			if e.Kind == Substitution {
				require.True(t, m.Undo(e.DerivedStart, e.DerivedEnd))
			}
		}
		require.NoError(t, m.Verify())
		for _, e := range m.Edits() {
			assert.Equal(t, Deletion, e.Kind)
		}
	}
}
