// Package editlist tracks the correspondence between an original marked-up
// string and a derived string obtained from it by deletions, while allowing
// substitutions to be written back into the original and later undone.
//
// Positions are byte offsets. The derived string is what pattern searches run
// over; the original string is what gets uploaded.
package editlist

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOutOfRange is returned when a span does not fit the string it
	// addresses or is inverted.
	ErrOutOfRange = errors.New("editlist: span out of range")
	// ErrOverlap is returned when a span partially overlaps an existing edit.
	ErrOverlap = errors.New("editlist: span overlaps an existing edit")
)

// Filler is the byte written over masked spans.
const Filler = '-'

// Kind distinguishes the two edit record types.
type Kind int

const (
	// Deletion records text removed from the derived string. Its derived span
	// is empty and marks the point where the text used to be.
	Deletion Kind = iota
	// Substitution records derived text that is shown in the original string
	// as replacement text.
	Substitution
)

func (k Kind) String() string {
	switch k {
	case Deletion:
		return "deletion"
	case Substitution:
		return "substitution"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Edit links a span of the original string to a span of the derived string.
type Edit struct {
	OrigStart    int
	OrigEnd      int
	DerivedStart int
	DerivedEnd   int
	Kind         Kind
}

// Delta is the number of bytes the original string carries in excess of the
// derived string for this record.
func (e Edit) Delta() int {
	return (e.OrigEnd - e.OrigStart) - (e.DerivedEnd - e.DerivedStart)
}

// precedes reports whether the record lies wholly before derived position pos.
// A deletion at pos precedes it: the removed text sat before derived[pos].
func (e Edit) precedes(pos int) bool {
	if e.Kind == Deletion {
		return e.DerivedStart <= pos
	}
	return e.DerivedEnd <= pos
}

// PositionMap owns the original, derived and masked strings and the sorted
// list of edit records relating them. The zero value is an empty map.
type PositionMap struct {
	original string
	derived  string
	masked   string
	edits    []Edit
}

// New returns a PositionMap seeded with text.
func New(text string) *PositionMap {
	m := &PositionMap{}
	m.Reset(text)
	return m
}

// Reset discards all edits and seeds the map with text.
func (m *PositionMap) Reset(text string) {
	m.original = text
	m.derived = text
	m.masked = text
	m.edits = nil
}

// Original returns the original string including committed substitutions.
func (m *PositionMap) Original() string { return m.original }

// Derived returns the stripped string.
func (m *PositionMap) Derived() string { return m.derived }

// Masked returns the derived string with claimed spans overwritten by Filler.
func (m *PositionMap) Masked() string { return m.masked }

// Edits returns a copy of the edit records in position order.
func (m *PositionMap) Edits() []Edit {
	out := make([]Edit, len(m.edits))
	copy(out, m.edits)
	return out
}

// Snip removes derived[start:end]. The original string is untouched. Records
// lying wholly inside the removed span are merged into the new deletion.
func (m *PositionMap) Snip(start, end int) error {
	if start < 0 || end > len(m.derived) || start > end {
		return fmt.Errorf("%w: snip [%d,%d) of %d", ErrOutOfRange, start, end, len(m.derived))
	}
	if start == end {
		return nil
	}

	lo := 0
	for lo < len(m.edits) {
		e := m.edits[lo]
		if e.DerivedEnd < start || (e.DerivedEnd == start && e.DerivedStart < start) {
			lo++
			continue
		}
		break
	}
	hi := lo
	for hi < len(m.edits) && m.edits[hi].DerivedStart >= start && m.edits[hi].DerivedEnd <= end {
		hi++
	}
	if hi < len(m.edits) && m.edits[hi].DerivedStart < end {
		return fmt.Errorf("%w: snip [%d,%d)", ErrOverlap, start, end)
	}

	before := 0
	for _, e := range m.edits[:lo] {
		before += e.Delta()
	}
	absorbed := 0
	for _, e := range m.edits[lo:hi] {
		absorbed += e.Delta()
	}

	rec := Edit{
		OrigStart:    start + before,
		OrigEnd:      end + before + absorbed,
		DerivedStart: start,
		DerivedEnd:   start,
		Kind:         Deletion,
	}

	shift := end - start
	edits := make([]Edit, 0, len(m.edits)-(hi-lo)+1)
	edits = append(edits, m.edits[:lo]...)
	edits = append(edits, rec)
	for _, e := range m.edits[hi:] {
		e.DerivedStart -= shift
		e.DerivedEnd -= shift
		edits = append(edits, e)
	}
	m.edits = edits
	m.derived = m.derived[:start] + m.derived[end:]
	m.masked = m.masked[:start] + m.masked[end:]
	return nil
}

// Replace replaces original[start:end] with text and records a substitution
// over the derived span the original span corresponds to. The span must lie
// inside an untouched region of the original string.
func (m *PositionMap) Replace(start, end int, text string) error {
	if start < 0 || end > len(m.original) || start >= end {
		return fmt.Errorf("%w: replace [%d,%d) of %d", ErrOutOfRange, start, end, len(m.original))
	}

	lo := 0
	before := 0
	for lo < len(m.edits) && m.edits[lo].OrigEnd <= start {
		before += m.edits[lo].Delta()
		lo++
	}
	if lo < len(m.edits) && m.edits[lo].OrigStart < end {
		return fmt.Errorf("%w: replace [%d,%d)", ErrOverlap, start, end)
	}

	rec := Edit{
		OrigStart:    start,
		OrigEnd:      start + len(text),
		DerivedStart: start - before,
		DerivedEnd:   end - before,
		Kind:         Substitution,
	}

	diff := len(text) - (end - start)
	edits := make([]Edit, 0, len(m.edits)+1)
	edits = append(edits, m.edits[:lo]...)
	edits = append(edits, rec)
	for _, e := range m.edits[lo:] {
		e.OrigStart += diff
		e.OrigEnd += diff
		edits = append(edits, e)
	}
	m.edits = edits
	m.original = m.original[:start] + text + m.original[end:]
	return nil
}

// Mask overwrites masked[start:end] with Filler so later scans skip the span.
func (m *PositionMap) Mask(start, end int) error {
	if start < 0 || end > len(m.masked) || start > end {
		return fmt.Errorf("%w: mask [%d,%d) of %d", ErrOutOfRange, start, end, len(m.masked))
	}
	m.masked = m.masked[:start] + strings.Repeat(string(rune(Filler)), end-start) + m.masked[end:]
	return nil
}

// Undo reverses the edit whose derived span is exactly [start,end). A
// substitution is removed from the original string and unmasked; a deletion
// is restored into the derived string. It reports false when no record
// matches.
func (m *PositionMap) Undo(start, end int) bool {
	idx := -1
	for i, e := range m.edits {
		if e.DerivedStart == start && e.DerivedEnd == end {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	rec := m.edits[idx]
	rest := m.edits[idx+1:]
	switch rec.Kind {
	case Substitution:
		shown := m.derived[rec.DerivedStart:rec.DerivedEnd]
		m.original = m.original[:rec.OrigStart] + shown + m.original[rec.OrigEnd:]
		m.masked = m.masked[:rec.DerivedStart] + shown + m.masked[rec.DerivedEnd:]
		diff := rec.Delta()
		for i := range rest {
			rest[i].OrigStart -= diff
			rest[i].OrigEnd -= diff
		}
	case Deletion:
		removed := m.original[rec.OrigStart:rec.OrigEnd]
		m.derived = m.derived[:rec.DerivedStart] + removed + m.derived[rec.DerivedStart:]
		m.masked = m.masked[:rec.DerivedStart] + removed + m.masked[rec.DerivedStart:]
		for i := range rest {
			rest[i].DerivedStart += len(removed)
			rest[i].DerivedEnd += len(removed)
		}
	}
	m.edits = append(m.edits[:idx], rest...)
	return true
}

// Offset returns the distance between derived position pos and the matching
// position in the original string.
func (m *PositionMap) Offset(pos int) int {
	offset := 0
	for _, e := range m.edits {
		if !e.precedes(pos) {
			break
		}
		offset += e.Delta()
	}
	return offset
}

// OriginalSpan translates an untouched derived span into original coordinates.
func (m *PositionMap) OriginalSpan(start, end int) (int, int) {
	offset := m.Offset(start)
	return start + offset, end + offset
}

// SelectableBounds returns the untouched derived region [low,high) that
// contains pos. When pos falls inside a substitution the substitution's own
// derived span is returned.
func (m *PositionMap) SelectableBounds(pos int) (low, high int) {
	low, high = 0, len(m.derived)
	for _, e := range m.edits {
		switch {
		case e.precedes(pos):
			if e.DerivedEnd > low {
				low = e.DerivedEnd
			}
		case e.DerivedStart > pos:
			return low, e.DerivedStart
		default:
			return e.DerivedStart, e.DerivedEnd
		}
	}
	return low, high
}

// Verify checks that every untouched region of the derived string appears
// verbatim at the mapped position of the original string and that records
// are ordered and disjoint.
func (m *PositionMap) Verify() error {
	derivedAt, origAt := 0, 0
	for i, e := range m.edits {
		if e.DerivedStart < derivedAt || e.OrigStart < origAt {
			return fmt.Errorf("edit %d out of order: %+v", i, e)
		}
		if e.DerivedEnd < e.DerivedStart || e.OrigEnd < e.OrigStart {
			return fmt.Errorf("edit %d inverted: %+v", i, e)
		}
		if e.Kind == Deletion && e.DerivedStart != e.DerivedEnd {
			return fmt.Errorf("edit %d: deletion with derived width: %+v", i, e)
		}
		want := m.derived[derivedAt:e.DerivedStart]
		if e.OrigStart-origAt != len(want) || m.original[origAt:e.OrigStart] != want {
			return fmt.Errorf("edit %d: region before it does not round-trip", i)
		}
		derivedAt, origAt = e.DerivedEnd, e.OrigEnd
	}
	if m.original[origAt:] != m.derived[derivedAt:] {
		return errors.New("trailing region does not round-trip")
	}
	if len(m.masked) != len(m.derived) {
		return fmt.Errorf("masked length %d differs from derived length %d", len(m.masked), len(m.derived))
	}
	return nil
}

func (m *PositionMap) String() string {
	return fmt.Sprintf("%v\n%q\n%q\n%q", m.edits, m.original, m.derived, m.masked)
}
