package editlist

// SegmentKind classifies a run of the original string for display.
type SegmentKind int

const (
	// Plain text is shared by the original and derived strings.
	Plain SegmentKind = iota
	// Hidden text was removed from the derived string.
	Hidden
	// Inserted text is a committed substitution.
	Inserted
)

// Segment is a run of the original string with a single classification.
type Segment struct {
	Text string
	Kind SegmentKind
}

// Segments splits the original string into plain, hidden and inserted runs
// in order. Concatenating the Text fields yields Original().
func (m *PositionMap) Segments() []Segment {
	var segs []Segment
	at := 0
	for _, e := range m.edits {
		if e.OrigStart > at {
			segs = append(segs, Segment{Text: m.original[at:e.OrigStart], Kind: Plain})
		}
		if e.OrigEnd > e.OrigStart {
			kind := Hidden
			if e.Kind == Substitution {
				kind = Inserted
			}
			segs = append(segs, Segment{Text: m.original[e.OrigStart:e.OrigEnd], Kind: kind})
		}
		at = e.OrigEnd
	}
	if at < len(m.original) {
		segs = append(segs, Segment{Text: m.original[at:], Kind: Plain})
	}
	return segs
}
