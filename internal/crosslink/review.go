package crosslink

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/editlist"
)

// Command is an operator action during review.
type Command int

const (
	Next Command = iota
	Prev
	GrowLeft
	GrowRight
	Grow
	Shrink
	ShiftLeft
	ShiftRight
	Reset
	Accept
	AcceptPrev
	Undo
	Exclude
	Preview
	Quit
	Done
)

var commandNames = [...]string{
	Next:       "next",
	Prev:       "prev",
	GrowLeft:   "grow-left",
	GrowRight:  "grow-right",
	Grow:       "grow",
	Shrink:     "shrink",
	ShiftLeft:  "shift-left",
	ShiftRight: "shift-right",
	Reset:      "reset",
	Accept:     "accept",
	AcceptPrev: "accept-prev",
	Undo:       "undo",
	Exclude:    "exclude",
	Preview:    "preview",
	Quit:       "quit",
	Done:       "done",
}

func (c Command) String() string {
	if c >= 0 && int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Outcome reports the effect of a command.
type Outcome struct {
	// Rejected is set when the command was not legal in the current state.
	Rejected bool
	// Notice is a message for the operator, if any.
	Notice string
	// Preview holds the original text split for display after Preview.
	Preview []editlist.Segment
	// Finished is set once the review has ended.
	Finished bool
}

// Result is the outcome of a finished review.
type Result struct {
	Candidates []Candidate
	Text       string
	Accepted   int
	Quit       bool
}

// Review is the state of an operator's pass over one page's candidates.
type Review struct {
	m        *editlist.PositionMap
	cands    []Candidate
	cursor   int
	finished bool
	quit     bool
	logger   *zap.Logger
}

// NewReview starts a review of cands against m. The review is finished at
// once when there are no candidates.
func NewReview(m *editlist.PositionMap, cands []Candidate, logger *zap.Logger) *Review {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Review{m: m, cands: cands, logger: logger}
	Resolve(r.cands, logger)
	r.finished = len(cands) == 0
	return r
}

// Map returns the position map under review.
func (r *Review) Map() *editlist.PositionMap { return r.m }

// Finished reports whether the review has ended.
func (r *Review) Finished() bool { return r.finished }

// Cursor returns the index of the current candidate.
func (r *Review) Cursor() int { return r.cursor }

// Len returns the number of candidates.
func (r *Review) Len() int { return len(r.cands) }

// Current returns the candidate under the cursor.
func (r *Review) Current() (Candidate, bool) {
	if r.cursor < 0 || r.cursor >= len(r.cands) {
		return Candidate{}, false
	}
	return r.cands[r.cursor], true
}

// Bounds returns the selectable region around the current candidate.
func (r *Review) Bounds() (low, high int) {
	c, ok := r.Current()
	if !ok {
		return 0, 0
	}
	return r.m.SelectableBounds(c.MatchStart)
}

// Percent returns how far into the clean text the current candidate lies.
func (r *Review) Percent() int {
	c, ok := r.Current()
	if !ok || len(r.m.Derived()) == 0 {
		return 0
	}
	return c.MatchStart * 100 / len(r.m.Derived())
}

// Apply performs cmd and reports its outcome.
func (r *Review) Apply(cmd Command) Outcome {
	if r.finished {
		return Outcome{Finished: true}
	}
	var out Outcome
	switch cmd {
	case Next:
		out = r.move(1)
	case Prev:
		out = r.move(-1)
	case GrowLeft, GrowRight, Grow, Shrink, ShiftLeft, ShiftRight, Reset:
		out = r.adjust(cmd)
	case Accept:
		out = r.accept(1)
	case AcceptPrev:
		out = r.accept(-1)
	case Undo:
		out = r.undo()
	case Exclude:
		out = r.exclude()
	case Preview:
		out = Outcome{Preview: r.m.Segments()}
	case Quit:
		r.finished, r.quit = true, true
	case Done:
		r.finished = true
	default:
		out = Outcome{Rejected: true, Notice: fmt.Sprintf("unknown command %d", int(cmd))}
	}
	out.Finished = r.finished
	if out.Rejected {
		r.logger.Debug("command rejected", zap.Stringer("command", cmd), zap.String("notice", out.Notice))
	}
	return out
}

// Result summarises the review.
func (r *Review) Result() Result {
	res := Result{
		Candidates: append([]Candidate(nil), r.cands...),
		Text:       r.m.Original(),
		Quit:       r.quit,
	}
	for _, c := range r.cands {
		if c.Status == Accepted {
			res.Accepted++
		}
	}
	return res
}

func (r *Review) move(dir int) Outcome {
	for i := r.cursor + dir; i >= 0 && i < len(r.cands); i += dir {
		if r.cands[i].Reviewable() {
			r.cursor = i
			return Outcome{}
		}
	}
	if dir > 0 {
		return Outcome{Notice: "end of suggested links"}
	}
	return Outcome{Notice: "no earlier suggested links"}
}

func (r *Review) adjust(cmd Command) Outcome {
	if r.cursor >= len(r.cands) {
		return Outcome{Rejected: true, Notice: "no link selected"}
	}
	c := &r.cands[r.cursor]
	if !c.Adjustable() {
		return Outcome{Rejected: true, Notice: fmt.Sprintf("%s link cannot be changed", c.Status)}
	}

	text := r.m.Derived()
	low, high := r.m.SelectableBounds(c.MatchStart)
	before := func(pos int) int {
		_, n := utf8.DecodeLastRuneInString(text[:pos])
		return n
	}
	after := func(pos int) int {
		_, n := utf8.DecodeRuneInString(text[pos:])
		return n
	}

	start, end := c.SelStart, c.SelEnd
	switch cmd {
	case GrowLeft:
		if start > low {
			start -= before(start)
		}
	case GrowRight:
		if end < high {
			end += after(end)
		}
	case Grow:
		if start > low {
			start -= before(start)
		}
		if end < high {
			end += after(end)
		}
	case Shrink:
		if utf8.RuneCountInString(text[start:end]) <= 2 {
			return Outcome{Rejected: true, Notice: "selection cannot shrink further"}
		}
		start += after(start)
		end -= before(end)
	case ShiftLeft:
		if start > low {
			start -= before(start)
			end -= before(end)
		}
	case ShiftRight:
		if end < high {
			start += after(start)
			end += after(end)
		}
	case Reset:
		start, end = c.MatchStart, c.MatchEnd
	}
	if start == c.SelStart && end == c.SelEnd && cmd != Reset {
		return Outcome{Notice: "selection is at the edge of editable text"}
	}
	c.SelStart, c.SelEnd = start, end
	Resolve(r.cands, r.logger)
	return Outcome{}
}

func (r *Review) accept(dir int) Outcome {
	if r.cursor >= len(r.cands) {
		return Outcome{Rejected: true, Notice: "no link selected"}
	}
	c := &r.cands[r.cursor]
	switch {
	case c.Excluded:
		return Outcome{Rejected: true, Notice: "links to " + c.Target + " are excluded"}
	case c.Status == Accepted:
		return Outcome{Rejected: true, Notice: "link already accepted"}
	case c.Status == BlockedByAccepted:
		return Outcome{Rejected: true, Notice: "cannot create overlapping link"}
	}

	ostart, oend := r.m.OriginalSpan(c.SelStart, c.SelEnd)
	label := r.m.Original()[ostart:oend]
	if err := r.m.Replace(ostart, oend, LinkText(c.Target, label)); err != nil {
		r.logger.Warn("link insertion refused",
			zap.String("target", c.Target),
			zap.Int("start", c.SelStart),
			zap.Int("end", c.SelEnd),
			zap.Error(err))
		return Outcome{Rejected: true, Notice: "cannot create overlapping link"}
	}
	if err := r.m.Mask(c.SelStart, c.SelEnd); err != nil {
		r.logger.Warn("mask accepted link", zap.Error(err))
	}
	c.Status = Accepted
	c.Label = label
	r.logger.Info("link accepted", zap.String("target", c.Target), zap.String("label", label))
	Resolve(r.cands, r.logger)
	return r.move(dir)
}

func (r *Review) undo() Outcome {
	if r.cursor >= len(r.cands) {
		return Outcome{Rejected: true, Notice: "no link selected"}
	}
	c := &r.cands[r.cursor]
	if c.Status != Accepted {
		return Outcome{Rejected: true, Notice: "link has not been accepted"}
	}
	if !r.m.Undo(c.SelStart, c.SelEnd) {
		r.logger.Warn("no edit recorded for accepted link",
			zap.String("target", c.Target),
			zap.Int("start", c.SelStart),
			zap.Int("end", c.SelEnd))
	}
	c.Status = Proposed
	c.Label = ""
	r.logger.Info("link removed", zap.String("target", c.Target))
	Resolve(r.cands, r.logger)
	return Outcome{}
}

func (r *Review) exclude() Outcome {
	if r.cursor >= len(r.cands) {
		return Outcome{Rejected: true, Notice: "no link selected"}
	}
	target := r.cands[r.cursor].Target
	if r.cands[r.cursor].Status == Accepted {
		return Outcome{Rejected: true, Notice: "undo the link before excluding " + target}
	}
	n := 0
	for i := range r.cands {
		if r.cands[i].Target == target && r.cands[i].Status != Accepted {
			r.cands[i].Excluded = true
			n++
		}
	}
	r.logger.Info("target excluded", zap.String("target", target), zap.Int("candidates", n))
	Resolve(r.cands, r.logger)

	if out := r.move(1); out.Notice == "" {
		return Outcome{Notice: fmt.Sprintf("excluded %d links to %s", n, target)}
	}
	if out := r.move(-1); out.Notice == "" {
		return Outcome{Notice: fmt.Sprintf("excluded %d links to %s", n, target)}
	}
	return Outcome{Notice: "no suggested links remain"}
}
