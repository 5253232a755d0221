// Package tui holds the terminal screens: the link review loop, upload
// confirmation and the configuration form.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianshen/wikimaint/internal/crosslink"
	"github.com/julianshen/wikimaint/internal/refpages"
)

// UIState represents the current state of the review screen.
type UIState int

const (
	// StateReview shows the current candidate in its surrounding text.
	StateReview UIState = iota
	// StatePreview shows the edited page text in a scrollable viewport.
	StatePreview
	// StateFinished is reached once the review has ended.
	StateFinished
)

// ReviewModel is the Bubble Tea model for reviewing one page's link
// candidates. Keys are mapped to crosslink commands; all state changes
// happen in the crosslink.Review.
type ReviewModel struct {
	page       refpages.Entry
	review     *crosslink.Review
	pageURL    string
	keys       keyMap
	help       help.Model
	viewport   viewport.Model
	mdRenderer *MarkdownRenderer
	statusBar  *StatusBar
	state      UIState
	notice     string
	card       string
	cardFor    int
	width      int
	height     int
}

// Ensure ReviewModel satisfies the tea.Model interface at compile time.
var _ tea.Model = (*ReviewModel)(nil)

// NewReviewModel creates a review screen for page. pageURL is the browser
// address prefix of the wiki and may be empty.
func NewReviewModel(page refpages.Entry, r *crosslink.Review, pageURL string) *ReviewModel {
	// Rendering falls back to raw text if the renderer cannot be built.
	md, _ := NewMarkdownRenderer(76)

	m := &ReviewModel{
		page:       page,
		review:     r,
		pageURL:    pageURL,
		keys:       defaultKeyMap(),
		help:       help.New(),
		viewport:   viewport.New(80, 20),
		mdRenderer: md,
		statusBar:  NewStatusBar(80),
		state:      StateReview,
		cardFor:    -1,
		width:      80,
		height:     24,
	}
	if r.Finished() {
		m.state = StateFinished
	}
	m.statusBar.SetPage(page.Link)
	m.refreshStatus()
	return m
}

// State returns the current screen state.
func (m *ReviewModel) State() UIState { return m.state }

// Notice returns the last message shown to the operator.
func (m *ReviewModel) Notice() string { return m.notice }

// Review returns the review driven by the model.
func (m *ReviewModel) Review() *crosslink.Review { return m.review }

func (m *ReviewModel) refreshStatus() {
	res := m.review.Result()
	m.statusBar.SetProgress(m.review.Cursor()+1, m.review.Len())
	m.statusBar.SetAccepted(res.Accepted)
	if c, ok := m.review.Current(); ok {
		m.statusBar.SetCandidate(c.Status.String(), m.review.Percent())
	}
}
