package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// StatusBar displays the page under review and the cursor position.
type StatusBar struct {
	width    int
	page     string
	index    int
	total    int
	accepted int
	status   string
	percent  int
	style    lipgloss.Style
}

// NewStatusBar creates a new StatusBar with the given terminal width.
func NewStatusBar(width int) *StatusBar {
	return &StatusBar{
		width: width,
		style: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}),
	}
}

// SetWidth sets the terminal width.
func (s *StatusBar) SetWidth(width int) { s.width = width }

// SetPage sets the displayed page title.
func (s *StatusBar) SetPage(title string) { s.page = title }

// SetProgress sets the current candidate number and the candidate count.
func (s *StatusBar) SetProgress(index, total int) { s.index = index; s.total = total }

// SetAccepted sets the number of links accepted so far.
func (s *StatusBar) SetAccepted(n int) { s.accepted = n }

// SetCandidate sets the status and location of the current candidate.
func (s *StatusBar) SetCandidate(status string, percent int) { s.status = status; s.percent = percent }

// View renders the status bar as a styled string.
func (s *StatusBar) View() string {
	line := fmt.Sprintf(" %s  link %d/%d  %s at %d%%  %s",
		s.page,
		s.index, s.total,
		s.status, s.percent,
		formatLinks(s.accepted),
	)
	if s.width > 0 {
		return s.style.MaxWidth(s.width).Render(line)
	}
	return s.style.Render(line)
}

// formatLinks formats the accepted link count for compact display.
func formatLinks(n int) string {
	if n == 1 {
		return "1 new link"
	}
	return fmt.Sprintf("%d new links", n)
}
