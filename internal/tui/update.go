package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianshen/wikimaint/internal/crosslink"
)

// Init implements tea.Model.
func (m *ReviewModel) Init() tea.Cmd {
	if m.state == StateFinished {
		return tea.Quit
	}
	return nil
}

// Update implements tea.Model.
func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve space for header (1), divider (1), footer (2)
		viewportHeight := m.height - 4
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		m.viewport.Width = m.width
		m.viewport.Height = viewportHeight
		m.help.Width = m.width
		m.statusBar.SetWidth(m.width)
		if md, err := NewMarkdownRenderer(cardWidth(m.width)); err == nil {
			m.mdRenderer = md
			m.cardFor = -1
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *ReviewModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == StateFinished {
		return m, tea.Quit
	}

	if m.state == StatePreview {
		switch msg.String() {
		case "ctrl+c":
			return m.apply(crosslink.Quit)
		case "esc", "enter", "v", "V", "q":
			m.state = StateReview
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if msg.String() == "?" {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	cmd, ok := m.keys.command(msg)
	if !ok {
		return m, nil
	}
	return m.apply(cmd)
}

func (m *ReviewModel) apply(cmd crosslink.Command) (tea.Model, tea.Cmd) {
	out := m.review.Apply(cmd)
	m.notice = out.Notice
	if out.Rejected && m.notice == "" {
		m.notice = "Cannot " + cmd.String() + " here"
	}
	m.refreshStatus()

	if out.Finished {
		m.state = StateFinished
		return m, tea.Quit
	}
	if out.Preview != nil {
		m.viewport.SetContent(renderSegments(out.Preview, m.width))
		m.viewport.GotoTop()
		m.state = StatePreview
	}
	return m, nil
}

func cardWidth(width int) int {
	if width < 24 {
		return 20
	}
	return width - 4
}
