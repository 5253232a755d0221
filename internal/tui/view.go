package tui

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianshen/wikimaint/internal/crosslink"
	"github.com/julianshen/wikimaint/internal/editlist"
	"github.com/julianshen/wikimaint/internal/refpages"
	"github.com/julianshen/wikimaint/internal/wikiapi"
)

// contextBytes is how much clean text is shown either side of a selection.
const contextBytes = 240

// Style definitions for the review view.
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"})
	suggestStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#007700", Dark: "#55DD55"})
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"})
	outsideStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	hiddenStyle  = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	insertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))

	selectionStyles = map[crosslink.Status]lipgloss.Style{
		crosslink.Proposed:          lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("3")),
		crosslink.BlockedAmbiguous:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("5")),
		crosslink.Accepted:          lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("2")),
		crosslink.BlockedByAccepted: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("5")),
	}
	excludedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1"))
)

// View implements tea.Model.
func (m *ReviewModel) View() string {
	if m.state == StateFinished {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.statusBar.View())
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(m.width, 1)))
	b.WriteString("\n")

	if m.state == StatePreview {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render("esc to return to the suggestions"))
		return b.String()
	}

	c, ok := m.review.Current()
	if !ok {
		return b.String()
	}
	b.WriteString(m.contextCard(c))
	b.WriteString("\n")
	b.WriteString(suggestStyle.Render(fmt.Sprintf("Suggest link at %d%%: %s", m.review.Percent(), c.Target)))
	if m.pageURL != "" {
		b.WriteString(" [" + wikiapi.PageURL(m.pageURL, c.Target) + "]")
	}
	b.WriteString("\n\n")
	b.WriteString(m.textWindow(c))
	b.WriteString("\n\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// contextCard renders the scanned page and the match target as markdown.
// The rendering is cached until the cursor moves.
func (m *ReviewModel) contextCard(c crosslink.Candidate) string {
	if m.cardFor == m.review.Cursor() && m.card != "" {
		return m.card
	}
	md := cardMarkdown(m.page, c)
	out, err := m.mdRenderer.Render(md)
	if err != nil {
		out = md
	}
	m.card = strings.TrimRight(out, "\n")
	m.cardFor = m.review.Cursor()
	return m.card
}

func cardMarkdown(page refpages.Entry, c crosslink.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Scanning %s", page.Link)
	if page.Lifespan != "" {
		fmt.Fprintf(&b, " (%s)", page.Lifespan)
	}
	b.WriteString("\n\n")
	if len(page.Categories) > 0 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(page.Categories, ", "))
	}
	if page.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", page.Summary)
	}

	match := c.Info.Match
	fmt.Fprintf(&b, "**%s** matches %s", c.Info.MatchName, match.Link)
	if match.Lifespan != "" {
		fmt.Fprintf(&b, " (%s)", match.Lifespan)
	}
	b.WriteString("\n\n")
	if match.Summary != "" {
		fmt.Fprintf(&b, "> %s\n", match.Summary)
	}
	return b.String()
}

// textWindow renders the clean text around c with the selection
// highlighted and text outside the selectable bounds in magenta.
func (m *ReviewModel) textWindow(c crosslink.Candidate) string {
	text := m.review.Map().Derived()
	low, high := m.review.Bounds()
	from := runeFloor(text, c.SelStart-contextBytes)
	to := runeCeil(text, c.SelEnd+contextBytes)

	sel := selectionStyles[c.Status]
	if c.Excluded {
		sel = excludedStyle
	}

	cuts := []int{from, to}
	for _, p := range []int{low, c.SelStart, c.SelEnd, high} {
		if p > from && p < to {
			cuts = append(cuts, p)
		}
	}
	sort.Ints(cuts)

	var b strings.Builder
	for i := 0; i+1 < len(cuts); i++ {
		a, z := cuts[i], cuts[i+1]
		if a == z {
			continue
		}
		piece := strings.ReplaceAll(text[a:z], "\n", " ")
		switch {
		case a >= c.SelStart && z <= c.SelEnd:
			b.WriteString(sel.Render(piece))
		case z <= low || a >= high:
			b.WriteString(outsideStyle.Render(piece))
		default:
			b.WriteString(piece)
		}
	}
	return lipgloss.NewStyle().Width(max(m.width-2, 20)).Render(b.String())
}

// renderSegments renders the original text with removed markup struck
// through and committed links highlighted.
func renderSegments(segs []editlist.Segment, width int) string {
	var b strings.Builder
	for _, s := range segs {
		switch s.Kind {
		case editlist.Hidden:
			b.WriteString(hiddenStyle.Render(s.Text))
		case editlist.Inserted:
			b.WriteString(insertStyle.Render(s.Text))
		default:
			b.WriteString(s.Text)
		}
	}
	return lipgloss.NewStyle().Width(max(width, 20)).Render(b.String())
}

func runeFloor(s string, i int) int {
	if i <= 0 {
		return 0
	}
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return min(i, len(s))
}

func runeCeil(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return max(i, 0)
}
