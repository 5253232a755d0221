package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianshen/wikimaint/internal/crosslink"
)

// keyMap binds review keys to commands.
type keyMap struct {
	Accept     key.Binding
	AcceptPrev key.Binding
	Next       key.Binding
	Prev       key.Binding
	GrowLeft   key.Binding
	GrowRight  key.Binding
	Grow       key.Binding
	Shrink     key.Binding
	ShiftLeft  key.Binding
	ShiftRight key.Binding
	Reset      key.Binding
	Undo       key.Binding
	Exclude    key.Binding
	Preview    key.Binding
	Done       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Accept:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "link, next")),
		AcceptPrev: key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "link, prev")),
		Next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip")),
		Prev:       key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "back")),
		GrowLeft:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "extend left")),
		GrowRight:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "extend right")),
		Grow:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "widen")),
		Shrink:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "narrow")),
		ShiftLeft:  key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("⇧←", "shift left")),
		ShiftRight: key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("⇧→", "shift right")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Undo:       key.NewBinding(key.WithKeys("u", "U"), key.WithHelp("u", "undo")),
		Exclude:    key.NewBinding(key.WithKeys("x", "X"), key.WithHelp("x", "never link target")),
		Preview:    key.NewBinding(key.WithKeys("v", "V"), key.WithHelp("v", "view edits")),
		Done:       key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "finish page")),
		Quit:       key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Next, k.Prev, k.Undo, k.Exclude, k.Preview, k.Done, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Accept, k.AcceptPrev, k.Next, k.Prev},
		{k.GrowLeft, k.GrowRight, k.Grow, k.Shrink},
		{k.ShiftLeft, k.ShiftRight, k.Reset, k.Undo},
		{k.Exclude, k.Preview, k.Done, k.Quit},
	}
}

// command maps a key press to a review command.
func (k keyMap) command(msg tea.KeyMsg) (crosslink.Command, bool) {
	bindings := []struct {
		b   key.Binding
		cmd crosslink.Command
	}{
		{k.Accept, crosslink.Accept},
		{k.AcceptPrev, crosslink.AcceptPrev},
		{k.Next, crosslink.Next},
		{k.Prev, crosslink.Prev},
		{k.GrowLeft, crosslink.GrowLeft},
		{k.GrowRight, crosslink.GrowRight},
		{k.Grow, crosslink.Grow},
		{k.Shrink, crosslink.Shrink},
		{k.ShiftLeft, crosslink.ShiftLeft},
		{k.ShiftRight, crosslink.ShiftRight},
		{k.Reset, crosslink.Reset},
		{k.Undo, crosslink.Undo},
		{k.Exclude, crosslink.Exclude},
		{k.Preview, crosslink.Preview},
		{k.Done, crosslink.Done},
		{k.Quit, crosslink.Quit},
	}
	for _, kb := range bindings {
		if key.Matches(msg, kb.b) {
			return kb.cmd, true
		}
	}
	return 0, false
}
