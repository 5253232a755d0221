package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/julianshen/wikimaint/internal/crosslink"
	"github.com/julianshen/wikimaint/internal/refpages"
)

// ErrNotTerminal is returned when interactive review is requested without
// a terminal on stdin.
var ErrNotTerminal = errors.New("interactive review needs a terminal")

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Terminal runs each review as a Bubble Tea program. It implements
// crosslink.Reviewer.
type Terminal struct {
	in        io.Reader
	out       io.Writer
	pageURL   string
	altScreen bool
}

// NewTerminal returns a Terminal reading keys from in. in must be a
// terminal.
func NewTerminal(in *os.File, out io.Writer, pageURL string) (*Terminal, error) {
	if !IsTerminal(in) {
		return nil, ErrNotTerminal
	}
	return &Terminal{in: in, out: out, pageURL: pageURL, altScreen: true}, nil
}

var _ crosslink.Reviewer = (*Terminal)(nil)

// Review shows the candidates of page until the operator finishes or quits.
func (t *Terminal) Review(ctx context.Context, page refpages.Entry, r *crosslink.Review) (crosslink.Result, error) {
	if r.Finished() {
		return r.Result(), nil
	}
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(t.in), tea.WithOutput(t.out)}
	if t.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(NewReviewModel(page, r, t.pageURL), opts...).Run(); err != nil {
		if ctx.Err() != nil {
			return crosslink.Result{}, ctx.Err()
		}
		return crosslink.Result{}, fmt.Errorf("review %s: %w", page.Link, err)
	}
	if !r.Finished() {
		r.Apply(crosslink.Quit)
	}
	return r.Result(), nil
}

// ConfirmUpload returns a crosslink.Confirmer that asks on the terminal
// before a changed page is saved. Aborting the prompt declines the upload.
func (t *Terminal) ConfirmUpload() crosslink.Confirmer {
	return func(ctx context.Context, page string, n int) (bool, error) {
		ok := true
		err := confirmForm(page, n, &ok).
			WithInput(t.in).
			WithOutput(t.out).
			RunWithContext(ctx)
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("confirm upload: %w", err)
		}
		return ok, nil
	}
}

func confirmForm(page string, n int, ok *bool) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(uploadPrompt(page, n)).
			Affirmative("Upload").
			Negative("Discard").
			Value(ok),
	))
}

func uploadPrompt(page string, n int) string {
	return fmt.Sprintf("Save %s to %s?", formatLinks(n), page)
}
