// Package summarize writes one-line LLM summaries of wiki pages.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/julianshen/wikimaint/internal/ledger"
	"github.com/julianshen/wikimaint/internal/markup"
	"github.com/julianshen/wikimaint/internal/refpages"
	"github.com/julianshen/wikimaint/internal/wikiapi"
)

const (
	// DefaultMinWords is the estimated word count a page must exceed to be
	// sent to the LLM.
	DefaultMinWords = 50
	// standInLength is how many characters of a short page are kept.
	standInLength = 100
)

var prompts = map[refpages.Class]string{
	refpages.ClassPerson:       "Summarize the following biography in about 20 words, emphasizing the engineering achievements, without mentioning the person's name. \n",
	refpages.ClassProfile:      "Summarize the following biography in about 20 words, emphasizing the engineering achievements, without mentioning the person's name. \n",
	refpages.ClassPlace:        "Summarize the following place description in about 20 words, emphasizing the engineering achievements, without mentioning the place name. \n",
	refpages.ClassOrganisation: "Summarize the following description of an organisation in about 20 words, emphasizing the engineering achievements, without mentioning the organisation's name. \n",
}

// Prompt returns the instruction prefixed to a page of class c.
func Prompt(c refpages.Class) string {
	if p, ok := prompts[c]; ok {
		return p
	}
	return "Summarize the following text in about 20 words. \n"
}

// StandIn is recorded instead of a summary for pages too short to summarise.
func StandIn(clean string) string {
	r := []rune(clean)
	if len(r) > standInLength {
		r = r[:standInLength]
	}
	return "Too short to summarise: " + string(r) + "....."
}

// LongEnough reports whether clean holds more than about minWords words,
// counting six bytes a word.
func LongEnough(clean string, minWords int) bool {
	return len(clean) > 6*minWords
}

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "|", "/")

// Completer returns the LLM's reply to a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PageSource fetches page wikitext.
type PageSource interface {
	Fetch(ctx context.Context, title string) (string, error)
}

// Stats summarises a run.
type Stats struct {
	Pages      int
	Skipped    int
	Failed     int
	Summarized int
	TooShort   int
}

// Summarizer appends "entry|summary" lines to its output ledger.
type Summarizer struct {
	Source   PageSource
	LLM      Completer
	Stripper *markup.Stripper
	Out      *ledger.Ledger
	MinWords int
	// Limiter paces pages. Nil means unpaced.
	Limiter *rate.Limiter
	Logger  *zap.Logger

	done map[string]bool
}

// NewLimiter returns a limiter allowing one page per interval.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Summary returns the summary line text for a page of class c whose markup
// has been stripped to clean.
func (s *Summarizer) Summary(ctx context.Context, class refpages.Class, clean string) (string, bool, error) {
	minWords := s.MinWords
	if minWords <= 0 {
		minWords = DefaultMinWords
	}
	if !LongEnough(clean, minWords) {
		return StandIn(clean), false, nil
	}
	reply, err := s.LLM.Complete(ctx, Prompt(class)+clean)
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(reply), true, nil
}

func (s *Summarizer) loadDone() {
	s.done = make(map[string]bool)
	for _, line := range s.Out.Lines() {
		if i := strings.LastIndex(line, "|"); i > 0 {
			s.done[line[:i]] = true
		}
	}
}

// Run summarises every entry of batch not already in the output file.
func (s *Summarizer) Run(ctx context.Context, batch []refpages.Entry) (Stats, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s.loadDone()

	var st Stats
	for _, e := range batch {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if s.done[e.Raw] || e.Link == "" {
			st.Skipped++
			continue
		}
		if s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				return st, err
			}
		}

		plog := logger.With(zap.String("page", e.Link))
		text, err := s.Source.Fetch(ctx, e.Link)
		if err != nil {
			if ctx.Err() != nil {
				return st, ctx.Err()
			}
			if errors.Is(err, wikiapi.ErrRedirect) {
				plog.Warn("page is a redirect")
			} else {
				plog.Error("fetch page", zap.Error(err))
			}
			st.Failed++
			continue
		}
		m, err := s.Stripper.Clean(text)
		if err != nil {
			plog.Error("strip markup", zap.Error(err))
			st.Failed++
			continue
		}

		class := e.Class
		if class == refpages.ClassOther {
			class, _ = refpages.ClassOf(e.Link)
		}
		summary, asked, err := s.Summary(ctx, class, m.Derived())
		if err != nil {
			if ctx.Err() != nil {
				return st, ctx.Err()
			}
			plog.Error("summarise page", zap.Error(err))
			st.Failed++
			continue
		}
		if asked {
			st.Summarized++
		} else {
			st.TooShort++
		}
		st.Pages++
		plog.Info("page summarised", zap.Stringer("class", class), zap.Bool("llm", asked), zap.String("summary", summary))

		if err := s.Out.Append(e.Raw + "|" + flatten.Replace(summary)); err != nil {
			return st, fmt.Errorf("record summary: %w", err)
		}
		s.done[e.Raw] = true
	}
	return st, nil
}
