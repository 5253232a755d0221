package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/julianshen/wikimaint/internal/dump"
	"github.com/julianshen/wikimaint/internal/markup"
	"github.com/julianshen/wikimaint/internal/output"
	"github.com/julianshen/wikimaint/internal/refpages"
)

// DefaultRegions are the report sections, in order.
var DefaultRegions = []string{
	"National",
	"New South Wales",
	"Queensland",
	"Victoria",
	"Tasmania",
	"South Australia",
	"Australian Capital Territory",
	"Western Australia",
	"Northern Territory",
}

// URLChecker checks one URL.
type URLChecker interface {
	Check(ctx context.Context, url string) string
}

// Recorder keeps a history of link results.
type Recorder interface {
	RecordLinkResult(runID, page, url, code string, excepted bool) error
}

// Runner checks every external link in a dump.
type Runner struct {
	Checker    URLChecker
	Exceptions *Exceptions
	Stripper   *markup.Stripper
	// Pages supplies the categories of each page. It may be nil.
	Pages   *refpages.List
	Regions []string
	// Limiter paces link requests. Nil means unpaced.
	Limiter  *rate.Limiter
	Recorder Recorder
	RunID    string
	Logger   *zap.Logger
	// PageList receives one PageListEntry line per checked page. It may be
	// nil.
	PageList io.Writer
}

// NewLimiter returns a limiter allowing one request per interval.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Run reads pages from r and returns the report of new broken links. Newly
// broken links are added to the exceptions file so they are reported once.
func (rn *Runner) Run(ctx context.Context, r *dump.Reader) (*output.Report, error) {
	logger := rn.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	regions := rn.Regions
	if len(regions) == 0 {
		regions = DefaultRegions
	}
	started := time.Now()
	report := &output.Report{RunID: rn.RunID, Regions: regions}
	defer func() { report.DurationMs = time.Since(started).Milliseconds() }()

	for {
		page, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, err
		}
		if !dump.Retain(page) {
			continue
		}
		if err := rn.checkPage(ctx, page, report, logger); err != nil {
			return report, err
		}
	}
	logger.Info("link check finished",
		zap.Int("pages", report.Pages),
		zap.Int("links", report.Checked),
		zap.Int("broken", len(report.Broken)),
		zap.Int("excepted", report.Excepted))
	return report, nil
}

func (rn *Runner) checkPage(ctx context.Context, page dump.Page, report *output.Report, logger *zap.Logger) error {
	plog := logger.With(zap.String("page", page.Title))
	var categories []string
	if rn.Pages != nil {
		if e, ok := rn.Pages.ByLink(page.Title); ok {
			categories = e.Categories
		}
	}

	m, err := rn.Stripper.Clean(page.Text)
	if err != nil {
		plog.Error("strip markup", zap.Error(err))
		return rn.listPage(page, categories, "")
	}
	clean := m.Derived()
	links := ExternalLinks(clean)
	report.Pages++
	plog.Debug("processing page", zap.Int("links", len(links)))

	for _, l := range links {
		if rn.Limiter != nil {
			if err := rn.Limiter.Wait(ctx); err != nil {
				return err
			}
		}
		code := rn.Checker.Check(ctx, l.URL)
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Checked++

		excepted := code != "" && rn.Exceptions.Contains(page.Title, l.URL, code)
		if rn.Recorder != nil {
			if err := rn.Recorder.RecordLinkResult(rn.RunID, page.Title, l.URL, code, excepted); err != nil {
				plog.Warn("record link result", zap.Error(err))
			}
		}
		switch {
		case code == "":
		case excepted:
			report.Excepted++
			plog.Debug("link identified in exceptions", zap.String("url", l.URL), zap.String("code", code))
		default:
			plog.Warn("broken link", zap.String("url", l.URL), zap.String("code", code))
			report.Broken = append(report.Broken, output.BrokenLink{
				Page:       page.Title,
				Percent:    Percent(l.Pos, len(clean)),
				Code:       code,
				URL:        l.URL,
				Categories: categories,
			})
			if err := rn.Exceptions.Add(page.Title, l.URL, code); err != nil {
				return fmt.Errorf("record exception: %w", err)
			}
		}
	}
	return rn.listPage(page, categories, clean)
}

func (rn *Runner) listPage(page dump.Page, categories []string, clean string) error {
	if rn.PageList == nil {
		return nil
	}
	if _, err := io.WriteString(rn.PageList, PageListEntry(page, categories, clean)+"\n"); err != nil {
		return fmt.Errorf("write page list: %w", err)
	}
	return nil
}
