package crosslink

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/markup"
	"github.com/julianshen/wikimaint/internal/refpages"
	"github.com/julianshen/wikimaint/internal/wikiapi"
)

// PageSource fetches and uploads wiki page text.
type PageSource interface {
	Fetch(ctx context.Context, title string) (string, error)
	Upload(ctx context.Context, title, text, summary string) error
}

// Reviewer lets an operator drive a review to completion.
type Reviewer interface {
	Review(ctx context.Context, page refpages.Entry, r *Review) (Result, error)
}

// Ledger remembers batch lines that have been completed.
type Ledger interface {
	Contains(line string) bool
	Append(line string) error
}

// Recorder keeps a history of committed links.
type Recorder interface {
	RecordCommit(runID, page, target, label string) error
}

// Confirmer asks whether a page with n new links should be uploaded.
type Confirmer func(ctx context.Context, page string, n int) (bool, error)

// Stats summarises a session.
type Stats struct {
	Pages    int
	Skipped  int
	Failed   int
	Uploaded int
	Links    int
	Quit     bool
}

// Session walks a batch of pages, proposing links on each and uploading the
// pages the operator changed.
type Session struct {
	Source   PageSource
	Finder   *Finder
	Stripper *markup.Stripper
	Reviewer Reviewer
	Done     Ledger
	// Recorder and Confirm are optional.
	Recorder Recorder
	Confirm  Confirmer
	RunID    string
	Logger   *zap.Logger
}

// UploadSummary is the edit summary for a page with n new links.
func UploadSummary(n int) string {
	return fmt.Sprintf("%d new internal links created", n)
}

// Run processes batch in order. It stops early when the operator quits or
// ctx is cancelled.
func (s *Session) Run(ctx context.Context, batch []refpages.Entry) (Stats, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var st Stats
	for _, page := range batch {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if s.Done.Contains(page.Raw) {
			st.Skipped++
			continue
		}
		if page.Link == "" {
			logger.Warn("page list entry has no link", zap.String("entry", page.Raw))
			st.Skipped++
			continue
		}

		plog := logger.With(zap.String("page", page.Link))
		res, err := s.processPage(ctx, page, plog)
		if err != nil {
			if ctx.Err() != nil {
				return st, ctx.Err()
			}
			st.Failed++
			continue
		}
		st.Pages++
		if res.Quit {
			plog.Info("page editing abandoned")
			st.Quit = true
			return st, nil
		}
		if res.Accepted > 0 {
			if s.upload(ctx, page, res, plog) {
				st.Uploaded++
				st.Links += res.Accepted
			}
		}
		if err := s.Done.Append(page.Raw); err != nil {
			return st, fmt.Errorf("record finished page: %w", err)
		}
	}
	return st, nil
}

func (s *Session) processPage(ctx context.Context, page refpages.Entry, logger *zap.Logger) (Result, error) {
	text, err := s.Source.Fetch(ctx, page.Link)
	if err != nil {
		if errors.Is(err, wikiapi.ErrRedirect) {
			logger.Warn("page is a redirect")
		} else {
			logger.Error("fetch page", zap.Error(err))
		}
		return Result{}, err
	}

	m, err := s.Stripper.Clean(text)
	if err != nil {
		logger.Error("strip markup", zap.Error(err))
		return Result{}, err
	}
	cands := s.Finder.Find(m.Masked(), page)
	logger.Info("processing page", zap.String("describing", page.Title), zap.Int("candidates", len(cands)))

	r := NewReview(m, cands, logger)
	if r.Finished() {
		return r.Result(), nil
	}
	res, err := s.Reviewer.Review(ctx, page, r)
	if err != nil {
		logger.Error("review page", zap.Error(err))
		return Result{}, err
	}
	return res, nil
}

func (s *Session) upload(ctx context.Context, page refpages.Entry, res Result, logger *zap.Logger) bool {
	if s.Confirm != nil {
		ok, err := s.Confirm(ctx, page.Link, res.Accepted)
		if err != nil {
			logger.Warn("upload confirmation failed", zap.Error(err))
			return false
		}
		if !ok {
			logger.Info("upload declined", zap.Int("links", res.Accepted))
			return false
		}
	}

	if err := s.Source.Upload(ctx, page.Link, res.Text, UploadSummary(res.Accepted)); err != nil {
		logger.Error("upload page", zap.Error(err))
		return false
	}
	logger.Info("page uploaded", zap.Int("links", res.Accepted))

	if s.Recorder != nil {
		for _, c := range res.Candidates {
			if c.Status != Accepted {
				continue
			}
			if err := s.Recorder.RecordCommit(s.RunID, page.Link, c.Target, c.Label); err != nil {
				logger.Warn("record committed link", zap.Error(err))
			}
		}
	}
	return true
}
