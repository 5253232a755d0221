// Package linkcheck finds external links in dumped wiki pages and reports
// the ones that no longer load.
package linkcheck

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/logging"
)

// Codes reported for failures without an HTTP status.
const (
	CodeTimeout    = "timeout"
	CodeConnection = "Timeout"
)

// CheckerOptions configure a Checker.
type CheckerOptions struct {
	Timeout       time.Duration
	Retries       int
	Backoff       time.Duration
	RetryStatuses []int
	Logger        *zap.Logger
}

// DefaultCheckerOptions returns the retry policy used when none is configured.
func DefaultCheckerOptions() CheckerOptions {
	return CheckerOptions{
		Timeout:       5 * time.Second,
		Retries:       3,
		Backoff:       500 * time.Millisecond,
		RetryStatuses: []int{500, 502, 503, 504},
	}
}

// Checker fetches URLs and classifies failures.
type Checker struct {
	http   *retryablehttp.Client
	logger *zap.Logger
}

// NewChecker returns a Checker using opts.
func NewChecker(opts CheckerOptions) *Checker {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retry := make(map[int]bool, len(opts.RetryStatuses))
	for _, s := range opts.RetryStatuses {
		retry[s] = true
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.Retries
	rc.RetryWaitMin = opts.Backoff
	rc.RetryWaitMax = opts.Backoff * 8
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = logging.Leveled(logger)
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		return retry[resp.StatusCode], nil
	}
	return &Checker{http: rc, logger: logger}
}

// Check fetches url and returns "" when it loads, otherwise a short error
// code: the HTTP status, CodeTimeout or CodeConnection.
func (c *Checker) Check(ctx context.Context, url string) string {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("unusable link", zap.String("url", url), zap.Error(err))
		return CodeConnection
	}
	req.Header.Set("User-Agent", "wikimaint-linkcheck/1.0")

	resp, err := c.http.Do(req)
	if resp != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
	}
	if err != nil {
		code := classify(err)
		c.logger.Info("link failed", zap.String("url", url), zap.String("code", code), zap.Error(err))
		return code
	}
	if resp.StatusCode >= 400 {
		code := strconv.Itoa(resp.StatusCode)
		c.logger.Info("link failed", zap.String("url", url), zap.String("code", code))
		return code
	}
	return ""
}

func classify(err error) string {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return CodeTimeout
	}
	return CodeConnection
}
