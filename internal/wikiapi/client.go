// Package wikiapi is a small MediaWiki action API client for reading and
// writing page wikitext.
package wikiapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/julianshen/wikimaint/internal/logging"
)

const maxResponseSize = 16 << 20

var (
	// ErrRedirect is returned by Fetch when the page is a redirect.
	ErrRedirect = errors.New("page is a redirect")
	// ErrMissing is returned by Fetch when the page does not exist.
	ErrMissing = errors.New("page does not exist")
)

// APIError is an error reported in a MediaWiki response body.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediawiki: %s: %s", e.Code, e.Info)
}

// Options configure a Client.
type Options struct {
	APIURL   string
	Username string
	Password string
	Timeout  time.Duration
	Retries  int
	Logger   *zap.Logger
}

// Client talks to one wiki's api.php endpoint.
type Client struct {
	api      string
	username string
	password string
	http     *retryablehttp.Client
	logger   *zap.Logger
	loggedIn bool
}

// New returns a Client for opts.APIURL.
func New(opts Options) (*Client, error) {
	if opts.APIURL == "" {
		return nil, errors.New("wikiapi: api url is required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.Retries
	rc.HTTPClient.Jar = jar
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	rc.Logger = logging.Leveled(logger)

	return &Client{
		api:      opts.APIURL,
		username: opts.Username,
		password: opts.Password,
		http:     rc,
		logger:   logger,
	}, nil
}

type revisionSlot struct {
	Content string `json:"content"`
}

type queryResponse struct {
	Error *APIError `json:"error"`
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Invalid   bool   `json:"invalid"`
			Redirect  bool   `json:"redirect"`
			Revisions []struct {
				Slots struct {
					Main revisionSlot `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
		Tokens struct {
			LoginToken string `json:"logintoken"`
			CSRFToken  string `json:"csrftoken"`
		} `json:"tokens"`
	} `json:"query"`
}

// Fetch returns the current wikitext of title.
func (c *Client) Fetch(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action":        {"query"},
		"prop":          {"info|revisions"},
		"rvprop":        {"content"},
		"rvslots":       {"main"},
		"titles":        {title},
		"format":        {"json"},
		"formatversion": {"2"},
	}
	var resp queryResponse
	if err := c.call(ctx, http.MethodGet, params, &resp); err != nil {
		return "", fmt.Errorf("fetch %q: %w", title, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("fetch %q: %w", title, resp.Error)
	}
	if len(resp.Query.Pages) == 0 {
		return "", fmt.Errorf("fetch %q: %w", title, ErrMissing)
	}
	page := resp.Query.Pages[0]
	switch {
	case page.Missing, page.Invalid:
		return "", fmt.Errorf("fetch %q: %w", title, ErrMissing)
	case page.Redirect:
		return "", fmt.Errorf("fetch %q: %w", title, ErrRedirect)
	case len(page.Revisions) == 0:
		return "", fmt.Errorf("fetch %q: no revisions", title)
	}
	return page.Revisions[0].Slots.Main.Content, nil
}

// Login authenticates with the configured bot credentials.
func (c *Client) Login(ctx context.Context) error {
	token, err := c.token(ctx, "login")
	if err != nil {
		return err
	}
	params := url.Values{
		"action":     {"login"},
		"lgname":     {c.username},
		"lgpassword": {c.password},
		"lgtoken":    {token},
		"format":     {"json"},
	}
	var resp struct {
		Error *APIError `json:"error"`
		Login struct {
			Result string `json:"result"`
			Reason string `json:"reason"`
		} `json:"login"`
	}
	if err := c.call(ctx, http.MethodPost, params, &resp); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.Error != nil {
		return fmt.Errorf("login: %w", resp.Error)
	}
	if resp.Login.Result != "Success" {
		return fmt.Errorf("login: %s: %s", resp.Login.Result, resp.Login.Reason)
	}
	c.loggedIn = true
	c.logger.Info("logged in to wiki", zap.String("user", c.username))
	return nil
}

// Upload replaces the text of title.
func (c *Client) Upload(ctx context.Context, title, text, summary string) error {
	if !c.loggedIn && c.username != "" {
		if err := c.Login(ctx); err != nil {
			return err
		}
	}
	token, err := c.token(ctx, "csrf")
	if err != nil {
		return err
	}
	params := url.Values{
		"action":        {"edit"},
		"title":         {title},
		"text":          {text},
		"summary":       {summary},
		"token":         {token},
		"format":        {"json"},
		"formatversion": {"2"},
	}
	var resp struct {
		Error *APIError `json:"error"`
		Edit  struct {
			Result   string `json:"result"`
			NewRevID int64  `json:"newrevid"`
		} `json:"edit"`
	}
	if err := c.call(ctx, http.MethodPost, params, &resp); err != nil {
		return fmt.Errorf("upload %q: %w", title, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("upload %q: %w", title, resp.Error)
	}
	if resp.Edit.Result != "Success" {
		return fmt.Errorf("upload %q: edit result %q", title, resp.Edit.Result)
	}
	c.logger.Debug("page saved", zap.String("title", title), zap.Int64("revision", resp.Edit.NewRevID))
	return nil
}

func (c *Client) token(ctx context.Context, kind string) (string, error) {
	params := url.Values{
		"action":        {"query"},
		"meta":          {"tokens"},
		"type":          {kind},
		"format":        {"json"},
		"formatversion": {"2"},
	}
	var resp queryResponse
	if err := c.call(ctx, http.MethodGet, params, &resp); err != nil {
		return "", fmt.Errorf("%s token: %w", kind, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%s token: %w", kind, resp.Error)
	}
	token := resp.Query.Tokens.CSRFToken
	if kind == "login" {
		token = resp.Query.Tokens.LoginToken
	}
	if token == "" {
		return "", fmt.Errorf("%s token: empty token in response", kind)
	}
	return token, nil
}

func (c *Client) call(ctx context.Context, method string, params url.Values, out any) error {
	var (
		req *retryablehttp.Request
		err error
	)
	if method == http.MethodGet {
		req, err = retryablehttp.NewRequestWithContext(ctx, method, c.api+"?"+params.Encode(), nil)
	} else {
		req, err = retryablehttp.NewRequestWithContext(ctx, method, c.api, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// PageURL returns the browser URL of title under base, e.g.
// "https://wiki.example.org/" + "John_Smith".
func PageURL(base, title string) string {
	return base + strings.ReplaceAll(title, " ", "_")
}
