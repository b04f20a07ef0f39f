// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sinta verifies a list of names against SINTA, the Indonesian
// science and technology index. It searches each name, keeps the accounts
// affiliated with the institution, and reads their profile pages for the
// email, metrics, and yearly publication counts.
package sinta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/pdiddy/scholar-audit/internal/httputil"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

const (
	// DefaultBaseURL is the public SINTA site.
	DefaultBaseURL = "https://sinta.kemdikbud.go.id"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxBodyBytes     = 8 << 20
)

// Default matching rules of the configuration.
var (
	DefaultAffiliationTerms = []string{"UIN Sunan Kalijaga", "UIN Suka", "Sunan Kalijaga", "UIN Yogyakarta"}
	DefaultEmailDomains     = []string{"uin-suka.ac.id", "suka.ac.id", "uin.ac.id"}
)

// TransportRetryDelay is the wait before the single transport retry of a
// request. Tests override this to avoid real sleeps.
var TransportRetryDelay = 500 * time.Millisecond

// HTTPError is a non-200 response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Client fetches and parses SINTA author pages.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	terms     []string
	pacer     *httputil.Pacer
	log       *zap.Logger
}

// New builds a client from cfg.
func New(cfg types.SintaConfig, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing sinta base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	terms := cfg.AffiliationTerms
	if len(terms) == 0 {
		terms = DefaultAffiliationTerms
	}
	return &Client{
		base:      base,
		http:      &http.Client{Timeout: timeout},
		userAgent: ua,
		terms:     terms,
		log:       log,
	}, nil
}

// SetPacer paces every request the client sends.
func (c *Client) SetPacer(p *httputil.Pacer) {
	c.pacer = p
}

// Search returns the accounts found for name whose affiliation contains one
// of the configured terms. A name with no match yields an empty slice.
func (c *Client) Search(ctx context.Context, name string) ([]types.SintaAccount, error) {
	u := c.base.ResolveReference(&url.URL{Path: "/authors"})
	u.RawQuery = url.Values{"search": {name}, "view": {"list"}}.Encode()

	doc, err := c.fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("searching sinta for %q: %w", name, err)
	}
	var accounts []types.SintaAccount
	for _, a := range parseAuthorList(doc, u) {
		if !containsAny(a.Affiliation, c.terms) {
			continue
		}
		a.Query = name
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// Details reads the profile page at rawURL.
func (c *Client) Details(ctx context.Context, rawURL string) (types.SintaDetails, error) {
	u, err := c.base.Parse(rawURL)
	if err != nil {
		return types.SintaDetails{}, fmt.Errorf("parsing profile url %q: %w", rawURL, err)
	}
	doc, err := c.fetch(ctx, u)
	if err != nil {
		return types.SintaDetails{}, fmt.Errorf("reading sinta profile %s: %w", u, err)
	}
	return parseDetails(doc), nil
}

func (c *Client) fetch(ctx context.Context, u *url.URL) (*html.Node, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	return retry.DoWithData(
		func() (*html.Node, error) {
			return c.get(ctx, u.String())
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(TransportRetryDelay),
		retry.MaxJitter(TransportRetryDelay/2),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug("retrying sinta request",
				zap.Uint("attempt", n+1), zap.String("url", u.String()), zap.Error(err))
		}),
	)
}

func (c *Client) get(ctx context.Context, rawURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return doc, nil
}

// isRetryable is true for throttling, server errors, and network errors.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return true
}
