// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar is a thin HTML client for Google Scholar author and
// citation pages. It implements the profile source used by candidate
// acquisition and publication classification.
package scholar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/pdiddy/scholar-audit/internal/httputil"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

const (
	defaultBaseURL   = "https://scholar.google.com"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	publicationPage  = 100
	maxBodyBytes     = 8 << 20
)

// TransportRetryDelay is the wait before the single transport retry of a
// listing page. Tests override this to avoid real sleeps.
var TransportRetryDelay = 500 * time.Millisecond

// ErrBlocked is returned when the source answers with a captcha page.
var ErrBlocked = errors.New("scholar: blocked by captcha")

// HTTPError is a non-200 response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Client fetches and parses Scholar pages.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	language  string
	cookie    string
	pacer     *httputil.Pacer
	log       *zap.Logger
}

// New builds a client from cfg. A configured proxy URL routes every request
// through that proxy.
func New(cfg types.ScholarConfig, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	raw := cfg.BaseURL
	if raw == "" {
		raw = defaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing scholar base url: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}

	return &Client{
		base:      base,
		http:      &http.Client{Timeout: timeout, Transport: transport},
		userAgent: ua,
		language:  lang,
		cookie:    cfg.Cookie,
		log:       log,
	}, nil
}

// SetPacer paces follow-up page fetches of searches and listings. The first
// page of each is left to the caller to pace.
func (c *Client) SetPacer(p *httputil.Pacer) {
	c.pacer = p
}

// SearchAuthors yields the hits of an author search, following result pages
// until they run out or the consumer stops. A fetch error is yielded once
// and ends the sequence.
func (c *Client) SearchAuthors(ctx context.Context, query string) iter.Seq2[types.AuthorHandle, error] {
	return func(yield func(types.AuthorHandle, error) bool) {
		params := url.Values{"view_op": {"search_authors"}, "mauthors": {query}}
		for page := 1; ; page++ {
			if page > 1 {
				if err := c.pacer.Wait(ctx); err != nil {
					yield(types.AuthorHandle{}, err)
					return
				}
			}
			doc, err := c.fetch(ctx, "/citations", params, true)
			if err != nil {
				yield(types.AuthorHandle{}, fmt.Errorf("searching authors %q page %d: %w", query, page, err))
				return
			}
			hits := parseAuthorResults(doc)
			for _, h := range hits {
				if !yield(h, nil) {
					return
				}
			}
			next := nextAuthorPage(doc)
			if len(hits) == 0 || next == nil {
				return
			}
			params = url.Values{
				"view_op":      {"search_authors"},
				"mauthors":     {query},
				"after_author": {next.Get("after_author")},
				"astart":       {next.Get("astart")},
			}
		}
	}
}

// FillAuthor fetches the profile page of h. Fields missing from the page
// fall back to what the search result showed.
func (c *Client) FillAuthor(ctx context.Context, h types.AuthorHandle) (types.RawProfile, error) {
	doc, err := c.fetch(ctx, "/citations", url.Values{"user": {h.ID}}, false)
	if err != nil {
		return types.RawProfile{}, fmt.Errorf("filling author %s: %w", h.ID, err)
	}
	p := parseProfile(doc)
	p.ID = h.ID
	if p.Name == "" {
		p.Name = h.Name
	}
	if p.Affiliation == "" {
		p.Affiliation = h.Affiliation
	}
	if p.Email == "" {
		p.Email = h.Email
	}
	if p.Name == "" {
		return types.RawProfile{}, fmt.Errorf("filling author %s: profile page has no name", h.ID)
	}
	return p, nil
}

// ListPublications returns up to limit publication refs of a profile in page
// order. A limit of zero or less lists everything.
func (c *Client) ListPublications(ctx context.Context, authorID string, limit int) ([]types.PublicationRef, error) {
	var refs []types.PublicationRef
	for start := 0; limit <= 0 || len(refs) < limit; start += publicationPage {
		params := url.Values{
			"user":     {authorID},
			"cstart":   {strconv.Itoa(start)},
			"pagesize": {strconv.Itoa(publicationPage)},
			"sortby":   {"pubdate"},
		}
		if start > 0 {
			if err := c.pacer.Wait(ctx); err != nil {
				return refs, err
			}
		}
		doc, err := c.fetch(ctx, "/citations", params, true)
		if err != nil {
			return refs, fmt.Errorf("listing publications of %s: %w", authorID, err)
		}
		rows := parsePublicationRows(doc, c.base, authorID)
		refs = append(refs, rows...)
		if len(rows) < publicationPage {
			break
		}
	}
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

// FillPublication fetches the citation page behind ref.
func (c *Client) FillPublication(ctx context.Context, ref types.PublicationRef) (types.RawPublication, error) {
	if ref.URL == "" {
		return types.RawPublication{}, fmt.Errorf("filling publication %s: no url", ref.CitationID)
	}
	u, err := url.Parse(ref.URL)
	if err != nil {
		return types.RawPublication{}, fmt.Errorf("filling publication %s: %w", ref.CitationID, err)
	}
	u = c.base.ResolveReference(u)
	doc, err := c.fetchURL(ctx, u, false)
	if err != nil {
		return types.RawPublication{}, fmt.Errorf("filling publication %s: %w", ref.CitationID, err)
	}
	pub := parseCitation(doc)
	if pub.Title == "" {
		pub.Title = ref.Title
	}
	pub.URL = u.String()
	return pub, nil
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values, retryable bool) (*html.Node, error) {
	u := c.base.ResolveReference(&url.URL{Path: path})
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("hl", c.language)
	u.RawQuery = q.Encode()
	return c.fetchURL(ctx, u, retryable)
}

// fetchURL GETs u and parses the body. Listing pages get one quick retry on
// transient failures; fills are single-shot.
func (c *Client) fetchURL(ctx context.Context, u *url.URL, retryable bool) (*html.Node, error) {
	attempts := uint(1)
	if retryable {
		attempts = 2
	}
	return retry.DoWithData(
		func() (*html.Node, error) {
			return c.get(ctx, u.String())
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(TransportRetryDelay),
		retry.MaxJitter(TransportRetryDelay/2),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug("retrying scholar request",
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
	req.Header.Set("Accept-Language", c.language)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

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
	if isBlocked(doc) {
		return nil, ErrBlocked
	}
	return doc, nil
}

// isRetryable is true for transient failures: throttling, server errors,
// and network errors.
func isRetryable(err error) bool {
	if errors.Is(err, ErrBlocked) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}
