// Package fetch retrieves profile pages with browser-like request headers.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"github.com/codeGROOVE-dev/fanscope/pkg/profile"
)

// UserAgent is a desktop Chrome User-Agent string.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Defaults for Client.
const (
	DefaultTimeout      = 20 * time.Second
	DefaultMaxRedirects = 5
	DefaultSettleDelay  = time.Second
	DefaultReferer      = "https://www.kwai.com/"
)

// Page is a fetched document.
type Page struct {
	URL        string // final URL after redirects
	Body       []byte
	StatusCode int
}

// Fetcher retrieves a page. Implementations return *HTTPError for statuses >= 400.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (*Page, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Page, error) { return f(ctx, url) }

// HTTPError represents an HTTP error response.
type HTTPError struct {
	URL        string
	Status     string // reason phrase as sent by the server, e.g. "503 Service Unavailable"
	StatusCode int
}

func (e *HTTPError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("HTTP %s fetching %s", e.Status, e.URL)
	}
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Unwrap maps well-known statuses to the profile sentinel errors.
func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return profile.ErrProfileNotFound
	case http.StatusTooManyRequests:
		return profile.ErrRateLimited
	case http.StatusForbidden:
		return profile.ErrBlocked
	default:
		return nil
	}
}

// Client fetches pages over HTTP.
type Client struct {
	http        *resty.Client
	logger      *slog.Logger
	settleDelay time.Duration
}

// Option configures a Client.
type Option func(*config)

type config struct {
	jar          http.CookieJar
	transport    http.RoundTripper
	logger       *slog.Logger
	referer      string
	userAgent    string
	timeout      time.Duration
	settleDelay  time.Duration
	maxRedirects int
	noBypass     bool
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCookieJar attaches cookies to every request.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *config) { c.jar = jar }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) { c.transport = rt }
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithSettleDelay sets the pause taken after each successful fetch.
func WithSettleDelay(d time.Duration) Option {
	return func(c *config) { c.settleDelay = d }
}

// WithMaxRedirects sets how many redirects are followed.
func WithMaxRedirects(n int) Option {
	return func(c *config) { c.maxRedirects = n }
}

// WithReferer sets the Referer header, normally the site's home page.
func WithReferer(referer string) Option {
	return func(c *config) { c.referer = referer }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *config) { c.userAgent = ua }
}

// WithoutBypass disables the Cloudflare challenge transport wrapper.
func WithoutBypass() Option {
	return func(c *config) { c.noBypass = true }
}

// New creates a Client.
func New(opts ...Option) *Client {
	cfg := &config{
		logger:       slog.Default(),
		referer:      DefaultReferer,
		userAgent:    UserAgent,
		timeout:      DefaultTimeout,
		settleDelay:  DefaultSettleDelay,
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	rc := resty.New()
	if cfg.transport != nil {
		rc.SetTransport(cfg.transport)
	}
	if !cfg.noBypass {
		rc.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(rc.GetClient().Transport)
	}
	if cfg.jar != nil {
		rc.SetCookieJar(cfg.jar)
	}
	rc.SetTimeout(cfg.timeout)
	rc.SetRedirectPolicy(resty.FlexibleRedirectPolicy(cfg.maxRedirects))
	rc.SetHeaders(map[string]string{
		"User-Agent":                cfg.userAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
		"Referer":                   cfg.referer,
		"Cache-Control":             "no-cache",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "same-site",
		"Sec-Fetch-User":            "?1",
	})

	return &Client{
		http:        rc,
		logger:      cfg.logger,
		settleDelay: cfg.settleDelay,
	}
}

// Fetch retrieves url. Responses with a status of 400 or more are returned as *HTTPError.
// A successful fetch pauses for the settle delay before returning.
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	c.logger.InfoContext(ctx, "fetching profile page", "url", url)

	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	finalURL := url
	if raw := res.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}

	if res.StatusCode() >= http.StatusBadRequest {
		c.logger.DebugContext(ctx, "error status",
			"url", url, "status", res.StatusCode(), "bytes", len(res.Body()))
		return nil, &HTTPError{URL: url, StatusCode: res.StatusCode(), Status: res.Status()}
	}

	c.logger.DebugContext(ctx, "fetched profile page",
		"url", finalURL, "status", res.StatusCode(), "bytes", len(res.Body()))

	if err := Sleep(ctx, c.settleDelay); err != nil {
		return nil, err
	}

	return &Page{URL: finalURL, Body: res.Body(), StatusCode: res.StatusCode()}, nil
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
