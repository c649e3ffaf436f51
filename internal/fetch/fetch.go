// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch issues rate-limited HTTP GETs with a download size guard.
// Every ingestion fetch goes through a Fetcher sharing one RateLimiter.
package fetch

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/pdiddy/curriculum-engine/internal/httputil"
)

// ErrDownloadTooLarge is matched by errors.Is for any *SizeError.
var ErrDownloadTooLarge = errors.New("download exceeds size limit")

// SizeError reports a body larger than the configured budget.
type SizeError struct {
	URL   string
	Size  int64
	Limit int64
}

func (e *SizeError) Error() string {
	if e.Size > 0 {
		return fmt.Sprintf("%s: %d bytes exceeds limit of %d bytes", e.URL, e.Size, e.Limit)
	}
	return fmt.Sprintf("%s: body exceeds limit of %d bytes", e.URL, e.Limit)
}

// Is makes errors.Is(err, ErrDownloadTooLarge) true.
func (e *SizeError) Is(target error) bool { return target == ErrDownloadTooLarge }

// Error represents a failure to reach the remote server.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// maxRedirects matches the net/http default.
const maxRedirects = 10

// RedirectCheck vets a redirect target before it is followed. A non-nil
// error stops the fetch and is returned wrapped in *Error.
type RedirectCheck func(target *url.URL) error

type redirectCheckKey struct{}

// WithRedirectCheck returns a context under which Fetch runs check on every
// redirect hop.
func WithRedirectCheck(ctx context.Context, check RedirectCheck) context.Context {
	return context.WithValue(ctx, redirectCheckKey{}, check)
}

func redirectCheckFrom(ctx context.Context) RedirectCheck {
	check, _ := ctx.Value(redirectCheckKey{}).(RedirectCheck)
	return check
}

// Response is a fully read HTTP response.
type Response struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Header      http.Header
	Body        []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode <= 299 }

// Options configures a Fetcher.
type Options struct {
	UserAgent        string
	MaxDownloadBytes int64
	Timeout          time.Duration
}

// Fetcher performs rate-limited GETs.
type Fetcher struct {
	client  *http.Client
	limiter *RateLimiter
	opts    Options
}

// New returns a Fetcher. A nil client gets one with opts.Timeout. The
// client is copied so its redirect policy can consult WithRedirectCheck.
func New(client *http.Client, limiter *RateLimiter, opts Options) *Fetcher {
	c := http.Client{Timeout: opts.Timeout}
	if client != nil {
		c = *client
	}
	c.CheckRedirect = checkRedirect(c.CheckRedirect)
	client = &c
	if limiter == nil {
		limiter = NewRateLimiter(0, nil)
	}
	return &Fetcher{client: client, limiter: limiter, opts: opts}
}

func checkRedirect(next func(*http.Request, []*http.Request) error) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if check := redirectCheckFrom(req.Context()); check != nil {
			if err := check(req.URL); err != nil {
				return err
			}
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}
}

// Client exposes the underlying HTTP client for API lookups that share its
// transport settings.
func (f *Fetcher) Client() *http.Client { return f.client }

// UserAgent returns the configured User-Agent.
func (f *Fetcher) UserAgent() string { return f.opts.UserAgent }

// Fetch waits on the per-host limiter, then GETs rawURL. Non-2xx responses
// are returned, not treated as errors; callers check Response.OK.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	if err := f.limiter.Wait(ctx, httputil.NormalizeHost(rawURL)); err != nil {
		return nil, &Error{URL: rawURL, Message: "waiting for rate limiter", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer resp.Body.Close()

	limit := f.opts.MaxDownloadBytes
	if limit > 0 && resp.ContentLength > limit {
		return nil, &SizeError{URL: rawURL, Size: resp.ContentLength, Limit: limit}
	}

	body, err := readBody(resp, limit)
	if err != nil {
		if errors.Is(err, ErrDownloadTooLarge) {
			return nil, &SizeError{URL: rawURL, Limit: limit}
		}
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	return &Response{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
		Body:        body,
	}, nil
}

// readBody decodes the content encoding and reads at most limit bytes of
// the decoded body.
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("opening gzip body: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrDownloadTooLarge
	}
	return data, nil
}
