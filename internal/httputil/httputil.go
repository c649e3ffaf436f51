// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages. Requests are
// issued exactly once: callers that want another attempt re-invoke.
package httputil

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusError carries the status of a non-2xx API response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned HTTP %d", e.Method, e.URL, e.StatusCode)
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// NormalizeHost returns the lowercase hostname of rawURL without port or a
// leading "www.". It returns "" when rawURL has no host.
func NormalizeHost(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// NormalizeURL trims whitespace and a trailing slash. It is the dedup key
// for discovered candidates.
func NormalizeURL(rawURL string) string {
	return strings.TrimRight(strings.TrimSpace(rawURL), "/")
}

// Get issues a single GET with the given headers and returns the response
// when the status is 2xx. The caller closes the body.
func Get(ctx context.Context, client *http.Client, reqURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{Method: http.MethodGet, URL: reqURL, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// GetJSON fetches reqURL and decodes the JSON body into out.
func GetJSON(ctx context.Context, client *http.Client, reqURL string, headers map[string]string, out any) error {
	resp, err := Get(ctx, client, reqURL, withAccept(headers, "application/json"))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing JSON from %s: %w", reqURL, err)
	}
	return nil
}

// GetXML fetches reqURL and decodes the XML body into out.
func GetXML(ctx context.Context, client *http.Client, reqURL string, headers map[string]string, out any) error {
	resp, err := Get(ctx, client, reqURL, withAccept(headers, "application/atom+xml, application/xml"))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing XML from %s: %w", reqURL, err)
	}
	return nil
}

func withAccept(headers map[string]string, accept string) map[string]string {
	h := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		h[k] = v
	}
	if _, ok := h["Accept"]; !ok {
		h["Accept"] = accept
	}
	return h
}
