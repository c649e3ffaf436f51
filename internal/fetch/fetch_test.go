// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock records sleeps and advances its own time instead of blocking.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func TestMinInterval(t *testing.T) {
	assert.Equal(t, time.Second, MinInterval(60))
	assert.Equal(t, 2*time.Second, MinInterval(30))
	assert.Equal(t, 8572*time.Millisecond, MinInterval(7), "rounds up")
	assert.Equal(t, time.Duration(0), MinInterval(0))
}

func TestRateLimiter_SpacesSameHost(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	lim := NewRateLimiter(60, clock)
	ctx := context.Background()

	require.NoError(t, lim.Wait(ctx, "openstax.org"))
	require.NoError(t, lim.Wait(ctx, "openstax.org"))
	require.NoError(t, lim.Wait(ctx, "ocw.mit.edu"))
	require.NoError(t, lim.Wait(ctx, "openstax.org"))

	require.Len(t, clock.sleeps, 2, "only repeat requests to the same host wait")
	for _, d := range clock.sleeps {
		assert.InDelta(t, float64(time.Second), float64(d), float64(time.Millisecond))
	}
}

func TestRateLimiter_NoWaitAfterInterval(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	lim := NewRateLimiter(60, clock)
	ctx := context.Background()

	require.NoError(t, lim.Wait(ctx, "x.org"))
	clock.now = clock.now.Add(2 * time.Second)
	require.NoError(t, lim.Wait(ctx, "x.org"))
	assert.Empty(t, clock.sleeps)
}

func TestFetch_SetsUserAgentAndReadsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "curriculum-engine/test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer ts.Close()

	f := New(ts.Client(), NewRateLimiter(600, nil), Options{UserAgent: "curriculum-engine/test", MaxDownloadBytes: 1 << 20})
	resp, err := f.Fetch(context.Background(), ts.URL+"/page")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Contains(t, string(resp.Body), "hello")
	assert.Contains(t, resp.ContentType, "text/html")
}

func TestFetch_NonOKIsReturnedNotError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	f := New(ts.Client(), nil, Options{UserAgent: "ua"})
	resp, err := f.Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFetch_ContentLengthTooLarge(t *testing.T) {
	body := strings.Repeat("a", 1000)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write([]byte(body))
	}))
	defer ts.Close()

	f := New(ts.Client(), nil, Options{UserAgent: "ua", MaxDownloadBytes: 100})
	_, err := f.Fetch(context.Background(), ts.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDownloadTooLarge))

	var se *SizeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, int64(1000), se.Size)
}

func TestFetch_ChunkedBodyTooLarge(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		for i := 0; i < 10; i++ {
			w.Write([]byte(strings.Repeat("b", 50)))
			w.(http.Flusher).Flush()
		}
	}))
	defer ts.Close()

	f := New(ts.Client(), nil, Options{UserAgent: "ua", MaxDownloadBytes: 100})
	_, err := f.Fetch(context.Background(), ts.URL)
	assert.ErrorIs(t, err, ErrDownloadTooLarge)
}

func TestFetch_DecodesBrotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	bw.Write([]byte("compressed calculus notes"))
	require.NoError(t, bw.Close())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	f := New(ts.Client(), nil, Options{UserAgent: "ua", MaxDownloadBytes: 1 << 20})
	resp, err := f.Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "compressed calculus notes", string(resp.Body))
}

func TestFetch_NetworkErrorPropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := ts.URL
	ts.Close()

	f := New(nil, nil, Options{UserAgent: "ua", Timeout: time.Second})
	_, err := f.Fetch(context.Background(), addr)
	require.Error(t, err)

	var fe *Error
	assert.True(t, errors.As(err, &fe))
}

func TestFetch_InvalidURL(t *testing.T) {
	f := New(nil, nil, Options{UserAgent: "ua"})
	_, err := f.Fetch(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func redirectServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusFound)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("landed"))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestFetch_FollowsRedirectsWithoutCheck(t *testing.T) {
	ts := redirectServer(t)

	f := New(ts.Client(), nil, Options{UserAgent: "ua"})
	resp, err := f.Fetch(context.Background(), ts.URL+"/start")
	require.NoError(t, err)
	assert.Equal(t, "landed", string(resp.Body))
	assert.Equal(t, ts.URL+"/start", resp.URL)
	assert.Equal(t, ts.URL+"/landing", resp.FinalURL)
}

func TestFetch_RedirectCheckStopsHop(t *testing.T) {
	ts := redirectServer(t)
	errRejected := errors.New("hop rejected")

	var seen []string
	ctx := WithRedirectCheck(context.Background(), func(target *url.URL) error {
		seen = append(seen, target.Path)
		if target.Path == "/landing" {
			return errRejected
		}
		return nil
	})

	f := New(ts.Client(), nil, Options{UserAgent: "ua"})
	_, err := f.Fetch(ctx, ts.URL+"/start")
	require.Error(t, err)
	assert.ErrorIs(t, err, errRejected)

	var fe *Error
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"/landing"}, seen)
}

func TestNew_DoesNotModifyCallerClient(t *testing.T) {
	client := &http.Client{}
	New(client, nil, Options{UserAgent: "ua"})
	assert.Nil(t, client.CheckRedirect)
}

func TestFetch_SameHostSpacedByWallClock(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	f := New(ts.Client(), NewRateLimiter(60, nil), Options{UserAgent: "ua"})
	start := time.Now()
	_, err := f.Fetch(context.Background(), ts.URL+"/one")
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), ts.URL+"/two")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 990*time.Millisecond)
}
