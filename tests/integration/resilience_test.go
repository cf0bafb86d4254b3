//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/resilience"
	"github.com/MarinaBrowser/marina/shell/internal/providers/favicon"
	httpclient "github.com/MarinaBrowser/marina/shell/internal/providers/http/client"
	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
	"github.com/MarinaBrowser/marina/shell/tests/helpers/testutil"
)

// tinyPNG is a valid 1x1 transparent PNG; content sniffing needs real
// image bytes, not just a .png path.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// fastClient builds a client with retries off and no per-host throttle
// so failure counts map one-to-one onto requests.
func fastClient() *httpclient.Client {
	return httpclient.New(httpclient.Config{
		Timeout:      2 * time.Second,
		RetryMax:     0,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
		UserAgent:    "marina-shell-test/1.0",
	})
}

// TestBreakerOpensOnConsecutiveFailures hammers a dead origin until the
// circuit opens, then verifies calls short-circuit without reaching it.
func TestBreakerOpensOnConsecutiveFailures(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	web := fastClient()
	ctx := context.Background()

	// The client trips after ten consecutive failures.
	for i := 0; i < 10; i++ {
		_, _, err := web.Get(ctx, server.URL, 1<<20)
		require.Error(t, err)
		require.NotErrorIs(t, err, resilience.ErrCircuitOpen,
			"call %d must reach the origin", i+1)
	}
	assert.Equal(t, resilience.StateOpen, web.BreakerState())

	before := hits.Load()
	_, _, err := web.Get(ctx, server.URL, 1<<20)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, hits.Load(), "an open circuit must not hit the origin")
}

// TestRetryRecoversFromTransientErrors verifies the transport absorbs a
// burst of 5xx responses without surfacing an error or denting the
// breaker.
func TestRetryRecoversFromTransientErrors(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "recovered")
	}))
	defer server.Close()

	web := httpclient.New(httpclient.Config{
		Timeout:      2 * time.Second,
		RetryMax:     3,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
		UserAgent:    "marina-shell-test/1.0",
	})

	body, _, err := web.Get(context.Background(), server.URL, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int64(3), hits.Load())

	assert.Equal(t, resilience.StateClosed, web.BreakerState())
	counts := web.BreakerCounts()
	assert.Equal(t, uint32(1), counts.TotalSuccesses, "retries count as one breaker request")
	assert.Zero(t, counts.TotalFailures)
}

// TestBreakerHalfOpenProbe drives a breaker through open, half-open,
// and back to closed.
func TestBreakerHalfOpenProbe(t *testing.T) {
	br := resilience.New("probe", resilience.Config{
		MaxRequests: 1,
		Timeout:     30 * time.Millisecond,
		TripAfter:   2,
	})
	fail := func() (interface{}, error) { return nil, fmt.Errorf("down") }
	ok := func() (interface{}, error) { return "up", nil }

	for i := 0; i < 2; i++ {
		_, err := br.Execute(fail)
		require.Error(t, err)
	}
	assert.Equal(t, resilience.StateOpen, br.State())

	_, err := br.Execute(ok)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)

	// After the open timeout a single probe is admitted; its success
	// closes the circuit.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, resilience.StateHalfOpen, br.State())

	result, err := br.Execute(ok)
	require.NoError(t, err)
	assert.Equal(t, "up", result)
	assert.Equal(t, resilience.StateClosed, br.State())
}

// TestGetEnforcesBodyCap verifies oversized payloads are rejected rather
// than buffered.
func TestGetEnforcesBodyCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	web := fastClient()
	_, _, err := web.Get(context.Background(), server.URL, 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

// TestFaviconPipeline resolves a page through the full fetch stack and
// asserts the verified icon and title land on the tab.
func TestFaviconPipeline(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<!doctype html><html><head>
			<title>Example Domain</title>
			<link rel="icon" href="/icon.png">
			</head><body>hello</body></html>`)
	})
	mux.HandleFunc("/icon.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(tinyPNG)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	web := fastClient()
	fetcher := favicon.NewFetcher(web, 1<<20, 1<<20)

	meta, err := fetcher.Resolve(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/icon.png", meta.IconURL)
	assert.Equal(t, "image/png", meta.IconType)
	assert.Equal(t, "Example Domain", meta.Title)

	// Now through the provider: the resolved icon is applied to the tab
	// and the host is cached for the next one.
	stack := testutil.NewStack(t)
	realm := stack.Seed(t)
	tab, err := stack.Store.CreateTab(realm.ID, nil, server.URL+"/")
	require.NoError(t, err)
	_, err = stack.Store.ApplyTabUpdate(tab.ID, types.TabUpdate{Title: strPtr("")})
	require.NoError(t, err)

	provider := favicon.New(fetcher, stack.Store, nil, nil, favicon.Options{
		Workers:   1,
		QueueSize: 4,
		Timeout:   2 * time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	provider.Start(ctx)

	provider.Enqueue(tab.ID, server.URL+"/", "")
	testutil.WaitFor(t, func() bool {
		got, ok := stack.Store.Get(tab.ID)
		return ok && got.Favicon == meta.IconURL
	}, "favicon never applied to tab %s", tab.ID)

	got, _ := stack.Store.Get(tab.ID)
	assert.Equal(t, "Example Domain", got.Title, "empty title falls back to the page title")
	assert.Equal(t, 1, provider.CacheLen())

	cancel()
	provider.Wait()
}

// TestFaviconRejectsNonImage verifies content sniffing, not the URL,
// decides what counts as an icon.
func TestFaviconRejectsNonImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		fmt.Fprint(w, "<html>not an image</html>")
	}))
	defer server.Close()

	web := fastClient()
	fetcher := favicon.NewFetcher(web, 1<<20, 1<<20)

	_, err := fetcher.VerifyIcon(context.Background(), server.URL+"/fake.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an image")
}

func strPtr(s string) *string { return &s }
