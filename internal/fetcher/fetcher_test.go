package fetcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"courtside/internal/types"
)

const nextDataPage = `<html><head></head><body><div id="__next"></div>
<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"game":{"gameId":"0022300061"}}}}</script>
</body></html>`

type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func newTestFetcher(cfg Config, rec *sleepRecorder) *Fetcher {
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithSleep(rec.sleep),
		WithRand(rand.New(rand.NewSource(1))))
}

func TestFetchUsesUserAgentPool(t *testing.T) {
	var (
		mu     sync.Mutex
		agents []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.UserAgent())
		mu.Unlock()
		w.Write([]byte(nextDataPage))
	}))
	defer srv.Close()

	rec := &sleepRecorder{}
	f := newTestFetcher(Config{}, rec)

	for i := 0; i < 10; i++ {
		payload, err := f.Fetch(context.Background(), srv.URL, NextData)
		require.NoError(t, err)
		require.JSONEq(t, `{"props":{"pageProps":{"game":{"gameId":"0022300061"}}}}`, string(payload))
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, agents, 10)
	for _, ua := range agents {
		require.Contains(t, DefaultUserAgents, ua)
	}
	require.Empty(t, rec.waits)
}

func TestFetchRetriesThenGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	rec := &sleepRecorder{}
	f := newTestFetcher(Config{Backoff: time.Minute, MaxRetries: 2}, rec)

	_, err := f.Fetch(context.Background(), srv.URL, NextData)

	var statusErr *types.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	require.Equal(t, int32(3), calls.Load())
	require.Equal(t, []time.Duration{time.Minute, time.Minute, time.Minute}, rec.waits)
}

func TestFetchRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if calls.Load() == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(nextDataPage))
	}))
	defer srv.Close()

	rec := &sleepRecorder{}
	f := newTestFetcher(Config{Backoff: time.Minute, MaxRetries: 1}, rec)

	_, err := f.Fetch(context.Background(), srv.URL, NextData)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, []time.Duration{time.Minute}, rec.waits)
}

func TestFetchDoesNotRetryExtractionFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("<html><body>maintenance</body></html>"))
	}))
	defer srv.Close()

	rec := &sleepRecorder{}
	f := newTestFetcher(Config{Backoff: time.Minute, MaxRetries: 3}, rec)

	_, err := f.Fetch(context.Background(), srv.URL, NextData)
	require.True(t, types.IsExtract(err))
	require.Equal(t, int32(1), calls.Load())
	require.Empty(t, rec.waits)
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	rec := &sleepRecorder{}
	f := newTestFetcher(Config{Backoff: time.Second, MaxRetries: 1, Timeout: time.Second}, rec)

	_, err := f.Fetch(context.Background(), url, HTMLDocument)
	require.Error(t, err)
	require.Len(t, rec.waits, 2)
}

func TestFetchHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nextDataPage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher(Config{}, &sleepRecorder{})
	_, err := f.Fetch(ctx, srv.URL, NextData)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPauseStaysWithinBounds(t *testing.T) {
	rec := &sleepRecorder{}
	f := newTestFetcher(Config{MinDelay: 5 * time.Second, MaxDelay: 10 * time.Second}, rec)

	for i := 0; i < 100; i++ {
		require.NoError(t, f.Pause(context.Background()))
	}
	require.Len(t, rec.waits, 100)
	for _, d := range rec.waits {
		require.GreaterOrEqual(t, d, 5*time.Second)
		require.LessOrEqual(t, d, 10*time.Second)
	}
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

func TestHTMLDocument(t *testing.T) {
	out, err := HTMLDocument("wiki", []byte(`<html><body><table><tr><th>Duration</th><td>x</td></tr></table></body></html>`))
	require.NoError(t, err)
	require.Contains(t, string(out), "<th>Duration</th>")

	_, err = HTMLDocument("wiki", []byte(""))
	require.True(t, types.IsExtract(err))
}

func TestNextDataRejectsInvalidJSON(t *testing.T) {
	_, err := NextData("x", []byte(`<script id="__NEXT_DATA__">{"props":</script>`))
	require.True(t, types.IsExtract(err))
}
