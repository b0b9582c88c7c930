package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"courtside/internal/types"
)

var DefaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.1.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:77.0) Gecko/20100101 Firefox/77.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.97 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:77.0) Gecko/20100101 Firefox/77.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.97 Safari/537.36",
}

type Config struct {
	Timeout    time.Duration
	MinDelay   time.Duration
	MaxDelay   time.Duration
	Backoff    time.Duration
	MaxRetries int
	UserAgents []string
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxDelay < c.MinDelay {
		c.MaxDelay = c.MinDelay
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if len(c.UserAgents) == 0 {
		c.UserAgents = DefaultUserAgents
	}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Fetcher struct {
	client *resty.Client
	cfg    Config
	rng    *rand.Rand
	sleep  SleepFunc
	logger *slog.Logger
}

type Option func(*Fetcher)

func WithSleep(fn SleepFunc) Option {
	return func(f *Fetcher) { f.sleep = fn }
}

func WithRand(rng *rand.Rand) Option {
	return func(f *Fetcher) { f.rng = rng }
}

func WithClient(client *resty.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

func New(cfg Config, logger *slog.Logger, opts ...Option) *Fetcher {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	f := &Fetcher{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  Sleep,
		logger: logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = resty.New()
	}
	f.client.SetTimeout(cfg.Timeout)

	return f
}

func (f *Fetcher) userAgent() string {
	return f.cfg.UserAgents[f.rng.Intn(len(f.cfg.UserAgents))]
}

// Get issues a single GET with a random user agent from the pool.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", f.userAgent()).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if res.StatusCode() != http.StatusOK {
		return nil, &types.StatusError{URL: url, StatusCode: res.StatusCode()}
	}

	return res.Body(), nil
}

// Fetch downloads url and runs extract over the body. Network failures and
// non-200 answers are retried up to MaxRetries times, each failed attempt
// followed by the backoff wait. Extraction failures are returned at once.
func (f *Fetcher) Fetch(ctx context.Context, url string, extract Extractor) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := f.Get(ctx, url)
		if err == nil {
			payload, err := extract(url, body)
			if err != nil {
				return nil, err
			}
			return payload, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		f.logger.Warn("Fetch attempt failed",
			"url", url,
			"attempt", attempt+1,
			"max_attempts", f.cfg.MaxRetries+1,
			"backoff", f.cfg.Backoff,
			"error", err)

		if err := f.sleep(ctx, f.cfg.Backoff); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// Pause waits a uniformly random politeness delay in [MinDelay, MaxDelay].
func (f *Fetcher) Pause(ctx context.Context) error {
	d := f.cfg.MinDelay
	if spread := f.cfg.MaxDelay - f.cfg.MinDelay; spread > 0 {
		d += time.Duration(f.rng.Int63n(int64(spread) + 1))
	}
	return f.sleep(ctx, d)
}
