package bulletin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"gazette/internal/cache"
	"gazette/internal/config"
	"gazette/internal/logger"
)

// HTTPClient is the subset of *http.Client the transport needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type refreshKey struct{}

// WithRefresh marks ctx so cached documents are downloaded again.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

func refreshRequested(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)

	return v
}

// Transport performs paced, retried GET requests against the gazette.
// Every call waits for the rate limiter, runs through the circuit breaker and
// carries its own timeout.
type Transport struct {
	client       HTTPClient
	retryPolicy  config.RetryPolicy
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker
	cache        cache.Cache
	log          *logger.Logger
	userAgent    string
	maxBodyBytes int64
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewTransport builds a transport from cfg. client, c and log may be nil.
func NewTransport(cfg *config.Config, client HTTPClient, c cache.Cache, log *logger.Logger) *Transport {
	if client == nil {
		client = &http.Client{Timeout: cfg.Retry.GetTimeout()}
	}

	if c == nil {
		c = cache.Nop{}
	}

	if log == nil {
		log = logger.Discard()
	}

	burst := cfg.Pacing.Burst
	if burst < 1 {
		burst = 1
	}

	t := &Transport{
		client:       client,
		retryPolicy:  cfg.Retry,
		limiter:      rate.NewLimiter(rate.Limit(cfg.Pacing.RequestsPerSecond), burst),
		cache:        c,
		log:          log,
		userAgent:    cfg.Gazette.UserAgent,
		maxBodyBytes: int64(cfg.Gazette.MaxBodyKb) * 1024,
		sleep:        sleepContext,
	}

	maxFailures := uint32(max(cfg.Breaker.MaxFailures, 1))

	t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gazette",
		MaxRequests: 1,
		Timeout:     cfg.Breaker.OpenTimeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrBodyTooLarge) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return t
}

// Get fetches url from upstream without touching the cache.
func (t *Transport) Get(ctx context.Context, url, accept string) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrTransport, err)
	}

	result, err := t.breaker.Execute(func() (interface{}, error) {
		return t.fetchWithRetry(ctx, url, accept)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %s", ErrTransport, ErrCircuitOpen, url)
		}

		return nil, err
	}

	return result.([]byte), nil
}

// Cached returns the cached body of url, or fetches it when there is none or
// ctx was marked WithRefresh. Every body goes through check: a cached body
// that fails it is fetched again, and a fresh body is stored only when it
// passes. check's error is returned unwrapped.
func (t *Transport) Cached(ctx context.Context, url, accept string, check func(body []byte) error) ([]byte, error) {
	if !refreshRequested(ctx) {
		body, ok, err := t.cache.Get(ctx, url)

		switch {
		case err != nil:
			t.log.Warn("cache read failed", "url", url, "error", err)
		case ok:
			checkErr := check(body)
			if checkErr == nil {
				t.log.Debug("cache hit", "url", url)

				return body, nil
			}

			t.log.Warn("cached body rejected", "url", url, "error", checkErr)
		}
	}

	body, err := t.Get(ctx, url, accept)
	if err != nil {
		return nil, err
	}

	if err := check(body); err != nil {
		return nil, err
	}

	if err := t.cache.Set(ctx, url, body); err != nil {
		t.log.Warn("cache write failed", "url", url, "error", err)
	}

	return body, nil
}

func (t *Transport) fetchWithRetry(ctx context.Context, url, accept string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= t.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := t.sleep(ctx, t.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrTransport, err)
			}
		}

		body, status, err := t.do(ctx, url, accept)
		if err == nil {
			return body, nil
		}

		if status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
		}

		lastErr = fmt.Errorf("%w: attempt %d/%d: %w", ErrTransport, attempt, t.retryPolicy.MaxAttempts, err)

		t.log.Debug("request failed", "url", url, "attempt", attempt, "status", status, "error", err)

		if errors.Is(err, ErrBodyTooLarge) || status != 0 && !isRetryableStatus(status) {
			break
		}
	}

	return nil, lastErr
}

// do performs one request. status is 0 when no response was received.
func (t *Transport) do(ctx context.Context, url, accept string) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, t.retryPolicy.GetTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	req.Header.Set("Accept", accept)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if t.maxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, t.maxBodyBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	if t.maxBodyBytes > 0 && int64(len(body)) > t.maxBodyBytes {
		return nil, resp.StatusCode, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, t.maxBodyBytes)
	}

	return body, resp.StatusCode, nil
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusBadGateway,
		http.StatusInternalServerError:
		return true
	}

	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
