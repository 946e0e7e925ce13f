package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ClientConfig configures the pooled HTTP fetcher (C6).
type ClientConfig struct {
	Concurrency    int
	Timeout        time.Duration
	ConnectTimeout time.Duration
	MaxRetries     int
	BaseDelayMs    int64
	MaxDelayMs     int64
	UserAgent      string
}

// DefaultClientConfig returns the spec-mandated defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Concurrency:    10,
		Timeout:        60 * time.Second,
		ConnectTimeout: 10 * time.Second,
		MaxRetries:     10,
		BaseDelayMs:    500,
		MaxDelayMs:     30000,
		UserAgent:      "paracas/1.0",
	}
}

// DownloadError is returned after the retry budget for a URL is exhausted,
// or for a non-retryable structural failure.
type DownloadError struct {
	Kind    string // "timeout", "server_error", "http"
	Status  int
	Attempt int
	Err     error
}

func (e *DownloadError) Error() string {
	switch e.Kind {
	case "timeout":
		return fmt.Sprintf("download timed out after %d attempts", e.Attempt)
	case "server_error":
		return fmt.Sprintf("server returned status %d", e.Status)
	default:
		return fmt.Sprintf("download failed: %v", e.Err)
	}
}

func (e *DownloadError) Unwrap() error { return e.Err }

// DownloadClient is a cheap-to-copy handle around a pooled resty client.
// Copies share the same underlying transport and connection pool, mirroring
// the teacher's cloneable-client idiom.
type DownloadClient struct {
	http   *resty.Client
	config ClientConfig
}

// NewDownloadClient builds a client tuned per §4.3: keep-alive, TCP nodelay,
// ~90s idle timeout, idle connections per host at least Concurrency,
// transparent gzip.
func NewDownloadClient(cfg ClientConfig) *DownloadClient {
	transport := &http.Transport{
		MaxIdleConnsPerHost: cfg.Concurrency,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false, // transparent gzip
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 60 * time.Second,
		}).DialContext,
	}

	c := resty.NewWithClient(&http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	})
	c.SetHeader("User-Agent", cfg.UserAgent)

	return &DownloadClient{http: c, config: cfg}
}

// Config returns the client's configuration.
func (c *DownloadClient) Config() ClientConfig { return c.config }

// deterministicBackOff tracks the attempt counter for calculateBackoffDelay
// across a single Download call. The spec mandates a deterministic
// delay = min(base*2^attempt, max) ± 25% jitter derived from the attempt
// counter alone, no RNG — a formula no randomized-jitter backoff library
// can produce, so this is owned code over stdlib time.Duration rather than
// a third-party backoff policy.
type deterministicBackOff struct {
	cfg     ClientConfig
	attempt int
}

func (b *deterministicBackOff) next() time.Duration {
	d := calculateBackoffDelay(b.attempt, b.cfg)
	b.attempt++
	return d
}

func calculateBackoffDelay(attempt int, cfg ClientConfig) time.Duration {
	shift := attempt
	if shift > 10 {
		shift = 10
	}
	expDelay := cfg.BaseDelayMs * (int64(1) << uint(shift))
	cappedDelay := expDelay
	if cappedDelay > cfg.MaxDelayMs {
		cappedDelay = cfg.MaxDelayMs
	}

	jitterRange := cappedDelay / 4
	if jitterRange < 1 {
		jitterRange = 1
	}
	jitter := (int64(attempt)*17)%(jitterRange*2) - jitterRange

	finalDelay := cappedDelay + jitter
	if finalDelay < 100 {
		finalDelay = 100
	}
	return time.Duration(finalDelay) * time.Millisecond
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isRetryableErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return true // connection-reset / send-failure classes: resty surfaces these as plain errors too
}

// Download fetches a single URL, returning (body, present, err). present is
// false for HTTP 404 (legitimately missing hour), never an error.
func (c *DownloadClient) Download(ctx context.Context, url string) ([]byte, bool, error) {
	bo := &deterministicBackOff{cfg: c.config}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		resp, err := c.http.R().SetContext(ctx).Get(url)
		if err != nil {
			lastErr = err
			if !isRetryableErr(err) {
				return nil, false, &DownloadError{Kind: "http", Err: err}
			}
			if attempt == c.config.MaxRetries {
				break
			}
			if !sleepBackoff(ctx, bo) {
				return nil, false, ctx.Err()
			}
			continue
		}

		status := resp.StatusCode()
		switch {
		case status == http.StatusNotFound:
			return nil, false, nil
		case status >= 200 && status < 300:
			return resp.Body(), true, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("status %d", status)
			if attempt == c.config.MaxRetries {
				return nil, false, &DownloadError{Kind: "server_error", Status: status, Attempt: attempt + 1}
			}
			if !sleepBackoff(ctx, bo) {
				return nil, false, ctx.Err()
			}
		default:
			return nil, false, &DownloadError{Kind: "server_error", Status: status, Attempt: attempt + 1}
		}
	}

	return nil, false, &DownloadError{Kind: "timeout", Attempt: c.config.MaxRetries + 1, Err: lastErr}
}

func sleepBackoff(ctx context.Context, bo *deterministicBackOff) bool {
	d := bo.next()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
