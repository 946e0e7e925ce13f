package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultClientConfig(t *testing.T) {
	cfg := DefaultClientConfig()
	assert.Equal(t, 10, cfg.Concurrency)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 10, cfg.MaxRetries)
	assert.Equal(t, int64(500), cfg.BaseDelayMs)
	assert.Equal(t, int64(30000), cfg.MaxDelayMs)
}

func TestCalculateBackoffDelay_Bounds(t *testing.T) {
	cfg := DefaultClientConfig()

	d1 := calculateBackoffDelay(1, cfg)
	assert.GreaterOrEqual(t, d1, 750*time.Millisecond)
	assert.LessOrEqual(t, d1, 1250*time.Millisecond)

	d2 := calculateBackoffDelay(2, cfg)
	assert.GreaterOrEqual(t, d2, 1500*time.Millisecond)
	assert.LessOrEqual(t, d2, 2500*time.Millisecond)

	d20 := calculateBackoffDelay(20, cfg)
	assert.LessOrEqual(t, d20, 37500*time.Millisecond)
	assert.GreaterOrEqual(t, d20, 100*time.Millisecond)
}

func TestCalculateBackoffDelay_DeterministicSameAttempt(t *testing.T) {
	cfg := DefaultClientConfig()
	a := calculateBackoffDelay(5, cfg)
	b := calculateBackoffDelay(5, cfg)
	assert.Equal(t, a, b)
}

func TestCalculateBackoffDelay_MonotonicNonDecreasingUpToCap(t *testing.T) {
	cfg := DefaultClientConfig()
	var prevCapped, prevDelay time.Duration
	for attempt := 0; attempt <= 10; attempt++ {
		delay := calculateBackoffDelay(attempt, cfg)
		assert.GreaterOrEqual(t, delay, prevDelay)
		prevDelay = delay

		shift := attempt
		if shift > 10 {
			shift = 10
		}
		capped := time.Duration(cfg.BaseDelayMs*(1<<uint(shift))) * time.Millisecond
		if capped > time.Duration(cfg.MaxDelayMs)*time.Millisecond {
			capped = time.Duration(cfg.MaxDelayMs) * time.Millisecond
		}
		assert.GreaterOrEqual(t, capped, prevCapped)
		prevCapped = capped
	}
}

func TestIsRetryableStatus(t *testing.T) {
	assert.True(t, isRetryableStatus(429))
	assert.True(t, isRetryableStatus(500))
	assert.True(t, isRetryableStatus(503))
	assert.False(t, isRetryableStatus(404))
	assert.False(t, isRetryableStatus(400))
	assert.False(t, isRetryableStatus(200))
}
