package aggregate

import (
	"time"

	"paracas/internal/ticks"
)

type ohlcvBuilder struct {
	timestamp time.Time
	open      float64
	high      float64
	low       float64
	close     float64
	volume    float64
	tickCount uint32
}

func newOHLCVBuilder(barStart time.Time, tk ticks.Tick) *ohlcvBuilder {
	mid := tk.Mid()
	return &ohlcvBuilder{
		timestamp: barStart,
		open:      mid,
		high:      mid,
		low:       mid,
		close:     mid,
		volume:    float64(tk.TotalVolume()),
		tickCount: 1,
	}
}

func (b *ohlcvBuilder) update(tk ticks.Tick) {
	mid := tk.Mid()
	if mid > b.high {
		b.high = mid
	}
	if mid < b.low {
		b.low = mid
	}
	b.close = mid
	b.volume += float64(tk.TotalVolume())
	b.tickCount++
}

func (b *ohlcvBuilder) finish() OHLCV {
	return OHLCV{
		Timestamp: b.timestamp,
		Open:      b.open,
		High:      b.high,
		Low:       b.low,
		Close:     b.close,
		Volume:    b.volume,
		TickCount: b.tickCount,
	}
}

// Aggregator is a stateful tick→bar reducer for a single timeframe (C8).
// It assumes ticks arrive in non-decreasing bar-start order within one
// Process sequence; callers that consume an unordered pipeline MUST sort
// first (see the download pipeline and daemon entry).
type Aggregator struct {
	timeframe Timeframe
	current   *ohlcvBuilder
}

// NewAggregator builds a reducer for the given timeframe. Timeframe must
// not be Tick — tick mode bypasses aggregation entirely at the caller.
func NewAggregator(tf Timeframe) *Aggregator {
	return &Aggregator{timeframe: tf}
}

// Process feeds one tick into the reducer. It returns a completed bar
// whenever the tick's bar-start differs from the bar currently open;
// otherwise it returns (OHLCV{}, false).
func (a *Aggregator) Process(tk ticks.Tick) (OHLCV, bool) {
	barStart := a.timeframe.BarStart(tk.Timestamp)

	if a.current == nil {
		a.current = newOHLCVBuilder(barStart, tk)
		return OHLCV{}, false
	}

	if a.current.timestamp.Equal(barStart) {
		a.current.update(tk)
		return OHLCV{}, false
	}

	completed := a.current.finish()
	a.current = newOHLCVBuilder(barStart, tk)
	return completed, true
}

// Finish flushes the final partial bar, if any.
func (a *Aggregator) Finish() (OHLCV, bool) {
	if a.current == nil {
		return OHLCV{}, false
	}
	completed := a.current.finish()
	a.current = nil
	return completed, true
}

// AggregateTicks is a convenience wrapper that runs a full tick slice
// (assumed pre-sorted by timestamp) through a fresh Aggregator and returns
// every completed bar, including the final partial one.
func AggregateTicks(ts []ticks.Tick, tf Timeframe) []OHLCV {
	agg := NewAggregator(tf)
	bars := make([]OHLCV, 0, len(ts)/4+1)
	for _, tk := range ts {
		if bar, ok := agg.Process(tk); ok {
			bars = append(bars, bar)
		}
	}
	if bar, ok := agg.Finish(); ok {
		bars = append(bars, bar)
	}
	return bars
}
