package aggregate

import "time"

// OHLCV is a completed bar.
type OHLCV struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	TickCount uint32
}
