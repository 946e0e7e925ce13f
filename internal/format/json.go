package format

import (
	"encoding/json"
	"io"

	"paracas/internal/aggregate"
	"paracas/internal/ticks"
)

type tickRecord struct {
	Timestamp string  `json:"timestamp"`
	Ask       float64 `json:"ask"`
	Bid       float64 `json:"bid"`
	AskVolume float32 `json:"ask_volume"`
	BidVolume float32 `json:"bid_volume"`
}

type ohlcvRecord struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	TickCount uint32  `json:"tick_count"`
}

func toTickRecord(t ticks.Tick) tickRecord {
	return tickRecord{
		Timestamp: t.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		Ask:       t.Ask,
		Bid:       t.Bid,
		AskVolume: t.AskVolume,
		BidVolume: t.BidVolume,
	}
}

func toOHLCVRecord(b aggregate.OHLCV) ohlcvRecord {
	return ohlcvRecord{
		Timestamp: b.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
		Volume:    b.Volume,
		TickCount: b.TickCount,
	}
}

// JSONFormatter writes a single JSON array.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

func (f *JSONFormatter) WriteTicks(ts []ticks.Tick, w io.Writer) error {
	records := make([]tickRecord, len(ts))
	for i, t := range ts {
		records[i] = toTickRecord(t)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func (f *JSONFormatter) WriteOHLCV(bars []aggregate.OHLCV, w io.Writer) error {
	records := make([]ohlcvRecord, len(bars))
	for i, b := range bars {
		records[i] = toOHLCVRecord(b)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func (f *JSONFormatter) Extension() string { return "json" }

// NDJSONFormatter writes one JSON object per line.
type NDJSONFormatter struct{}

func NewNDJSONFormatter() *NDJSONFormatter { return &NDJSONFormatter{} }

func (f *NDJSONFormatter) WriteTicks(ts []ticks.Tick, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, t := range ts {
		if err := enc.Encode(toTickRecord(t)); err != nil {
			return err
		}
	}
	return nil
}

func (f *NDJSONFormatter) WriteOHLCV(bars []aggregate.OHLCV, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, b := range bars {
		if err := enc.Encode(toOHLCVRecord(b)); err != nil {
			return err
		}
	}
	return nil
}

func (f *NDJSONFormatter) Extension() string { return "ndjson" }
