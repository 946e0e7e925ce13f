// Package ticks implements the canonical tick representation and the
// fixed-width wire record the Dukascopy feed ships it as.
package ticks

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// RawTickSize is the size in bytes of one packed RawTick record.
const RawTickSize = 20

// RawTick is the 20-byte big-endian record as it appears in a decompressed
// hour file: ms_offset, ask_raw, bid_raw, ask_volume, bid_volume.
type RawTick struct {
	MsOffset  uint32
	AskRaw    uint32
	BidRaw    uint32
	AskVolume float32
	BidVolume float32
}

// Tick is the normalized, real-valued representation of a single quote.
type Tick struct {
	Timestamp time.Time
	Ask       float64
	Bid       float64
	AskVolume float32
	BidVolume float32
}

// Mid returns the midpoint of ask and bid.
func (t Tick) Mid() float64 {
	return (t.Ask + t.Bid) / 2.0
}

// Spread returns ask minus bid. Not assumed non-negative: the feed may emit
// crossed quotes and this must not be rejected.
func (t Tick) Spread() float64 {
	return t.Ask - t.Bid
}

// TotalVolume returns the sum of ask and bid volume.
func (t Tick) TotalVolume() float32 {
	return t.AskVolume + t.BidVolume
}

// Normalize converts a RawTick into a canonical Tick given the containing
// hour's start instant and the instrument's decimal factor.
func (r RawTick) Normalize(hourStart time.Time, decimalFactor float64) Tick {
	return Tick{
		Timestamp: hourStart.Add(time.Duration(r.MsOffset) * time.Millisecond),
		Ask:       float64(r.AskRaw) / decimalFactor,
		Bid:       float64(r.BidRaw) / decimalFactor,
		AskVolume: r.AskVolume,
		BidVolume: r.BidVolume,
	}
}

// ParseError reports a malformed RawTick buffer.
type ParseError struct {
	Len      int
	Expected int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid tick buffer length %d, expected a multiple of %d", e.Len, e.Expected)
}

// ParseRawTicks decodes a buffer of concatenated 20-byte records. The buffer
// length must be a multiple of RawTickSize; an empty buffer yields an empty,
// non-error slice.
func ParseRawTicks(data []byte) ([]RawTick, error) {
	if len(data)%RawTickSize != 0 {
		return nil, &ParseError{Len: len(data), Expected: RawTickSize}
	}

	out := make([]RawTick, 0, len(data)/RawTickSize)
	for off := 0; off < len(data); off += RawTickSize {
		chunk := data[off : off+RawTickSize]
		out = append(out, RawTick{
			MsOffset:  binary.BigEndian.Uint32(chunk[0:4]),
			AskRaw:    binary.BigEndian.Uint32(chunk[4:8]),
			BidRaw:    binary.BigEndian.Uint32(chunk[8:12]),
			AskVolume: math.Float32frombits(binary.BigEndian.Uint32(chunk[12:16])),
			BidVolume: math.Float32frombits(binary.BigEndian.Uint32(chunk[16:20])),
		})
	}
	return out, nil
}

// Repack re-encodes a RawTick back into its 20-byte wire form. Used by
// round-trip property tests (parse then repack recovers the input).
func (r RawTick) Repack() []byte {
	buf := make([]byte, RawTickSize)
	binary.BigEndian.PutUint32(buf[0:4], r.MsOffset)
	binary.BigEndian.PutUint32(buf[4:8], r.AskRaw)
	binary.BigEndian.PutUint32(buf[8:12], r.BidRaw)
	binary.BigEndian.PutUint32(buf[12:16], math.Float32bits(r.AskVolume))
	binary.BigEndian.PutUint32(buf[16:20], math.Float32bits(r.BidVolume))
	return buf
}
