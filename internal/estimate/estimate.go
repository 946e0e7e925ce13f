package estimate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"paracas/internal/dateutil"
	"paracas/internal/instruments"
)

// DefaultDownloadSpeedMbps is assumed when no measured throughput is
// available.
const DefaultDownloadSpeedMbps = 10.0

// CompressionRatio approximates uncompressed-over-compressed size for the
// LZMA-packed Dukascopy hour files.
const CompressionRatio = 10.0

// Confidence reflects how well-grounded an estimate is, based on whether
// the instrument's category has dedicated historical averages.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DownloadEstimate projects the size, duration, and tick count of a
// download before it runs.
type DownloadEstimate struct {
	TotalHours               int
	EstimatedCompressedBytes uint64
	EstimatedUncompressedBytes uint64
	EstimatedOutputBytes     uint64
	EstimatedTicks           uint64
	EstimatedDuration        time.Duration
	Confidence               Confidence
}

// Estimator projects download cost from the category database and an
// assumed transfer speed.
type Estimator struct {
	db           *Database
	speedMbps    float64
}

// NewEstimator builds an Estimator with a custom assumed download speed.
func NewEstimator(speedMbps float64) *Estimator {
	return &Estimator{db: GlobalDatabase(), speedMbps: speedMbps}
}

// DefaultEstimator uses DefaultDownloadSpeedMbps.
func DefaultEstimator() *Estimator {
	return NewEstimator(DefaultDownloadSpeedMbps)
}

func (e *Estimator) lookup(category instruments.Category) (CategoryEstimate, Confidence) {
	if c, ok := e.db.Get(string(category)); ok {
		return c, ConfidenceHigh
	}
	return DefaultCategoryEstimate(), ConfidenceLow
}

// EstimateSingle projects the cost of downloading one instrument over r.
func (e *Estimator) EstimateSingle(inst instruments.Instrument, r dateutil.DateRange) DownloadEstimate {
	cat, confidence := e.lookup(inst.Category)
	return e.calculateEstimate(cat, r.TotalHours(), confidence)
}

// EstimateBatch projects the combined cost of downloading every (instrument,
// range) pair. Confidence degrades to the weakest confidence among the
// batch's members.
func (e *Estimator) EstimateBatch(instrumentsAndRanges []InstrumentRange) DownloadEstimate {
	var totalHours int
	var compressedBytes, uncompressedBytes, outputBytes, tickCount uint64
	confidence := ConfidenceHigh

	for _, ir := range instrumentsAndRanges {
		single := e.EstimateSingle(ir.Instrument, ir.Range)
		totalHours += single.TotalHours
		compressedBytes += single.EstimatedCompressedBytes
		uncompressedBytes += single.EstimatedUncompressedBytes
		outputBytes += single.EstimatedOutputBytes
		tickCount += single.EstimatedTicks
		if weaker(single.Confidence, confidence) {
			confidence = single.Confidence
		}
	}

	return DownloadEstimate{
		TotalHours:                 totalHours,
		EstimatedCompressedBytes:   compressedBytes,
		EstimatedUncompressedBytes: uncompressedBytes,
		EstimatedOutputBytes:       outputBytes,
		EstimatedTicks:             tickCount,
		EstimatedDuration:          e.calculateDuration(compressedBytes),
		Confidence:                 confidence,
	}
}

// InstrumentRange pairs an instrument with the date range a batch estimate
// should cover for it.
type InstrumentRange struct {
	Instrument instruments.Instrument
	Range      dateutil.DateRange
}

func weaker(a, b Confidence) bool {
	rank := map[Confidence]int{ConfidenceHigh: 2, ConfidenceMedium: 1, ConfidenceLow: 0}
	return rank[a] < rank[b]
}

// calculateEstimate scales a category's per-hour averages by hours using
// decimal.Decimal, so large ranges (years of hourly data) don't accumulate
// float64 rounding error the way naive float multiplication would.
func (e *Estimator) calculateEstimate(cat CategoryEstimate, hours int, confidence Confidence) DownloadEstimate {
	compressedBytes := multiplyHours(cat.AvgCompressedBytesPerHour, hours)
	tickCount := multiplyHours(cat.AvgTicksPerHour, hours)

	uncompressed := decimal.NewFromInt(int64(compressedBytes)).
		Mul(decimal.NewFromFloat(CompressionRatio))
	uncompressedBytes := uint64(uncompressed.IntPart())

	peak := decimal.NewFromInt(int64(compressedBytes)).
		Mul(decimal.NewFromFloat(cat.PeakMultiplier))
	outputBytes := uint64(peak.IntPart())

	return DownloadEstimate{
		TotalHours:                 hours,
		EstimatedCompressedBytes:   compressedBytes,
		EstimatedUncompressedBytes: uncompressedBytes,
		EstimatedOutputBytes:       outputBytes,
		EstimatedTicks:             tickCount,
		EstimatedDuration:          e.calculateDuration(compressedBytes),
		Confidence:                 confidence,
	}
}

// calculateDuration converts a byte count to an expected download time at
// the estimator's assumed speed.
func (e *Estimator) calculateDuration(compressedBytes uint64) time.Duration {
	bitsPerSecond := e.speedMbps * 1_000_000
	bytesPerSecond := bitsPerSecond / 8
	if bytesPerSecond <= 0 {
		return 0
	}
	seconds := float64(compressedBytes) / bytesPerSecond
	return time.Duration(seconds * float64(time.Second))
}

// FormatBytes renders a byte count as a human-readable size.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	units := []string{"KB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

// FormatDuration renders a duration as a coarse "Xh Ym" / "Ym Zs" string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatTicks renders a tick count with thousands separators.
func FormatTicks(count uint64) string {
	s := fmt.Sprintf("%d", count)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
