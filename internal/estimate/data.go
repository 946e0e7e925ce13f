// Package estimate gives a rough size/time/tick-count projection for a
// download before it runs, using historical per-category averages.
package estimate

import (
	"encoding/json"
	_ "embed"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// CategoryEstimate holds the historical averages for one instrument
// category.
type CategoryEstimate struct {
	Category                  string
	AvgCompressedBytesPerHour uint64
	AvgTicksPerHour           uint64
	PeakMultiplier            float64
}

type rawCategoryEstimate struct {
	AvgCompressedBytesPerHour uint64  `json:"avg_compressed_bytes_per_hour"`
	AvgTicksPerHour           uint64  `json:"avg_ticks_per_hour"`
	PeakMultiplier            float64 `json:"peak_multiplier"`
}

type rawEstimateData struct {
	Categories map[string]rawCategoryEstimate `json:"categories"`
}

//go:embed data/size_estimates.json
var sizeEstimatesJSON []byte

// Database holds per-category size/tick-rate averages.
type Database struct {
	categories map[string]CategoryEstimate
}

func parseDatabase(data []byte) (*Database, error) {
	var raw rawEstimateData
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("estimate: parse size estimates: %w", err)
	}
	db := &Database{categories: make(map[string]CategoryEstimate, len(raw.Categories))}
	for name, r := range raw.Categories {
		db.categories[name] = CategoryEstimate{
			Category:                  name,
			AvgCompressedBytesPerHour: r.AvgCompressedBytesPerHour,
			AvgTicksPerHour:           r.AvgTicksPerHour,
			PeakMultiplier:            r.PeakMultiplier,
		}
	}
	return db, nil
}

// Get looks up the estimate for a category name.
func (d *Database) Get(category string) (CategoryEstimate, bool) {
	c, ok := d.categories[category]
	return c, ok
}

// DefaultCategoryEstimate is used for unknown categories, yielding a
// Low-confidence estimate.
func DefaultCategoryEstimate() CategoryEstimate {
	return CategoryEstimate{Category: "unknown", AvgCompressedBytesPerHour: 50000, AvgTicksPerHour: 3000, PeakMultiplier: 2.0}
}

var (
	dbOnce    sync.Once
	globalDB  *Database
	globalErr error
)

// GlobalDatabase lazily parses the embedded size_estimates.json.
func GlobalDatabase() *Database {
	dbOnce.Do(func() {
		globalDB, globalErr = parseDatabase(sizeEstimatesJSON)
		if globalErr != nil {
			panic(globalErr) // embedded data is compiled in; a parse failure is a build defect
		}
	})
	return globalDB
}

// multiplyHours returns avgPerHour * hours computed via decimal.Decimal so
// the batch-estimate sums stay exact regardless of how large hours grows,
// instead of accumulating float64 rounding error across many instruments.
func multiplyHours(avgPerHour uint64, hours int) uint64 {
	result := decimal.NewFromInt(int64(avgPerHour)).Mul(decimal.NewFromInt(int64(hours)))
	return uint64(result.IntPart())
}
