package format

import (
	"fmt"
	"io"

	"paracas/internal/aggregate"
	"paracas/internal/ticks"
)

// CSVFormatter writes delimiter-separated rows; also used for TSV via
// NewTSVFormatter.
type CSVFormatter struct {
	Delimiter     rune
	IncludeHeader bool
}

// NewCSVFormatter returns a comma-delimited formatter with a header row.
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{Delimiter: ',', IncludeHeader: true}
}

// NewTSVFormatter returns a tab-delimited formatter with a header row.
func NewTSVFormatter() *CSVFormatter {
	return &CSVFormatter{Delimiter: '\t', IncludeHeader: true}
}

func (f *CSVFormatter) WriteTicks(ts []ticks.Tick, w io.Writer) error {
	d := string(f.Delimiter)
	if f.IncludeHeader {
		if _, err := fmt.Fprintf(w, "timestamp%sask%sbid%sask_volume%sbid_volume\n", d, d, d, d); err != nil {
			return err
		}
	}
	for _, t := range ts {
		_, err := fmt.Fprintf(w, "%s%s%v%s%v%s%v%s%v\n",
			t.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"), d,
			t.Ask, d, t.Bid, d, t.AskVolume, d, t.BidVolume)
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *CSVFormatter) WriteOHLCV(bars []aggregate.OHLCV, w io.Writer) error {
	d := string(f.Delimiter)
	if f.IncludeHeader {
		if _, err := fmt.Fprintf(w, "timestamp%sopen%shigh%slow%sclose%svolume%stick_count\n", d, d, d, d, d, d); err != nil {
			return err
		}
	}
	for _, b := range bars {
		_, err := fmt.Fprintf(w, "%s%s%v%s%v%s%v%s%v%s%v%s%v\n",
			b.Timestamp.UTC().Format("2006-01-02T15:04:05Z"), d,
			b.Open, d, b.High, d, b.Low, d, b.Close, d, b.Volume, d, b.TickCount)
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *CSVFormatter) Extension() string { return "csv" }
