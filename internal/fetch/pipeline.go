package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"paracas/internal/dateutil"
	"paracas/internal/instruments"
	"paracas/internal/ticks"
)

// TickBatch is the per-hour unit the download pipeline yields.
type TickBatch struct {
	Hour     time.Time
	Ticks    []ticks.Tick
	HadError bool
}

// NewTickBatch builds a successful batch.
func NewTickBatch(hour time.Time, t []ticks.Tick) TickBatch {
	return TickBatch{Hour: hour, Ticks: t}
}

// SkippedErrorBatch builds an empty batch flagged as a skipped failure.
func SkippedErrorBatch(hour time.Time) TickBatch {
	return TickBatch{Hour: hour, HadError: true}
}

func (b TickBatch) IsEmpty() bool { return len(b.Ticks) == 0 }
func (b TickBatch) Len() int      { return len(b.Ticks) }

// ParacasError wraps the strict pipeline's fatal outcomes.
type ParacasError struct {
	Kind string // "http", "decompress", "parse"
	Err  error
}

func (e *ParacasError) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }
func (e *ParacasError) Unwrap() error { return e.Err }

// downloader is the narrow interface fetchAndDecode needs; *DownloadClient
// satisfies it. Kept as an interface so the pipeline is testable without a
// live HTTP round trip against the real Dukascopy host.
type downloader interface {
	Download(ctx context.Context, url string) ([]byte, bool, error)
}

func fetchAndDecode(ctx context.Context, client downloader, instrumentID string, decimalFactor float64, hour time.Time) (TickBatch, error) {
	url := TickURL(instrumentID, hour)

	body, present, err := client.Download(ctx, url)
	if err != nil {
		return TickBatch{}, &ParacasError{Kind: "http", Err: err}
	}
	if !present {
		return NewTickBatch(hour, nil), nil
	}

	decompressed, err := DecompressBi5(body)
	if err != nil {
		return TickBatch{}, &ParacasError{Kind: "decompress", Err: err}
	}

	raw, err := ticks.ParseRawTicks(decompressed)
	if err != nil {
		return TickBatch{}, &ParacasError{Kind: "parse", Err: err}
	}

	out := make([]ticks.Tick, len(raw))
	for i, r := range raw {
		out[i] = r.Normalize(hour, decimalFactor)
	}
	return NewTickBatch(hour, out), nil
}

// TickStream runs the strict download pipeline (C7): any non-Absent
// failure aborts the whole stream. Up to client.Config().Concurrency hours
// are processed in parallel; batches are delivered in completion order, not
// submission order.
func TickStream(ctx context.Context, client *DownloadClient, instrument instruments.Instrument, r dateutil.DateRange) (<-chan TickBatch, <-chan error) {
	out := make(chan TickBatch)
	errCh := make(chan error, 1)

	hours := r.All()
	decimalFactor := instrument.DecimalFactorF64()

	go func() {
		defer close(out)
		defer close(errCh)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(client.Config().Concurrency)

		for _, hour := range hours {
			hour := hour
			g.Go(func() error {
				batch, err := fetchAndDecode(gctx, client, instrument.ID, decimalFactor, hour)
				if err != nil {
					return err
				}
				select {
				case out <- batch:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}

		if err := g.Wait(); err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

// TickStreamResilient runs the resilient variant (C7): every failure mode
// — HTTP, decompress, parse — becomes a skipped_error batch instead of
// terminating the stream. The stream never faults.
func TickStreamResilient(ctx context.Context, client *DownloadClient, instrument instruments.Instrument, r dateutil.DateRange) <-chan TickBatch {
	out := make(chan TickBatch)
	hours := r.All()
	decimalFactor := instrument.DecimalFactorF64()

	go func() {
		defer close(out)

		sem := make(chan struct{}, client.Config().Concurrency)
		var wg sync.WaitGroup

		for _, hour := range hours {
			hour := hour
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				wg.Wait()
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				batch, err := fetchAndDecode(ctx, client, instrument.ID, decimalFactor, hour)
				if err != nil {
					batch = SkippedErrorBatch(hour)
				}

				select {
				case out <- batch:
				case <-ctx.Done():
				}
			}()
		}
		wg.Wait()
	}()

	return out
}
