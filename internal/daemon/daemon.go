// Package daemon implements the hidden daemon entry point invoked as
// `paracas --daemon-run <job-id>` (C14).
package daemon

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"paracas/internal/aggregate"
	"paracas/internal/dateutil"
	"paracas/internal/fetch"
	"paracas/internal/format"
	"paracas/internal/instruments"
	"paracas/internal/jobs"
	"paracas/internal/ticks"
)

// UnrunnableStatusError is returned when the loaded job isn't Pending or
// Running.
type UnrunnableStatusError struct{ Status jobs.Status }

func (e *UnrunnableStatusError) Error() string {
	return fmt.Sprintf("job is not in a runnable state: %s", e.Status)
}

// Run loads jobID from store, executes every non-Completed task in order,
// checkpointing after each, and returns the job's final status. Exit code
// 0 corresponds to StatusCompleted; callers translate other statuses to a
// non-zero process exit.
func Run(ctx context.Context, store *jobs.StateStore, jobID uuid.UUID) (jobs.Status, error) {
	log := logrus.WithField("job_id", jobID.String())

	job, err := store.Load(jobID)
	if err != nil {
		return "", err
	}
	if job.Status != jobs.StatusPending && job.Status != jobs.StatusRunning {
		return "", &UnrunnableStatusError{Status: job.Status}
	}

	progress := jobs.NewProgressTracker(store, job)
	job.MarkStarted(os.Getpid())
	if err := store.Save(job); err != nil {
		return "", err
	}

	for idx, task := range job.Tasks {
		if task.Status == jobs.StatusCompleted {
			continue
		}

		if err := executeTask(ctx, progress, idx); err != nil {
			log.WithError(err).WithField("instrument", task.InstrumentID).Warn("task failed")
			_ = progress.MarkTaskFailed(idx, err.Error())
		}
		if err := progress.SaveCheckpoint(); err != nil {
			return "", err
		}
	}

	if progress.AllTasksFinished() {
		if progress.FailedTasks() == 0 {
			_ = progress.MarkJobCompleted()
		} else {
			msg := fmt.Sprintf("%d task(s) failed", progress.FailedTasks())
			_ = progress.MarkJobFailed(msg)
		}
	}
	if err := progress.SaveCheckpoint(); err != nil {
		return "", err
	}

	return progress.JobSnapshot().Status, nil
}

func executeTask(ctx context.Context, progress *jobs.ProgressTracker, idx int) error {
	if err := progress.MarkTaskRunning(idx); err != nil {
		return err
	}

	snap := progress.JobSnapshot()
	task := snap.Tasks[idx]

	instrument, ok := instruments.Global().Get(task.InstrumentID)
	if !ok {
		return fmt.Errorf("unknown instrument: %s", task.InstrumentID)
	}

	start, err := time.Parse("2006-01-02", task.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", task.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	dateRange, err := dateutil.NewDateRange(start, end)
	if err != nil {
		return err
	}

	timeframe, err := aggregate.ParseTimeframe(task.Timeframe)
	if err != nil {
		return err
	}

	formatter, err := format.Parse(task.Format)
	if err != nil {
		return err
	}

	cfg := fetch.DefaultClientConfig()
	cfg.Concurrency = snap.Concurrency
	client := fetch.NewDownloadClient(cfg)

	allTicks, err := downloadResilient(ctx, client, instrument, dateRange, func(hoursCompleted int, tickCount int) {
		if hoursCompleted%10 == 0 {
			progress.UpdateTaskProgress(idx, uint32(hoursCompleted), uint64(tickCount))
		}
	})
	if err != nil {
		return err
	}

	f, err := os.Create(task.OutputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := writeOutput(allTicks, f, formatter, timeframe); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}

	info, err := os.Stat(task.OutputPath)
	bytesWritten := uint64(0)
	if err == nil {
		bytesWritten = uint64(info.Size())
	}

	return progress.MarkTaskCompleted(idx, bytesWritten)
}

// downloadResilient drains the resilient pipeline, reporting hour-level
// progress as it goes.
func downloadResilient(ctx context.Context, client *fetch.DownloadClient, instrument instruments.Instrument, r dateutil.DateRange, onProgress func(hoursCompleted, tickCount int)) ([]ticks.Tick, error) {
	stream := fetch.TickStreamResilient(ctx, client, instrument, r)

	var all []ticks.Tick
	hoursCompleted := 0
	for batch := range stream {
		all = append(all, batch.Ticks...)
		hoursCompleted++
		if onProgress != nil {
			onProgress(hoursCompleted, len(all))
		}
	}
	return all, nil
}

// writeOutput dispatches to raw-tick or aggregated-bar output depending on
// the timeframe, per the sorted-raw-output and full in-memory aggregation
// resolutions.
func writeOutput(allTicks []ticks.Tick, w *os.File, f format.Formatter, tf aggregate.Timeframe) error {
	if tf.IsTick() {
		sort.Slice(allTicks, func(i, j int) bool { return allTicks[i].Timestamp.Before(allTicks[j].Timestamp) })
		return f.WriteTicks(allTicks, w)
	}

	sort.Slice(allTicks, func(i, j int) bool { return allTicks[i].Timestamp.Before(allTicks[j].Timestamp) })
	bars := aggregate.AggregateTicks(allTicks, tf)
	return f.WriteOHLCV(bars, w)
}
