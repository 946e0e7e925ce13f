// Package jobs implements the background job subsystem: the persisted
// job/task model (C9), its on-disk store (C10), the detached daemon
// spawner (C11), the concurrent-safe progress tracker (C12), and the
// signal-based lifecycle controller (C13).
package jobs

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed status set shared by jobs and tasks.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the status is a sink: Completed, Failed, or
// Cancelled. Terminal states have no outbound transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// InstrumentTask is one instrument-range-format triple within a job.
type InstrumentTask struct {
	InstrumentID    string  `json:"instrument_id"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	OutputPath      string  `json:"output_path"`
	Format          string  `json:"format"`
	Timeframe       string  `json:"timeframe"`
	Status          Status  `json:"status"`
	HoursCompleted  uint32  `json:"hours_completed"`
	HoursTotal      uint32  `json:"hours_total"`
	TicksDownloaded uint64  `json:"ticks_downloaded"`
	BytesWritten    uint64  `json:"bytes_written"`
	ErrorMessage    *string `json:"error_message"`
}

// NewInstrumentTask builds a task defaulting to Pending with zeroed
// counters.
func NewInstrumentTask(instrumentID, startDate, endDate, outputPath, format, timeframe string, hoursTotal uint32) *InstrumentTask {
	return &InstrumentTask{
		InstrumentID: instrumentID,
		StartDate:    startDate,
		EndDate:      endDate,
		OutputPath:   outputPath,
		Format:       format,
		Timeframe:    timeframe,
		Status:       StatusPending,
		HoursTotal:   hoursTotal,
	}
}

// ProgressPercent returns 0-100; 0 when HoursTotal is 0.
func (t *InstrumentTask) ProgressPercent() float64 {
	if t.HoursTotal == 0 {
		return 0
	}
	return float64(t.HoursCompleted) / float64(t.HoursTotal) * 100
}

// IsFinished reports whether the task is in a terminal state.
func (t *InstrumentTask) IsFinished() bool { return t.Status.IsTerminal() }

func (t *InstrumentTask) markRunning() {
	if t.Status.IsTerminal() {
		return
	}
	t.Status = StatusRunning
}

func (t *InstrumentTask) markCompleted(bytesWritten uint64) {
	if t.Status.IsTerminal() {
		return
	}
	t.Status = StatusCompleted
	t.HoursCompleted = t.HoursTotal
	t.BytesWritten = bytesWritten
}

func (t *InstrumentTask) markFailed(msg string) {
	if t.Status.IsTerminal() {
		return
	}
	t.Status = StatusFailed
	t.ErrorMessage = &msg
}

func (t *InstrumentTask) markCancelled() {
	if t.Status.IsTerminal() {
		return
	}
	t.Status = StatusCancelled
}

// Job is a persisted, user-visible request composed of one or more tasks
// run in a background daemon.
type Job struct {
	ID          uuid.UUID         `json:"id"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at"`
	Status      Status            `json:"status"`
	Tasks       []*InstrumentTask `json:"tasks"`
	Concurrency int               `json:"concurrency"`
	PID         *int              `json:"pid"`
	LogFile     *string           `json:"log_file"`
}

// NewDownloadJob builds a job defaulting to Pending with a fresh UUID and
// created_at stamped now.
func NewDownloadJob(tasks []*InstrumentTask, concurrency int) *Job {
	return &Job{
		ID:          uuid.New(),
		CreatedAt:   time.Now().UTC(),
		Status:      StatusPending,
		Tasks:       tasks,
		Concurrency: concurrency,
	}
}

// ProgressPercent sums hours_completed/hours_total across all tasks; 0 when
// the total is 0.
func (j *Job) ProgressPercent() float64 {
	var completed, total uint64
	for _, t := range j.Tasks {
		completed += uint64(t.HoursCompleted)
		total += uint64(t.HoursTotal)
	}
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// IsFinished reports whether the job is in a terminal state.
func (j *Job) IsFinished() bool { return j.Status.IsTerminal() }

// MarkStarted requires Pending and transitions to Running, stamping
// started_at and pid.
func (j *Job) MarkStarted(pid int) {
	if j.Status != StatusPending {
		return
	}
	now := time.Now().UTC()
	j.Status = StatusRunning
	j.StartedAt = &now
	j.PID = &pid
}

// MarkPaused requires Running.
func (j *Job) MarkPaused() {
	if j.Status != StatusRunning {
		return
	}
	j.Status = StatusPaused
}

// MarkResumed requires Paused; transitions back to Running with pid.
func (j *Job) MarkResumed(pid int) {
	if j.Status != StatusPaused {
		return
	}
	j.Status = StatusRunning
	j.PID = &pid
}

// MarkCompleted transitions to Completed. Idempotent once terminal.
func (j *Job) MarkCompleted() {
	if j.Status.IsTerminal() {
		return
	}
	now := time.Now().UTC()
	j.Status = StatusCompleted
	j.CompletedAt = &now
}

// MarkFailed transitions to Failed with msg, and fails every Running task
// with the same message. Idempotent once terminal.
func (j *Job) MarkFailed(msg string) {
	if j.Status.IsTerminal() {
		return
	}
	now := time.Now().UTC()
	j.Status = StatusFailed
	j.CompletedAt = &now
	for _, t := range j.Tasks {
		if t.Status == StatusRunning {
			t.markFailed(msg)
		}
	}
}

// MarkCancelled transitions to Cancelled, and cancels every non-terminal
// task. Idempotent once terminal.
func (j *Job) MarkCancelled() {
	if j.Status.IsTerminal() {
		return
	}
	now := time.Now().UTC()
	j.Status = StatusCancelled
	j.CompletedAt = &now
	for _, t := range j.Tasks {
		if !t.IsFinished() {
			t.markCancelled()
		}
	}
}

// FailedTasks counts tasks in Failed status.
func (j *Job) FailedTasks() int {
	n := 0
	for _, t := range j.Tasks {
		if t.Status == StatusFailed {
			n++
		}
	}
	return n
}

// AllTasksFinished reports whether every task is in a terminal state.
func (j *Job) AllTasksFinished() bool {
	for _, t := range j.Tasks {
		if !t.IsFinished() {
			return false
		}
	}
	return true
}
