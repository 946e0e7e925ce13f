package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.False(t, StatusPaused.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestInstrumentTask_Progress(t *testing.T) {
	task := NewInstrumentTask("eurusd", "2024-01-01", "2024-01-02", "/tmp/out.csv", "csv", "m1", 48)
	assert.InDelta(t, 0, task.ProgressPercent(), 1e-9)

	task.HoursCompleted = 24
	assert.InDelta(t, 50.0, task.ProgressPercent(), 1e-9)
}

func TestInstrumentTask_ZeroHoursTotal(t *testing.T) {
	task := NewInstrumentTask("eurusd", "2024-01-01", "2024-01-01", "/tmp/out.csv", "csv", "tick", 0)
	assert.InDelta(t, 0, task.ProgressPercent(), 1e-9)
}

func TestDownloadJob_Progress_S6(t *testing.T) {
	t1 := NewInstrumentTask("eurusd", "2024-01-01", "2024-01-02", "a.csv", "csv", "m1", 48)
	t2 := NewInstrumentTask("gbpusd", "2024-01-01", "2024-01-02", "b.csv", "csv", "m1", 48)
	job := NewDownloadJob([]*InstrumentTask{t1, t2}, 4)

	t1.HoursCompleted = 48
	assert.InDelta(t, 50.0, job.ProgressPercent(), 1e-9)

	t1.markCompleted(1000)
	assert.Equal(t, StatusCompleted, t1.Status)
}

func TestDownloadJob_Lifecycle(t *testing.T) {
	t1 := NewInstrumentTask("eurusd", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 24)
	job := NewDownloadJob([]*InstrumentTask{t1}, 4)
	require.Equal(t, StatusPending, job.Status)

	job.MarkStarted(1234)
	assert.Equal(t, StatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)
	require.NotNil(t, job.PID)
	assert.Equal(t, 1234, *job.PID)

	job.MarkPaused()
	assert.Equal(t, StatusPaused, job.Status)

	job.MarkResumed(5678)
	assert.Equal(t, StatusRunning, job.Status)
	assert.Equal(t, 5678, *job.PID)

	job.MarkCompleted()
	assert.Equal(t, StatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
}

func TestDownloadJob_MarkCancelled_AllNonTerminalTasksCancelled(t *testing.T) {
	t1 := NewInstrumentTask("eurusd", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 24)
	t2 := NewInstrumentTask("gbpusd", "2024-01-01", "2024-01-01", "b.csv", "csv", "m1", 24)
	t2.markCompleted(10)
	job := NewDownloadJob([]*InstrumentTask{t1, t2}, 4)

	job.MarkCancelled()

	assert.Equal(t, StatusCancelled, job.Status)
	assert.Equal(t, StatusCancelled, t1.Status)
	assert.Equal(t, StatusCompleted, t2.Status) // already terminal, untouched
	for _, task := range job.Tasks {
		assert.True(t, task.IsFinished())
	}
	assert.NotNil(t, job.CompletedAt)
}

func TestDownloadJob_MarkFailed_RunningTasksGetSameMessage(t *testing.T) {
	t1 := NewInstrumentTask("eurusd", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 24)
	t1.markRunning()
	job := NewDownloadJob([]*InstrumentTask{t1}, 4)

	job.MarkFailed("daemon crashed")

	assert.Equal(t, StatusFailed, job.Status)
	assert.Equal(t, StatusFailed, t1.Status)
	require.NotNil(t, t1.ErrorMessage)
	assert.Equal(t, "daemon crashed", *t1.ErrorMessage)
}

func TestDownloadJob_TerminalIsSink(t *testing.T) {
	t1 := NewInstrumentTask("eurusd", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 24)
	job := NewDownloadJob([]*InstrumentTask{t1}, 4)
	job.MarkCompleted()
	completedAt := job.CompletedAt

	job.MarkFailed("too late")
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, completedAt, job.CompletedAt)
}

func TestDownloadJob_AllTasksFinishedAndFailedCount(t *testing.T) {
	t1 := NewInstrumentTask("eurusd", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 24)
	t2 := NewInstrumentTask("gbpusd", "2024-01-01", "2024-01-01", "b.csv", "csv", "m1", 24)
	job := NewDownloadJob([]*InstrumentTask{t1, t2}, 4)

	assert.False(t, job.AllTasksFinished())

	t1.markCompleted(10)
	t2.markFailed("boom")

	assert.True(t, job.AllTasksFinished())
	assert.Equal(t, 1, job.FailedTasks())
}
