package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paracas/internal/jobs"
)

func newTestStore(t *testing.T) *jobs.StateStore {
	t.Helper()
	store, err := jobs.NewStateStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestRun_RejectsFinishedJob(t *testing.T) {
	store := newTestStore(t)
	task := jobs.NewInstrumentTask("eurusd", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 24)
	job := jobs.NewDownloadJob([]*jobs.InstrumentTask{task}, 1)
	job.MarkCompleted()
	require.NoError(t, store.Save(job))

	_, err := Run(context.Background(), store, job.ID)
	require.Error(t, err)
	var unrunnable *UnrunnableStatusError
	require.ErrorAs(t, err, &unrunnable)
}

func TestRun_SkipsAlreadyCompletedTasksAndCompletesJob(t *testing.T) {
	store := newTestStore(t)
	task := jobs.NewInstrumentTask("eurusd", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 24)
	task.Status = jobs.StatusCompleted
	task.HoursCompleted = 24
	job := jobs.NewDownloadJob([]*jobs.InstrumentTask{task}, 1)
	require.NoError(t, store.Save(job))

	status, err := Run(context.Background(), store, job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusCompleted, status)

	reloaded, err := store.Load(job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.StartedAt)
	require.NotNil(t, reloaded.PID)
}

func TestRun_UnknownJob(t *testing.T) {
	store := newTestStore(t)
	unknown := jobs.NewDownloadJob(nil, 1).ID

	_, err := Run(context.Background(), store, unknown)
	require.Error(t, err)
	var notFound *jobs.ErrJobNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestRun_TaskWithUnknownInstrumentFailsJob(t *testing.T) {
	store := newTestStore(t)
	task := jobs.NewInstrumentTask("not-a-real-instrument", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 24)
	job := jobs.NewDownloadJob([]*jobs.InstrumentTask{task}, 1)
	require.NoError(t, store.Save(job))

	status, err := Run(context.Background(), store, job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusFailed, status)

	reloaded, err := store.Load(job.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusFailed, reloaded.Tasks[0].Status)
	require.NotNil(t, reloaded.Tasks[0].ErrorMessage)
}
