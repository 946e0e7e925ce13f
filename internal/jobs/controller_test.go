package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Pause_RequiresRunning(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	require.NoError(t, store.Save(job))

	err := controller.Pause(job.ID)
	require.Error(t, err)
	var notActive *ErrJobNotActive
	require.ErrorAs(t, err, &notActive)
}

func TestController_Pause_RequiresPID(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	job.Status = StatusRunning
	require.NoError(t, store.Save(job))

	err := controller.Pause(job.ID)
	require.Error(t, err)
	var noProc *ErrNoProcess
	require.ErrorAs(t, err, &noProc)
}

func TestController_Kill_MarksCancelledEvenWithoutPID(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	require.NoError(t, store.Save(job))

	require.NoError(t, controller.Kill(job.ID))

	reloaded, err := store.Load(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, reloaded.Status)
}

func TestController_Kill_RejectsFinishedJob(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	job.MarkCompleted()
	require.NoError(t, store.Save(job))

	err := controller.Kill(job.ID)
	require.Error(t, err)
	var notActive *ErrJobNotActive
	require.ErrorAs(t, err, &notActive)
}

func TestController_Cancel_MarksCancelledEvenWithoutPID(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	job.Status = StatusRunning
	require.NoError(t, store.Save(job))

	require.NoError(t, controller.Cancel(job.ID))

	reloaded, err := store.Load(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, reloaded.Status)
}

func TestController_Cancel_RejectsPaused(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	job.Status = StatusPaused
	require.NoError(t, store.Save(job))

	err := controller.Cancel(job.ID)
	require.Error(t, err)
	var notActive *ErrJobNotActive
	require.ErrorAs(t, err, &notActive)
}

func TestController_Cancel_RejectsFinishedJob(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	job.MarkCompleted()
	require.NoError(t, store.Save(job))

	err := controller.Cancel(job.ID)
	require.Error(t, err)
	var notActive *ErrJobNotActive
	require.ErrorAs(t, err, &notActive)
}

func TestController_Clean_CancelledAlwaysEligible(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	job.CreatedAt = time.Now() // brand new
	job.MarkCancelled()
	require.NoError(t, store.Save(job))

	result, err := controller.Clean(false)
	require.NoError(t, err)
	require.Len(t, result.Cleaned, 1)
	assert.Equal(t, job.ID, result.Cleaned[0])
}

func TestController_Clean_RecentCompletedSurvivesWithoutAll(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	job.CreatedAt = time.Now()
	job.MarkCompleted()
	require.NoError(t, store.Save(job))

	result, err := controller.Clean(false)
	require.NoError(t, err)
	assert.Empty(t, result.Cleaned)

	result, err = controller.Clean(true)
	require.NoError(t, err)
	require.Len(t, result.Cleaned, 1)
}

func TestController_Clean_OldFailedEligibleWithoutAll(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	job.CreatedAt = time.Now().Add(-48 * time.Hour)
	job.MarkFailed("boom")
	require.NoError(t, store.Save(job))

	result, err := controller.Clean(false)
	require.NoError(t, err)
	require.Len(t, result.Cleaned, 1)
}

func TestController_Clean_SkipsActiveJobs(t *testing.T) {
	store := newTestStore(t)
	controller := NewController(store, nil)

	job := NewDownloadJob([]*InstrumentTask{NewInstrumentTask("a", "2024-01-01", "2024-01-01", "a.csv", "csv", "m1", 1)}, 1)
	job.CreatedAt = time.Now().Add(-48 * time.Hour)
	job.Status = StatusRunning
	require.NoError(t, store.Save(job))

	result, err := controller.Clean(true)
	require.NoError(t, err)
	assert.Empty(t, result.Cleaned)
}
