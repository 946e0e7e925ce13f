package jobs

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trueExecutable(t *testing.T) string {
	t.Helper()
	for _, candidate := range []string{"/bin/true", "/usr/bin/true"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	t.Skip("no /bin/true or /usr/bin/true on this system")
	return ""
}

func TestDaemonSpawner_WithExecutable(t *testing.T) {
	store := newTestStore(t)
	spawner := NewDaemonSpawnerWithExecutable(store, "/custom/paracas")
	assert.Equal(t, "/custom/paracas", spawner.Executable())
}

func TestDaemonSpawner_Spawn_SetsLogFileAndPID(t *testing.T) {
	store := newTestStore(t)
	exe := trueExecutable(t)
	spawner := NewDaemonSpawnerWithExecutable(store, exe)

	task := NewInstrumentTask("eurusd", "2024-01-01", "2024-01-02", "/tmp/eurusd.csv", "csv", "tick", 48)
	job := NewDownloadJob([]*InstrumentTask{task}, 4)
	jobID := job.ID

	require.NoError(t, spawner.Spawn(job))

	require.NotNil(t, job.LogFile)
	assert.Equal(t, store.JobLogPath(jobID), *job.LogFile)
	require.NotNil(t, job.PID)
	assert.Greater(t, *job.PID, 0)

	_, err := os.Stat(store.JobLogPath(jobID))
	assert.NoError(t, err)

	reloaded, err := store.Load(jobID)
	require.NoError(t, err)
	assert.Equal(t, *job.PID, *reloaded.PID)
}
