package jobs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Controller implements the job lifecycle commands: pause, resume, kill,
// clean (C13).
type Controller struct {
	store   *StateStore
	spawner *DaemonSpawner
}

// NewController builds a controller. spawner is used only by Resume, to
// respawn a job whose daemon process has died.
func NewController(store *StateStore, spawner *DaemonSpawner) *Controller {
	return &Controller{store: store, spawner: spawner}
}

// ErrJobNotActive is returned when an operation requires a status the job
// isn't in.
type ErrJobNotActive struct {
	ID     uuid.UUID
	Status Status
	Want   string
}

func (e *ErrJobNotActive) Error() string {
	return fmt.Sprintf("job %s is not %s (status: %s)", e.ID, e.Want, e.Status)
}

// ErrNoProcess is returned when a job has no recorded pid to signal.
type ErrNoProcess struct{ ID uuid.UUID }

func (e *ErrNoProcess) Error() string { return fmt.Sprintf("job %s has no associated process", e.ID) }

// Pause requires Running and sends SIGSTOP (a no-op warning on Windows).
func (c *Controller) Pause(id uuid.UUID) error {
	job, err := c.store.Load(id)
	if err != nil {
		return err
	}
	if job.Status != StatusRunning {
		return &ErrJobNotActive{ID: id, Status: job.Status, Want: "running"}
	}
	if job.PID == nil {
		return &ErrNoProcess{ID: id}
	}

	if err := pauseProcess(*job.PID); err != nil {
		return fmt.Errorf("controller: pause pid %d: %w", *job.PID, err)
	}

	job.MarkPaused()
	return c.store.Save(job)
}

// Resume requires Paused. If the recorded pid is no longer alive, the job
// is respawned fresh rather than signaled.
func (c *Controller) Resume(id uuid.UUID) error {
	job, err := c.store.Load(id)
	if err != nil {
		return err
	}
	if job.Status != StatusPaused {
		return &ErrJobNotActive{ID: id, Status: job.Status, Want: "paused"}
	}
	if job.PID == nil {
		return &ErrNoProcess{ID: id}
	}

	if !IsProcessRunning(*job.PID) {
		job.Status = StatusPending
		job.PID = nil
		if c.spawner == nil {
			return fmt.Errorf("controller: job %s process died and no spawner is configured to respawn it", id)
		}
		return c.spawner.Spawn(job)
	}

	if err := resumeProcess(*job.PID); err != nil {
		return fmt.Errorf("controller: resume pid %d: %w", *job.PID, err)
	}

	job.MarkResumed(*job.PID)
	return c.store.Save(job)
}

// Kill accepts Running, Pending, or Paused. It sends a graceful terminate,
// waits briefly, then force-kills if the process is still alive, and
// always marks the job Cancelled regardless of whether a process existed.
func (c *Controller) Kill(id uuid.UUID) error {
	job, err := c.store.Load(id)
	if err != nil {
		return err
	}
	switch job.Status {
	case StatusRunning, StatusPending, StatusPaused:
	default:
		return &ErrJobNotActive{ID: id, Status: job.Status, Want: "active"}
	}

	if job.PID != nil {
		terminateProcess(*job.PID)
		time.Sleep(500 * time.Millisecond)
		if IsProcessRunning(*job.PID) {
			forceKillProcess(*job.PID)
		}
	}

	job.MarkCancelled()
	return c.store.Save(job)
}

// Cancel requires Running or Pending (not Paused). Unlike Kill, it sends a
// single graceful SIGTERM and marks the job Cancelled immediately, with no
// 500ms wait and no SIGKILL escalation. This is the status command's
// lighter-weight cancel path, distinct from job kill's terminate-then-force
// sequence.
func (c *Controller) Cancel(id uuid.UUID) error {
	job, err := c.store.Load(id)
	if err != nil {
		return err
	}
	switch job.Status {
	case StatusRunning, StatusPending:
	default:
		return &ErrJobNotActive{ID: id, Status: job.Status, Want: "running or pending"}
	}

	if job.PID != nil {
		terminateProcess(*job.PID)
	}

	job.MarkCancelled()
	return c.store.Save(job)
}

// CleanResult summarizes a Clean invocation.
type CleanResult struct {
	Cleaned []uuid.UUID
}

// Clean removes finished jobs from the store. Cancelled jobs are always
// eligible immediately; Completed and Failed jobs are eligible once older
// than 24h, unless all is set, in which case any finished job qualifies
// regardless of age.
func (c *Controller) Clean(all bool) (*CleanResult, error) {
	list, err := c.store.List()
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	result := &CleanResult{}

	for _, job := range list {
		if !job.IsFinished() {
			continue
		}

		shouldClean := all || job.Status == StatusCancelled || job.CreatedAt.Before(cutoff)
		if !shouldClean {
			continue
		}

		if err := c.store.Delete(job.ID); err != nil {
			return result, err
		}
		result.Cleaned = append(result.Cleaned, job.ID)
	}

	return result, nil
}
