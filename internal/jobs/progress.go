package jobs

import (
	"sync"
	"time"
)

// DefaultSaveInterval is the minimum spacing between progress checkpoints
// outside the always-save events (task running/completed/failed, job
// completed/failed).
const DefaultSaveInterval = 10 * time.Second

// ProgressTracker is a concurrency-safe wrapper around a Job that
// checkpoints to a StateStore as tasks report progress (C12). Copies share
// the same underlying job and mutex, the Go analogue of cloning an
// Arc<RwLock<_>>.
type ProgressTracker struct {
	store        *StateStore
	mu           *sync.RWMutex
	job          *Job
	saveInterval time.Duration
	saveMu       *sync.Mutex
	lastSave     *time.Time
}

// NewProgressTracker builds a tracker using DefaultSaveInterval.
func NewProgressTracker(store *StateStore, job *Job) *ProgressTracker {
	return NewProgressTrackerWithInterval(store, job, DefaultSaveInterval)
}

// NewProgressTrackerWithInterval builds a tracker with a custom checkpoint
// interval.
func NewProgressTrackerWithInterval(store *StateStore, job *Job, interval time.Duration) *ProgressTracker {
	now := time.Now()
	return &ProgressTracker{
		store:        store,
		mu:           &sync.RWMutex{},
		job:          job,
		saveInterval: interval,
		saveMu:       &sync.Mutex{},
		lastSave:     &now,
	}
}

// UpdateTaskProgress records hours/ticks for task_idx, promoting Pending to
// Running, and checkpoints if the save interval has elapsed.
func (p *ProgressTracker) UpdateTaskProgress(taskIdx int, hours uint32, ticksDownloaded uint64) {
	p.mu.Lock()
	if taskIdx >= 0 && taskIdx < len(p.job.Tasks) {
		task := p.job.Tasks[taskIdx]
		task.HoursCompleted = hours
		task.TicksDownloaded = ticksDownloaded
		if task.Status == StatusPending {
			task.Status = StatusRunning
		}
	}
	p.mu.Unlock()

	p.maybeSaveCheckpoint()
}

// MarkTaskRunning transitions task_idx to Running and always checkpoints.
func (p *ProgressTracker) MarkTaskRunning(taskIdx int) error {
	p.mu.Lock()
	if taskIdx >= 0 && taskIdx < len(p.job.Tasks) {
		p.job.Tasks[taskIdx].markRunning()
	}
	p.mu.Unlock()
	return p.SaveCheckpoint()
}

// MarkTaskCompleted transitions task_idx to Completed and always
// checkpoints.
func (p *ProgressTracker) MarkTaskCompleted(taskIdx int, bytesWritten uint64) error {
	p.mu.Lock()
	if taskIdx >= 0 && taskIdx < len(p.job.Tasks) {
		p.job.Tasks[taskIdx].markCompleted(bytesWritten)
	}
	p.mu.Unlock()
	return p.SaveCheckpoint()
}

// MarkTaskFailed transitions task_idx to Failed and always checkpoints.
func (p *ProgressTracker) MarkTaskFailed(taskIdx int, errMsg string) error {
	p.mu.Lock()
	if taskIdx >= 0 && taskIdx < len(p.job.Tasks) {
		p.job.Tasks[taskIdx].markFailed(errMsg)
	}
	p.mu.Unlock()
	return p.SaveCheckpoint()
}

// MarkJobCompleted transitions the job to Completed and always
// checkpoints.
func (p *ProgressTracker) MarkJobCompleted() error {
	p.mu.Lock()
	p.job.MarkCompleted()
	p.mu.Unlock()
	return p.SaveCheckpoint()
}

// MarkJobFailed transitions the job to Failed and always checkpoints.
func (p *ProgressTracker) MarkJobFailed(errMsg string) error {
	p.mu.Lock()
	p.job.MarkFailed(errMsg)
	p.mu.Unlock()
	return p.SaveCheckpoint()
}

// SaveCheckpoint forces a save regardless of the checkpoint interval.
func (p *ProgressTracker) SaveCheckpoint() error {
	p.mu.RLock()
	err := p.store.Save(p.job)
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	p.saveMu.Lock()
	now := time.Now()
	p.lastSave = &now
	p.saveMu.Unlock()
	return nil
}

func (p *ProgressTracker) maybeSaveCheckpoint() {
	p.saveMu.Lock()
	due := time.Since(*p.lastSave) >= p.saveInterval
	p.saveMu.Unlock()

	if due {
		_ = p.SaveCheckpoint()
	}
}

// JobSnapshot returns a point-in-time copy of the tracked job.
func (p *ProgressTracker) JobSnapshot() Job {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tasks := make([]*InstrumentTask, len(p.job.Tasks))
	for i, t := range p.job.Tasks {
		clone := *t
		tasks[i] = &clone
	}
	snap := *p.job
	snap.Tasks = tasks
	return snap
}

// CompletedTasks returns the number of tasks in Completed status.
func (p *ProgressTracker) CompletedTasks() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, t := range p.job.Tasks {
		if t.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// FailedTasks returns the number of tasks in Failed status.
func (p *ProgressTracker) FailedTasks() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.job.FailedTasks()
}

// TotalTasks returns the number of tasks in the job.
func (p *ProgressTracker) TotalTasks() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.job.Tasks)
}

// ProgressPercent returns the job's aggregate progress percentage.
func (p *ProgressTracker) ProgressPercent() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.job.ProgressPercent()
}

// AllTasksFinished reports whether every task has reached a terminal
// state.
func (p *ProgressTracker) AllTasksFinished() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.job.AllTasksFinished()
}
