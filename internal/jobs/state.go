package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StateStore persists jobs as one whole-file JSON document per job under a
// base directory, plus a paired per-job log file (C10).
type StateStore struct {
	baseDir string
	log     *logrus.Entry
}

// ErrJobNotFound is returned by Load when no job file exists for an id.
type ErrJobNotFound struct {
	ID uuid.UUID
}

func (e *ErrJobNotFound) Error() string { return fmt.Sprintf("job %s not found", e.ID) }

// NewStateStore creates jobs/ and logs/ under baseDir if missing.
func NewStateStore(baseDir string) (*StateStore, error) {
	for _, sub := range []string{"jobs", "logs"} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("state: create dir %s: %w", sub, err)
		}
	}
	return &StateStore{baseDir: baseDir, log: logrus.WithField("component", "state_store")}, nil
}

// NewStateStoreDefault resolves the platform data directory, per §6.2:
// XDG on Linux, Application Support on macOS, %APPDATA% on Windows, falling
// back to $HOME/.paracas.
func NewStateStoreDefault() (*StateStore, error) {
	return NewStateStore(defaultDataDir())
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".paracas"
	}

	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "paracas")
		}
		return filepath.Join(home, ".local", "share", "paracas")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "paracas")
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, "paracas")
		}
		return filepath.Join(home, ".paracas")
	default:
		return filepath.Join(home, ".paracas")
	}
}

// BaseDir returns the resolved base directory.
func (s *StateStore) BaseDir() string { return s.baseDir }

func (s *StateStore) jobPath(id uuid.UUID) string {
	return filepath.Join(s.baseDir, "jobs", id.String()+".json")
}

// JobLogPath returns the path a job's log file is (or will be) written to.
func (s *StateStore) JobLogPath(id uuid.UUID) string {
	return filepath.Join(s.baseDir, "logs", id.String()+".log")
}

// Save serializes job and replaces its file whole. Not required to be
// atomic across crashes, but must never leave the file holding a
// parseable-but-stale record mid-write across a single Save call (the
// write itself is one os.WriteFile call).
func (s *StateStore) Save(job *Job) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("state: serialize job %s: %w", job.ID, err)
	}
	if err := os.WriteFile(s.jobPath(job.ID), data, 0o644); err != nil {
		return fmt.Errorf("state: write job %s: %w", job.ID, err)
	}
	return nil
}

// Load fails with ErrJobNotFound if missing, or a wrapped parse error on
// malformed content.
func (s *StateStore) Load(id uuid.UUID) (*Job, error) {
	data, err := os.ReadFile(s.jobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrJobNotFound{ID: id}
		}
		return nil, fmt.Errorf("state: read job %s: %w", id, err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("state: parse job %s: %w", id, err)
	}
	return &job, nil
}

// List reads every .json file in the jobs directory, skipping any that
// fail to parse (logging a warning), and returns jobs sorted by
// created_at descending.
func (s *StateStore) List() ([]*Job, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "jobs"))
	if err != nil {
		return nil, fmt.Errorf("state: read jobs dir: %w", err)
	}

	var out []*Job
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, "jobs", e.Name()))
		if err != nil {
			s.log.WithError(err).WithField("file", e.Name()).Warn("state: failed to read job file, skipping")
			continue
		}
		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			s.log.WithError(err).WithField("file", e.Name()).Warn("state: failed to parse job file, skipping")
			continue
		}
		out = append(out, &job)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes the job file; best-effort removes the paired log file,
// ignoring errors.
func (s *StateStore) Delete(id uuid.UUID) error {
	if err := os.Remove(s.jobPath(id)); err != nil {
		if os.IsNotExist(err) {
			return &ErrJobNotFound{ID: id}
		}
		return fmt.Errorf("state: delete job %s: %w", id, err)
	}
	_ = os.Remove(s.JobLogPath(id))
	return nil
}

// Active returns List() filtered to non-terminal jobs.
func (s *StateStore) Active() ([]*Job, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make([]*Job, 0, len(all))
	for _, j := range all {
		if !j.IsFinished() {
			out = append(out, j)
		}
	}
	return out, nil
}

const staleJobMessage = "Daemon process died unexpectedly"

// CleanupStale transitions every Running job whose pid is absent or not
// running to Failed(staleJobMessage), persists it, and returns the ids
// reclassified. Idempotent: a second call immediately after returns empty.
func (s *StateStore) CleanupStale() ([]uuid.UUID, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var stale []uuid.UUID
	for _, j := range all {
		if j.Status != StatusRunning {
			continue
		}
		if j.PID != nil && IsProcessRunning(*j.PID) {
			continue
		}
		j.MarkFailed(staleJobMessage)
		if err := s.Save(j); err != nil {
			return stale, err
		}
		stale = append(stale, j.ID)
	}
	return stale, nil
}
