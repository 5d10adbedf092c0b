package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("lock is held by another process")

// LockHolder is written into the lock file so a second process can report
// who is holding it. The flock itself decides ownership; a stale holder
// record left behind by a crashed process is simply overwritten.
type LockHolder struct {
	Holder    string    `json:"holder"`
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
	Version   string    `json:"version"`
}

// ExclusiveLock is a held single-instance lock.
type ExclusiveLock struct {
	path  string
	flock *flock.Flock
}

// Path returns the lock file path.
func (l *ExclusiveLock) Path() string {
	return l.path
}

// AcquireExclusiveLock takes a non-blocking exclusive lock on lockPath.
// If another process holds it, the returned error wraps ErrLocked and names
// the holder when known.
func AcquireExclusiveLock(lockPath, holder, version string) (*ExclusiveLock, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", lockPath, err)
	}
	if !locked {
		if existing, readErr := ReadLockHolder(lockPath); readErr == nil {
			return nil, fmt.Errorf("%w: %s (PID %d on %s, started %s)",
				ErrLocked, existing.Holder, existing.PID, existing.Hostname,
				existing.StartedAt.Format(time.RFC3339))
		}
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	data, err := json.MarshalIndent(LockHolder{
		Holder:    holder,
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now(),
		Version:   version,
	}, "", "  ")
	if err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("failed to marshal lock: %w", err)
	}

	if err := os.WriteFile(lockPath, data, 0644); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("failed to write lock holder: %w", err)
	}

	return &ExclusiveLock{path: lockPath, flock: fl}, nil
}

// ReadLockHolder reads the holder record from a lock file.
func ReadLockHolder(lockPath string) (*LockHolder, error) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return nil, err
	}

	var holder LockHolder
	if err := json.Unmarshal(data, &holder); err != nil {
		return nil, fmt.Errorf("invalid lock file: %w", err)
	}
	return &holder, nil
}

// Release unlocks. Should be called on shutdown (use defer).
func (l *ExclusiveLock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return nil
}
