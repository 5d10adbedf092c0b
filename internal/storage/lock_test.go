package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alterego/alterego/internal/types"
)

func TestExclusiveLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "brain", "watch.lock")

	lock, err := AcquireExclusiveLock(lockPath, "alterego-watch", "test")
	require.NoError(t, err)
	assert.Equal(t, lockPath, lock.Path())

	holder, err := ReadLockHolder(lockPath)
	require.NoError(t, err)
	assert.Equal(t, "alterego-watch", holder.Holder)
	assert.Equal(t, os.Getpid(), holder.PID)

	// Second acquisition fails while held
	_, err = AcquireExclusiveLock(lockPath, "alterego-watch", "test")
	require.ErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "alterego-watch")

	require.NoError(t, lock.Release())

	// Free again after release
	again, err := AcquireExclusiveLock(lockPath, "alterego-watch", "test")
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestExclusiveLock_ReleaseNil(t *testing.T) {
	var lock *ExclusiveLock
	assert.NoError(t, lock.Release())
}

func TestNewHistoryStore_Memory(t *testing.T) {
	ctx := context.Background()
	store, err := NewHistoryStore(ctx, &Config{Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	run := &types.FitnessRun{ID: "r1", StartedAt: time.Now(), Verdict: types.VerdictExcellent}
	require.NoError(t, store.RecordRun(ctx, run))

	runs, err := store.RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].ID)
}

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, ".agent/brain/fitness.db", DefaultConfig().Path)
}
