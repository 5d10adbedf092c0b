package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alterego/alterego/internal/config"
	"github.com/alterego/alterego/internal/health"
	"github.com/alterego/alterego/internal/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	color.NoColor = true

	c := config.Default()
	c.Root = t.TempDir()
	c.Fitness.Dependencies = nil
	return c
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"fitness", "patrol", "watch", "init"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	history, _, err := rootCmd.Find([]string{"fitness", "history"})
	require.NoError(t, err)
	assert.Equal(t, "history", history.Name())
}

func TestRunInit(t *testing.T) {
	c := testConfig(t)
	var out bytes.Buffer

	require.NoError(t, runInit(c, &out, false))
	assert.Contains(t, out.String(), "Initialized alterego")
	assert.FileExists(t, filepath.Join(c.Root, "alterego.yaml"))
	assert.DirExists(t, c.ReportsDir())

	err := runInit(c, &out, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	require.NoError(t, runInit(c, &out, true))

	loaded, err := config.Load(config.LoadOptions{Root: c.Root})
	require.NoError(t, err)
	assert.Equal(t, "your_github_token", loaded.Credentials.GitHubToken)
	assert.Equal(t, c.Paths, loaded.Paths)
}

func TestRunFitness_RecordsHistory(t *testing.T) {
	c := testConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	report := runFitness(ctx, c, &out, false, true)
	require.NotNil(t, report)
	assert.Contains(t, out.String(), "SYSTEM HEALTH:")
	assert.FileExists(t, c.Path(c.History.Path))

	out.Reset()
	require.NoError(t, showHistory(ctx, c, &out, 10))
	assert.Contains(t, out.String(), "Recent fitness runs (1)")
	assert.Contains(t, out.String(), strings.ToUpper(string(report.Verdict)))
}

func TestRunFitness_NoRecord(t *testing.T) {
	c := testConfig(t)
	var out bytes.Buffer

	runFitness(context.Background(), c, &out, false, false)
	assert.NoFileExists(t, c.Path(c.History.Path))

	out.Reset()
	require.NoError(t, showHistory(context.Background(), c, &out, 10))
	assert.Contains(t, out.String(), "No fitness runs recorded yet")
}

func TestRunFromReport(t *testing.T) {
	r := &health.FitnessReport{
		RunID:     "run-1",
		StartedAt: time.Now(),
		Essentials: health.EssentialFilesResult{
			OK: true,
		},
		Artifacts: health.ArtifactScanResult{OK: true},
		Documents: health.DocumentScanResult{OK: true},
		Connectivity: health.ConnectivityResult{
			OK: true,
		},
		Signals: health.Signals{Files: true, Integrity: true, Governance: true, Connectivity: true},
		Verdict: types.VerdictCritical,
	}
	r.Dependencies = health.DependencyProbeResult{Blocking: true, MissingRequired: []string{"playwright"}}

	run := runFromReport(r)
	require.NoError(t, run.Validate())
	assert.Equal(t, "run-1", run.ID)
	assert.False(t, run.DepsOK)
	assert.Equal(t, "failing: Dependencies", run.Summary)
}

func TestTrend(t *testing.T) {
	color.NoColor = true
	good := &types.FitnessRun{Verdict: types.VerdictGood}
	critical := &types.FitnessRun{Verdict: types.VerdictCritical}

	assert.Equal(t, " ", trend(good, nil))
	assert.Equal(t, "↑", trend(good, critical))
	assert.Equal(t, "↓", trend(critical, good))
	assert.Equal(t, "=", trend(good, good))
}

func TestShowHistory_Trend(t *testing.T) {
	c := testConfig(t)
	ctx := context.Background()

	runFitness(ctx, c, io.Discard, false, true)
	runFitness(ctx, c, io.Discard, false, true)

	var out bytes.Buffer
	require.NoError(t, showHistory(ctx, c, &out, 10))
	assert.Contains(t, out.String(), "Recent fitness runs (2)")
	assert.Contains(t, out.String(), " = ")
}

func TestRunPatrol_UpdatesState(t *testing.T) {
	c := testConfig(t)

	brain := c.Path(c.Paths.BrainDir)
	require.NoError(t, os.MkdirAll(brain, 0755))
	require.NoError(t, os.WriteFile(c.StateFile(), []byte("## Goals\n- keep watch\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(c.Root, "docs", "adr"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(c.Root, "docs", "adr", "0001-x.md"), []byte("Status: Accepted\n"), 0644))

	now := time.Now()
	var out bytes.Buffer
	require.NoError(t, runPatrol(context.Background(), c, &out, func() time.Time { return now }))

	assert.Contains(t, out.String(), "Patrol complete")

	state, err := os.ReadFile(c.StateFile())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(state), "## Agent monologue ("+now.Format("2006-01-02 15:04")+")\n> Patrol complete. Latest changes include"))
	assert.Contains(t, string(state), "docs/adr/0001-x.md")
	assert.Contains(t, string(state), "## Goals\n- keep watch\n")
}

func TestWatcher_PacesTasks(t *testing.T) {
	var patrols, fitness atomic.Int32

	w := &watcher{
		Tick:            5 * time.Millisecond,
		PatrolInterval:  time.Hour,
		FitnessInterval: time.Hour,
		Patrol: func(ctx context.Context) error {
			patrols.Add(1)
			return nil
		},
		Fitness: func(ctx context.Context) error {
			fitness.Add(1)
			return assert.AnError
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, w.Run(ctx))
	assert.Equal(t, int32(1), patrols.Load())
	assert.Equal(t, int32(1), fitness.Load())
}

func TestWatcher_FitnessDisabled(t *testing.T) {
	var patrols, fitness atomic.Int32

	w := &watcher{
		Tick: 5 * time.Millisecond,
		Patrol: func(ctx context.Context) error {
			patrols.Add(1)
			return nil
		},
		Fitness: func(ctx context.Context) error {
			fitness.Add(1)
			return nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, w.Run(ctx))
	// A zero patrol interval runs on every tick
	assert.Greater(t, patrols.Load(), int32(1))
	assert.Zero(t, fitness.Load())
}

func TestRunPatrol_IgnoresOwnFiles(t *testing.T) {
	c := testConfig(t)
	ctx := context.Background()

	brain := c.Path(c.Paths.BrainDir)
	require.NoError(t, os.MkdirAll(brain, 0755))
	require.NoError(t, os.WriteFile(c.StateFile(), []byte("## Goals\n- keep watch\n"), 0644))
	require.NoError(t, os.WriteFile(c.WatchLockFile(), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(c.Root, "notes.md"), []byte("hello\n"), 0644))

	runFitness(ctx, c, io.Discard, false, true)
	require.FileExists(t, c.Path(c.History.Path))

	now := time.Now()
	clock := func() time.Time { return now }
	require.NoError(t, runPatrol(ctx, c, io.Discard, clock))
	now = now.Add(time.Minute)

	var out bytes.Buffer
	require.NoError(t, runPatrol(ctx, c, &out, clock))
	assert.Contains(t, out.String(), "Patrol complete (1 changed)")

	result, err := newPatroller(c, clock).Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "notes.md", result.Files[0].Path)

	report, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	state, err := os.ReadFile(c.StateFile())
	require.NoError(t, err)

	for _, own := range []string{"state.md", "state.md.lock", "watch.lock", "fitness.db", "fitness.db-wal", "fitness.db-shm"} {
		assert.NotContains(t, string(report), ".agent/brain/"+own)
		assert.NotContains(t, string(state), ".agent/brain/"+own)
	}
}

func TestWatcher_TasksDoNotOverlap(t *testing.T) {
	var running, overlaps atomic.Int32

	task := func(ctx context.Context) error {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return nil
	}

	w := &watcher{
		Tick:            time.Millisecond,
		PatrolInterval:  time.Millisecond,
		FitnessInterval: time.Millisecond,
		Patrol:          task,
		Fitness:         task,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, w.Run(ctx))
	assert.Zero(t, overlaps.Load())
}
