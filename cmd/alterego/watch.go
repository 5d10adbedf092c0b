package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/alterego/alterego/internal/config"
	"github.com/alterego/alterego/internal/storage"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run patrol (and optionally fitness) on a schedule",
	Long: `Run the always-on loop. Every tick the loop patrols the workspace at most
once per patrol interval and, when watch.fitness_interval_mins is set,
evaluates fitness at most once per fitness interval. Both run immediately on
start. Only one watcher may run per workspace.

Press Ctrl+C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		lock, err := storage.AcquireExclusiveLock(cfg.WatchLockFile(), "alterego watch", version)
		if err != nil {
			if errors.Is(err, storage.ErrLocked) {
				return fmt.Errorf("another watcher is already running: %w", err)
			}
			return err
		}
		defer func() { _ = lock.Release() }()
		zap.L().Info("watch lock acquired", zap.String("component", "watch"), zap.String("path", lock.Path()))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := newWatcher(cfg, os.Stdout)
		fmt.Printf("%s Watching %s\n", green("✓"), cyan(cfg.Root))
		fmt.Printf("  Patrol every %v", w.PatrolInterval)
		if w.FitnessInterval > 0 {
			fmt.Printf(", fitness every %v", w.FitnessInterval)
		}
		fmt.Printf("\n  Press Ctrl+C to stop\n\n")

		if err := w.Run(ctx); err != nil {
			return err
		}

		fmt.Printf("\n%s Watcher stopped\n", green("✓"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watcher paces patrol and fitness runs on a shared tick. The two never run
// at the same time, so their output to the shared writer stays whole.
type watcher struct {
	Tick            time.Duration
	PatrolInterval  time.Duration
	FitnessInterval time.Duration

	Patrol  func(ctx context.Context) error
	Fitness func(ctx context.Context) error

	mu sync.Mutex
}

func newWatcher(c *config.Config, out io.Writer) *watcher {
	return &watcher{
		Tick:            time.Duration(c.Watch.TickSecs) * time.Second,
		PatrolInterval:  time.Duration(c.Watch.PatrolIntervalMins) * time.Minute,
		FitnessInterval: time.Duration(c.Watch.FitnessIntervalMins) * time.Minute,
		Patrol: func(ctx context.Context) error {
			return runPatrol(ctx, c, out, time.Now)
		},
		Fitness: func(ctx context.Context) error {
			runFitness(ctx, c, out, false, true)
			return nil
		},
	}
}

// Run blocks until ctx is done. A failed iteration is logged and the loop
// carries on.
func (w *watcher) Run(ctx context.Context) error {
	tick := w.Tick
	if tick <= 0 {
		tick = time.Minute
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return pace(gCtx, "patrol", tick, w.PatrolInterval, w.serial(w.Patrol))
	})
	if w.FitnessInterval > 0 && w.Fitness != nil {
		g.Go(func() error {
			return pace(gCtx, "fitness", tick, w.FitnessInterval, w.serial(w.Fitness))
		})
	}

	return g.Wait()
}

func (w *watcher) serial(task func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		w.mu.Lock()
		defer w.mu.Unlock()
		return task(ctx)
	}
}

// pace runs task on the first tick and then at most once per interval.
// A non-positive interval runs it on every tick.
func pace(ctx context.Context, name string, tick, interval time.Duration, task func(context.Context) error) error {
	if interval <= 0 {
		interval = tick
	}
	log := zap.L().With(zap.String("component", "watch"), zap.String("task", name))
	sometimes := rate.Sometimes{Interval: interval}

	run := func() {
		sometimes.Do(func() {
			if err := task(ctx); err != nil {
				log.Error("task failed", zap.Error(err))
				return
			}
			log.Debug("task finished")
		})
	}

	run()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			run()
		}
	}
}
