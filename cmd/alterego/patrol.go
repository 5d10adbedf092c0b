package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alterego/alterego/internal/config"
	"github.com/alterego/alterego/internal/patrol"
)

var patrolCmd = &cobra.Command{
	Use:   "patrol",
	Short: "Report files changed in the last window",
	Long: `Scan the workspace for files modified within the patrol window (24 hours
by default), write a dated report to <brain>/reports and refresh the agent
monologue in <brain>/state.md.

Examples:
  alterego patrol
  alterego patrol --root ~/workspace`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPatrol(cmd.Context(), cfg, os.Stdout, time.Now)
	},
}

func init() {
	rootCmd.AddCommand(patrolCmd)
}

func newPatroller(c *config.Config, now func() time.Time) *patrol.Patroller {
	return &patrol.Patroller{
		Root:       c.Root,
		ReportsDir: c.ReportsDir(),
		Window:     time.Duration(c.Patrol.WindowHours) * time.Hour,
		Exclude:    c.Patrol.ExcludeDirs,
		Now:        now,

		Housekeeping: c.HousekeepingFiles(),
	}
}

// runPatrol writes one patrol report and updates the state document with
// its summary.
func runPatrol(ctx context.Context, c *config.Config, w io.Writer, now func() time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}

	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	result, err := newPatroller(c, now).Run(ctx)
	if err != nil {
		return fmt.Errorf("patrol failed: %w", err)
	}

	summary := patrol.LatestSummary(c.ReportsDir())

	fmt.Fprintf(w, "%s Patrol complete (%d changed)\n", green("✓"), len(result.Files))
	fmt.Fprintf(w, "  Report: %s\n", cyan(result.ReportPath))
	fmt.Fprintf(w, "  %s %s\n", cyan("→"), summary)

	if err := patrol.UpdateState(c.StateFile(), now(), "Patrol complete. "+summary); err != nil {
		return fmt.Errorf("failed to update state: %w", err)
	}

	return nil
}
