package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alterego/alterego/internal/config"
	"github.com/alterego/alterego/internal/health"
	"github.com/alterego/alterego/internal/storage"
	"github.com/alterego/alterego/internal/types"
)

var fitnessCmd = &cobra.Command{
	Use:   "fitness",
	Short: "Grade the workspace against its design principles",
	Long: `Run the five fitness checks and print a verdict.

Checks, in order:
  1. Essential files   - required scripts exist
  2. Artifact integrity - every knowledge artifact has a page index
  3. Document governance - every decision record declares a lifecycle status
  4. Dependencies      - required libraries and tools are installed
  5. Connectivity      - configured external APIs accept their credentials

The verdict is one of EXCELLENT, GOOD, FUNCTIONAL or CRITICAL. The command
exits 0 regardless of verdict. Each run is appended to the history database
unless --no-record is given.

Examples:
  alterego fitness
  alterego fitness --verbose
  alterego fitness history --limit 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		noRecord, _ := cmd.Flags().GetBool("no-record")

		runFitness(cmd.Context(), cfg, os.Stdout, verbose, !noRecord)
		return nil
	},
}

var fitnessHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent fitness runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return showHistory(cmd.Context(), cfg, os.Stdout, limit)
	},
}

func init() {
	fitnessCmd.Flags().BoolP("verbose", "v", false, "Show every finding and the dependency list")
	fitnessCmd.Flags().Bool("no-record", false, "Do not append this run to the history database")
	fitnessHistoryCmd.Flags().IntP("limit", "n", 10, "Number of runs to show")

	fitnessCmd.AddCommand(fitnessHistoryCmd)
	rootCmd.AddCommand(fitnessCmd)
}

// runFitness evaluates the workspace, prints the report and optionally
// records the run. Recording problems are logged only.
func runFitness(ctx context.Context, c *config.Config, w io.Writer, verbose, record bool) *health.FitnessReport {
	if ctx == nil {
		ctx = context.Background()
	}

	report := health.NewFitnessEvaluator(c).Evaluate(ctx)
	health.RenderReport(w, report, verbose)

	if record && c.History.Enabled {
		if err := recordRun(ctx, c, report); err != nil {
			zap.L().Warn("failed to record fitness run",
				zap.String("component", "fitness"),
				zap.String("run_id", report.RunID),
				zap.Error(err))
		}
	}

	return report
}

func recordRun(ctx context.Context, c *config.Config, report *health.FitnessReport) error {
	path := c.Path(c.History.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	store, err := storage.NewHistoryStore(ctx, &storage.Config{Path: path})
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return store.RecordRun(ctx, runFromReport(report))
}

// runFromReport flattens a report into its history row.
func runFromReport(r *health.FitnessReport) *types.FitnessRun {
	var failing []string
	for _, check := range r.Checks() {
		if !check.Status.Passed() {
			failing = append(failing, check.Name)
		}
	}
	summary := "all checks passed"
	if len(failing) > 0 {
		summary = "failing: " + strings.Join(failing, ", ")
	}

	return &types.FitnessRun{
		ID:             r.RunID,
		StartedAt:      r.StartedAt,
		Duration:       r.Duration,
		Verdict:        r.Verdict,
		FilesOK:        r.Signals.Files,
		IntegrityOK:    r.Signals.Integrity,
		GovernanceOK:   r.Signals.Governance,
		DepsOK:         r.Signals.Dependencies,
		ConnectivityOK: r.Signals.Connectivity,
		UnknownDocs:    r.Signals.UnknownDocs,
		Summary:        summary,
	}
}

func showHistory(ctx context.Context, c *config.Config, w io.Writer, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	path := c.Path(c.History.Path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(w, "No fitness runs recorded yet. Run 'alterego fitness' first.")
		return nil
	}

	store, err := storage.NewHistoryStore(ctx, &storage.Config{Path: path})
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No fitness runs recorded yet. Run 'alterego fitness' first.")
		return nil
	}

	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "\nRecent fitness runs (%d)\n", len(runs))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for i, run := range runs {
		var prev *types.FitnessRun
		if i+1 < len(runs) {
			prev = runs[i+1]
		}
		fmt.Fprintf(w, "%s  %-12s %s %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			verdictLabel(run.Verdict),
			trend(run, prev),
			gray(run.Summary))
	}
	fmt.Fprintln(w)

	return nil
}

// trend compares a run with the one before it: ↑ healthier, ↓ worse.
func trend(run, prev *types.FitnessRun) string {
	if prev == nil {
		return " "
	}
	switch delta := run.Verdict.Rank() - prev.Verdict.Rank(); {
	case delta > 0:
		return color.New(color.FgGreen).Sprint("↑")
	case delta < 0:
		return color.New(color.FgRed).Sprint("↓")
	}
	return "="
}

func verdictLabel(v types.HealthVerdict) string {
	label := strings.ToUpper(string(v))
	switch v {
	case types.VerdictExcellent:
		return color.New(color.FgGreen).Sprint(label)
	case types.VerdictGood:
		return color.New(color.FgCyan).Sprint(label)
	case types.VerdictFunctional:
		return color.New(color.FgYellow).Sprint(label)
	default:
		return color.New(color.FgRed).Sprint(label)
	}
}
