package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alterego/alterego/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default alterego.yaml into the workspace root",
	Long: `Write alterego.yaml with every setting at its default value and the
agent brain directory. Credentials are written as placeholders and are
treated as not configured until replaced.

Example:
  cd ~/workspace
  alterego init
  alterego init --force   # overwrite an existing alterego.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return runInit(cfg, os.Stdout, force)
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing alterego.yaml")
	rootCmd.AddCommand(initCmd)
}

func runInit(c *config.Config, w io.Writer, force bool) error {
	path := filepath.Join(c.Root, config.DefaultConfigName+".yaml")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.SaveDefault(path); err != nil {
		return err
	}

	brain := c.Path(c.Paths.BrainDir)
	if err := os.MkdirAll(filepath.Join(brain, "reports"), 0755); err != nil {
		return fmt.Errorf("failed to create brain directory: %w", err)
	}

	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "\n%s Initialized alterego\n\n", green("✓"))
	fmt.Fprintf(w, "  Config: %s\n", cyan(path))
	fmt.Fprintf(w, "  Brain: %s\n", cyan(brain))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", gray("Replace the your_* credentials, then run 'alterego fitness'."))

	return nil
}
