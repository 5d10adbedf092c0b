package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alterego/alterego/internal/config"
	"github.com/alterego/alterego/internal/storage"
)

// version is stamped into lock holder records.
const version = "0.1.0"

var cfg *config.Config

var (
	rootFlag      string
	configFlag    string
	envFileFlag   string
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "alterego",
	Short: "Workspace monitoring assistant",
	Long: `alterego watches a knowledge workspace: it grades workspace fitness,
patrols for recent changes and keeps the agent state document current.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		root := rootFlag
		if root == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			root, err = storage.DiscoverRoot(cwd)
			if err != nil {
				return fmt.Errorf("discover workspace root: %w", err)
			}
		}

		c, err := config.Load(config.LoadOptions{
			Root:       root,
			ConfigFile: configFlag,
			EnvFile:    envFileFlag,
		})
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevelFlag != "" {
			c.Log.Level = logLevelFlag
		}
		if logFormatFlag != "" {
			c.Log.Format = logFormatFlag
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Workspace root (default: discovered from the current directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: <root>/alterego.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "Local override file (default: <root>/.env when present)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: console or json")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
