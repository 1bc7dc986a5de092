package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskhub/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "taskhub",
	Short: "Task management API",
	Long: `TaskHub serves a task-management API: tasks, sharing with view/edit
permissions, comments and a per-user notification outbox.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
