package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/promptdrafter/internal/config"
	"github.com/aretw0/promptdrafter/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "promptdrafter",
	Short: "PromptDrafter keeps wildcard ports in step with prompt text",
	Long: `PromptDrafter drafts prompts with {wildcard_name} references, reconciles the
input ports of prompt nodes against them and manages a library of saved
prompts and wildcard lists.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}
		cfg = loaded

		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level, _ = cmd.Flags().GetString("log-level")
		}
		lvl, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		if jsonLogs, _ := cmd.Flags().GetBool("log-json"); jsonLogs {
			logger = logging.NewJSON(lvl)
		} else {
			logger = logging.New(lvl)
		}
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default: promptdrafter.yaml or config.json in the working directory)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}
