package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/promptdrafter"
	"github.com/aretw0/promptdrafter/internal/cli"
	"github.com/aretw0/promptdrafter/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the library and node host APIs over HTTP.

The library is stored in the backend selected by storage.backend (file, memory,
redis or sqlite). With the file backend, edits made to the saved directories
by hand are pushed to /promptdrafter/events subscribers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("backend") {
			cfg.Storage.Backend, _ = cmd.Flags().GetString("backend")
		}
		if cmd.Flags().Changed("metrics") {
			cfg.Server.Metrics, _ = cmd.Flags().GetBool("metrics")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		host, _ := cmd.Flags().GetString("host")

		if tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr, strings.TrimSpace(promptdrafter.Version))
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := cli.NewApp(sigCtx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := cli.Serve(sigCtx, app, cli.Addr(host, cfg.Server.Port)); err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		if sig := sigCtx.Signal(); sig != nil {
			logger.Info("Shutdown complete", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "", "Interface to bind (default: all)")
	serveCmd.Flags().String("backend", "", "Storage backend override: file, memory, redis, sqlite")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
}
