package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storefront-backend/internal/config"
	"storefront-backend/internal/logger"
	"storefront-backend/internal/server"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the storefront HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		log := logger.New(cfg.LogLevel, cfg.LogPretty)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv, err := server.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
