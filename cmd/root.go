package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zlv-data/geolink/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geolink",
	Short: "Owner-housing geographic relation engine",
	Long:  "Computes the geodesic distance and relative-location class between every housing unit and its owners, from BAN-geocoded addresses in Postgres.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if dsn, _ := cmd.Flags().GetString("db-url"); dsn != "" {
			cfg.Store.DatabaseURL = dsn
		}

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
	rootCmd.PersistentFlags().String("db-url", "", "Postgres connection string (overrides config)")
}

// exitCode maps a command error to the process exit status. An interrupted
// run is a clean stop, not a failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

func main() {
	err := rootCmd.Execute()
	if code := exitCode(err); code != 0 {
		os.Exit(code)
	}
}
