package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zlv-data/geolink/internal/locprop"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations",
	Long:  "Applies all pending SQL migrations in lexicographic order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := locprop.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "migrate")
		}

		zap.L().Info("all migrations applied successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
