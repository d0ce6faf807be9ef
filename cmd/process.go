package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zlv-data/geolink/internal/geoadmin"
	"github.com/zlv-data/geolink/internal/locprop"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Compute distance and location class for owner-housing pairs",
	Long:  "Streams unresolved owner-housing pairs, computes geodesic distance and the 1-7 relative-location class for each, and writes results back in parallel batches. Safe to interrupt and re-run.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		force, _ := cmd.Flags().GetBool("force")
		pairBatch, _ := cmd.Flags().GetInt("pair-batch-size")
		updateBatch, _ := cmd.Flags().GetInt("update-batch-size")
		workers, _ := cmd.Flags().GetInt("workers")

		if pairBatch <= 0 {
			pairBatch = cfg.Process.PairBatchSize
		}
		if updateBatch <= 0 {
			updateBatch = cfg.Process.UpdateBatchSize
		}
		if workers <= 0 {
			workers = cfg.Process.Workers
		}

		log := zap.L().With(zap.String("command", "process"))
		log.Info("starting run",
			zap.Int("limit", limit),
			zap.Bool("force", force),
			zap.Int("pair_batch_size", pairBatch),
			zap.Int("update_batch_size", updateBatch),
			zap.Int("workers", workers),
		)

		store := locprop.NewPostgresStore(pool,
			locprop.WithStatementTimeout(time.Duration(cfg.Process.StatementTimeoutSecs)*time.Second),
		)
		proc := locprop.New(store, store, store, geoadmin.Load(), locprop.Options{
			Force:           force,
			Limit:           limit,
			PairBatchSize:   pairBatch,
			UpdateBatchSize: updateBatch,
			Workers:         workers,
		})

		started := time.Now()
		stats, runErr := proc.Run(ctx)

		snap := stats.Snapshot()
		fmt.Printf("Processed %d pairs in %s: %d distances, %d written, %d failed, %d skipped\n",
			snap.Processed, time.Since(started).Round(time.Second),
			snap.DistancesComputed, snap.RowsWritten, snap.RowsFailed, snap.Skipped)

		return runErr
	},
}

func init() {
	processCmd.Flags().Int("limit", 0, "process at most N randomly sampled pairs (0 = all)")
	processCmd.Flags().Bool("force", false, "recompute pairs that already have results")
	processCmd.Flags().Int("pair-batch-size", 0, "pairs read per batch (0 = configured default)")
	processCmd.Flags().Int("update-batch-size", 0, "rows written per transaction (0 = configured default)")
	processCmd.Flags().Int("workers", 0, "parallel write transactions (0 = configured default)")
	rootCmd.AddCommand(processCmd)
}
