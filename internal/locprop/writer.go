package locprop

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zlv-data/geolink/internal/resilience"
)

// Writer fans a pair-batch's updates out as independent update batches, each
// committed by its own transaction on its own connection. A failed batch
// never rolls back its siblings; its rows stay null and reappear next run.
type Writer struct {
	sink      PairSink
	batchSize int
	workers   int
	stats     *Stats
	retry     resilience.RetryConfig
}

// NewWriter creates a write fan-out over the sink.
func NewWriter(sink PairSink, batchSize, workers int, stats *Stats) *Writer {
	if batchSize <= 0 {
		batchSize = defaultUpdateBatchSize
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("locprop", "update batch")
	return &Writer{
		sink:      sink,
		batchSize: batchSize,
		workers:   workers,
		stats:     stats,
		retry:     retry,
	}
}

// Flush writes all updates and blocks until every started update batch has
// committed or exhausted its retries. A canceled context stops new batches
// from starting; in-flight ones run on a detached context and complete (they
// are independent transactions and will commit).
func (w *Writer) Flush(ctx context.Context, updates []PairUpdate) {
	if len(updates) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(w.workers)

	for start := 0; start < len(updates); start += w.batchSize {
		if ctx.Err() != nil {
			w.stats.AddFailed(int64(len(updates) - start))
			break
		}

		end := start + w.batchSize
		if end > len(updates) {
			end = len(updates)
		}
		chunk := updates[start:end]

		g.Go(func() error {
			// The outer context only gates starting; once a batch starts,
			// an interrupt must not abort its transaction mid-flight.
			if ctx.Err() != nil {
				w.stats.AddFailed(int64(len(chunk)))
				return nil
			}
			err := resilience.Do(context.WithoutCancel(ctx), w.retry, func(ctx context.Context) error {
				_, err := w.sink.UpdateBatch(ctx, chunk)
				return err
			})
			if err != nil {
				zap.L().Error("locprop: update batch failed, rows stay unresolved",
					zap.Int("rows", len(chunk)),
					zap.Error(err),
				)
				w.stats.AddFailed(int64(len(chunk)))
				return nil // one failed batch must not stop the others
			}
			w.stats.AddWritten(int64(len(chunk)))
			return nil
		})
	}

	_ = g.Wait()
}
