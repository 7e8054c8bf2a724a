package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Processor transforms one batch, typically by calling an external service.
// Any unrecoverable error fails the whole batch; there is no partial-batch
// success. Transient errors should be retried with backoff inside the
// processor before being surfaced here.
type Processor[T, R any] interface {
	Process(ctx context.Context, batch Batch[T]) ([]R, error)
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc[T, R any] func(ctx context.Context, batch Batch[T]) ([]R, error)

func (f ProcessorFunc[T, R]) Process(ctx context.Context, batch Batch[T]) ([]R, error) {
	return f(ctx, batch)
}

// Sink appends successfully processed batch outputs to the cumulative output
// artifact. Idempotence comes from the runner consulting the progress tracker
// before processing, not from deduplicating here.
type Sink[R any] interface {
	Append(ctx context.Context, records []R) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc[R any] func(ctx context.Context, records []R) error

func (f SinkFunc[R]) Append(ctx context.Context, records []R) error {
	return f(ctx, records)
}

// Summary reports the outcome of one run over a batch set.
type Summary struct {
	Processed   int // batches processed successfully this run
	Skipped     int // batches recorded in the skip log this run
	AlreadyDone int // batches skipped because the tracker had them done
	Records     int // records appended to the sink this run
}

// Runner drives the checkpointed batch loop: skip done batches, process,
// append to the sink, mark done; on failure record the skip and continue.
// Batches run sequentially; each fully completes before the next begins.
type Runner[T, R any] struct {
	Name      string
	Processor Processor[T, R]
	Sink      Sink[R]
	Tracker   *ProgressTracker
	Skips     *SkipLog
	// Delay is the pause between processed batches, used to pace calls to
	// rate-limited services. Zero means no pause.
	Delay time.Duration
}

// Run processes every batch not already marked done. Stage-level failures
// never abort the run; only checkpoint persistence errors are fatal.
func (r *Runner[T, R]) Run(ctx context.Context, batches []Batch[T]) (Summary, error) {
	var summary Summary

	for _, batch := range batches {
		select {
		case <-ctx.Done():
			slog.Warn("[Runner] Context canceled, stopping between batches",
				slog.String("stage", r.Name),
				slog.Int("next_batch", batch.Index))
			return summary, ctx.Err()
		default:
		}

		if r.Tracker.IsDone(batch.Index) {
			summary.AlreadyDone++
			continue
		}

		records, err := r.Processor.Process(ctx, batch)
		if err == nil && r.Sink != nil {
			err = r.Sink.Append(ctx, records)
		}
		if err != nil {
			if skipErr := r.Skips.Record(batch.Index, err.Error()); skipErr != nil {
				return summary, fmt.Errorf("[Runner] skip log write failed: %w", skipErr)
			}
			summary.Skipped++
			continue
		}

		if err := r.Tracker.MarkDone(batch.Index); err != nil {
			return summary, fmt.Errorf("[Runner] progress write failed: %w", err)
		}

		summary.Processed++
		summary.Records += len(records)

		slog.Info("[Runner] Batch complete",
			slog.String("stage", r.Name),
			slog.Int("batch_index", batch.Index),
			slog.Int("records", len(records)))

		if r.Delay > 0 && batch.Index != batches[len(batches)-1].Index {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(r.Delay):
			}
		}
	}

	slog.Info("[Runner] Run finished",
		slog.String("stage", r.Name),
		slog.Int("processed", summary.Processed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("already_done", summary.AlreadyDone))
	return summary, nil
}
