package reconciler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/makhzone/internal/usecase"
)

// Reconciler replays every trader's history against the recorded totals.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// Worker runs reconciliation passes on a fixed interval.
type Worker struct {
	reconciler Reconciler
	logger     zerolog.Logger
	interval   time.Duration
}

// Config for Worker.
type Config struct {
	Reconciler Reconciler
	Logger     zerolog.Logger
	Interval   time.Duration // time between passes
}

// NewWorker creates a new Worker.
func NewWorker(cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}

	return &Worker{
		reconciler: cfg.Reconciler,
		logger:     cfg.Logger.With().Str("component", "reconciler").Logger(),
		interval:   cfg.Interval,
	}
}

// Start runs a pass immediately and then on every tick until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.interval).Msg("reconciler started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if _, err := w.RunOnce(ctx); err != nil {
		w.logger.Error().Err(err).Msg("reconciliation pass failed on start")
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("reconciler shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error().Err(err).Msg("reconciliation pass failed")
			}
		}
	}
}

// RunOnce performs a single pass and logs every trader that drifted.
func (w *Worker) RunOnce(ctx context.Context) (*usecase.ReconciliationReport, error) {
	start := time.Now()

	report, err := w.reconciler.ReconcileAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range report.Discrepancies {
		w.logger.Warn().
			Str("trader_id", d.TraderID).
			Str("recorded_balance", d.Recorded.Balance.String()).
			Str("replayed_balance", d.Replayed.Balance.String()).
			Str("difference", d.Difference.String()).
			Msg("trader balance drift detected")
	}

	w.logger.Info().
		Int("traders", report.TotalTraders).
		Int("reconciled", report.ReconciledTraders).
		Int("discrepancies", len(report.Discrepancies)).
		Dur("duration", time.Since(start)).
		Msg("reconciliation pass completed")

	return report, nil
}
