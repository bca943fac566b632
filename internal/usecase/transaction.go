package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/infrastructure/metrics"
)

// directRetrier runs an operation once.
type directRetrier struct{}

func (directRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}

// txRunner executes coordinator work inside a single storage transaction.
type txRunner struct {
	txManager TransactionManager
	retrier   Retrier
	timeout   time.Duration
}

func newTxRunner(txManager TransactionManager, retrier Retrier) txRunner {
	if retrier == nil {
		retrier = directRetrier{}
	}

	return txRunner{
		txManager: txManager,
		retrier:   retrier,
		timeout:   DefaultTransactionTimeout,
	}
}

func (r *txRunner) setTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// run begins a transaction, calls fn and commits. Any error from fn rolls
// the whole transaction back. Retryable conflicts re-run fn from scratch,
// so fn must not leak state between attempts.
func (r txRunner) run(ctx context.Context, op string, fn func(ctx context.Context, tx Transaction) error) error {
	txCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.retrier.Retry(txCtx, func() error {
		tx, err := r.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})

	return classifyTxError(op, err)
}

// classifyTxError passes business errors through unchanged and wraps
// everything else so callers can tell storage failures apart.
func classifyTxError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case domain.IsBusinessError(err):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, domain.ErrTransactionTimeout)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransactionFailed, err)
	}
}

func recordOperation(m *metrics.Metrics, op string, start time.Time, err error) {
	if m == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "error"
	}

	m.Operations.WithLabelValues(op, result).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func recordStock(m *metrics.Metrics, products map[string]*domain.Product) {
	if m == nil {
		return
	}

	for _, p := range products {
		m.ProductStock.WithLabelValues(p.ID).Set(float64(p.StockQuantity))
	}
}

func recordBalances(m *metrics.Metrics, totals map[string]domain.TraderTotals) {
	if m == nil {
		return
	}

	for id, t := range totals {
		m.TraderBalance.WithLabelValues(id).Set(t.Balance.InexactFloat64())
	}
}
