package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/infrastructure/metrics"
)

// PaymentUseCase records money received from traders.
type PaymentUseCase struct {
	tx          txRunner
	traderRepo  TraderRepository
	saleRepo    SaleRepository
	paymentRepo PaymentRepository
	ledger      traderLedger
	idGen       IDGenerator
	balances    balanceCache
	metrics     *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	retrier Retrier,
	traderRepo TraderRepository,
	saleRepo SaleRepository,
	paymentRepo PaymentRepository,
	entryRepo FinancialEntryRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		tx:          newTxRunner(txManager, retrier),
		traderRepo:  traderRepo,
		saleRepo:    saleRepo,
		paymentRepo: paymentRepo,
		ledger:      traderLedger{traderRepo: traderRepo, entryRepo: entryRepo, idGen: idGen},
		idGen:       idGen,
		balances:    newBalanceCache(cache, 0),
		metrics:     metrics,
	}
}

// WithTransactionTimeout overrides DefaultTransactionTimeout. Non-positive values are ignored.
func (uc *PaymentUseCase) WithTransactionTimeout(d time.Duration) *PaymentUseCase {
	uc.tx.setTimeout(d)
	return uc
}

// CreatePaymentInput represents input for recording a payment.
type CreatePaymentInput struct {
	PaymentDate *time.Time
	TraderID    string
	SaleID      string
	Amount      decimal.Decimal
	Note        string
}

// UpdatePaymentInput changes a payment's amount, date, note or sale link.
// An empty SaleID moves the payment onto the trader's account.
type UpdatePaymentInput struct {
	PaymentDate *time.Time
	PaymentID   string
	SaleID      string
	Amount      decimal.Decimal
	Note        string
}

// PaymentResult is a committed payment with its trader's position.
type PaymentResult struct {
	Payment *domain.Payment
	Totals  domain.TraderTotals
}

// CreatePayment records a payment against a trader and, optionally, one of
// the trader's sales.
func (uc *PaymentUseCase) CreatePayment(ctx context.Context, input CreatePaymentInput) (*PaymentResult, error) {
	start := time.Now()

	if input.TraderID == "" {
		return nil, domain.ErrMissingTrader
	}

	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateNote(input.Note); err != nil {
		return nil, err
	}

	// Sales are locked before the trader, so an unknown trader has to be
	// reported before sale ownership is checked.
	if input.SaleID != "" {
		if _, err := uc.traderRepo.GetByID(ctx, input.TraderID); err != nil {
			return nil, err
		}
	}

	var result *PaymentResult

	err := uc.tx.run(ctx, "create payment", func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		// Lock order: sales, then trader
		sales, err := uc.lockSales(ctx, tx, input.TraderID, input.SaleID)
		if err != nil {
			return err
		}

		trader, err := uc.traderRepo.GetByIDForUpdate(ctx, tx, input.TraderID)
		if err != nil {
			return err
		}

		payment := &domain.Payment{
			ID:          uc.idGen.Generate(),
			TraderID:    trader.ID,
			SaleID:      input.SaleID,
			PaymentDate: dateOr(input.PaymentDate, now),
			Amount:      input.Amount,
			Note:        input.Note,
			Source:      domain.PaymentSourceManual,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := uc.paymentRepo.Create(ctx, tx, payment); err != nil {
			return err
		}

		ev := ledgerEvent{
			Type:          domain.EntryTypePayment,
			SaleID:        payment.SaleID,
			PaymentID:     payment.ID,
			PaymentAmount: payment.Amount,
			Description:   paymentDescription("Payment", payment.Note),
		}

		if sale := sales[input.SaleID]; sale != nil {
			sale.AddPaid(payment.Amount)
			sale.UpdatedAt = now
			if err := uc.saleRepo.Update(ctx, tx, sale); err != nil {
				return err
			}

			remaining := sale.RemainingAmount
			ev.Remaining = &remaining
		}

		totals, err := uc.ledger.post(ctx, tx, trader, ev, now)
		if err != nil {
			return err
		}

		result = &PaymentResult{Payment: payment, Totals: totals}

		return nil
	})

	recordOperation(uc.metrics, "payment_create", start, err)
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, input.TraderID)
	recordBalances(uc.metrics, map[string]domain.TraderTotals{input.TraderID: result.Totals})

	return result, nil
}

// UpdatePayment applies the change in amount to the trader totals and moves
// the paid amount between the old and new linked sales.
func (uc *PaymentUseCase) UpdatePayment(ctx context.Context, input UpdatePaymentInput) (*PaymentResult, error) {
	start := time.Now()

	if input.PaymentID == "" {
		return nil, fmt.Errorf("%w: payment id is required", domain.ErrValidation)
	}

	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateNote(input.Note); err != nil {
		return nil, err
	}

	var result *PaymentResult

	err := uc.tx.run(ctx, "update payment", func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		payment, err := uc.paymentRepo.GetByIDForUpdate(ctx, tx, input.PaymentID)
		if err != nil {
			return err
		}

		sales, err := uc.lockSales(ctx, tx, payment.TraderID, payment.SaleID, input.SaleID)
		if err != nil {
			return err
		}

		trader, err := uc.traderRepo.GetByIDForUpdate(ctx, tx, payment.TraderID)
		if err != nil {
			return err
		}

		delta := input.Amount.Sub(payment.Amount)

		if old := sales[payment.SaleID]; old != nil {
			old.AddPaid(payment.Amount.Neg())
		}
		if updated := sales[input.SaleID]; updated != nil {
			updated.AddPaid(input.Amount)
		}
		if err := uc.saveSales(ctx, tx, sales, now); err != nil {
			return err
		}

		payment.Amount = input.Amount
		payment.SaleID = input.SaleID
		payment.PaymentDate = dateOr(input.PaymentDate, payment.PaymentDate)
		payment.Note = input.Note
		payment.UpdatedAt = now

		if err := uc.paymentRepo.Update(ctx, tx, payment); err != nil {
			return err
		}

		ev := ledgerEvent{
			Type:          domain.EntryTypePayment,
			SaleID:        payment.SaleID,
			PaymentID:     payment.ID,
			PaymentAmount: delta,
			Description:   paymentDescription("Payment updated", payment.Note),
		}
		if sale := sales[payment.SaleID]; sale != nil {
			remaining := sale.RemainingAmount
			ev.Remaining = &remaining
		}

		totals, err := uc.ledger.post(ctx, tx, trader, ev, now)
		if err != nil {
			return err
		}

		result = &PaymentResult{Payment: payment, Totals: totals}

		return nil
	})

	recordOperation(uc.metrics, "payment_update", start, err)
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, result.Payment.TraderID)
	recordBalances(uc.metrics, map[string]domain.TraderTotals{result.Payment.TraderID: result.Totals})

	return result, nil
}

// DeletePayment removes a payment and takes it back off the trader and any
// linked sale.
func (uc *PaymentUseCase) DeletePayment(ctx context.Context, paymentID string) (*PaymentResult, error) {
	start := time.Now()

	if paymentID == "" {
		return nil, fmt.Errorf("%w: payment id is required", domain.ErrValidation)
	}

	var result *PaymentResult

	err := uc.tx.run(ctx, "delete payment", func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		payment, err := uc.paymentRepo.GetByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		sales, err := uc.lockSales(ctx, tx, payment.TraderID, payment.SaleID)
		if err != nil {
			return err
		}

		trader, err := uc.traderRepo.GetByIDForUpdate(ctx, tx, payment.TraderID)
		if err != nil {
			return err
		}

		ev := ledgerEvent{
			Type:          domain.EntryTypePayment,
			SaleID:        payment.SaleID,
			PaymentID:     payment.ID,
			PaymentAmount: payment.Amount.Neg(),
			Description:   paymentDescription("Payment deleted", payment.Note),
		}

		if sale := sales[payment.SaleID]; sale != nil {
			sale.AddPaid(payment.Amount.Neg())
			if err := uc.saveSales(ctx, tx, sales, now); err != nil {
				return err
			}

			remaining := sale.RemainingAmount
			ev.Remaining = &remaining
		}

		if err := uc.paymentRepo.Delete(ctx, tx, payment.ID); err != nil {
			return err
		}

		totals, err := uc.ledger.post(ctx, tx, trader, ev, now)
		if err != nil {
			return err
		}

		result = &PaymentResult{Payment: payment, Totals: totals}

		return nil
	})

	recordOperation(uc.metrics, "payment_delete", start, err)
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, result.Payment.TraderID)
	recordBalances(uc.metrics, map[string]domain.TraderTotals{result.Payment.TraderID: result.Totals})

	return result, nil
}

// GetPayment returns one payment.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return uc.paymentRepo.GetByID(ctx, id)
}

// ListPayments lists payments, optionally for one trader or sale.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.paymentRepo.List(ctx, filter)
}

// lockSales locks the referenced sales and checks they belong to traderID.
func (uc *PaymentUseCase) lockSales(ctx context.Context, tx Transaction, traderID string, saleIDs ...string) (map[string]*domain.Sale, error) {
	ids := sortedUnique(saleIDs)
	sales := make(map[string]*domain.Sale, len(ids))

	if len(ids) == 0 {
		return sales, nil
	}

	locked, err := uc.saleRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	for _, s := range locked {
		sales[s.ID] = s
	}

	for _, id := range ids {
		s, ok := sales[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrSaleNotFound, id)
		}

		if s.TraderID != traderID {
			return nil, domain.ErrSaleTraderMismatch
		}
	}

	return sales, nil
}

func (uc *PaymentUseCase) saveSales(ctx context.Context, tx Transaction, sales map[string]*domain.Sale, now time.Time) error {
	for _, id := range sortedUnique(mapKeys(sales)) {
		s := sales[id]
		s.UpdatedAt = now

		if err := uc.saleRepo.Update(ctx, tx, s); err != nil {
			return err
		}
	}

	return nil
}

func paymentDescription(prefix, note string) string {
	if note == "" {
		return prefix
	}

	return prefix + ": " + note
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	return keys
}
