package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/costing"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/infrastructure/metrics"
)

// SaleUseCase coordinates stock, trader totals, payments and the trader
// ledger for sales.
type SaleUseCase struct {
	tx          txRunner
	productRepo ProductRepository
	traderRepo  TraderRepository
	saleRepo    SaleRepository
	paymentRepo PaymentRepository
	ledger      traderLedger
	idGen       IDGenerator
	balances    balanceCache
	metrics     *metrics.Metrics
}

// NewSaleUseCase creates a new SaleUseCase.
func NewSaleUseCase(
	txManager TransactionManager,
	retrier Retrier,
	productRepo ProductRepository,
	traderRepo TraderRepository,
	saleRepo SaleRepository,
	paymentRepo PaymentRepository,
	entryRepo FinancialEntryRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *SaleUseCase {
	return &SaleUseCase{
		tx:          newTxRunner(txManager, retrier),
		productRepo: productRepo,
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
func (uc *SaleUseCase) WithTransactionTimeout(d time.Duration) *SaleUseCase {
	uc.tx.setTimeout(d)
	return uc
}

// SaleLineInput is one requested invoice line.
type SaleLineInput struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// CreateSaleInput represents input for creating a sale.
type CreateSaleInput struct {
	SaleDate   *time.Time
	TraderID   string
	PaidAmount decimal.Decimal
	Lines      []SaleLineInput
}

// UpdateSaleInput replaces a sale's trader, lines and paid amount.
type UpdateSaleInput struct {
	SaleDate   *time.Time
	SaleID     string
	TraderID   string
	PaidAmount decimal.Decimal
	Lines      []SaleLineInput
}

// SaleResult is a committed sale with its trader's recomputed position.
type SaleResult struct {
	Sale   *domain.Sale
	Totals domain.TraderTotals
}

// DeleteSaleResult reports the trader position after a sale was removed.
type DeleteSaleResult struct {
	SaleID   string
	TraderID string
	Totals   domain.TraderTotals
}

func validateSaleInput(traderID string, paid decimal.Decimal, lines []SaleLineInput) error {
	if traderID == "" {
		return domain.ErrMissingTrader
	}

	if err := domain.ValidateNonNegativeAmount("paid_amount", paid); err != nil {
		return err
	}

	if err := domain.ValidateLineCount(len(lines)); err != nil {
		return err
	}

	for i, l := range lines {
		if l.ProductID == "" {
			return fmt.Errorf("line %d: %w", i+1, domain.ErrMissingProduct)
		}

		if err := domain.ValidateQuantity(l.Quantity); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}

		if err := domain.ValidateNonNegativeAmount("unit_price", l.UnitPrice); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}

		if err := domain.ValidateLineSubtotal(l.Quantity, l.UnitPrice); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	return nil
}

// CreateSale records an invoice: it draws stock at the current average cost,
// records an optional down payment and posts the sale to the trader ledger.
func (uc *SaleUseCase) CreateSale(ctx context.Context, input CreateSaleInput) (*SaleResult, error) {
	start := time.Now()

	// 0. Validate inputs before starting transaction
	if err := validateSaleInput(input.TraderID, input.PaidAmount, input.Lines); err != nil {
		return nil, err
	}

	var (
		result   *SaleResult
		products map[string]*domain.Product
	)

	err := uc.tx.run(ctx, "create sale", func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		// 1. Lock trader, then products in sorted order (DEADLOCK PREVENTION)
		trader, err := uc.traderRepo.GetByIDForUpdate(ctx, tx, input.TraderID)
		if err != nil {
			return err
		}

		products, err = lockProducts(ctx, tx, uc.productRepo, saleProductIDs(input.Lines))
		if err != nil {
			return err
		}

		// 2. Insert header, then lines
		saleID := uc.idGen.Generate()
		sale := &domain.Sale{
			ID:            saleID,
			InvoiceNumber: domain.InvoiceNumberFor(saleID),
			TraderID:      trader.ID,
			SaleDate:      dateOr(input.SaleDate, now),
			Status:        domain.SaleStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := uc.saleRepo.Create(ctx, tx, sale); err != nil {
			return err
		}

		if err := uc.insertLines(ctx, tx, sale, input.Lines, products, input.PaidAmount); err != nil {
			return err
		}

		if err := writeStock(ctx, tx, uc.productRepo, products, now); err != nil {
			return err
		}

		// 3. Down payment
		if err := uc.recordDownPayment(ctx, tx, sale, sale.PaidAmount, now); err != nil {
			return err
		}

		// 4. Post to the trader ledger
		remaining := sale.RemainingAmount
		totals, err := uc.ledger.post(ctx, tx, trader, ledgerEvent{
			Type:          domain.EntryTypeSale,
			SaleID:        sale.ID,
			SaleAmount:    sale.TotalAmount,
			PaymentAmount: sale.PaidAmount,
			Remaining:     &remaining,
			Description:   "Sale " + sale.InvoiceNumber,
		}, now)
		if err != nil {
			return err
		}

		result = &SaleResult{Sale: sale, Totals: totals}

		return nil
	})

	recordOperation(uc.metrics, "sale_create", start, err)
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, input.TraderID)
	recordStock(uc.metrics, products)
	recordBalances(uc.metrics, map[string]domain.TraderTotals{input.TraderID: result.Totals})

	return result, nil
}

// UpdateSale fully replaces a sale. The old lines are restocked at the cost
// they were sold at and the old down payment is reversed. The new lines and
// down payment are applied as on creation. Payments recorded separately stay
// linked and keep counting towards the paid amount; if the trader changes
// they stay on the old trader's account, unlinked.
func (uc *SaleUseCase) UpdateSale(ctx context.Context, input UpdateSaleInput) (*SaleResult, error) {
	start := time.Now()

	if input.SaleID == "" {
		return nil, fmt.Errorf("%w: sale id is required", domain.ErrValidation)
	}

	if err := validateSaleInput(input.TraderID, input.PaidAmount, input.Lines); err != nil {
		return nil, err
	}

	var (
		result    *SaleResult
		oldTrader string
		products  map[string]*domain.Product
		balances  map[string]domain.TraderTotals
	)

	err := uc.tx.run(ctx, "update sale", func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		// 1. Lock payments, sale, traders, products
		linked, sale, err := uc.lockSale(ctx, tx, input.SaleID)
		if err != nil {
			return err
		}
		oldTrader = sale.TraderID

		traders, err := lockTraders(ctx, tx, uc.traderRepo, sale.TraderID, input.TraderID)
		if err != nil {
			return err
		}

		productIDs := saleProductIDs(input.Lines)
		for _, l := range sale.Lines {
			productIDs = append(productIDs, l.ProductID)
		}

		products, err = lockProducts(ctx, tx, uc.productRepo, productIDs)
		if err != nil {
			return err
		}

		// 2. Reverse the old sale
		oldTotal := sale.TotalAmount
		restock(products, sale.Lines)

		oldDown, kept := decimal.Zero, decimal.Zero
		for _, p := range linked {
			if p.Source != domain.PaymentSourceSale {
				kept = kept.Add(p.Amount)
				continue
			}

			oldDown = oldDown.Add(p.Amount)
			if err := uc.paymentRepo.Delete(ctx, tx, p.ID); err != nil {
				return err
			}
		}

		if oldTrader != input.TraderID && kept.IsPositive() {
			if err := uc.paymentRepo.UnlinkSale(ctx, tx, sale.ID, now); err != nil {
				return err
			}
			kept = decimal.Zero
		}

		if err := uc.saleRepo.DeleteLines(ctx, tx, sale.ID); err != nil {
			return err
		}

		// 3. Apply the new content
		sale.TraderID = input.TraderID
		sale.SaleDate = dateOr(input.SaleDate, sale.SaleDate)
		sale.UpdatedAt = now

		if err := uc.insertLines(ctx, tx, sale, input.Lines, products, input.PaidAmount.Add(kept)); err != nil {
			return err
		}

		if err := writeStock(ctx, tx, uc.productRepo, products, now); err != nil {
			return err
		}

		if err := uc.recordDownPayment(ctx, tx, sale, input.PaidAmount, now); err != nil {
			return err
		}

		// 4. Post the net movement per trader in sorted order
		deltas := map[string]ledgerEvent{}
		addDelta(deltas, oldTrader, oldTotal.Neg(), oldDown.Neg())
		addDelta(deltas, sale.TraderID, sale.TotalAmount, input.PaidAmount)

		balances = make(map[string]domain.TraderTotals, len(deltas))
		for _, id := range sortedUnique([]string{oldTrader, sale.TraderID}) {
			ev := deltas[id]
			ev.SaleID = sale.ID
			ev.Description = "Sale " + sale.InvoiceNumber + " updated"
			if id == sale.TraderID {
				remaining := sale.RemainingAmount
				ev.Remaining = &remaining
			}

			totals, err := uc.ledger.post(ctx, tx, traders[id], ev, now)
			if err != nil {
				return err
			}
			balances[id] = totals
		}

		result = &SaleResult{Sale: sale, Totals: balances[sale.TraderID]}

		return nil
	})

	recordOperation(uc.metrics, "sale_update", start, err)
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, oldTrader, input.TraderID)
	recordStock(uc.metrics, products)
	recordBalances(uc.metrics, balances)

	return result, nil
}

// DeleteSale removes a sale, restocks its lines at their sold cost and takes
// the invoice total off the trader. Payments stay on the trader's account.
func (uc *SaleUseCase) DeleteSale(ctx context.Context, saleID string) (*DeleteSaleResult, error) {
	start := time.Now()

	if saleID == "" {
		return nil, fmt.Errorf("%w: sale id is required", domain.ErrValidation)
	}

	var (
		result   *DeleteSaleResult
		products map[string]*domain.Product
	)

	err := uc.tx.run(ctx, "delete sale", func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		_, sale, err := uc.lockSale(ctx, tx, saleID)
		if err != nil {
			return err
		}

		trader, err := uc.traderRepo.GetByIDForUpdate(ctx, tx, sale.TraderID)
		if err != nil {
			return err
		}

		productIDs := make([]string, 0, len(sale.Lines))
		for _, l := range sale.Lines {
			productIDs = append(productIDs, l.ProductID)
		}

		products, err = lockProducts(ctx, tx, uc.productRepo, productIDs)
		if err != nil {
			return err
		}

		restock(products, sale.Lines)

		if err := writeStock(ctx, tx, uc.productRepo, products, now); err != nil {
			return err
		}

		if err := uc.paymentRepo.UnlinkSale(ctx, tx, sale.ID, now); err != nil {
			return err
		}

		if err := uc.saleRepo.DeleteLines(ctx, tx, sale.ID); err != nil {
			return err
		}

		if err := uc.saleRepo.Delete(ctx, tx, sale.ID); err != nil {
			return err
		}

		zero := decimal.Zero
		totals, err := uc.ledger.post(ctx, tx, trader, ledgerEvent{
			Type:        domain.EntryTypeSale,
			SaleID:      sale.ID,
			SaleAmount:  sale.TotalAmount.Neg(),
			Remaining:   &zero,
			Description: "Sale " + sale.InvoiceNumber + " deleted",
		}, now)
		if err != nil {
			return err
		}

		result = &DeleteSaleResult{SaleID: sale.ID, TraderID: trader.ID, Totals: totals}

		return nil
	})

	recordOperation(uc.metrics, "sale_delete", start, err)
	if err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, result.TraderID)
	recordStock(uc.metrics, products)
	recordBalances(uc.metrics, map[string]domain.TraderTotals{result.TraderID: result.Totals})

	return result, nil
}

// GetSale returns a sale with its lines.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	return uc.saleRepo.GetByID(ctx, id)
}

// ListSales lists sale headers, newest first.
func (uc *SaleUseCase) ListSales(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.saleRepo.List(ctx, filter)
}

// insertLines draws stock for each line at the product's current cost,
// inserts the lines and sets the sale's amounts.
func (uc *SaleUseCase) insertLines(
	ctx context.Context,
	tx Transaction,
	sale *domain.Sale,
	lines []SaleLineInput,
	products map[string]*domain.Product,
	paid decimal.Decimal,
) error {
	total := decimal.Zero
	sale.Lines = make([]*domain.SaleLine, 0, len(lines))

	for _, in := range lines {
		p := products[in.ProductID]

		if err := p.ValidateSale(in.Quantity); err != nil {
			return err
		}

		line := domain.NewSaleLine(uc.idGen.Generate(), sale.ID, p.ID, in.Quantity, in.UnitPrice, p.UnitCost)
		if err := uc.saleRepo.CreateLine(ctx, tx, line); err != nil {
			return err
		}

		// Selling leaves the average cost unchanged.
		p.StockQuantity -= in.Quantity
		total = total.Add(line.Subtotal)
		sale.Lines = append(sale.Lines, line)
	}

	sale.SetAmounts(total, paid)

	return uc.saleRepo.Update(ctx, tx, sale)
}

// lockSale locks the sale's payments and then the sale. Payment paths lock
// a payment before its sale, so the sale paths must take payments first too.
// The payments are listed again under the sale lock, since every path that
// links a payment holds that lock.
func (uc *SaleUseCase) lockSale(ctx context.Context, tx Transaction, saleID string) ([]*domain.Payment, *domain.Sale, error) {
	if _, err := uc.paymentRepo.ListBySaleForUpdate(ctx, tx, saleID); err != nil {
		return nil, nil, err
	}

	sale, err := uc.saleRepo.GetByIDForUpdate(ctx, tx, saleID)
	if err != nil {
		return nil, nil, err
	}

	linked, err := uc.paymentRepo.ListBySaleForUpdate(ctx, tx, saleID)
	if err != nil {
		return nil, nil, err
	}

	return linked, sale, nil
}

func (uc *SaleUseCase) recordDownPayment(ctx context.Context, tx Transaction, sale *domain.Sale, amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return nil
	}

	return uc.paymentRepo.Create(ctx, tx, &domain.Payment{
		ID:          uc.idGen.Generate(),
		TraderID:    sale.TraderID,
		SaleID:      sale.ID,
		PaymentDate: sale.SaleDate,
		Amount:      amount,
		Note:        "Down payment for " + sale.InvoiceNumber,
		Source:      domain.PaymentSourceSale,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// restock returns sold units to stock, absorbing them at the cost they carried.
func restock(products map[string]*domain.Product, lines []*domain.SaleLine) {
	for _, l := range lines {
		p := products[l.ProductID]
		p.UnitCost = costing.Absorb(p.StockQuantity, p.UnitCost, l.Quantity, l.UnitCost)
		p.StockQuantity += l.Quantity
	}
}

func addDelta(deltas map[string]ledgerEvent, traderID string, sale, payment decimal.Decimal) {
	ev := deltas[traderID]
	ev.Type = domain.EntryTypeSale
	ev.SaleAmount = ev.SaleAmount.Add(sale)
	ev.PaymentAmount = ev.PaymentAmount.Add(payment)
	deltas[traderID] = ev
}

func saleProductIDs(lines []SaleLineInput) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}

	return ids
}

func dateOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}

	return t.UTC()
}
