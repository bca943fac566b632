package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/costing"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/infrastructure/metrics"
)

// PurchaseUseCase coordinates stock receipts and product cost averaging.
type PurchaseUseCase struct {
	tx           txRunner
	productRepo  ProductRepository
	purchaseRepo PurchaseRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewPurchaseUseCase creates a new PurchaseUseCase.
func NewPurchaseUseCase(
	txManager TransactionManager,
	retrier Retrier,
	productRepo ProductRepository,
	purchaseRepo PurchaseRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *PurchaseUseCase {
	return &PurchaseUseCase{
		tx:           newTxRunner(txManager, retrier),
		productRepo:  productRepo,
		purchaseRepo: purchaseRepo,
		idGen:        idGen,
		metrics:      metrics,
	}
}

// WithTransactionTimeout overrides DefaultTransactionTimeout. Non-positive values are ignored.
func (uc *PurchaseUseCase) WithTransactionTimeout(d time.Duration) *PurchaseUseCase {
	uc.tx.setTimeout(d)
	return uc
}

// PurchaseLineInput is one received product. An empty ProductID creates a
// new product from ProductName, Category and UnitPrice.
type PurchaseLineInput struct {
	ProductID   string
	ProductName string
	Category    string
	Quantity    int64
	UnitCost    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CreatePurchaseInput represents input for creating a purchase.
type CreatePurchaseInput struct {
	PurchaseDate *time.Time
	SupplierName string
	Notes        string
	Lines        []PurchaseLineInput
}

// UpdatePurchaseInput replaces a purchase's header and lines. Lines must
// reference existing products.
type UpdatePurchaseInput struct {
	PurchaseDate *time.Time
	PurchaseID   string
	SupplierName string
	Notes        string
	Lines        []PurchaseLineInput
}

func validatePurchaseInput(supplier, notes string, lines []PurchaseLineInput, allowNewProducts bool) error {
	if err := domain.ValidateName("supplier name", supplier); err != nil {
		return err
	}

	if err := domain.ValidateNote(notes); err != nil {
		return err
	}

	if err := domain.ValidateLineCount(len(lines)); err != nil {
		return err
	}

	for i, l := range lines {
		if err := domain.ValidateQuantity(l.Quantity); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}

		if err := domain.ValidateNonNegativeAmount("unit_cost", l.UnitCost); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}

		if err := domain.ValidateLineSubtotal(l.Quantity, l.UnitCost); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}

		if l.ProductID != "" {
			continue
		}

		if !allowNewProducts {
			return fmt.Errorf("line %d: %w", i+1, domain.ErrMissingProduct)
		}

		if err := domain.ValidateName("product name", l.ProductName); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}

		if err := domain.ValidateNonNegativeAmount("unit_price", l.UnitPrice); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	return nil
}

// CreatePurchase receives stock. Existing products absorb the incoming
// units into their average cost; lines without a product create one.
func (uc *PurchaseUseCase) CreatePurchase(ctx context.Context, input CreatePurchaseInput) (*domain.Purchase, error) {
	start := time.Now()

	if err := validatePurchaseInput(input.SupplierName, input.Notes, input.Lines, true); err != nil {
		return nil, err
	}

	var (
		result   *domain.Purchase
		products map[string]*domain.Product
	)

	err := uc.tx.run(ctx, "create purchase", func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		existing := make([]string, 0, len(input.Lines))
		for _, l := range input.Lines {
			existing = append(existing, l.ProductID)
		}

		var err error
		products, err = lockProducts(ctx, tx, uc.productRepo, existing)
		if err != nil {
			return err
		}

		purchase := &domain.Purchase{
			ID:           uc.idGen.Generate(),
			SupplierName: strings.TrimSpace(input.SupplierName),
			PurchaseDate: dateOr(input.PurchaseDate, now),
			Notes:        input.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := uc.purchaseRepo.Create(ctx, tx, purchase); err != nil {
			return err
		}

		created := map[string]*domain.Product{}
		total := decimal.Zero

		for _, in := range input.Lines {
			productID := in.ProductID

			if productID == "" {
				p := newPurchasedProduct(uc.idGen.Generate(), in, now)
				if err := uc.productRepo.CreateTx(ctx, tx, p); err != nil {
					return err
				}
				created[p.ID] = p
				productID = p.ID
			} else {
				p := products[productID]
				p.UnitCost = costing.Absorb(p.StockQuantity, p.UnitCost, in.Quantity, in.UnitCost)
				p.StockQuantity += in.Quantity
			}

			line := domain.NewPurchaseLine(uc.idGen.Generate(), purchase.ID, productID, in.Quantity, in.UnitCost)
			if err := uc.purchaseRepo.CreateLine(ctx, tx, line); err != nil {
				return err
			}

			purchase.Lines = append(purchase.Lines, line)
			total = total.Add(line.Subtotal)
		}

		if err := writeStock(ctx, tx, uc.productRepo, products, now); err != nil {
			return err
		}

		purchase.TotalAmount = total
		if err := uc.purchaseRepo.Update(ctx, tx, purchase); err != nil {
			return err
		}

		for id, p := range created {
			products[id] = p
		}
		result = purchase

		return nil
	})

	recordOperation(uc.metrics, "purchase_create", start, err)
	if err != nil {
		return nil, err
	}

	recordStock(uc.metrics, products)

	return result, nil
}

// UpdatePurchase replaces a purchase. For every product on the old or new
// lines, the old receipt is reversed out of the average cost and the new
// receipt absorbed, all in one transaction.
func (uc *PurchaseUseCase) UpdatePurchase(ctx context.Context, input UpdatePurchaseInput) (*domain.Purchase, error) {
	start := time.Now()

	if input.PurchaseID == "" {
		return nil, fmt.Errorf("%w: purchase id is required", domain.ErrValidation)
	}

	if err := validatePurchaseInput(input.SupplierName, input.Notes, input.Lines, false); err != nil {
		return nil, err
	}

	var (
		result   *domain.Purchase
		products map[string]*domain.Product
	)

	err := uc.tx.run(ctx, "update purchase", func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		purchase, err := uc.purchaseRepo.GetByIDForUpdate(ctx, tx, input.PurchaseID)
		if err != nil {
			return err
		}

		// 1. Group old and new lines per product
		removed := costing.Aggregates{}
		for _, l := range purchase.Lines {
			removed.Add(l.ProductID, l.Quantity, l.UnitCost)
		}

		added := costing.Aggregates{}
		for _, l := range input.Lines {
			added.Add(l.ProductID, l.Quantity, l.UnitCost)
		}

		// 2. Lock the union of products in sorted order
		products, err = lockProducts(ctx, tx, uc.productRepo, costing.ProductIDs(removed, added))
		if err != nil {
			return err
		}

		// 3. Replace lines
		if err := uc.purchaseRepo.DeleteLines(ctx, tx, purchase.ID); err != nil {
			return err
		}

		purchase.Lines = make([]*domain.PurchaseLine, 0, len(input.Lines))
		total := decimal.Zero

		for _, in := range input.Lines {
			line := domain.NewPurchaseLine(uc.idGen.Generate(), purchase.ID, in.ProductID, in.Quantity, in.UnitCost)
			if err := uc.purchaseRepo.CreateLine(ctx, tx, line); err != nil {
				return err
			}

			purchase.Lines = append(purchase.Lines, line)
			total = total.Add(line.Subtotal)
		}

		// 4. Reverse the old receipt, absorb the new one
		for id, p := range products {
			r := removed[id]
			a := added[id]

			qty := costing.RemainingQuantity(p.StockQuantity, r.Quantity)
			cost := costing.Reverse(p.StockQuantity, p.UnitCost, r.Quantity, r.AverageCost())

			p.UnitCost = costing.Absorb(qty, cost, a.Quantity, a.AverageCost())
			p.StockQuantity = qty + a.Quantity
		}

		if err := writeStock(ctx, tx, uc.productRepo, products, now); err != nil {
			return err
		}

		purchase.SupplierName = strings.TrimSpace(input.SupplierName)
		purchase.PurchaseDate = dateOr(input.PurchaseDate, purchase.PurchaseDate)
		purchase.Notes = input.Notes
		purchase.TotalAmount = total
		purchase.UpdatedAt = now

		if err := uc.purchaseRepo.Update(ctx, tx, purchase); err != nil {
			return err
		}

		result = purchase

		return nil
	})

	recordOperation(uc.metrics, "purchase_update", start, err)
	if err != nil {
		return nil, err
	}

	recordStock(uc.metrics, products)

	return result, nil
}

// DeletePurchase removes a purchase and takes its units back out of stock,
// reversing them out of each product's average cost.
func (uc *PurchaseUseCase) DeletePurchase(ctx context.Context, purchaseID string) error {
	start := time.Now()

	if purchaseID == "" {
		return fmt.Errorf("%w: purchase id is required", domain.ErrValidation)
	}

	var products map[string]*domain.Product

	err := uc.tx.run(ctx, "delete purchase", func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		purchase, err := uc.purchaseRepo.GetByIDForUpdate(ctx, tx, purchaseID)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(purchase.Lines))
		for _, l := range purchase.Lines {
			ids = append(ids, l.ProductID)
		}

		products, err = lockProducts(ctx, tx, uc.productRepo, ids)
		if err != nil {
			return err
		}

		for _, l := range purchase.Lines {
			p := products[l.ProductID]
			p.UnitCost = costing.Reverse(p.StockQuantity, p.UnitCost, l.Quantity, l.UnitCost)
			p.StockQuantity = costing.RemainingQuantity(p.StockQuantity, l.Quantity)
		}

		if err := writeStock(ctx, tx, uc.productRepo, products, now); err != nil {
			return err
		}

		if err := uc.purchaseRepo.DeleteLines(ctx, tx, purchase.ID); err != nil {
			return err
		}

		return uc.purchaseRepo.Delete(ctx, tx, purchase.ID)
	})

	recordOperation(uc.metrics, "purchase_delete", start, err)
	if err != nil {
		return err
	}

	recordStock(uc.metrics, products)

	return nil
}

// GetPurchase returns a purchase with its lines.
func (uc *PurchaseUseCase) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	return uc.purchaseRepo.GetByID(ctx, id)
}

// ListPurchases lists purchase headers, newest first.
func (uc *PurchaseUseCase) ListPurchases(ctx context.Context, limit, offset int) ([]*domain.Purchase, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.purchaseRepo.List(ctx, limit, offset)
}

func newPurchasedProduct(id string, in PurchaseLineInput, now time.Time) *domain.Product {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	return &domain.Product{
		ID:            id,
		Name:          strings.TrimSpace(in.ProductName),
		Category:      category,
		StockQuantity: in.Quantity,
		UnitPrice:     in.UnitPrice,
		UnitCost:      costing.Absorb(0, decimal.Zero, in.Quantity, in.UnitCost),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
