package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// PurchaseRepository implements usecase.PurchaseRepository.
type PurchaseRepository struct {
	store *Store
}

// NewPurchaseRepository creates a new PurchaseRepository.
func NewPurchaseRepository(store *Store) *PurchaseRepository {
	return &PurchaseRepository{store: store}
}

// Create stores a purchase header.
func (r *PurchaseRepository) Create(_ context.Context, tx usecase.Transaction, purchase *domain.Purchase) error {
	st := stateOf(tx)

	if _, ok := st.purchases[purchase.ID]; ok {
		return fmt.Errorf("memory: duplicate purchase id %s", purchase.ID)
	}

	st.purchases[purchase.ID] = purchaseHeader(purchase)

	return nil
}

// CreateLine stores a purchase line.
func (r *PurchaseRepository) CreateLine(_ context.Context, tx usecase.Transaction, line *domain.PurchaseLine) error {
	st := stateOf(tx)

	if _, ok := st.purchases[line.PurchaseID]; !ok {
		return domain.ErrPurchaseNotFound
	}

	st.purchaseLines[line.PurchaseID] = append(st.purchaseLines[line.PurchaseID], *line)

	return nil
}

// Update rewrites a purchase header.
func (r *PurchaseRepository) Update(_ context.Context, tx usecase.Transaction, purchase *domain.Purchase) error {
	st := stateOf(tx)

	if _, ok := st.purchases[purchase.ID]; !ok {
		return domain.ErrPurchaseNotFound
	}

	st.purchases[purchase.ID] = purchaseHeader(purchase)

	return nil
}

// GetByID retrieves a purchase with its lines.
func (r *PurchaseRepository) GetByID(_ context.Context, id string) (*domain.Purchase, error) {
	var (
		purchase *domain.Purchase
		err      error
	)

	r.store.read(func(st *state) {
		purchase, err = loadPurchase(st, id)
	})

	return purchase, err
}

// GetByIDForUpdate retrieves a purchase with its lines within a transaction.
func (r *PurchaseRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Purchase, error) {
	return loadPurchase(stateOf(tx), id)
}

// DeleteLines removes every line of a purchase.
func (r *PurchaseRepository) DeleteLines(_ context.Context, tx usecase.Transaction, purchaseID string) error {
	delete(stateOf(tx).purchaseLines, purchaseID)

	return nil
}

// Delete removes a purchase header.
func (r *PurchaseRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	st := stateOf(tx)

	if _, ok := st.purchases[id]; !ok {
		return domain.ErrPurchaseNotFound
	}

	delete(st.purchases, id)
	delete(st.purchaseLines, id)

	return nil
}

// List lists purchase headers, newest first.
func (r *PurchaseRepository) List(_ context.Context, limit, offset int) ([]*domain.Purchase, error) {
	var items []domain.Purchase

	r.store.read(func(st *state) {
		for _, p := range st.purchases {
			items = append(items, p)
		}
	})

	newestFirst(items, func(p domain.Purchase) (time.Time, string) { return p.PurchaseDate, p.ID })

	return toPointers(page(items, limit, offset)), nil
}

func purchaseHeader(p *domain.Purchase) domain.Purchase {
	h := *p
	h.Lines = nil

	return h
}

func loadPurchase(st *state, id string) (*domain.Purchase, error) {
	p, ok := st.purchases[id]
	if !ok {
		return nil, domain.ErrPurchaseNotFound
	}

	lines := st.purchaseLines[id]
	p.Lines = make([]*domain.PurchaseLine, 0, len(lines))
	for i := range lines {
		line := lines[i]
		p.Lines = append(p.Lines, &line)
	}

	return &p, nil
}
