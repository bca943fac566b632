package memory

import (
	"context"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// FinancialEntryRepository implements usecase.FinancialEntryRepository.
type FinancialEntryRepository struct {
	store *Store
}

// NewFinancialEntryRepository creates a new FinancialEntryRepository.
func NewFinancialEntryRepository(store *Store) *FinancialEntryRepository {
	return &FinancialEntryRepository{store: store}
}

// Create appends an entry and assigns the next sequence number.
func (r *FinancialEntryRepository) Create(_ context.Context, tx usecase.Transaction, entry *domain.TraderFinancialEntry) error {
	st := stateOf(tx)

	st.seq++
	entry.Seq = st.seq
	st.entries = append(st.entries, *entry)

	return nil
}

// GetLatest returns the trader's most recent entry.
func (r *FinancialEntryRepository) GetLatest(_ context.Context, traderID string) (*domain.TraderFinancialEntry, error) {
	var (
		entry *domain.TraderFinancialEntry
		err   error
	)

	r.store.read(func(st *state) {
		entry, err = latestEntry(st, traderID)
	})

	return entry, err
}

// GetLatestTx returns the trader's most recent entry within a transaction.
func (r *FinancialEntryRepository) GetLatestTx(_ context.Context, tx usecase.Transaction, traderID string) (*domain.TraderFinancialEntry, error) {
	return latestEntry(stateOf(tx), traderID)
}

// ListByTrader lists a trader's entries, newest first.
func (r *FinancialEntryRepository) ListByTrader(_ context.Context, traderID string, limit, offset int) ([]*domain.TraderFinancialEntry, error) {
	var items []domain.TraderFinancialEntry

	r.store.read(func(st *state) {
		for i := len(st.entries) - 1; i >= 0; i-- {
			if st.entries[i].TraderID == traderID {
				items = append(items, st.entries[i])
			}
		}
	})

	return toPointers(page(items, limit, offset)), nil
}

func latestEntry(st *state, traderID string) (*domain.TraderFinancialEntry, error) {
	for i := len(st.entries) - 1; i >= 0; i-- {
		if st.entries[i].TraderID == traderID {
			e := st.entries[i]
			return &e, nil
		}
	}

	return nil, domain.ErrFinancialEntryNotFound
}
