// Package memory provides in-process implementations of the repository
// interfaces. Transactions are serialized: Begin takes an exclusive write
// slot and works on a private copy of the data, which Commit publishes and
// Rollback discards. Readers outside a transaction always see committed data.
package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// ErrTxClosed is returned when a finished transaction is used again.
var ErrTxClosed = errors.New("memory: transaction already closed")

// Store holds all committed data.
type Store struct {
	writer chan struct{}
	mu     sync.RWMutex
	data   *state
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		writer: make(chan struct{}, 1),
		data:   newState(),
	}
}

type state struct {
	products      map[string]domain.Product
	traders       map[string]domain.Trader
	sales         map[string]domain.Sale
	saleLines     map[string][]domain.SaleLine
	purchases     map[string]domain.Purchase
	purchaseLines map[string][]domain.PurchaseLine
	payments      map[string]domain.Payment
	entries       []domain.TraderFinancialEntry
	expenses      map[string]domain.Expense
	seq           int64
}

func newState() *state {
	return &state{
		products:      map[string]domain.Product{},
		traders:       map[string]domain.Trader{},
		sales:         map[string]domain.Sale{},
		saleLines:     map[string][]domain.SaleLine{},
		purchases:     map[string]domain.Purchase{},
		purchaseLines: map[string][]domain.PurchaseLine{},
		payments:      map[string]domain.Payment{},
		expenses:      map[string]domain.Expense{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:      maps.Clone(s.products),
		traders:       maps.Clone(s.traders),
		sales:         maps.Clone(s.sales),
		saleLines:     make(map[string][]domain.SaleLine, len(s.saleLines)),
		purchases:     maps.Clone(s.purchases),
		purchaseLines: make(map[string][]domain.PurchaseLine, len(s.purchaseLines)),
		payments:      maps.Clone(s.payments),
		entries:       slices.Clone(s.entries),
		expenses:      maps.Clone(s.expenses),
		seq:           s.seq,
	}

	for id, lines := range s.saleLines {
		c.saleLines[id] = slices.Clone(lines)
	}

	for id, lines := range s.purchaseLines {
		c.purchaseLines[id] = slices.Clone(lines)
	}

	return c
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.writer <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.writer
}

// read runs fn against committed data.
func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fn(s.data)
}

// write runs fn against committed data as its own transaction.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.data)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin waits for the write slot and starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := m.store.acquire(ctx); err != nil {
		return nil, err
	}

	var work *state
	m.store.read(func(st *state) {
		work = st.clone()
	})

	return &Tx{store: m.store, state: work}, nil
}

// Tx is a serialized in-memory transaction.
type Tx struct {
	store *Store
	state *state
	done  bool
}

// Commit publishes the transaction's changes. A cancelled context rolls back.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxClosed
	}

	if err := ctx.Err(); err != nil {
		t.finish()
		return err
	}

	t.store.mu.Lock()
	t.store.data = t.state
	t.store.mu.Unlock()

	t.finish()

	return nil
}

// Rollback discards the transaction's changes.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return ErrTxClosed
	}

	t.finish()

	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.store.release()
}

// stateOf unwraps the working state of a transaction.
func stateOf(tx usecase.Transaction) *state {
	return tx.(*Tx).state
}

// newestFirst orders by creation time, then ID, descending.
func newestFirst[T any](items []T, key func(T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return items[offset:end]
}
