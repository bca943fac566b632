package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
)

// ledgerEvent is one sale or payment movement to post against a trader.
type ledgerEvent struct {
	Type          domain.EntryType
	SaleID        string
	PaymentID     string
	SaleAmount    decimal.Decimal
	PaymentAmount decimal.Decimal
	// Remaining is the sale's outstanding amount after the event, or nil to
	// record the trader's new balance.
	Remaining   *decimal.Decimal
	Description string
}

// traderLedger keeps the trader cache and the financial entry log in step.
type traderLedger struct {
	traderRepo TraderRepository
	entryRepo  FinancialEntryRepository
	idGen      IDGenerator
}

// trailingTotals returns the trader's position before the current event:
// the latest ledger snapshot, or the cached trader fields when the trader
// has no entries yet.
func (l traderLedger) trailingTotals(ctx context.Context, tx Transaction, trader *domain.Trader) (domain.TraderTotals, error) {
	latest, err := l.entryRepo.GetLatestTx(ctx, tx, trader.ID)
	if err != nil {
		if errors.Is(err, domain.ErrFinancialEntryNotFound) {
			return domain.NewTraderTotals(trader.TotalSales, trader.TotalPayments), nil
		}

		return domain.TraderTotals{}, err
	}

	return domain.NewTraderTotals(latest.TotalSales, latest.TotalPayments), nil
}

// post applies ev to a locked trader, writes the cache and appends a snapshot.
func (l traderLedger) post(ctx context.Context, tx Transaction, trader *domain.Trader, ev ledgerEvent, now time.Time) (domain.TraderTotals, error) {
	totals, err := l.trailingTotals(ctx, tx, trader)
	if err != nil {
		return domain.TraderTotals{}, err
	}

	totals = totals.AddSale(ev.SaleAmount).AddPayment(ev.PaymentAmount)

	if err := l.traderRepo.UpdateTotals(ctx, tx, trader.ID, totals, now); err != nil {
		return domain.TraderTotals{}, err
	}
	trader.Apply(totals, now)

	remaining := totals.Balance
	if ev.Remaining != nil {
		remaining = *ev.Remaining
	}

	entry := &domain.TraderFinancialEntry{
		ID:              l.idGen.Generate(),
		TraderID:        trader.ID,
		SaleID:          ev.SaleID,
		PaymentID:       ev.PaymentID,
		Type:            ev.Type,
		SaleAmount:      ev.SaleAmount,
		PaymentAmount:   ev.PaymentAmount,
		Balance:         totals.Balance,
		TotalSales:      totals.TotalSales,
		TotalPayments:   totals.TotalPayments,
		RemainingAmount: remaining,
		Description:     ev.Description,
		CreatedAt:       now,
	}

	if err := l.entryRepo.Create(ctx, tx, entry); err != nil {
		return domain.TraderTotals{}, err
	}

	return totals, nil
}

// lockTraders locks the given traders in sorted order and returns them by ID.
func lockTraders(ctx context.Context, tx Transaction, repo TraderRepository, ids ...string) (map[string]*domain.Trader, error) {
	ids = sortedUnique(ids)

	traders, err := repo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(traders) != len(ids) {
		return nil, domain.ErrTraderNotFound
	}

	byID := make(map[string]*domain.Trader, len(traders))
	for _, t := range traders {
		byID[t.ID] = t
	}

	return byID, nil
}

// lockProducts locks the given products in sorted order and returns them by ID.
func lockProducts(ctx context.Context, tx Transaction, repo ProductRepository, ids []string) (map[string]*domain.Product, error) {
	ids = sortedUnique(ids)
	if len(ids) == 0 {
		return map[string]*domain.Product{}, nil
	}

	products, err := repo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
	}

	return byID, nil
}

// writeStock persists quantity and cost for every product in the map.
func writeStock(ctx context.Context, tx Transaction, repo ProductRepository, products map[string]*domain.Product, now time.Time) error {
	ids := make([]string, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := products[id]
		p.UpdatedAt = now

		if err := repo.UpdateStock(ctx, tx, p.ID, p.StockQuantity, p.UnitCost, now); err != nil {
			return err
		}
	}

	return nil
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

// balanceCache is a read-through cache of trader balances. A nil cache
// disables caching.
type balanceCache struct {
	cache Cache
	ttl   time.Duration
}

func newBalanceCache(cache Cache, ttl time.Duration) balanceCache {
	if ttl <= 0 {
		ttl = DefaultBalanceCacheTTL
	}

	return balanceCache{cache: cache, ttl: ttl}
}

func balanceKey(traderID string) string {
	return "trader-balance:" + traderID
}

func (c balanceCache) get(ctx context.Context, traderID string) (*TraderBalance, bool) {
	if c.cache == nil {
		return nil, false
	}

	data, err := c.cache.Get(ctx, balanceKey(traderID))
	if err != nil || len(data) == 0 {
		return nil, false
	}

	var balance TraderBalance
	if err := json.Unmarshal(data, &balance); err != nil {
		return nil, false
	}

	return &balance, true
}

func (c balanceCache) set(ctx context.Context, balance *TraderBalance) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(balance)
	if err != nil {
		return
	}

	_ = c.cache.Set(ctx, balanceKey(balance.TraderID), data, c.ttl)
}

// invalidate drops cached balances. Failures are ignored: entries expire on their own.
func (c balanceCache) invalidate(ctx context.Context, traderIDs ...string) {
	if c.cache == nil {
		return
	}

	for _, id := range traderIDs {
		_ = c.cache.Delete(ctx, balanceKey(id))
	}
}
