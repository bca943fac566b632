// Package costing implements weighted-average inventory valuation.
//
// Quantities are whole units and costs are per-unit amounts. Absent or
// negative costs are treated as zero and no function returns a negative cost.
package costing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places kept on unit costs.
const Precision = 4

// Absorb returns the average unit cost after addQty units at addCost join
// oldQty units at oldCost. It returns zero when the combined quantity is not
// positive.
func Absorb(oldQty int64, oldCost decimal.Decimal, addQty int64, addCost decimal.Decimal) decimal.Decimal {
	totalQty := oldQty + addQty
	if totalQty <= 0 {
		return decimal.Zero
	}

	value := extended(oldQty, oldCost).Add(extended(addQty, addCost))

	return clamp(value.Div(decimal.NewFromInt(totalQty)))
}

// Reverse returns the average unit cost after removeQty units valued at
// removeCost are taken back out of oldQty units at oldCost. The remaining
// value and quantity are floored at zero.
func Reverse(oldQty int64, oldCost decimal.Decimal, removeQty int64, removeCost decimal.Decimal) decimal.Decimal {
	remainingQty := oldQty - removeQty
	if remainingQty <= 0 {
		return decimal.Zero
	}

	remainingValue := extended(oldQty, oldCost).Sub(extended(removeQty, removeCost))
	if remainingValue.IsNegative() {
		return decimal.Zero
	}

	return clamp(remainingValue.Div(decimal.NewFromInt(remainingQty)))
}

// RemainingQuantity floors oldQty-removeQty at zero.
func RemainingQuantity(oldQty, removeQty int64) int64 {
	if oldQty-removeQty < 0 {
		return 0
	}

	return oldQty - removeQty
}

func extended(qty int64, cost decimal.Decimal) decimal.Decimal {
	if qty <= 0 || cost.IsNegative() {
		return decimal.Zero
	}

	return cost.Mul(decimal.NewFromInt(qty))
}

func clamp(cost decimal.Decimal) decimal.Decimal {
	if cost.IsNegative() {
		return decimal.Zero
	}

	return cost.Round(Precision)
}

// Aggregate is the combined quantity and value of several lines of one product.
type Aggregate struct {
	Quantity int64
	Value    decimal.Decimal
}

// AverageCost returns Value/Quantity, or zero for an empty aggregate.
func (a Aggregate) AverageCost() decimal.Decimal {
	if a.Quantity <= 0 {
		return decimal.Zero
	}

	return a.Value.Div(decimal.NewFromInt(a.Quantity))
}

// Aggregates groups lines by product ID.
type Aggregates map[string]Aggregate

// Add folds one line into the aggregate for productID.
func (a Aggregates) Add(productID string, qty int64, unitCost decimal.Decimal) {
	agg := a[productID]
	agg.Quantity += qty
	agg.Value = agg.Value.Add(extended(qty, unitCost))
	a[productID] = agg
}

// ProductIDs returns the union of product IDs in the given aggregates, sorted.
func ProductIDs(groups ...Aggregates) []string {
	seen := make(map[string]struct{})
	for _, g := range groups {
		for id := range g {
			seen[id] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}
