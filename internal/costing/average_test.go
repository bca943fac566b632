package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestAbsorb(t *testing.T) {
	tests := []struct {
		name    string
		oldQty  int64
		oldCost string
		addQty  int64
		addCost string
		want    string
	}{
		{name: "empty stock takes incoming cost", oldQty: 0, oldCost: "0", addQty: 10, addCost: "5", want: "5"},
		{name: "equal lots average", oldQty: 10, oldCost: "5", addQty: 10, addCost: "15", want: "10"},
		{name: "weighted by quantity", oldQty: 30, oldCost: "2", addQty: 10, addCost: "6", want: "3"},
		{name: "zero total quantity", oldQty: 0, oldCost: "7", addQty: 0, addCost: "9", want: "0"},
		{name: "negative cost treated as zero", oldQty: 10, oldCost: "-4", addQty: 10, addCost: "8", want: "4"},
		{name: "rounded to four places", oldQty: 1, oldCost: "1", addQty: 2, addCost: "0", want: "0.3333"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Absorb(tt.oldQty, d(tt.oldCost), tt.addQty, d(tt.addCost))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestReverse(t *testing.T) {
	tests := []struct {
		name       string
		oldQty     int64
		oldCost    string
		removeQty  int64
		removeCost string
		want       string
	}{
		{name: "undo second lot", oldQty: 20, oldCost: "10", removeQty: 10, removeCost: "15", want: "5"},
		{name: "remove everything", oldQty: 10, oldCost: "5", removeQty: 10, removeCost: "5", want: "0"},
		{name: "remove more than on hand", oldQty: 5, oldCost: "5", removeQty: 8, removeCost: "5", want: "0"},
		{name: "value floored at zero", oldQty: 10, oldCost: "1", removeQty: 5, removeCost: "50", want: "0"},
		{name: "nothing removed", oldQty: 10, oldCost: "4.5", removeQty: 0, removeCost: "0", want: "4.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reverse(tt.oldQty, d(tt.oldCost), tt.removeQty, d(tt.removeCost))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
			assert.False(t, got.IsNegative())
		})
	}
}

func TestAbsorbThenReverseRoundTrip(t *testing.T) {
	cost := Absorb(0, decimal.Zero, 10, d("5"))
	cost = Absorb(10, cost, 10, d("15"))
	assert.True(t, cost.Equal(d("10")))

	cost = Reverse(20, cost, 10, d("15"))
	assert.True(t, cost.Equal(d("5")))
	assert.Equal(t, int64(10), RemainingQuantity(20, 10))
	assert.Equal(t, int64(0), RemainingQuantity(3, 10))
}

func TestAggregates(t *testing.T) {
	old := Aggregates{}
	old.Add("b", 4, d("2"))
	old.Add("b", 6, d("7"))

	added := Aggregates{}
	added.Add("a", 1, d("3"))

	assert.Equal(t, int64(10), old["b"].Quantity)
	assert.True(t, old["b"].AverageCost().Equal(d("5")))
	assert.True(t, Aggregate{}.AverageCost().IsZero())
	assert.Equal(t, []string{"a", "b"}, ProductIDs(old, added))
}
