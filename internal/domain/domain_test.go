package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestProduct_ValidateSale(t *testing.T) {
	tests := []struct {
		name        string
		stock       int64
		qty         int64
		expectError error
	}{
		{name: "enough stock", stock: 10, qty: 3},
		{name: "exact stock", stock: 3, qty: 3},
		{name: "more than stock", stock: 2, qty: 3, expectError: ErrInsufficientStock},
		{name: "zero quantity", stock: 2, qty: 0, expectError: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Name: "Widget", StockQuantity: tt.stock}

			err := p.ValidateSale(tt.qty)

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestNewSaleLine(t *testing.T) {
	line := NewSaleLine("l1", "s1", "p1", 3, decimal.NewFromInt(100), decimal.NewFromInt(60))

	if !line.Subtotal.Equal(decimal.NewFromInt(300)) {
		t.Errorf("subtotal = %s, want 300", line.Subtotal)
	}

	if !line.Profit.Equal(decimal.NewFromInt(120)) {
		t.Errorf("profit = %s, want 120", line.Profit)
	}
}

func TestSale_SetAmounts(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		paid      int64
		remaining int64
		status    SaleStatus
	}{
		{name: "unpaid", total: 300, paid: 0, remaining: 300, status: SaleStatusPending},
		{name: "partial", total: 300, paid: 100, remaining: 200, status: SaleStatusPartial},
		{name: "paid", total: 300, paid: 300, remaining: 0, status: SaleStatusPaid},
		{name: "overpaid", total: 300, paid: 350, remaining: -50, status: SaleStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sale{}
			s.SetAmounts(decimal.NewFromInt(tt.total), decimal.NewFromInt(tt.paid))

			if !s.RemainingAmount.Equal(decimal.NewFromInt(tt.remaining)) {
				t.Errorf("remaining = %s, want %d", s.RemainingAmount, tt.remaining)
			}

			if s.Status != tt.status {
				t.Errorf("status = %s, want %s", s.Status, tt.status)
			}
		})
	}
}

func TestInvoiceNumberFor(t *testing.T) {
	got := InvoiceNumberFor("01hzy3k7q8w9e0r1t2y3u4i5o6")
	if got != "INV-Y3U4I5O6" {
		t.Errorf("got %s", got)
	}

	if InvoiceNumberFor("abc") != "INV-ABC" {
		t.Errorf("short ids are used whole")
	}
}

func TestTraderTotals(t *testing.T) {
	totals := NewTraderTotals(decimal.Zero, decimal.Zero).
		AddSale(decimal.NewFromInt(300)).
		AddPayment(decimal.NewFromInt(100))

	if !totals.Balance.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("balance = %s, want 200", totals.Balance)
	}

	totals = totals.AddSale(decimal.NewFromInt(-300))
	if !totals.Balance.Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("balance = %s, want -100", totals.Balance)
	}

	if !totals.Consistent() {
		t.Fatal("derived totals must be consistent")
	}

	broken := TraderTotals{TotalSales: decimal.NewFromInt(1), Balance: decimal.NewFromInt(5)}
	if broken.Consistent() {
		t.Fatal("expected inconsistency to be detected")
	}
}
