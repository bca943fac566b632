package dto

import (
	"time"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// Money amounts are rendered as decimal strings.

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	StockQuantity int64     `json:"stock_quantity"`
	UnitPrice     string    `json:"unit_price"`
	UnitCost      string    `json:"unit_cost"`
	StockValue    string    `json:"stock_value"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductFromDomain converts a domain product to a response.
func ProductFromDomain(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		UnitPrice:     p.UnitPrice.String(),
		UnitCost:      p.UnitCost.String(),
		StockValue:    p.StockValue().String(),
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ProductsFromDomain converts domain products to responses.
func ProductsFromDomain(products []*domain.Product) []*ProductResponse {
	result := make([]*ProductResponse, len(products))
	for i, p := range products {
		result[i] = ProductFromDomain(p)
	}
	return result
}

// TotalsResponse is a trader's running position.
type TotalsResponse struct {
	TotalSales    string `json:"total_sales"`
	TotalPayments string `json:"total_payments"`
	Balance       string `json:"balance"`
}

// TotalsFromDomain converts trader totals to a response.
func TotalsFromDomain(t domain.TraderTotals) TotalsResponse {
	return TotalsResponse{
		TotalSales:    t.TotalSales.String(),
		TotalPayments: t.TotalPayments.String(),
		Balance:       t.Balance.String(),
	}
}

// TraderResponse represents a trader in API responses.
type TraderResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	TotalsResponse
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TraderFromDomain converts a domain trader to a response.
func TraderFromDomain(t *domain.Trader) *TraderResponse {
	return &TraderResponse{
		ID:             t.ID,
		Name:           t.Name,
		Phone:          t.Phone,
		Address:        t.Address,
		TotalsResponse: TotalsFromDomain(t.Totals()),
		Active:         t.Active,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// TradersFromDomain converts domain traders to responses.
func TradersFromDomain(traders []*domain.Trader) []*TraderResponse {
	result := make([]*TraderResponse, len(traders))
	for i, t := range traders {
		result[i] = TraderFromDomain(t)
	}
	return result
}

// SaleLineResponse is one line of a sale.
type SaleLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	UnitCost  string `json:"unit_cost"`
	Subtotal  string `json:"subtotal"`
	Profit    string `json:"profit"`
}

// SaleResponse represents a sale in API responses.
type SaleResponse struct {
	ID              string              `json:"id"`
	InvoiceNumber   string              `json:"invoice_number"`
	TraderID        string              `json:"trader_id"`
	SaleDate        time.Time           `json:"sale_date"`
	TotalAmount     string              `json:"total_amount"`
	PaidAmount      string              `json:"paid_amount"`
	RemainingAmount string              `json:"remaining_amount"`
	Status          string              `json:"status"`
	Lines           []*SaleLineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// SaleFromDomain converts a domain sale to a response.
func SaleFromDomain(s *domain.Sale) *SaleResponse {
	resp := &SaleResponse{
		ID:              s.ID,
		InvoiceNumber:   s.InvoiceNumber,
		TraderID:        s.TraderID,
		SaleDate:        s.SaleDate,
		TotalAmount:     s.TotalAmount.String(),
		PaidAmount:      s.PaidAmount.String(),
		RemainingAmount: s.RemainingAmount.String(),
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}

	for _, l := range s.Lines {
		resp.Lines = append(resp.Lines, &SaleLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.String(),
			UnitCost:  l.UnitCost.String(),
			Subtotal:  l.Subtotal.String(),
			Profit:    l.Profit.String(),
		})
	}

	return resp
}

// SalesFromDomain converts domain sales to responses.
func SalesFromDomain(sales []*domain.Sale) []*SaleResponse {
	result := make([]*SaleResponse, len(sales))
	for i, s := range sales {
		result[i] = SaleFromDomain(s)
	}
	return result
}

// SaleResultResponse is a committed sale with the trader's new position.
type SaleResultResponse struct {
	Sale   *SaleResponse  `json:"sale"`
	Trader TotalsResponse `json:"trader"`
}

// SaleResultFromUseCase converts a sale result to a response.
func SaleResultFromUseCase(r *usecase.SaleResult) *SaleResultResponse {
	return &SaleResultResponse{
		Sale:   SaleFromDomain(r.Sale),
		Trader: TotalsFromDomain(r.Totals),
	}
}

// DeleteSaleResponse reports the trader's position after a sale is removed.
type DeleteSaleResponse struct {
	SaleID   string         `json:"sale_id"`
	TraderID string         `json:"trader_id"`
	Trader   TotalsResponse `json:"trader"`
}

// DeleteSaleFromUseCase converts a delete result to a response.
func DeleteSaleFromUseCase(r *usecase.DeleteSaleResult) *DeleteSaleResponse {
	return &DeleteSaleResponse{
		SaleID:   r.SaleID,
		TraderID: r.TraderID,
		Trader:   TotalsFromDomain(r.Totals),
	}
}

// PurchaseLineResponse is one line of a purchase.
type PurchaseLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitCost  string `json:"unit_cost"`
	Subtotal  string `json:"subtotal"`
}

// PurchaseResponse represents a purchase in API responses.
type PurchaseResponse struct {
	ID           string                  `json:"id"`
	SupplierName string                  `json:"supplier_name"`
	PurchaseDate time.Time               `json:"purchase_date"`
	TotalAmount  string                  `json:"total_amount"`
	Notes        string                  `json:"notes,omitempty"`
	Lines        []*PurchaseLineResponse `json:"lines,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// PurchaseFromDomain converts a domain purchase to a response.
func PurchaseFromDomain(p *domain.Purchase) *PurchaseResponse {
	resp := &PurchaseResponse{
		ID:           p.ID,
		SupplierName: p.SupplierName,
		PurchaseDate: p.PurchaseDate,
		TotalAmount:  p.TotalAmount.String(),
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	for _, l := range p.Lines {
		resp.Lines = append(resp.Lines, &PurchaseLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost.String(),
			Subtotal:  l.Subtotal.String(),
		})
	}

	return resp
}

// PurchasesFromDomain converts domain purchases to responses.
func PurchasesFromDomain(purchases []*domain.Purchase) []*PurchaseResponse {
	result := make([]*PurchaseResponse, len(purchases))
	for i, p := range purchases {
		result[i] = PurchaseFromDomain(p)
	}
	return result
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID          string    `json:"id"`
	TraderID    string    `json:"trader_id"`
	SaleID      string    `json:"sale_id,omitempty"`
	PaymentDate time.Time `json:"payment_date"`
	Amount      string    `json:"amount"`
	Note        string    `json:"note,omitempty"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:          p.ID,
		TraderID:    p.TraderID,
		SaleID:      p.SaleID,
		PaymentDate: p.PaymentDate,
		Amount:      p.Amount.String(),
		Note:        p.Note,
		Source:      string(p.Source),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// PaymentResultResponse is a committed payment with the trader's new position.
type PaymentResultResponse struct {
	Payment *PaymentResponse `json:"payment"`
	Trader  TotalsResponse   `json:"trader"`
}

// PaymentResultFromUseCase converts a payment result to a response.
func PaymentResultFromUseCase(r *usecase.PaymentResult) *PaymentResultResponse {
	return &PaymentResultResponse{
		Payment: PaymentFromDomain(r.Payment),
		Trader:  TotalsFromDomain(r.Totals),
	}
}

// FinancialEntryResponse is one row of a trader's ledger history.
type FinancialEntryResponse struct {
	ID              string    `json:"id"`
	Seq             int64     `json:"seq"`
	TraderID        string    `json:"trader_id"`
	SaleID          string    `json:"sale_id,omitempty"`
	PaymentID       string    `json:"payment_id,omitempty"`
	Type            string    `json:"type"`
	SaleAmount      string    `json:"sale_amount"`
	PaymentAmount   string    `json:"payment_amount"`
	RemainingAmount string    `json:"remaining_amount"`
	TotalsResponse
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FinancialEntryFromDomain converts a ledger entry to a response.
func FinancialEntryFromDomain(e *domain.TraderFinancialEntry) *FinancialEntryResponse {
	return &FinancialEntryResponse{
		ID:              e.ID,
		Seq:             e.Seq,
		TraderID:        e.TraderID,
		SaleID:          e.SaleID,
		PaymentID:       e.PaymentID,
		Type:            string(e.Type),
		SaleAmount:      e.SaleAmount.String(),
		PaymentAmount:   e.PaymentAmount.String(),
		RemainingAmount: e.RemainingAmount.String(),
		TotalsResponse:  TotalsFromDomain(e.Totals()),
		Description:     e.Description,
		CreatedAt:       e.CreatedAt,
	}
}

// FinancialEntriesFromDomain converts ledger entries to responses.
func FinancialEntriesFromDomain(entries []*domain.TraderFinancialEntry) []*FinancialEntryResponse {
	result := make([]*FinancialEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = FinancialEntryFromDomain(e)
	}
	return result
}

// TraderBalanceResponse is the read-only balance projection.
type TraderBalanceResponse struct {
	TraderID string `json:"trader_id"`
	Name     string `json:"name"`
	TotalsResponse
	LastEntry *FinancialEntryResponse `json:"last_entry,omitempty"`
	AsOf      time.Time               `json:"as_of"`
}

// TraderBalanceFromUseCase converts a balance projection to a response.
func TraderBalanceFromUseCase(b *usecase.TraderBalance) *TraderBalanceResponse {
	resp := &TraderBalanceResponse{
		TraderID: b.TraderID,
		Name:     b.Name,
		TotalsResponse: TotalsFromDomain(domain.TraderTotals{
			TotalSales:    b.TotalSales,
			TotalPayments: b.TotalPayments,
			Balance:       b.Balance,
		}),
		AsOf: b.AsOf,
	}

	if b.LastEntry != nil {
		resp.LastEntry = FinancialEntryFromDomain(b.LastEntry)
	}

	return resp
}

// ReconciliationResponse reports recorded versus replayed totals.
type ReconciliationResponse struct {
	TraderID     string          `json:"trader_id"`
	Recorded     TotalsResponse  `json:"recorded"`
	Ledger       *TotalsResponse `json:"ledger,omitempty"`
	Replayed     TotalsResponse  `json:"replayed"`
	Difference   string          `json:"difference"`
	IsReconciled bool            `json:"is_reconciled"`
	CheckedAt    time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to a response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	resp := &ReconciliationResponse{
		TraderID:     r.TraderID,
		Recorded:     TotalsFromDomain(r.Recorded),
		Replayed:     TotalsFromDomain(r.Replayed),
		Difference:   r.Difference.String(),
		IsReconciled: r.IsReconciled,
		CheckedAt:    r.CheckedAt,
	}

	if r.Ledger != nil {
		ledger := TotalsFromDomain(*r.Ledger)
		resp.Ledger = &ledger
	}

	return resp
}

// ReconciliationReportResponse summarises a pass over every trader.
type ReconciliationReportResponse struct {
	TotalTraders      int                       `json:"total_traders"`
	ReconciledTraders int                       `json:"reconciled_traders"`
	Discrepancies     []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt         time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a report to a response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalTraders:      r.TotalTraders,
		ReconciledTraders: r.ReconciledTraders,
		Discrepancies:     make([]*ReconciliationResponse, len(r.Discrepancies)),
		CheckedAt:         r.CheckedAt,
	}

	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromUseCase(d)
	}

	return resp
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string    `json:"id"`
	ExpenseDate time.Time `json:"expense_date"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		ExpenseDate: e.ExpenseDate,
		Description: e.Description,
		Amount:      e.Amount.String(),
		CreatedAt:   e.CreatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// DashboardStatsResponse summarises the business.
type DashboardStatsResponse struct {
	TotalProducts  int64  `json:"total_products"`
	TotalTraders   int64  `json:"total_traders"`
	TotalSales     string `json:"total_sales"`
	TotalPurchases string `json:"total_purchases"`
	TotalExpenses  string `json:"total_expenses"`
	GrossProfit    string `json:"gross_profit"`
	NetProfit      string `json:"net_profit"`
	TotalDebts     string `json:"total_debts"`
	StockValue     string `json:"stock_value"`
}

// DashboardStatsFromDomain converts dashboard stats to a response.
func DashboardStatsFromDomain(s *domain.DashboardStats) *DashboardStatsResponse {
	return &DashboardStatsResponse{
		TotalProducts:  s.TotalProducts,
		TotalTraders:   s.TotalTraders,
		TotalSales:     s.TotalSales.String(),
		TotalPurchases: s.TotalPurchases.String(),
		TotalExpenses:  s.TotalExpenses.String(),
		GrossProfit:    s.GrossProfit.String(),
		NetProfit:      s.NetProfit.String(),
		TotalDebts:     s.TotalDebts.String(),
		StockValue:     s.StockValue.String(),
	}
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
