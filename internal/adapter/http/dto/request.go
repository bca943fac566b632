package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/usecase"
)

// SaleLineRequest is one product line of a sale.
type SaleLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest represents a request to record a sale.
type CreateSaleRequest struct {
	TraderID   string            `json:"trader_id"`
	SaleDate   *time.Time        `json:"sale_date,omitempty"`
	PaidAmount decimal.Decimal   `json:"paid_amount"`
	Lines      []SaleLineRequest `json:"lines"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateSaleRequest) ToUseCaseInput() usecase.CreateSaleInput {
	return usecase.CreateSaleInput{
		SaleDate:   r.SaleDate,
		TraderID:   r.TraderID,
		PaidAmount: r.PaidAmount,
		Lines:      saleLines(r.Lines),
	}
}

// UpdateSaleRequest replaces a sale's trader, lines and paid amount.
type UpdateSaleRequest CreateSaleRequest

// ToUseCaseInput converts to use case input for the sale with saleID.
func (r *UpdateSaleRequest) ToUseCaseInput(saleID string) usecase.UpdateSaleInput {
	return usecase.UpdateSaleInput{
		SaleDate:   r.SaleDate,
		SaleID:     saleID,
		TraderID:   r.TraderID,
		PaidAmount: r.PaidAmount,
		Lines:      saleLines(r.Lines),
	}
}

func saleLines(lines []SaleLineRequest) []usecase.SaleLineInput {
	out := make([]usecase.SaleLineInput, len(lines))
	for i, l := range lines {
		out[i] = usecase.SaleLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return out
}

// PurchaseLineRequest is one line of a purchase. Either ProductID names an
// existing product or ProductName creates a new one.
type PurchaseLineRequest struct {
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Category    string          `json:"category,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseRequest represents a request to record a purchase.
type CreatePurchaseRequest struct {
	SupplierName string                `json:"supplier_name"`
	PurchaseDate *time.Time            `json:"purchase_date,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	Lines        []PurchaseLineRequest `json:"lines"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePurchaseRequest) ToUseCaseInput() usecase.CreatePurchaseInput {
	return usecase.CreatePurchaseInput{
		PurchaseDate: r.PurchaseDate,
		SupplierName: r.SupplierName,
		Notes:        r.Notes,
		Lines:        purchaseLines(r.Lines),
	}
}

// UpdatePurchaseRequest replaces a purchase's header and lines.
type UpdatePurchaseRequest CreatePurchaseRequest

// ToUseCaseInput converts to use case input for the purchase with purchaseID.
func (r *UpdatePurchaseRequest) ToUseCaseInput(purchaseID string) usecase.UpdatePurchaseInput {
	return usecase.UpdatePurchaseInput{
		PurchaseDate: r.PurchaseDate,
		PurchaseID:   purchaseID,
		SupplierName: r.SupplierName,
		Notes:        r.Notes,
		Lines:        purchaseLines(r.Lines),
	}
}

func purchaseLines(lines []PurchaseLineRequest) []usecase.PurchaseLineInput {
	out := make([]usecase.PurchaseLineInput, len(lines))
	for i, l := range lines {
		out[i] = usecase.PurchaseLineInput{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Category:    l.Category,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			UnitPrice:   l.UnitPrice,
		}
	}
	return out
}

// CreatePaymentRequest records money received from a trader.
type CreatePaymentRequest struct {
	TraderID    string          `json:"trader_id"`
	SaleID      string          `json:"sale_id,omitempty"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePaymentRequest) ToUseCaseInput() usecase.CreatePaymentInput {
	return usecase.CreatePaymentInput{
		PaymentDate: r.PaymentDate,
		TraderID:    r.TraderID,
		SaleID:      r.SaleID,
		Amount:      r.Amount,
		Note:        r.Note,
	}
}

// UpdatePaymentRequest changes a payment. An empty sale_id moves it onto the
// trader's account.
type UpdatePaymentRequest struct {
	SaleID      string          `json:"sale_id,omitempty"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input for the payment with paymentID.
func (r *UpdatePaymentRequest) ToUseCaseInput(paymentID string) usecase.UpdatePaymentInput {
	return usecase.UpdatePaymentInput{
		PaymentDate: r.PaymentDate,
		PaymentID:   paymentID,
		SaleID:      r.SaleID,
		Amount:      r.Amount,
		Note:        r.Note,
	}
}

// CreateTraderRequest represents a request to register a trader.
type CreateTraderRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTraderRequest) ToUseCaseInput() usecase.CreateTraderInput {
	return usecase.CreateTraderInput{
		Name:    r.Name,
		Phone:   r.Phone,
		Address: r.Address,
	}
}

// CreateProductRequest represents a request to add a catalogue product.
type CreateProductRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateProductRequest) ToUseCaseInput() usecase.CreateProductInput {
	return usecase.CreateProductInput{
		Name:      r.Name,
		Category:  r.Category,
		UnitPrice: r.UnitPrice,
	}
}

// CreateExpenseRequest records an operating expense.
type CreateExpenseRequest struct {
	ExpenseDate *time.Time      `json:"expense_date,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput() usecase.CreateExpenseInput {
	return usecase.CreateExpenseInput{
		ExpenseDate: r.ExpenseDate,
		Description: r.Description,
		Amount:      r.Amount,
	}
}

// UpdateTraderRequest rewrites a trader's contact fields. Active is left
// unchanged when omitted.
type UpdateTraderRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Active  *bool  `json:"active,omitempty"`
}

// ToUseCaseInput converts to use case input for the trader with traderID.
func (r *UpdateTraderRequest) ToUseCaseInput(traderID string) usecase.UpdateTraderInput {
	return usecase.UpdateTraderInput{
		TraderID: traderID,
		Name:     r.Name,
		Phone:    r.Phone,
		Address:  r.Address,
		Active:   r.Active,
	}
}

// UpdateProductRequest rewrites a product's catalogue fields. Active is
// left unchanged when omitted.
type UpdateProductRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Active    *bool           `json:"active,omitempty"`
}

// ToUseCaseInput converts to use case input for the product with productID.
func (r *UpdateProductRequest) ToUseCaseInput(productID string) usecase.UpdateProductInput {
	return usecase.UpdateProductInput{
		ProductID: productID,
		Name:      r.Name,
		Category:  r.Category,
		UnitPrice: r.UnitPrice,
		Active:    r.Active,
	}
}

// UpdateExpenseRequest corrects a recorded expense.
type UpdateExpenseRequest CreateExpenseRequest

// ToUseCaseInput converts to use case input for the expense with expenseID.
func (r *UpdateExpenseRequest) ToUseCaseInput(expenseID string) usecase.UpdateExpenseInput {
	return usecase.UpdateExpenseInput{
		ExpenseID:   expenseID,
		ExpenseDate: r.ExpenseDate,
		Description: r.Description,
		Amount:      r.Amount,
	}
}
