package domain

// SaleFilter narrows sale listings.
type SaleFilter struct {
	TraderID string
	Limit    int
	Offset   int
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	TraderID string
	SaleID   string
	Limit    int
	Offset   int
}
