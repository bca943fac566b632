package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
)

// ProductUseCase handles catalogue operations. Stock and cost only change
// through purchases and sales.
type ProductUseCase struct {
	productRepo ProductRepository
	idGen       IDGenerator
}

// NewProductUseCase creates a new ProductUseCase.
func NewProductUseCase(productRepo ProductRepository, idGen IDGenerator) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		idGen:       idGen,
	}
}

// CreateProductInput represents input for creating a product.
type CreateProductInput struct {
	Name      string
	Category  string
	UnitPrice decimal.Decimal
}

// CreateProduct creates a product with no stock and zero cost.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if err := domain.ValidateName("product name", input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateNonNegativeAmount("unit_price", input.UnitPrice); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:        uc.idGen.Generate(),
		Name:      strings.TrimSpace(input.Name),
		Category:  category,
		UnitPrice: input.UnitPrice,
		UnitCost:  decimal.Zero,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProduct retrieves a product by ID.
func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return uc.productRepo.GetByID(ctx, id)
}

// UpdateProductInput represents input for updating a product's catalogue
// fields. A nil Active leaves the flag unchanged.
type UpdateProductInput struct {
	ProductID string
	Name      string
	Category  string
	UnitPrice decimal.Decimal
	Active    *bool
}

// UpdateProduct rewrites name, category, unit price and the active flag.
// Quantity and unit cost are left to purchases and sales.
func (uc *ProductUseCase) UpdateProduct(ctx context.Context, input UpdateProductInput) (*domain.Product, error) {
	if err := domain.ValidateName("product name", input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateNonNegativeAmount("unit_price", input.UnitPrice); err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Category = category
	product.UnitPrice = input.UnitPrice
	if input.Active != nil {
		product.Active = *input.Active
	}
	product.UpdatedAt = time.Now().UTC()

	if err := uc.productRepo.UpdateDetails(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct removes a product no sale or purchase line references.
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id string) error {
	return uc.productRepo.Delete(ctx, id)
}

// ListProducts lists products with pagination.
func (uc *ProductUseCase) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.productRepo.List(ctx, limit, offset)
}
