package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
	"github.com/iho/makhzone/internal/usecase/mocks"
)

func TestSaleUseCase_CreateSale(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	product := env.stockedProduct(t, "Widget", 10, "60")

	result, err := env.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID:   trader.ID,
		PaidAmount: dec("100"),
		Lines: []usecase.SaleLineInput{
			{ProductID: product.ID, Quantity: 3, UnitPrice: dec("100")},
		},
	})
	require.NoError(t, err)

	sale := result.Sale
	requireDecimal(t, "300", sale.TotalAmount)
	requireDecimal(t, "100", sale.PaidAmount)
	requireDecimal(t, "200", sale.RemainingAmount)
	requireDecimal(t, "120", sale.Profit())
	assert.Equal(t, domain.SaleStatusPartial, sale.Status)
	assert.Equal(t, domain.InvoiceNumberFor(sale.ID), sale.InvoiceNumber)

	require.Len(t, sale.Lines, 1)
	requireDecimal(t, "60", sale.Lines[0].UnitCost)

	// Selling draws stock without moving the average cost.
	p := env.product(t, product.ID)
	assert.Equal(t, int64(7), p.StockQuantity)
	requireDecimal(t, "60", p.UnitCost)

	requireDecimal(t, "300", result.Totals.TotalSales)
	requireDecimal(t, "100", result.Totals.TotalPayments)
	requireDecimal(t, "200", result.Totals.Balance)

	// The down payment is recorded against the sale.
	payments, err := env.payments.ListPayments(ctx, domain.PaymentFilter{SaleID: sale.ID})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.PaymentSourceSale, payments[0].Source)
	requireDecimal(t, "100", payments[0].Amount)

	entries, err := env.traders.ListFinancialEntries(ctx, trader.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EntryTypeSale, entries[0].Type)
	requireDecimal(t, "300", entries[0].SaleAmount)
	requireDecimal(t, "100", entries[0].PaymentAmount)
	requireDecimal(t, "200", entries[0].Balance)
	requireDecimal(t, "200", entries[0].RemainingAmount)

	env.requireReconciled(t, trader.ID)
}

func TestSaleUseCase_CreateSale_NoPayment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	product := env.stockedProduct(t, "Widget", 5, "10")

	result, err := env.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID: trader.ID,
		Lines:    []usecase.SaleLineInput{{ProductID: product.ID, Quantity: 5, UnitPrice: dec("12.5")}},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SaleStatusPending, result.Sale.Status)
	requireDecimal(t, "62.5", result.Totals.Balance)
	assert.Equal(t, int64(0), env.product(t, product.ID).StockQuantity)

	payments, err := env.payments.ListPayments(ctx, domain.PaymentFilter{SaleID: result.Sale.ID})
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestSaleUseCase_CreateSale_InsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	plenty := env.stockedProduct(t, "Plenty", 50, "1")
	scarce := env.stockedProduct(t, "Scarce", 2, "1")

	_, err := env.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID:   trader.ID,
		PaidAmount: dec("5"),
		Lines: []usecase.SaleLineInput{
			{ProductID: plenty.ID, Quantity: 10, UnitPrice: dec("2")},
			{ProductID: scarce.ID, Quantity: 3, UnitPrice: dec("2")},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(50), env.product(t, plenty.ID).StockQuantity)
	assert.Equal(t, int64(2), env.product(t, scarce.ID).StockQuantity)

	sales, err := env.sales.ListSales(ctx, domain.SaleFilter{TraderID: trader.ID})
	require.NoError(t, err)
	assert.Empty(t, sales)

	payments, err := env.payments.ListPayments(ctx, domain.PaymentFilter{TraderID: trader.ID})
	require.NoError(t, err)
	assert.Empty(t, payments)

	balance, err := env.traders.GetTraderBalance(ctx, trader.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", balance.Balance)
	assert.Nil(t, balance.LastEntry)
}

func TestSaleUseCase_CreateSale_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.CreateSaleInput
	}{
		{
			name:  "missing trader",
			input: usecase.CreateSaleInput{Lines: []usecase.SaleLineInput{{ProductID: "p", Quantity: 1, UnitPrice: dec("1")}}},
		},
		{
			name:  "no lines",
			input: usecase.CreateSaleInput{TraderID: "t"},
		},
		{
			name:  "zero quantity",
			input: usecase.CreateSaleInput{TraderID: "t", Lines: []usecase.SaleLineInput{{ProductID: "p", Quantity: 0, UnitPrice: dec("1")}}},
		},
		{
			name:  "negative price",
			input: usecase.CreateSaleInput{TraderID: "t", Lines: []usecase.SaleLineInput{{ProductID: "p", Quantity: 1, UnitPrice: dec("-1")}}},
		},
		{
			name:  "negative paid amount",
			input: usecase.CreateSaleInput{TraderID: "t", PaidAmount: dec("-5"), Lines: []usecase.SaleLineInput{{ProductID: "p", Quantity: 1, UnitPrice: dec("1")}}},
		},
		{
			name:  "missing product",
			input: usecase.CreateSaleInput{TraderID: "t", Lines: []usecase.SaleLineInput{{Quantity: 1, UnitPrice: dec("1")}}},
		},
		{
			name:  "price beyond four decimals",
			input: usecase.CreateSaleInput{TraderID: "t", Lines: []usecase.SaleLineInput{{ProductID: "p", Quantity: 1, UnitPrice: dec("0.12345")}}},
		},
		{
			name:  "line subtotal overflows",
			input: usecase.CreateSaleInput{TraderID: "t", Lines: []usecase.SaleLineInput{{ProductID: "p", Quantity: domain.MaxLineQuantity, UnitPrice: dec(domain.MaxAmount)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			// No expectations: validation must fail before a transaction starts.
			txm := mocks.NewMockTransactionManager(ctrl)

			uc := usecase.NewSaleUseCase(txm, nil,
				mocks.NewMockProductRepository(ctrl),
				mocks.NewMockTraderRepository(ctrl),
				mocks.NewMockSaleRepository(ctrl),
				mocks.NewMockPaymentRepository(ctrl),
				mocks.NewMockFinancialEntryRepository(ctrl),
				mocks.NewMockIDGenerator(ctrl),
				nil, nil)

			_, err := uc.CreateSale(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestSaleUseCase_CreateSale_UnknownTrader(t *testing.T) {
	env := newTestEnv(t)
	product := env.stockedProduct(t, "Widget", 5, "10")

	_, err := env.sales.CreateSale(context.Background(), usecase.CreateSaleInput{
		TraderID: "missing",
		Lines:    []usecase.SaleLineInput{{ProductID: product.ID, Quantity: 1, UnitPrice: dec("10")}},
	})
	assert.ErrorIs(t, err, domain.ErrTraderNotFound)
	assert.Equal(t, int64(5), env.product(t, product.ID).StockQuantity)
}

func TestSaleUseCase_CreateSale_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	txm := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	traderRepo := mocks.NewMockTraderRepository(ctrl)

	connErr := errors.New("connection reset by peer")

	txm.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	traderRepo.EXPECT().GetByIDForUpdate(gomock.Any(), tx, "t1").Return(nil, connErr)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewSaleUseCase(txm, nil,
		mocks.NewMockProductRepository(ctrl),
		traderRepo,
		mocks.NewMockSaleRepository(ctrl),
		mocks.NewMockPaymentRepository(ctrl),
		mocks.NewMockFinancialEntryRepository(ctrl),
		mocks.NewMockIDGenerator(ctrl),
		nil, nil)

	_, err := uc.CreateSale(context.Background(), usecase.CreateSaleInput{
		TraderID: "t1",
		Lines:    []usecase.SaleLineInput{{ProductID: "p1", Quantity: 1, UnitPrice: dec("10")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransactionFailed)
	assert.ErrorIs(t, err, connErr)
}

func TestSaleUseCase_CreateSale_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)

	txm := mocks.NewMockTransactionManager(ctrl)
	txm.EXPECT().Begin(gomock.Any()).Return(nil, context.DeadlineExceeded)

	uc := usecase.NewSaleUseCase(txm, nil,
		mocks.NewMockProductRepository(ctrl),
		mocks.NewMockTraderRepository(ctrl),
		mocks.NewMockSaleRepository(ctrl),
		mocks.NewMockPaymentRepository(ctrl),
		mocks.NewMockFinancialEntryRepository(ctrl),
		mocks.NewMockIDGenerator(ctrl),
		nil, nil)

	_, err := uc.CreateSale(context.Background(), usecase.CreateSaleInput{
		TraderID: "t1",
		Lines:    []usecase.SaleLineInput{{ProductID: "p1", Quantity: 1, UnitPrice: dec("10")}},
	})
	assert.ErrorIs(t, err, domain.ErrTransactionTimeout)
	assert.NotErrorIs(t, err, domain.ErrTransactionFailed)
}

func TestSaleUseCase_DeleteSale(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	product := env.stockedProduct(t, "Widget", 10, "60")

	created, err := env.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID:   trader.ID,
		PaidAmount: dec("100"),
		Lines:      []usecase.SaleLineInput{{ProductID: product.ID, Quantity: 3, UnitPrice: dec("100")}},
	})
	require.NoError(t, err)

	deleted, err := env.sales.DeleteSale(ctx, created.Sale.ID)
	require.NoError(t, err)

	// The down payment stays on the trader's account.
	requireDecimal(t, "0", deleted.Totals.TotalSales)
	requireDecimal(t, "100", deleted.Totals.TotalPayments)
	requireDecimal(t, "-100", deleted.Totals.Balance)

	p := env.product(t, product.ID)
	assert.Equal(t, int64(10), p.StockQuantity)
	requireDecimal(t, "60", p.UnitCost)

	_, err = env.sales.GetSale(ctx, created.Sale.ID)
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)

	payments, err := env.payments.ListPayments(ctx, domain.PaymentFilter{TraderID: trader.ID})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.False(t, payments[0].Linked())

	entries, err := env.traders.ListFinancialEntries(ctx, trader.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	requireDecimal(t, "-300", entries[0].SaleAmount)
	requireDecimal(t, "-100", entries[0].Balance)

	env.requireReconciled(t, trader.ID)

	_, err = env.sales.DeleteSale(ctx, created.Sale.ID)
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}

func TestSaleUseCase_DeleteSale_RestocksAtSoldCost(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	product := env.stockedProduct(t, "Widget", 10, "10")

	created, err := env.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID: trader.ID,
		Lines:    []usecase.SaleLineInput{{ProductID: product.ID, Quantity: 5, UnitPrice: dec("20")}},
	})
	require.NoError(t, err)

	// Receive 5 more at 20: 5@10 + 5@20 = 10@15.
	_, err = env.purchases.CreatePurchase(ctx, usecase.CreatePurchaseInput{
		SupplierName: "Supplier",
		Lines:        []usecase.PurchaseLineInput{{ProductID: product.ID, Quantity: 5, UnitCost: dec("20")}},
	})
	require.NoError(t, err)
	requireDecimal(t, "15", env.product(t, product.ID).UnitCost)

	_, err = env.sales.DeleteSale(ctx, created.Sale.ID)
	require.NoError(t, err)

	// 10@15 + 5@10 = 15@13.3333
	p := env.product(t, product.ID)
	assert.Equal(t, int64(15), p.StockQuantity)
	requireDecimal(t, "13.3333", p.UnitCost)
}

func TestSaleUseCase_UpdateSale(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	widget := env.stockedProduct(t, "Widget", 10, "60")
	gadget := env.stockedProduct(t, "Gadget", 10, "5")

	created, err := env.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID:   trader.ID,
		PaidAmount: dec("100"),
		Lines:      []usecase.SaleLineInput{{ProductID: widget.ID, Quantity: 3, UnitPrice: dec("100")}},
	})
	require.NoError(t, err)

	updated, err := env.sales.UpdateSale(ctx, usecase.UpdateSaleInput{
		SaleID:     created.Sale.ID,
		TraderID:   trader.ID,
		PaidAmount: dec("50"),
		Lines: []usecase.SaleLineInput{
			{ProductID: widget.ID, Quantity: 1, UnitPrice: dec("100")},
			{ProductID: gadget.ID, Quantity: 4, UnitPrice: dec("10")},
		},
	})
	require.NoError(t, err)

	sale := updated.Sale
	assert.Equal(t, created.Sale.ID, sale.ID)
	assert.Equal(t, created.Sale.InvoiceNumber, sale.InvoiceNumber)
	requireDecimal(t, "140", sale.TotalAmount)
	requireDecimal(t, "50", sale.PaidAmount)
	requireDecimal(t, "90", sale.RemainingAmount)
	requireDecimal(t, "60", sale.Profit())

	requireDecimal(t, "140", updated.Totals.TotalSales)
	requireDecimal(t, "50", updated.Totals.TotalPayments)
	requireDecimal(t, "90", updated.Totals.Balance)

	assert.Equal(t, int64(9), env.product(t, widget.ID).StockQuantity)
	assert.Equal(t, int64(6), env.product(t, gadget.ID).StockQuantity)

	loaded, err := env.sales.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Lines, 2)

	payments, err := env.payments.ListPayments(ctx, domain.PaymentFilter{SaleID: sale.ID})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	requireDecimal(t, "50", payments[0].Amount)

	env.requireReconciled(t, trader.ID)
}

func TestSaleUseCase_UpdateSale_ChangesTrader(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	first := env.trader(t, "First")
	second := env.trader(t, "Second")
	product := env.stockedProduct(t, "Widget", 10, "40")

	created, err := env.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID:   first.ID,
		PaidAmount: dec("50"),
		Lines:      []usecase.SaleLineInput{{ProductID: product.ID, Quantity: 2, UnitPrice: dec("100")}},
	})
	require.NoError(t, err)
	requireDecimal(t, "150", created.Totals.Balance)

	updated, err := env.sales.UpdateSale(ctx, usecase.UpdateSaleInput{
		SaleID:   created.Sale.ID,
		TraderID: second.ID,
		Lines:    []usecase.SaleLineInput{{ProductID: product.ID, Quantity: 1, UnitPrice: dec("100")}},
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.Sale.TraderID)
	requireDecimal(t, "100", updated.Totals.Balance)

	firstBalance, err := env.traders.GetTraderBalance(ctx, first.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", firstBalance.TotalSales)
	requireDecimal(t, "0", firstBalance.TotalPayments)
	requireDecimal(t, "0", firstBalance.Balance)

	assert.Equal(t, int64(9), env.product(t, product.ID).StockQuantity)

	env.requireReconciled(t, first.ID)
	env.requireReconciled(t, second.ID)
}

func TestSaleUseCase_UpdateSale_InsufficientStockKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	product := env.stockedProduct(t, "Widget", 5, "10")

	created, err := env.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID: trader.ID,
		Lines:    []usecase.SaleLineInput{{ProductID: product.ID, Quantity: 3, UnitPrice: dec("20")}},
	})
	require.NoError(t, err)

	// 2 in stock plus 3 returned by the old lines: 6 is too many.
	_, err = env.sales.UpdateSale(ctx, usecase.UpdateSaleInput{
		SaleID:   created.Sale.ID,
		TraderID: trader.ID,
		Lines:    []usecase.SaleLineInput{{ProductID: product.ID, Quantity: 6, UnitPrice: dec("20")}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(2), env.product(t, product.ID).StockQuantity)

	sale, err := env.sales.GetSale(ctx, created.Sale.ID)
	require.NoError(t, err)
	requireDecimal(t, "60", sale.TotalAmount)
	require.Len(t, sale.Lines, 1)

	env.requireReconciled(t, trader.ID)
}

func TestSaleUseCase_InvalidatesBalanceCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	product := env.stockedProduct(t, "Widget", 5, "10")

	_, err := env.traders.GetTraderBalance(ctx, trader.ID)
	require.NoError(t, err)
	require.True(t, env.cache.has("trader-balance:"+trader.ID))

	_, err = env.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID: trader.ID,
		Lines:    []usecase.SaleLineInput{{ProductID: product.ID, Quantity: 1, UnitPrice: dec("25")}},
	})
	require.NoError(t, err)
	assert.False(t, env.cache.has("trader-balance:"+trader.ID))

	balance, err := env.traders.GetTraderBalance(ctx, trader.ID)
	require.NoError(t, err)
	requireDecimal(t, "25", balance.Balance)
}

func TestSaleUseCase_UpdateSale_KeepsManualPayments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	sale := saleFor(t, env, trader.ID)

	manual, err := env.payments.CreatePayment(ctx, usecase.CreatePaymentInput{
		TraderID: trader.ID,
		SaleID:   sale.ID,
		Amount:   dec("50"),
		Note:     "cash at the counter",
	})
	require.NoError(t, err)
	requireDecimal(t, "150", manual.Totals.TotalPayments)

	updated, err := env.sales.UpdateSale(ctx, usecase.UpdateSaleInput{
		SaleID:     sale.ID,
		TraderID:   trader.ID,
		PaidAmount: dec("100"),
		Lines:      []usecase.SaleLineInput{{ProductID: sale.Lines[0].ProductID, Quantity: 3, UnitPrice: dec("100")}},
	})
	require.NoError(t, err)

	requireDecimal(t, "150", updated.Sale.PaidAmount)
	requireDecimal(t, "150", updated.Sale.RemainingAmount)
	assert.Equal(t, domain.SaleStatusPartial, updated.Sale.Status)
	requireDecimal(t, "300", updated.Totals.TotalSales)
	requireDecimal(t, "150", updated.Totals.TotalPayments)
	requireDecimal(t, "150", updated.Totals.Balance)

	kept, err := env.payments.GetPayment(ctx, manual.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, kept.SaleID)
	assert.Equal(t, "cash at the counter", kept.Note)
	assert.True(t, kept.PaymentDate.Equal(manual.Payment.PaymentDate))

	payments, err := env.payments.ListPayments(ctx, domain.PaymentFilter{SaleID: sale.ID})
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	env.requireReconciled(t, trader.ID)
}

func TestSaleUseCase_UpdateSale_ChangedTraderLeavesManualPaymentsOnAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	first := env.trader(t, "First")
	second := env.trader(t, "Second")
	sale := saleFor(t, env, first.ID)

	manual, err := env.payments.CreatePayment(ctx, usecase.CreatePaymentInput{
		TraderID: first.ID,
		SaleID:   sale.ID,
		Amount:   dec("50"),
	})
	require.NoError(t, err)

	updated, err := env.sales.UpdateSale(ctx, usecase.UpdateSaleInput{
		SaleID:     sale.ID,
		TraderID:   second.ID,
		PaidAmount: dec("20"),
		Lines:      []usecase.SaleLineInput{{ProductID: sale.Lines[0].ProductID, Quantity: 1, UnitPrice: dec("100")}},
	})
	require.NoError(t, err)

	requireDecimal(t, "20", updated.Sale.PaidAmount)
	requireDecimal(t, "80", updated.Totals.Balance)

	kept, err := env.payments.GetPayment(ctx, manual.Payment.ID)
	require.NoError(t, err)
	assert.False(t, kept.Linked())
	assert.Equal(t, first.ID, kept.TraderID)

	firstBalance, err := env.traders.GetTraderBalance(ctx, first.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", firstBalance.TotalSales)
	requireDecimal(t, "50", firstBalance.TotalPayments)
	requireDecimal(t, "-50", firstBalance.Balance)

	env.requireReconciled(t, first.ID)
	env.requireReconciled(t, second.ID)
}

func TestSaleUseCase_DeleteSale_LocksPaymentsBeforeSale(t *testing.T) {
	ctrl := gomock.NewController(t)

	txm := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	saleRepo := mocks.NewMockSaleRepository(ctrl)
	paymentRepo := mocks.NewMockPaymentRepository(ctrl)

	gomock.InOrder(
		txm.EXPECT().Begin(gomock.Any()).Return(tx, nil),
		paymentRepo.EXPECT().ListBySaleForUpdate(gomock.Any(), tx, "s1").Return(nil, nil),
		saleRepo.EXPECT().GetByIDForUpdate(gomock.Any(), tx, "s1").Return(nil, domain.ErrSaleNotFound),
		tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	uc := usecase.NewSaleUseCase(txm, nil,
		mocks.NewMockProductRepository(ctrl),
		mocks.NewMockTraderRepository(ctrl),
		saleRepo,
		paymentRepo,
		mocks.NewMockFinancialEntryRepository(ctrl),
		mocks.NewMockIDGenerator(ctrl),
		nil, nil)

	_, err := uc.DeleteSale(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}
