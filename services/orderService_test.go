package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"resto-pos/dtos"
	"resto-pos/models"
)

func newOrderService(db *gorm.DB) OrderService {
	return NewOrderService(db, NewStockService(db))
}

func acceptCart(t *testing.T, service OrderService, tableNo string, cart ...dtos.CartItem) *models.Order {
	t.Helper()

	order, err := service.Accept(dtos.AcceptOrderInput{
		TableNo: tableNo,
		Cart:    cart,
		DineIn:  true,
	}, "cashier1")
	require.NoError(t, err)
	return order
}

func balanceOf(t *testing.T, db *gorm.DB, productCode uint) int {
	t.Helper()

	var balance models.StockBalance
	require.NoError(t, db.Where("product_code = ?", productCode).First(&balance).Error)
	return balance.OnHand
}

func TestAccept_CreatesOrderAndDecrementsStock(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 180, 5)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 3})

	assert.False(t, order.Posted)
	assert.Equal(t, 1, order.InvoiceNo)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 3, order.Lines[0].Quantity)
	assert.InDelta(t, 540, order.Lines[0].Subtotal, 0.001)
	assert.InDelta(t, 540, order.Total, 0.001)

	assert.Equal(t, 2, balanceOf(t, db, product.ID))

	var entry models.StockLedgerEntry
	require.NoError(t, db.
		Where("product_code = ? AND transaction_type = ?", product.ID, models.TxnSales).
		First(&entry).Error)
	assert.Equal(t, 3, entry.Qty)
	assert.Equal(t, 2, entry.Remaining)

	var tickets []models.KitchenTicket
	require.NoError(t, db.Where("order_code = ?", order.ID).Find(&tickets).Error)
	require.Len(t, tickets, 1)
	assert.False(t, tickets[0].Done)
}

func TestAccept_MergesDuplicateCartLines(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Garlic Rice", 45, 100)
	service := newOrderService(db)

	order := acceptCart(t, service, "2",
		dtos.CartItem{ProductCode: product.ID, Quantity: 1},
		dtos.CartItem{ProductCode: product.ID, Quantity: 2},
	)

	require.Len(t, order.Lines, 1, "same product must merge into one line")
	assert.Equal(t, 3, order.Lines[0].Quantity)
	assert.Equal(t, 97, balanceOf(t, db, product.ID))
}

func TestAccept_ReusesOpenOrderForTable(t *testing.T) {
	db := newTestDB(t)
	adobo := seedProduct(t, db, "Chicken Adobo", 180, 50)
	rice := seedProduct(t, db, "Garlic Rice", 45, 100)
	service := newOrderService(db)

	first := acceptCart(t, service, "7", dtos.CartItem{ProductCode: adobo.ID, Quantity: 1})
	second := acceptCart(t, service, "7",
		dtos.CartItem{ProductCode: adobo.ID, Quantity: 1},
		dtos.CartItem{ProductCode: rice.ID, Quantity: 2},
	)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.InvoiceNo, second.InvoiceNo)
	require.Len(t, second.Lines, 2)

	quantities := map[uint]int{}
	for _, line := range second.Lines {
		quantities[line.ProductCode] = line.Quantity
	}
	assert.Equal(t, 2, quantities[adobo.ID])
	assert.Equal(t, 2, quantities[rice.ID])

	// a different table gets its own invoice
	other := acceptCart(t, service, "8", dtos.CartItem{ProductCode: rice.ID, Quantity: 1})
	assert.NotEqual(t, first.InvoiceNo, other.InvoiceNo)
}

func TestAccept_UnknownProductFailsWholeRequest(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 180, 10)
	service := newOrderService(db)

	_, err := service.Accept(dtos.AcceptOrderInput{
		TableNo: "7",
		Cart: []dtos.CartItem{
			{ProductCode: product.ID, Quantity: 1},
			{ProductCode: 9999, Quantity: 1},
		},
		DineIn: true,
	}, "cashier1")
	assert.ErrorIs(t, err, ErrNotFound)

	// all-or-nothing: the valid line must not have been applied either
	assert.Equal(t, 10, balanceOf(t, db, product.ID))
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestAccept_InactiveProductRejected(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Old Special", 99, 10)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).Update("active", false).Error)
	service := newOrderService(db)

	_, err := service.Accept(dtos.AcceptOrderInput{
		TableNo: "7",
		Cart:    []dtos.CartItem{{ProductCode: product.ID, Quantity: 1}},
		DineIn:  true,
	}, "cashier1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccept_ToleratesNegativeStock(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Halo-Halo", 150, 2)
	service := newOrderService(db)

	acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 5})
	assert.Equal(t, -3, balanceOf(t, db, product.ID))
}

func TestAccept_RejectsConflictingFlags(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Iced Tea", 60, 10)
	service := newOrderService(db)

	_, err := service.Accept(dtos.AcceptOrderInput{
		TableNo: "7",
		Cart:    []dtos.CartItem{{ProductCode: product.ID, Quantity: 1}},
		DineIn:  true,
		TakeOut: true,
	}, "cashier1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckout_PostsOrder(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 50, 10)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 2})

	receipt, err := service.Checkout(dtos.CheckoutInput{
		OrderCode:   order.ID,
		NumberOfPax: 1,
		AmountPaid:  120,
		Total:       100,
	}, "cashier1")
	require.NoError(t, err)

	assert.InDelta(t, 100, receipt.Total, 0.001)
	assert.InDelta(t, 89.29, receipt.NetOfVat, 0.005)
	assert.InDelta(t, 10.71, receipt.Vat, 0.005)
	assert.InDelta(t, 100, receipt.TotalDue, 0.001)
	assert.InDelta(t, 20, receipt.Change, 0.001)

	var posted models.Order
	require.NoError(t, db.First(&posted, order.ID).Error)
	assert.True(t, posted.Posted)
	assert.InDelta(t, 120, posted.AmountPaid, 0.001)

	// no ledger writes at checkout, stock moved at accept time
	var ledgerCount int64
	db.Model(&models.StockLedgerEntry{}).
		Where("product_code = ? AND transaction_type = ?", product.ID, models.TxnSales).
		Count(&ledgerCount)
	assert.Equal(t, int64(1), ledgerCount)
	assert.Equal(t, 8, balanceOf(t, db, product.ID))

	var tickets []models.KitchenTicket
	require.NoError(t, db.Where("order_code = ?", order.ID).Find(&tickets).Error)
	require.NotEmpty(t, tickets)
	for _, ticket := range tickets {
		assert.True(t, ticket.Done)
	}

	var audit models.AuditLog
	require.NoError(t, db.Where("entity_type = ? AND action = ?", "order", "post").First(&audit).Error)
	assert.Equal(t, order.ID, audit.EntityID)
}

func TestCheckout_WithSeniorDiscount(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 50, 10)
	seedDiscountRule(t, db, "SENIOR", 20, true)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 2})

	receipt, err := service.Checkout(dtos.CheckoutInput{
		OrderCode:       order.ID,
		NumberOfPax:     2,
		NumberOfSeniors: 1,
		AmountPaid:      90,
		DiscountCode:    strPtr("SENIOR"),
		Total:           100,
	}, "cashier1")
	require.NoError(t, err)

	assert.InDelta(t, 14.29, receipt.Discount, 0.01)
	assert.InDelta(t, 85.71, receipt.TotalDue, 0.01)
	assert.InDelta(t, 4.29, receipt.Change, 0.01)
}

func TestCheckout_TotalMismatchRejected(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 50, 10)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 2})

	_, err := service.Checkout(dtos.CheckoutInput{
		OrderCode:   order.ID,
		NumberOfPax: 1,
		AmountPaid:  200,
		Total:       95, // client total drifted from persisted lines
	}, "cashier1")
	assert.ErrorIs(t, err, ErrValidation)

	var stillOpen models.Order
	require.NoError(t, db.First(&stillOpen, order.ID).Error)
	assert.False(t, stillOpen.Posted)
}

func TestCheckout_InsufficientPayment(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 50, 10)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 2})

	_, err := service.Checkout(dtos.CheckoutInput{
		OrderCode:   order.ID,
		NumberOfPax: 1,
		AmountPaid:  50,
		Total:       100,
	}, "cashier1")
	assert.ErrorIs(t, err, ErrInsufficientPayment)
}

func TestCheckout_OversoldStockRejected(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Halo-Halo", 100, 2)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 5})
	require.Equal(t, -3, balanceOf(t, db, product.ID))

	_, err := service.Checkout(dtos.CheckoutInput{
		OrderCode:   order.ID,
		NumberOfPax: 1,
		AmountPaid:  600,
		Total:       500,
	}, "cashier1")
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCheckout_UnknownOrderAndDoublePost(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 50, 10)
	service := newOrderService(db)

	_, err := service.Checkout(dtos.CheckoutInput{
		OrderCode:   999,
		NumberOfPax: 1,
		AmountPaid:  100,
		Total:       100,
	}, "cashier1")
	assert.ErrorIs(t, err, ErrNotFound)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 2})
	input := dtos.CheckoutInput{
		OrderCode:   order.ID,
		NumberOfPax: 1,
		AmountPaid:  100,
		Total:       100,
	}
	_, err = service.Checkout(input, "cashier1")
	require.NoError(t, err)

	_, err = service.Checkout(input, "cashier1")
	assert.ErrorIs(t, err, ErrAlreadyPosted)
}

func TestCancel_RestoresStockExactly(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 180, 5)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 3})
	require.Equal(t, 2, balanceOf(t, db, product.ID))

	require.NoError(t, service.Cancel(order.ID, "cashier1"))

	assert.Equal(t, 5, balanceOf(t, db, product.ID))

	// restoration is a new compensating entry, not a rewrite
	var entries []models.StockLedgerEntry
	require.NoError(t, db.
		Where("product_code = ?", product.ID).
		Order("entry_code ASC").
		Find(&entries).Error)
	require.Len(t, entries, 3) // restock, sale, cancel
	assert.Equal(t, models.TxnSales, entries[1].TransactionType)
	assert.Equal(t, 2, entries[1].Remaining)
	assert.Equal(t, models.TxnCancelSales, entries[2].TransactionType)
	assert.Equal(t, 5, entries[2].Remaining)

	// header, lines and kitchen tickets are gone together
	var orderCount, lineCount, ticketCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderLine{}).Count(&lineCount)
	db.Model(&models.KitchenTicket{}).Count(&ticketCount)
	assert.Zero(t, orderCount)
	assert.Zero(t, lineCount)
	assert.Zero(t, ticketCount)
}

func TestCancel_TwiceNeverDoubleRestores(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 180, 5)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 3})
	require.NoError(t, service.Cancel(order.ID, "cashier1"))

	err := service.Cancel(order.ID, "cashier1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 5, balanceOf(t, db, product.ID))
}

func TestCancel_PostedOrderRejected(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 50, 10)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 2})
	_, err := service.Checkout(dtos.CheckoutInput{
		OrderCode:   order.ID,
		NumberOfPax: 1,
		AmountPaid:  100,
		Total:       100,
	}, "cashier1")
	require.NoError(t, err)

	assert.ErrorIs(t, service.Cancel(order.ID, "cashier1"), ErrAlreadyPosted)
	assert.Equal(t, 8, balanceOf(t, db, product.ID))
}

func TestCancelByInvoice(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 180, 5)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 1})

	require.NoError(t, service.CancelByInvoice(order.InvoiceNo, "cashier1"))
	assert.Equal(t, 5, balanceOf(t, db, product.ID))

	assert.ErrorIs(t, service.CancelByInvoice(order.InvoiceNo, "cashier1"), ErrNotFound)
}

func TestRemoveLine_RestoresAndKeepsOrder(t *testing.T) {
	db := newTestDB(t)
	adobo := seedProduct(t, db, "Chicken Adobo", 180, 50)
	rice := seedProduct(t, db, "Garlic Rice", 45, 100)
	service := newOrderService(db)

	order := acceptCart(t, service, "7",
		dtos.CartItem{ProductCode: adobo.ID, Quantity: 2},
		dtos.CartItem{ProductCode: rice.ID, Quantity: 3},
	)

	require.NoError(t, service.RemoveLine(order.ID, rice.ID, "cashier1"))

	assert.Equal(t, 100, balanceOf(t, db, rice.ID))
	assert.Equal(t, 48, balanceOf(t, db, adobo.ID))

	var entry models.StockLedgerEntry
	require.NoError(t, db.
		Where("product_code = ? AND transaction_type = ?", rice.ID, models.TxnCancelPending).
		First(&entry).Error)
	assert.Equal(t, 3, entry.Qty)

	var remaining models.Order
	require.NoError(t, db.Preload("Lines").First(&remaining, order.ID).Error)
	require.Len(t, remaining.Lines, 1)
	assert.Equal(t, adobo.ID, remaining.Lines[0].ProductCode)
	assert.InDelta(t, 360, remaining.Total, 0.001)
}

func TestRemoveLine_LastLineRemovesOrder(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 180, 5)
	service := newOrderService(db)

	order := acceptCart(t, service, "7", dtos.CartItem{ProductCode: product.ID, Quantity: 3})

	require.NoError(t, service.RemoveLine(order.ID, product.ID, "cashier1"))

	assert.Equal(t, 5, balanceOf(t, db, product.ID))
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestList_FiltersByPostedAndPaginates(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "Chicken Adobo", 50, 100)
	service := newOrderService(db)

	acceptCart(t, service, "1", dtos.CartItem{ProductCode: product.ID, Quantity: 1})
	posted := acceptCart(t, service, "2", dtos.CartItem{ProductCode: product.ID, Quantity: 2})
	_, err := service.Checkout(dtos.CheckoutInput{
		OrderCode:   posted.ID,
		NumberOfPax: 1,
		AmountPaid:  100,
		Total:       100,
	}, "cashier1")
	require.NoError(t, err)

	all, total, err := service.List(nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	flag := true
	onlyPosted, total, err := service.List(&flag, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, onlyPosted, 1)
	assert.True(t, onlyPosted[0].Posted)
}
