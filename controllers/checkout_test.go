package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tranqv/bookstore/models"
)

func TestCartStockCeiling(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "cart@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)
	book := createBook(t, db, "Norwegian Wood", 120_000, 3)

	w := doJSON(router, http.MethodPost, "/api/v1/cart/items", token, gin.H{
		"book_id":  book.ID,
		"quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	// Adding 2 more would exceed the 3 in stock
	w = doJSON(router, http.MethodPost, "/api/v1/cart/items", token, gin.H{
		"book_id":  book.ID,
		"quantity": 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Message, "left in stock")

	// One more merges into the existing line
	w = doJSON(router, http.MethodPost, "/api/v1/cart/items", token, gin.H{
		"book_id":  book.ID,
		"quantity": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var item models.CartItem
	require.NoError(t, db.Where("user_id = ? AND book_id = ?", user.ID, book.ID).First(&item).Error)
	assert.Equal(t, 3, item.Quantity)
}

func TestCheckoutPricingAndStock(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "buyer@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)
	book := createBook(t, db, "Dune", 125_000, 10)
	address := createAddress(t, db, user.ID)
	addToCart(t, db, user.ID, book.ID, 2)

	order := placeOrder(t, db, router, token, address.ID, "card")

	// subtotal 250_000 -> VAT 25_000, shipping 20_000
	assert.Equal(t, int64(250_000), order.Subtotal)
	assert.Equal(t, int64(25_000), order.VAT)
	assert.Equal(t, int64(20_000), order.ShippingFee)
	assert.Equal(t, int64(295_000), order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, order.PaymentStatus)

	var reloaded models.Book
	require.NoError(t, db.First(&reloaded, book.ID).Error)
	assert.Equal(t, 8, reloaded.StockQuantity)

	var cartCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount).Error)
	assert.Zero(t, cartCount)

	var history []models.OrderStatusHistory
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, "", history[0].OldStatus)
	assert.Equal(t, models.OrderStatusPending, history[0].NewStatus)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "empty@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)
	address := createAddress(t, db, user.ID)

	w := doJSON(router, http.MethodPost, "/api/v1/orders", token, gin.H{
		"address_id":     address.ID,
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Message, "empty cart")
}

func TestCheckoutRejectsForeignAddress(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "own@example.com", "secret123", models.RoleCustomer)
	other := createUser(t, db, "other@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)
	book := createBook(t, db, "Kafka on the Shore", 90_000, 5)
	addToCart(t, db, user.ID, book.ID, 1)
	foreign := createAddress(t, db, other.ID)

	w := doJSON(router, http.MethodPost, "/api/v1/orders", token, gin.H{
		"address_id":     foreign.ID,
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Message, "Invalid delivery address")
}

func TestCheckoutInsufficientStockNamesTitle(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "greedy@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)
	book := createBook(t, db, "The Hobbit", 80_000, 1)
	address := createAddress(t, db, user.ID)
	// Cart quantity exceeds what is left at checkout time
	addToCart(t, db, user.ID, book.ID, 2)

	w := doJSON(router, http.MethodPost, "/api/v1/orders", token, gin.H{
		"address_id":     address.ID,
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Message, "The Hobbit")

	// Nothing committed
	var reloaded models.Book
	require.NoError(t, db.First(&reloaded, book.ID).Error)
	assert.Equal(t, 1, reloaded.StockQuantity)
	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
}

func TestPaymentSuccessCreatesInvoice(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "payer@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)
	book := createBook(t, db, "1984", 150_000, 5)
	address := createAddress(t, db, user.ID)
	addToCart(t, db, user.ID, book.ID, 1)
	order := placeOrder(t, db, router, token, address.ID, "card")

	w := doJSON(router, http.MethodPost, "/api/v1/orders/"+itoa(order.ID)+"/payment", token, gin.H{
		"payment_info": gin.H{"card_number": "4111111111111111"},
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, reloaded.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, reloaded.Status)

	var invoice models.Invoice
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&invoice).Error)
	assert.Equal(t, "INV-"+order.OrderCode, invoice.InvoiceCode)

	// Paying again is rejected
	w = doJSON(router, http.MethodPost, "/api/v1/orders/"+itoa(order.ID)+"/payment", token, gin.H{
		"payment_info": gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentDeclined(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "declined@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)
	book := createBook(t, db, "Emma", 60_000, 5)
	address := createAddress(t, db, user.ID)
	addToCart(t, db, user.ID, book.ID, 1)
	order := placeOrder(t, db, router, token, address.ID, "card")

	w := doJSON(router, http.MethodPost, "/api/v1/orders/"+itoa(order.ID)+"/payment", token, gin.H{
		"payment_info": gin.H{"simulate_success": false},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, reloaded.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)

	var invoiceCount int64
	require.NoError(t, db.Model(&models.Invoice{}).Where("order_id = ?", order.ID).Count(&invoiceCount).Error)
	assert.Zero(t, invoiceCount)
}

func TestCancelRestoresStock(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "cancel@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)
	book := createBook(t, db, "Persuasion", 70_000, 5)
	address := createAddress(t, db, user.ID)
	addToCart(t, db, user.ID, book.ID, 3)
	order := placeOrder(t, db, router, token, address.ID, "cod")

	var afterOrder models.Book
	require.NoError(t, db.First(&afterOrder, book.ID).Error)
	require.Equal(t, 2, afterOrder.StockQuantity)

	w := doJSON(router, http.MethodPost, "/api/v1/orders/"+itoa(order.ID)+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var reloadedOrder models.Order
	require.NoError(t, db.First(&reloadedOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, reloadedOrder.Status)
	assert.Equal(t, models.PaymentStatusRefunded, reloadedOrder.PaymentStatus)

	var reloadedBook models.Book
	require.NoError(t, db.First(&reloadedBook, book.ID).Error)
	assert.Equal(t, 5, reloadedBook.StockQuantity)

	var cancelRow models.OrderStatusHistory
	require.NoError(t, db.Where("order_id = ? AND new_status = ?", order.ID, models.OrderStatusCancelled).
		First(&cancelRow).Error)
	assert.Equal(t, models.OrderStatusPending, cancelRow.OldStatus)

	// Cancelling a cancelled order is rejected
	w = doJSON(router, http.MethodPost, "/api/v1/orders/"+itoa(order.ID)+"/cancel", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
