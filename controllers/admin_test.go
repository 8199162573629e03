package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tranqv/bookstore/models"
)

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	db, cfg, router := newTestApp(t)
	customer := createUser(t, db, "plain@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, customer)

	w := doJSON(router, http.MethodPost, "/api/v1/admin/books", token, gin.H{
		"title": "x", "author": "y", "isbn": "z", "price": 1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/admin/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminBookCRUD(t *testing.T) {
	db, cfg, router := newTestApp(t)
	admin := createUser(t, db, "admin@example.com", "secret123", models.RoleAdmin)
	token := loginToken(t, cfg, admin)

	w := doJSON(router, http.MethodPost, "/api/v1/admin/books", token, gin.H{
		"title":  "Snow Country",
		"author": "Yasunari Kawabata",
		"isbn":   "978-0679761044",
		"price":  110_000,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	// Duplicate ISBN conflicts
	w = doJSON(router, http.MethodPost, "/api/v1/admin/books", token, gin.H{
		"title":  "Another",
		"author": "Someone",
		"isbn":   "978-0679761044",
		"price":  50_000,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	var book models.Book
	require.NoError(t, db.Where("isbn = ?", "978-0679761044").First(&book).Error)

	// Negative stock is rejected
	w = doJSON(router, http.MethodPut, "/api/v1/admin/books/"+itoa(book.ID)+"/stock", token, gin.H{
		"stock_quantity": -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/admin/books/"+itoa(book.ID)+"/stock", token, gin.H{
		"stock_quantity": 25,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&book, book.ID).Error)
	assert.Equal(t, 25, book.StockQuantity)

	w = doJSON(router, http.MethodDelete, "/api/v1/admin/books/"+itoa(book.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminBookDeleteBlockedByOrders(t *testing.T) {
	db, cfg, router := newTestApp(t)
	admin := createUser(t, db, "admin2@example.com", "secret123", models.RoleAdmin)
	buyer := createUser(t, db, "buyer2@example.com", "secret123", models.RoleCustomer)
	adminToken := loginToken(t, cfg, admin)
	buyerToken := loginToken(t, cfg, buyer)

	book := createBook(t, db, "Ordered Book", 50_000, 5)
	address := createAddress(t, db, buyer.ID)
	addToCart(t, db, buyer.ID, book.ID, 1)
	placeOrder(t, db, router, buyerToken, address.ID, "cod")

	w := doJSON(router, http.MethodDelete, "/api/v1/admin/books/"+itoa(book.ID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Message, "existing orders")
}

func TestAdminCategoryDeleteBlockedByBooks(t *testing.T) {
	db, cfg, router := newTestApp(t)
	admin := createUser(t, db, "admin3@example.com", "secret123", models.RoleAdmin)
	token := loginToken(t, cfg, admin)

	category := models.Category{Name: "Fiction"}
	require.NoError(t, db.Create(&category).Error)

	book := createBook(t, db, "Categorized", 40_000, 5)
	require.NoError(t, db.Model(&book).Update("category_id", category.ID).Error)

	w := doJSON(router, http.MethodDelete, "/api/v1/admin/categories/"+itoa(category.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Duplicate name conflicts
	w = doJSON(router, http.MethodPost, "/api/v1/admin/categories", token, gin.H{"name": "Fiction"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Once the book moves out, deletion succeeds
	require.NoError(t, db.Model(&book).Update("category_id", nil).Error)
	w = doJSON(router, http.MethodDelete, "/api/v1/admin/categories/"+itoa(category.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminOrderLifecycle(t *testing.T) {
	db, cfg, router := newTestApp(t)
	admin := createUser(t, db, "admin4@example.com", "secret123", models.RoleAdmin)
	buyer := createUser(t, db, "buyer4@example.com", "secret123", models.RoleCustomer)
	adminToken := loginToken(t, cfg, admin)
	buyerToken := loginToken(t, cfg, buyer)

	book := createBook(t, db, "Shipped Book", 300_000, 5)
	address := createAddress(t, db, buyer.ID)
	addToCart(t, db, buyer.ID, book.ID, 1)
	order := placeOrder(t, db, router, buyerToken, address.ID, "cod")

	setStatus := func(status string) int {
		w := doJSON(router, http.MethodPut, "/api/v1/admin/orders/"+itoa(order.ID)+"/status", adminToken, gin.H{
			"status": status,
		})
		return w.Code
	}

	// pending cannot jump straight to shipping
	assert.Equal(t, http.StatusBadRequest, setStatus(models.OrderStatusShipping))

	assert.Equal(t, http.StatusOK, setStatus(models.OrderStatusConfirmed))
	assert.Equal(t, http.StatusOK, setStatus(models.OrderStatusProcessing))
	assert.Equal(t, http.StatusOK, setStatus(models.OrderStatusShipping))
	assert.Equal(t, http.StatusOK, setStatus(models.OrderStatusDelivered))

	// delivered is terminal
	assert.Equal(t, http.StatusBadRequest, setStatus(models.OrderStatusCancelled))

	var history []models.OrderStatusHistory
	require.NoError(t, db.Where("order_id = ?", order.ID).Order("id ASC").Find(&history).Error)
	require.Len(t, history, 5) // placement plus four transitions

	// Each audit row records the status pair it moved between
	wantPairs := [][2]string{
		{"", models.OrderStatusPending},
		{models.OrderStatusPending, models.OrderStatusConfirmed},
		{models.OrderStatusConfirmed, models.OrderStatusProcessing},
		{models.OrderStatusProcessing, models.OrderStatusShipping},
		{models.OrderStatusShipping, models.OrderStatusDelivered},
	}
	for i, row := range history {
		assert.Equal(t, wantPairs[i][0], row.OldStatus, "row %d old status", i)
		assert.Equal(t, wantPairs[i][1], row.NewStatus, "row %d new status", i)
	}
}

func TestAdminConfirmCODPayment(t *testing.T) {
	db, cfg, router := newTestApp(t)
	admin := createUser(t, db, "admin5@example.com", "secret123", models.RoleAdmin)
	buyer := createUser(t, db, "buyer5@example.com", "secret123", models.RoleCustomer)
	adminToken := loginToken(t, cfg, admin)
	buyerToken := loginToken(t, cfg, buyer)

	book := createBook(t, db, "COD Book", 100_000, 5)
	address := createAddress(t, db, buyer.ID)
	addToCart(t, db, buyer.ID, book.ID, 1)
	order := placeOrder(t, db, router, buyerToken, address.ID, "cod")

	w := doJSON(router, http.MethodPost, "/api/v1/admin/orders/"+itoa(order.ID)+"/confirm-payment", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, reloaded.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, reloaded.Status)

	var invoice models.Invoice
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&invoice).Error)
	assert.Equal(t, "INV-"+order.OrderCode, invoice.InvoiceCode)

	// A second confirmation is rejected
	w = doJSON(router, http.MethodPost, "/api/v1/admin/orders/"+itoa(order.ID)+"/confirm-payment", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminLockRules(t *testing.T) {
	db, cfg, router := newTestApp(t)
	admin := createUser(t, db, "admin6@example.com", "secret123", models.RoleAdmin)
	other := createUser(t, db, "admin7@example.com", "secret123", models.RoleAdmin)
	customer := createUser(t, db, "victim@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, admin)

	// Admin accounts cannot be locked
	w := doJSON(router, http.MethodPut, "/api/v1/admin/users/"+itoa(other.ID)+"/lock", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/admin/users/"+itoa(customer.ID)+"/lock", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, customer.ID).Error)
	assert.True(t, reloaded.IsLocked)

	// Locked users cannot authenticate even with a valid token
	customerToken := loginToken(t, cfg, customer)
	w = doJSON(router, http.MethodGet, "/api/v1/me", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/admin/users/"+itoa(customer.ID)+"/unlock", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&reloaded, customer.ID).Error)
	assert.False(t, reloaded.IsLocked)
}
