package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tranqv/bookstore/models"
	"gorm.io/gorm"
)

// payOrder seeds a paid order containing the book so reviews are allowed.
func payOrder(t *testing.T, db *gorm.DB, router *gin.Engine, token string, order models.Order) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/v1/orders/"+itoa(order.ID)+"/payment", token, gin.H{
		"payment_info": gin.H{},
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
}

func TestReviewRequiresPurchase(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "reviewer@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)
	book := createBook(t, db, "Middlemarch", 95_000, 10)

	w := doJSON(router, http.MethodPost, "/api/v1/reviews", token, gin.H{
		"book_id": book.ID,
		"rating":  5,
		"comment": "Great read",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Buy and pay for the book, then the review is accepted
	address := createAddress(t, db, user.ID)
	addToCart(t, db, user.ID, book.ID, 1)
	order := placeOrder(t, db, router, token, address.ID, "card")
	payOrder(t, db, router, token, order)

	w = doJSON(router, http.MethodPost, "/api/v1/reviews", token, gin.H{
		"book_id": book.ID,
		"rating":  5,
		"comment": "Great read",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	// A second submission updates in place instead of duplicating
	w = doJSON(router, http.MethodPost, "/api/v1/reviews", token, gin.H{
		"book_id": book.ID,
		"rating":  3,
		"comment": "On reflection, decent",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reviews []models.Review
	require.NoError(t, db.Where("user_id = ? AND book_id = ?", user.ID, book.ID).Find(&reviews).Error)
	require.Len(t, reviews, 1)
	assert.Equal(t, 3, reviews[0].Rating)
}

func TestReviewRatingBounds(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "bounds@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)
	book := createBook(t, db, "Beloved", 85_000, 10)

	for _, rating := range []int{0, 6, -1} {
		w := doJSON(router, http.MethodPost, "/api/v1/reviews", token, gin.H{
			"book_id": book.ID,
			"rating":  rating,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating=%d", rating)
	}
}

func TestDefaultAddressIsExclusive(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "addr@example.com", "secret123", models.RoleCustomer)
	token := loginToken(t, cfg, user)

	create := func(name string, isDefault bool) uint {
		w := doJSON(router, http.MethodPost, "/api/v1/addresses", token, gin.H{
			"recipient_name": name,
			"phone":          "0900000000",
			"address_line":   "12 Le Loi",
			"city":           "Ho Chi Minh City",
			"is_default":     isDefault,
		})
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
		var address models.Address
		require.NoError(t, db.Order("id DESC").First(&address).Error)
		return address.ID
	}

	first := create("First", true)
	second := create("Second", true)

	var defaults []models.Address
	require.NoError(t, db.Where("user_id = ? AND is_default = ?", user.ID, true).Find(&defaults).Error)
	require.Len(t, defaults, 1)
	assert.Equal(t, second, defaults[0].ID)

	// Flip the default back explicitly
	w := doJSON(router, http.MethodPut, "/api/v1/addresses/"+itoa(first)+"/default", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Where("user_id = ? AND is_default = ?", user.ID, true).Find(&defaults).Error)
	require.Len(t, defaults, 1)
	assert.Equal(t, first, defaults[0].ID)
}

func TestAddressOwnership(t *testing.T) {
	db, cfg, router := newTestApp(t)
	owner := createUser(t, db, "owner@example.com", "secret123", models.RoleCustomer)
	intruder := createUser(t, db, "intruder@example.com", "secret123", models.RoleCustomer)
	address := createAddress(t, db, owner.ID)
	intruderToken := loginToken(t, cfg, intruder)

	w := doJSON(router, http.MethodDelete, "/api/v1/addresses/"+itoa(address.ID), intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Address{}).Where("id = ?", address.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
