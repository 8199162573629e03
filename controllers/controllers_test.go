package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tranqv/bookstore/config"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/routes"
	"github.com/tranqv/bookstore/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// apiResponse mirrors the JSON envelope every endpoint returns.
type apiResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Error   interface{}            `json:"error"`
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:             "8080",
		Env:              "test",
		JWTSecret:        "test-secret",
		JWTExpiry:        time.Hour,
		BcryptCost:       bcrypt.MinCost,
		MaxLoginAttempts: 3,
		LockDuration:     15 * time.Minute,
		ResetTokenExpiry: 5 * time.Minute,
		MaxUploadSize:    5 * 1024 * 1024,
		UploadDir:        t.TempDir(),
		FrontendURL:      "http://localhost:3000",
		RateLimitRPS:     1000,
		RateLimitBurst:   1000,
	}
}

func newTestApp(t *testing.T) (*gorm.DB, *config.Config, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))

	cfg := testConfig(t)
	router := routes.SetupRouter(db, cfg, nil)
	return db, cfg, router
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func createUser(t *testing.T, db *gorm.DB, email, password, role string) models.User {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func loginToken(t *testing.T, cfg *config.Config, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Role, cfg.JWTSecret, cfg.JWTExpiry)
	require.NoError(t, err)
	return token
}

func createBook(t *testing.T, db *gorm.DB, title string, price int64, stock int) models.Book {
	t.Helper()
	book := models.Book{
		ISBN:          "978-" + title,
		Title:         title,
		Author:        "Author",
		Price:         price,
		StockQuantity: stock,
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}

func createAddress(t *testing.T, db *gorm.DB, userID uint) models.Address {
	t.Helper()
	address := models.Address{
		UserID:        userID,
		RecipientName: "Recipient",
		Phone:         "0900000000",
		AddressLine:   "12 Le Loi",
		City:          "Ho Chi Minh City",
		District:      "District 1",
	}
	require.NoError(t, db.Create(&address).Error)
	return address
}

// addToCart seeds a cart line directly.
func addToCart(t *testing.T, db *gorm.DB, userID, bookID uint, qty int) {
	t.Helper()
	require.NoError(t, db.Create(&models.CartItem{UserID: userID, BookID: bookID, Quantity: qty}).Error)
}

// placeOrder runs the checkout endpoint and returns the created order.
func placeOrder(t *testing.T, db *gorm.DB, router *gin.Engine, token string, addressID uint, method string) models.Order {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/v1/orders", token, gin.H{
		"address_id":     addressID,
		"payment_method": method,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var order models.Order
	require.NoError(t, db.Order("id DESC").First(&order).Error)
	return order
}
