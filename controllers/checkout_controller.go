package controllers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/config"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderController handles checkout, payment and the customer order views
type OrderController struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer *utils.Mailer
}

// NewOrderController creates an OrderController
func NewOrderController(db *gorm.DB, cfg *config.Config, mailer *utils.Mailer) *OrderController {
	return &OrderController{db: db, cfg: cfg, mailer: mailer}
}

// CreateOrder turns the user's cart into an order in a single transaction
func (oc *OrderController) CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		AddressID     uint   `json:"address_id" binding:"required"`
		PaymentMethod string `json:"payment_method" binding:"required,oneof=cod card"`
		Notes         string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid order request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request. Payment method must be one of: cod, card", err.Error())
		return
	}
	utils.LogInfo("Processing order placement for user ID: %d, payment method: %s", user.ID, req.PaymentMethod)

	var address models.Address
	if err := oc.db.Where("id = ? AND user_id = ?", req.AddressID, user.ID).First(&address).Error; err != nil {
		utils.LogError("Address not found, ID: %d, user ID: %d", req.AddressID, user.ID)
		utils.BadRequest(c, "Invalid delivery address", nil)
		return
	}

	tx := oc.db.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction for user ID: %d: %v", user.ID, tx.Error)
		utils.InternalServerError(c, "Failed to place order", nil)
		return
	}

	var cartItems []models.CartItem
	if err := tx.Preload("Book").Where("user_id = ?", user.ID).Find(&cartItems).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to load cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to load cart", nil)
		return
	}
	if len(cartItems) == 0 {
		tx.Rollback()
		utils.LogError("Empty cart for user ID: %d", user.ID)
		utils.BadRequest(c, "Cannot place order with empty cart", nil)
		return
	}

	// Re-check stock under row locks; cart-time checks are advisory only
	var subtotal int64
	orderItems := make([]models.OrderItem, 0, len(cartItems))
	for _, item := range cartItems {
		var book models.Book
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&book, item.BookID).Error; err != nil {
			tx.Rollback()
			utils.LogError("Book not found, ID: %d, user ID: %d: %v", item.BookID, user.ID, err)
			utils.NotFound(c, fmt.Sprintf("Book with ID %d not found", item.BookID))
			return
		}
		if book.StockQuantity < item.Quantity {
			tx.Rollback()
			utils.LogError("Insufficient stock for book %q, available: %d, requested: %d", book.Title, book.StockQuantity, item.Quantity)
			utils.BadRequest(c, fmt.Sprintf("%q does not have enough stock. Available: %d, Requested: %d", book.Title, book.StockQuantity, item.Quantity), nil)
			return
		}

		if err := tx.Model(&models.Book{}).Where("id = ?", item.BookID).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			utils.LogError("Failed to update stock for book ID: %d, user ID: %d: %v", item.BookID, user.ID, err)
			utils.InternalServerError(c, "Failed to update book stock", nil)
			return
		}

		lineSubtotal := book.Price * int64(item.Quantity)
		subtotal += lineSubtotal
		orderItems = append(orderItems, models.OrderItem{
			BookID:   item.BookID,
			Quantity: item.Quantity,
			Price:    book.Price,
			Subtotal: lineSubtotal,
		})
	}

	vat := utils.ComputeVAT(subtotal)
	shippingFee := utils.ComputeShippingFee(subtotal)
	order := models.Order{
		UserID:        user.ID,
		OrderCode:     utils.GenerateOrderCode(),
		AddressID:     address.ID,
		Subtotal:      subtotal,
		VAT:           vat,
		ShippingFee:   shippingFee,
		TotalAmount:   subtotal + vat + shippingFee,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		OrderItems:    orderItems,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to create order for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create order", nil)
		return
	}

	history := models.OrderStatusHistory{
		OrderID:   order.ID,
		OldStatus: "",
		NewStatus: models.OrderStatusPending,
		ChangedBy: user.ID,
		Notes:     "Order placed",
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to record order history for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to create order", nil)
		return
	}

	if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to clear cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to clear cart", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit order for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to place order", nil)
		return
	}
	utils.LogInfo("Order %s placed for user ID: %d, total: %d", order.OrderCode, user.ID, order.TotalAmount)

	if err := oc.db.Preload("OrderItems.Book").Preload("Address").First(&order, order.ID).Error; err != nil {
		utils.LogError("Failed to reload order ID: %d: %v", order.ID, err)
	}
	utils.Created(c, "Order placed successfully", gin.H{"order": order})
}

// ProcessPayment runs the order through the payment gateway
func (oc *OrderController) ProcessPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		PaymentInfo struct {
			CardNumber      string `json:"card_number"`
			CardHolder      string `json:"card_holder"`
			SimulateSuccess *bool  `json:"simulate_success"`
		} `json:"payment_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid payment request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var order models.Order
	if err := oc.db.Where("id = ? AND user_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		utils.LogError("Order not found, ID: %d, user ID: %d", orderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		utils.LogError("Order ID: %d is already paid", order.ID)
		utils.BadRequest(c, "Order has already been paid", nil)
		return
	}
	if order.Status != models.OrderStatusPending {
		utils.LogError("Order ID: %d is not payable in status %s", order.ID, order.Status)
		utils.BadRequest(c, fmt.Sprintf("Order in status %q cannot be paid", order.Status), nil)
		return
	}
	utils.LogInfo("Processing payment for order %s, user ID: %d", order.OrderCode, user.ID)

	// Gateway simulation: the charge succeeds unless the caller opts out
	if req.PaymentInfo.SimulateSuccess != nil && !*req.PaymentInfo.SimulateSuccess {
		if err := oc.db.Model(&order).Update("payment_status", models.PaymentStatusFailed).Error; err != nil {
			utils.LogError("Failed to record payment failure for order ID: %d: %v", order.ID, err)
			utils.InternalServerError(c, "Failed to process payment", nil)
			return
		}
		utils.LogInfo("Payment declined for order %s, user ID: %d", order.OrderCode, user.ID)
		utils.BadRequest(c, "Payment failed. Please try again or use a different payment method", gin.H{
			"order_code":     order.OrderCode,
			"payment_status": models.PaymentStatusFailed,
		})
		return
	}

	tx := oc.db.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction for order ID: %d: %v", order.ID, tx.Error)
		utils.InternalServerError(c, "Failed to process payment", nil)
		return
	}

	if err := tx.Model(&order).Updates(map[string]interface{}{
		"payment_status": models.PaymentStatusPaid,
		"status":         models.OrderStatusConfirmed,
	}).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to update order ID: %d after payment: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to process payment", nil)
		return
	}

	history := models.OrderStatusHistory{
		OrderID:   order.ID,
		OldStatus: models.OrderStatusPending,
		NewStatus: models.OrderStatusConfirmed,
		ChangedBy: user.ID,
		Notes:     "Payment received",
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to record order history for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to process payment", nil)
		return
	}

	invoice := models.Invoice{
		OrderID:     order.ID,
		InvoiceCode: utils.InvoiceCodeFor(order.OrderCode),
		InvoiceDate: time.Now(),
	}
	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to create invoice for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to create invoice", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit payment for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to process payment", nil)
		return
	}
	utils.LogInfo("Payment completed for order %s, invoice %s", order.OrderCode, invoice.InvoiceCode)

	// Confirmation email is best effort
	if oc.mailer != nil {
		if err := oc.mailer.SendOrderConfirmationEmail(user.Email, order.OrderCode, order.TotalAmount); err != nil {
			utils.LogError("Failed to send confirmation email for order %s: %v", order.OrderCode, err)
		}
	}

	utils.Success(c, "Payment processed successfully", gin.H{
		"order_code":     order.OrderCode,
		"payment_status": models.PaymentStatusPaid,
		"status":         models.OrderStatusConfirmed,
		"invoice_code":   invoice.InvoiceCode,
	})
}
