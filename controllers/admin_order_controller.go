package controllers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// AdminOrderController manages orders from the back office
type AdminOrderController struct {
	db *gorm.DB
}

// NewAdminOrderController creates an AdminOrderController
func NewAdminOrderController(db *gorm.DB) *AdminOrderController {
	return &AdminOrderController{db: db}
}

// ListOrders returns orders with optional status and search filters
func (oc *AdminOrderController) ListOrders(c *gin.Context) {
	pagination := utils.NewPagination(c, 20)

	query := oc.db.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		if !models.IsValidOrderStatus(status) {
			utils.BadRequest(c, "Unknown order status filter", nil)
			return
		}
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		term := "%" + search + "%"
		query = query.Where(
			"order_code LIKE ? OR user_id IN (?)",
			term,
			oc.db.Model(&models.User{}).Select("id").Where("email LIKE ? OR full_name LIKE ?", term, term),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count orders: %v", err)
		utils.InternalServerError(c, "Failed to fetch orders", nil)
		return
	}
	pagination.SetTotal(total)

	var orders []models.Order
	if err := query.Preload("User").Preload("OrderItems.Book").
		Order("created_at DESC").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&orders).Error; err != nil {
		utils.LogError("Failed to fetch orders: %v", err)
		utils.InternalServerError(c, "Failed to fetch orders", nil)
		return
	}

	utils.SuccessWithPagination(c, "Orders retrieved successfully", gin.H{"orders": orders}, pagination)
}

// GetOrder returns one order with items, address, customer and history
func (oc *AdminOrderController) GetOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	if err := oc.db.Preload("User").Preload("Address").Preload("OrderItems.Book").
		First(&order, orderID).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	var history []models.OrderStatusHistory
	if err := oc.db.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&history).Error; err != nil {
		utils.LogError("Failed to fetch status history for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to fetch order", nil)
		return
	}

	utils.Success(c, "Order retrieved successfully", gin.H{
		"order":          order,
		"status_history": history,
	})
}

// UpdateOrderStatus moves an order through the lifecycle
func (oc *AdminOrderController) UpdateOrderStatus(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if !models.IsValidOrderStatus(req.Status) {
		utils.LogError("Unknown order status %q requested by admin ID: %d", req.Status, admin.ID)
		utils.BadRequest(c, "Unknown order status", nil)
		return
	}

	var order models.Order
	if err := oc.db.First(&order, orderID).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	tx := oc.db.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction for order ID: %d: %v", order.ID, tx.Error)
		utils.InternalServerError(c, "Failed to update order status", nil)
		return
	}

	if err := applyStatusTransition(tx, &order, req.Status, admin.ID, req.Notes); err != nil {
		tx.Rollback()
		var invalid *models.InvalidTransitionError
		if errors.As(err, &invalid) {
			utils.LogError("Invalid transition for order %s: %v", order.OrderCode, err)
			utils.BadRequest(c, invalid.Error(), nil)
			return
		}
		utils.LogError("Failed to update status for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to update order status", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit status update for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to update order status", nil)
		return
	}
	utils.LogInfo("Order %s moved to %s by admin ID: %d", order.OrderCode, order.Status, admin.ID)

	utils.Success(c, "Order status updated successfully", gin.H{
		"order_code":     order.OrderCode,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	})
}

// ConfirmCODPayment marks an unpaid cash-on-delivery order as paid and
// creates its invoice
func (oc *AdminOrderController) ConfirmCODPayment(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	if err := oc.db.First(&order, orderID).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}
	if order.PaymentMethod != "cod" {
		utils.LogError("COD confirmation attempted on %s order %s", order.PaymentMethod, order.OrderCode)
		utils.BadRequest(c, "Only cash-on-delivery orders can be confirmed this way", nil)
		return
	}
	if order.PaymentStatus != models.PaymentStatusUnpaid {
		utils.LogError("COD confirmation attempted on %s order %s", order.PaymentStatus, order.OrderCode)
		utils.BadRequest(c, "Order is not awaiting payment", nil)
		return
	}

	tx := oc.db.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction for order ID: %d: %v", order.ID, tx.Error)
		utils.InternalServerError(c, "Failed to confirm payment", nil)
		return
	}

	if err := tx.Model(&order).Update("payment_status", models.PaymentStatusPaid).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to mark order ID: %d paid: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to confirm payment", nil)
		return
	}

	if order.Status == models.OrderStatusPending {
		if err := applyStatusTransition(tx, &order, models.OrderStatusConfirmed, admin.ID, "COD payment confirmed"); err != nil {
			tx.Rollback()
			utils.LogError("Failed to confirm order ID: %d: %v", order.ID, err)
			utils.InternalServerError(c, "Failed to confirm payment", nil)
			return
		}
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
		utils.LogError("Failed to commit COD confirmation for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to confirm payment", nil)
		return
	}
	utils.LogInfo("COD payment confirmed for order %s, invoice %s", order.OrderCode, invoice.InvoiceCode)

	utils.Success(c, "Payment confirmed successfully", gin.H{
		"order_code":     order.OrderCode,
		"payment_status": models.PaymentStatusPaid,
		"status":         order.Status,
		"invoice_code":   invoice.InvoiceCode,
	})
}

// GetOrderStats returns order counts grouped by status
func (oc *AdminOrderController) GetOrderStats(c *gin.Context) {
	var rows []struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	if err := oc.db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		utils.LogError("Failed to compute order stats: %v", err)
		utils.InternalServerError(c, "Failed to fetch order stats", nil)
		return
	}

	counts := gin.H{}
	var total int64
	for _, row := range rows {
		counts[row.Status] = row.Count
		total += row.Count
	}

	utils.Success(c, "Order stats retrieved successfully", gin.H{
		"total":     total,
		"by_status": counts,
	})
}
