package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
)

// ListMyOrders returns the user's order history, newest first
func (oc *OrderController) ListMyOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	pagination := utils.NewPagination(c, 10)
	utils.LogInfo("Fetching orders for user ID: %d, page: %d", user.ID, pagination.Page)

	var total int64
	if err := oc.db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		utils.LogError("Failed to count orders for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch orders", nil)
		return
	}
	pagination.SetTotal(total)

	var orders []models.Order
	if err := oc.db.Preload("OrderItems.Book").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&orders).Error; err != nil {
		utils.LogError("Failed to fetch orders for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch orders", nil)
		return
	}

	utils.SuccessWithPagination(c, "Orders retrieved successfully", gin.H{"orders": orders}, pagination)
}

// GetOrderDetails returns one order with items, address and status history
func (oc *OrderController) GetOrderDetails(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	if err := oc.db.Preload("OrderItems.Book").Preload("Address").
		Where("id = ? AND user_id = ?", orderID, user.ID).
		First(&order).Error; err != nil {
		utils.LogError("Order not found, ID: %d, user ID: %d", orderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}

	var history []models.OrderStatusHistory
	if err := oc.db.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&history).Error; err != nil {
		utils.LogError("Failed to fetch status history for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to fetch order details", nil)
		return
	}

	utils.Success(c, "Order retrieved successfully", gin.H{
		"order":          order,
		"status_history": history,
	})
}

// CancelOrder lets the customer cancel an order that has not entered
// fulfilment yet. Stock is restored and the payment marked refunded.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var order models.Order
	if err := oc.db.Where("id = ? AND user_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		utils.LogError("Order not found, ID: %d, user ID: %d", orderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}

	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusConfirmed {
		utils.LogError("Order %s cannot be cancelled from status %s by user ID: %d", order.OrderCode, order.Status, user.ID)
		utils.BadRequest(c, (&models.InvalidTransitionError{From: order.Status, To: models.OrderStatusCancelled}).Error(), nil)
		return
	}

	tx := oc.db.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction for order ID: %d: %v", order.ID, tx.Error)
		utils.InternalServerError(c, "Failed to cancel order", nil)
		return
	}

	if err := applyStatusTransition(tx, &order, models.OrderStatusCancelled, user.ID, "Cancelled by customer"); err != nil {
		tx.Rollback()
		var invalid *models.InvalidTransitionError
		if errors.As(err, &invalid) {
			utils.BadRequest(c, invalid.Error(), nil)
			return
		}
		utils.LogError("Failed to cancel order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to cancel order", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit cancellation for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to cancel order", nil)
		return
	}
	utils.LogInfo("Order %s cancelled by user ID: %d", order.OrderCode, user.ID)

	utils.Success(c, "Order cancelled successfully", gin.H{
		"order_code":     order.OrderCode,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	})
}
