package controllers

import (
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
	"gorm.io/gorm"
)

// applyStatusTransition moves an order to a new status inside the caller's
// transaction. It validates the move against the lifecycle table, writes the
// audit row, and on cancellation restores stock and marks the payment
// refunded. The caller commits or rolls back.
func applyStatusTransition(tx *gorm.DB, order *models.Order, newStatus string, changedBy uint, notes string) error {
	if !models.CanTransition(order.Status, newStatus) {
		return &models.InvalidTransitionError{From: order.Status, To: newStatus}
	}

	// Updates with a map writes the new values back onto order, so the
	// audit row needs the status captured before the update runs.
	oldStatus := order.Status

	updates := map[string]interface{}{"status": newStatus}
	if newStatus == models.OrderStatusCancelled {
		updates["payment_status"] = models.PaymentStatusRefunded

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.Model(&models.Book{}).Where("id = ?", item.BookID).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		utils.LogInfo("Restored stock for %d items of order %s", len(items), order.OrderCode)
	}

	if err := tx.Model(order).Updates(updates).Error; err != nil {
		return err
	}

	history := models.OrderStatusHistory{
		OrderID:   order.ID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: changedBy,
		Notes:     notes,
	}
	if err := tx.Create(&history).Error; err != nil {
		return err
	}

	order.Status = newStatus
	if newStatus == models.OrderStatusCancelled {
		order.PaymentStatus = models.PaymentStatusRefunded
	}
	return nil
}
