package models

import (
	"fmt"
	"time"
)

// Order status lifecycle
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipping   = "shipping"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment status values
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// orderStatusTransitions is the single authoritative transition table,
// shared by the customer and admin code paths. delivered and cancelled
// are terminal.
var orderStatusTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:   {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransition reports whether an order may move from one status to
// another according to the lifecycle table.
func CanTransition(from, to string) bool {
	for _, next := range orderStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError names the rejected source and target statuses.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %q to %q", e.From, e.To)
}

// IsValidOrderStatus reports whether s is a known lifecycle status.
func IsValidOrderStatus(s string) bool {
	_, ok := orderStatusTransitions[s]
	return ok
}

// IsValidPaymentStatus reports whether s is a known payment status.
func IsValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Order is an immutable snapshot of a checkout: all money fields are in
// the smallest VND unit and are fixed at creation time.
type Order struct {
	ID            uint        `json:"order_id" gorm:"primaryKey"`
	OrderCode     string      `json:"order_code" gorm:"uniqueIndex;not null"`
	UserID        uint        `json:"user_id" gorm:"not null"`
	User          User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	AddressID     uint        `json:"address_id"`
	Address       Address     `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	Subtotal      int64       `json:"subtotal"`
	VAT           int64       `json:"vat"`
	ShippingFee   int64       `json:"shipping_fee"`
	TotalAmount   int64       `json:"total_amount"`
	Status        string      `json:"status" gorm:"default:'pending'"`
	PaymentStatus string      `json:"payment_status" gorm:"default:'unpaid'"`
	PaymentMethod string      `json:"payment_method"`
	Notes         string      `json:"notes"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	OrderItems    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem freezes quantity and unit price per book line, decoupled
// from the live book row.
type OrderItem struct {
	ID       uint  `json:"order_item_id" gorm:"primaryKey"`
	OrderID  uint  `json:"order_id" gorm:"not null;index"`
	BookID   uint  `json:"book_id" gorm:"not null"`
	Book     Book  `json:"book,omitempty" gorm:"foreignKey:BookID"`
	Quantity int   `json:"quantity" gorm:"not null"`
	Price    int64 `json:"price" gorm:"not null"`
	Subtotal int64 `json:"subtotal" gorm:"not null"`
}

// OrderStatusHistory is the append-only audit trail of status changes.
// Rows are written in the same transaction as the Order.status update so
// the two cannot diverge.
type OrderStatusHistory struct {
	ID        uint      `json:"history_id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;index"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status" gorm:"not null"`
	ChangedBy uint      `json:"changed_by"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Invoice is created once per order, on successful payment.
type Invoice struct {
	ID          uint      `json:"invoice_id" gorm:"primaryKey"`
	OrderID     uint      `json:"order_id" gorm:"uniqueIndex;not null"`
	Order       Order     `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	InvoiceCode string    `json:"invoice_code" gorm:"uniqueIndex;not null"`
	InvoiceDate time.Time `json:"invoice_date"`
	CreatedAt   time.Time `json:"created_at"`
}
