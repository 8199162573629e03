package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusProcessing},
		{OrderStatusConfirmed, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusShipping},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusShipping, OrderStatusDelivered},
		{OrderStatusShipping, OrderStatusCancelled},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct{ from, to string }{
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusConfirmed, OrderStatusShipping},
		{OrderStatusShipping, OrderStatusConfirmed},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusPending},
		{"unknown", OrderStatusPending},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be rejected", tt.from, tt.to)
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := &InvalidTransitionError{From: OrderStatusDelivered, To: OrderStatusCancelled}
	assert.Equal(t, `cannot change order status from "delivered" to "cancelled"`, err.Error())
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range []string{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, IsValidOrderStatus(s), s)
	}
	assert.False(t, IsValidOrderStatus("Pending"))
	assert.False(t, IsValidOrderStatus("returned"))
	assert.False(t, IsValidOrderStatus(""))
}

func TestIsValidPaymentStatus(t *testing.T) {
	for _, s := range []string{PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded} {
		assert.True(t, IsValidPaymentStatus(s), s)
	}
	assert.False(t, IsValidPaymentStatus("pending"))
}
