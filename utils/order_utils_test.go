package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeVAT(t *testing.T) {
	assert.Equal(t, int64(0), ComputeVAT(0))
	assert.Equal(t, int64(25_000), ComputeVAT(250_000))
	assert.Equal(t, int64(10_000), ComputeVAT(100_000))
	// Rounded, not truncated
	assert.Equal(t, int64(10), ComputeVAT(95))
	assert.Equal(t, int64(9), ComputeVAT(94))
}

func TestComputeShippingFee(t *testing.T) {
	tests := []struct {
		subtotal int64
		want     int64
	}{
		{0, 30_000},
		{199_999, 30_000},
		{200_000, 20_000},
		{250_000, 20_000},
		{499_999, 20_000},
		{500_000, 0},
		{1_000_000, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeShippingFee(tt.subtotal), "subtotal=%d", tt.subtotal)
	}
}

func TestOrderTotalExample(t *testing.T) {
	subtotal := int64(250_000)
	total := subtotal + ComputeVAT(subtotal) + ComputeShippingFee(subtotal)
	assert.Equal(t, int64(295_000), total)
}

func TestGenerateOrderCode(t *testing.T) {
	code := GenerateOrderCode()
	assert.True(t, strings.HasPrefix(code, "ORD-"))
	parts := strings.Split(code, "-")
	assert.Len(t, parts, 3)
	assert.Len(t, parts[2], 5)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		c := GenerateOrderCode()
		assert.False(t, seen[c], "duplicate order code %s", c)
		seen[c] = true
	}
}

func TestInvoiceCodeFor(t *testing.T) {
	assert.Equal(t, "INV-ORD-ABC123-XY99Z", InvoiceCodeFor("ORD-ABC123-XY99Z"))
}

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "0d", FormatVND(0))
	assert.Equal(t, "1.000d", FormatVND(1000))
	assert.Equal(t, "295.000d", FormatVND(295_000))
	assert.Equal(t, "1.234.567d", FormatVND(1_234_567))
	assert.Equal(t, "-30.000d", FormatVND(-30_000))
}
