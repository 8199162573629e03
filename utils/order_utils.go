package utils

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Pricing rules. All amounts are in the smallest VND unit.
const (
	VATRate = 0.10

	freeShippingThreshold    = 500_000
	reducedShippingThreshold = 200_000
	reducedShippingFee       = 20_000
	standardShippingFee      = 30_000
)

// ComputeVAT returns the VAT for a subtotal, rounded to the nearest unit.
func ComputeVAT(subtotal int64) int64 {
	return int64(math.Round(float64(subtotal) * VATRate))
}

// ComputeShippingFee applies the tiered shipping rule:
// below 200k costs 30k, 200k up to 500k costs 20k, 500k and above is free.
func ComputeShippingFee(subtotal int64) int64 {
	switch {
	case subtotal < reducedShippingThreshold:
		return standardShippingFee
	case subtotal < freeShippingThreshold:
		return reducedShippingFee
	default:
		return 0
	}
}

// GenerateOrderCode returns a unique human-readable order code.
func GenerateOrderCode() string {
	timestamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := make([]byte, 5)
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return fmt.Sprintf("ORD-%s-%s", timestamp, suffix)
}

// InvoiceCodeFor derives the invoice code from an order code.
func InvoiceCodeFor(orderCode string) string {
	return "INV-" + orderCode
}

// FormatVND renders an amount with thousands separators for exports.
func FormatVND(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		out = "-" + out
	}
	return out + "d"
}
