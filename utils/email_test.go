package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMailerSkipsWithoutSMTP(t *testing.T) {
	var nilMailer *Mailer
	assert.NoError(t, nilMailer.Send("a@example.com", "subject", "body"))
	assert.NoError(t, nilMailer.SendPasswordResetEmail("a@example.com", "token", "A"))
	assert.NoError(t, nilMailer.SendOrderConfirmationEmail("a@example.com", "ORD-X-Y", 100_000))

	unconfigured := NewMailer("", 0, "", "", "", "http://localhost:3000")
	assert.NoError(t, unconfigured.Send("a@example.com", "subject", "body"))
	assert.NoError(t, unconfigured.SendPasswordResetEmail("a@example.com", "token", "A"))
	assert.NoError(t, unconfigured.SendOrderConfirmationEmail("a@example.com", "ORD-X-Y", 100_000))
}
