package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string

	frontendURL string
}

// NewMailer creates a Mailer from SMTP settings
func NewMailer(host string, port int, username, password, from, frontendURL string) *Mailer {
	return &Mailer{
		host:        host,
		port:        port,
		username:    username,
		password:    password,
		from:        from,
		frontendURL: frontendURL,
	}
}

// Send sends a single HTML email. Without SMTP configured the email is
// skipped so local environments work without a mail server.
func (m *Mailer) Send(to, subject, body string) error {
	if m == nil || m.host == "" {
		LogInfo("SMTP not configured, skipping email to %s", to)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendPasswordResetEmail mails the raw reset token as a frontend link.
// The link expires a few minutes after issuance.
func (m *Mailer) SendPasswordResetEmail(to, resetToken, fullName string) error {
	if m == nil || m.host == "" {
		LogInfo("SMTP not configured, skipping password reset email to %s", to)
		return nil
	}

	subject := "Password Reset Request"
	body := fmt.Sprintf(`
		<h2>Password Reset Request</h2>
		<p>Hi %s,</p>
		<p>You have requested to reset your password. Click the link below to proceed:</p>
		<p><a href="%s/reset-password?token=%s">Reset Password</a></p>
		<p>This link will expire in 5 minutes.</p>
		<p>If you didn't request this reset, please ignore this email.</p>
	`, fullName, m.frontendURL, resetToken)

	return m.Send(to, subject, body)
}

// SendOrderConfirmationEmail mails a payment confirmation. Callers treat
// failures as non-fatal; the order is already committed.
func (m *Mailer) SendOrderConfirmationEmail(to, orderCode string, totalAmount int64) error {
	if m == nil || m.host == "" {
		LogInfo("SMTP not configured, skipping confirmation email for order %s", orderCode)
		return nil
	}

	subject := fmt.Sprintf("Order %s confirmed", orderCode)
	body := fmt.Sprintf(`
		<h2>Thank you for your order!</h2>
		<p>Your payment for order <strong>%s</strong> has been received.</p>
		<p>Order total: <strong>%s</strong></p>
		<p>We will notify you when your order ships.</p>
	`, orderCode, FormatVND(totalAmount))

	return m.Send(to, subject, body)
}
