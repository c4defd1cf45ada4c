// Package notify sends transactional email. Sends are fire-and-forget:
// failures are logged and never propagated to the request that triggered
// them.
package notify

import (
	"fmt"
	"log"

	gomail "gopkg.in/gomail.v2"

	"backend/internal/models"
)

type Mailer interface {
	SendOrderConfirmation(to string, order *models.Order)
	SendContactMessage(name, replyTo, message string)
}

// SMTPMailer delivers through a configured SMTP relay.
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	contact string
}

func NewSMTPMailer(host string, port int, user, password, contact string) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(host, port, user, password),
		from:    user,
		contact: contact,
	}
}

func (m *SMTPMailer) SendOrderConfirmation(to string, order *models.Order) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Order confirmed: %s", order.ID.Hex()))
	msg.SetBody("text/html", orderConfirmationBody(order))

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Println("[MAIL] [ERROR] order confirmation send failed:", err)
		return
	}
	log.Println("[MAIL] [INFO] order confirmation sent for:", order.ID.Hex())
}

func (m *SMTPMailer) SendContactMessage(name, replyTo, message string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("Reply-To", replyTo)
	msg.SetHeader("To", m.contact)
	msg.SetHeader("Subject", fmt.Sprintf("New contact form submission from %s", name))
	msg.SetBody("text/html", fmt.Sprintf(
		"<h3>New Contact Form Submission</h3><p><strong>Name:</strong> %s</p><p><strong>Email:</strong> %s</p><p><strong>Message:</strong> %s</p>",
		name, replyTo, message,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Println("[MAIL] [ERROR] contact send failed:", err)
		return
	}
	log.Println("[MAIL] [INFO] contact message sent")
}

func orderConfirmationBody(order *models.Order) string {
	return fmt.Sprintf(
		"<h3>Thanks for your order</h3><p>Order <strong>%s</strong> has been placed.</p><p>Items: %d &middot; Total: ₹%.2f</p><p>Expected delivery: %s</p>",
		order.ID.Hex(),
		len(order.Items),
		order.TotalAmount,
		order.ExpectedDeliveryDate.Format("02 Jan 2006"),
	)
}

// NopMailer is used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendOrderConfirmation(to string, order *models.Order) {
	log.Println("[MAIL] [INFO] smtp not configured, skipping order confirmation for:", order.ID.Hex())
}

func (NopMailer) SendContactMessage(name, replyTo, message string) {
	log.Println("[MAIL] [INFO] smtp not configured, skipping contact message")
}
