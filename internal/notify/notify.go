// Package notify renders and sends transactional emails through an injected
// transport. Callers decide whether a send failure matters; order creation
// treats it as best-effort.
package notify

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/flagforge/store-api/internal/domain/order"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Transport delivers a rendered message. Implementations either succeed or
// return an error carrying the provider's message. Swapping SMTP for the
// HTTP API (or a test fake) never changes a call site.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher renders templated store emails and hands them to a Transport.
type Dispatcher struct {
	transport Transport
}

// NewDispatcher creates a Dispatcher using the given transport.
func NewDispatcher(t Transport) *Dispatcher {
	return &Dispatcher{transport: t}
}

// OrderConfirmation sends the order confirmation email to the order's
// customer.
func (d *Dispatcher) OrderConfirmation(ctx context.Context, o *order.Order) error {
	html, err := renderConfirmation(o)
	if err != nil {
		return errors.Wrap(err, "render confirmation")
	}
	return d.transport.Send(ctx, Message{
		To:      o.Customer.Email,
		Subject: "Order Confirmation - FlagForge Store",
		HTML:    html,
	})
}

// Test sends a plain test email, used to verify transport credentials.
func (d *Dispatcher) Test(ctx context.Context, to string) error {
	return d.transport.Send(ctx, Message{
		To:      to,
		Subject: "FlagForge Store test email",
		HTML:    "<p>FlagForge Store email transport is working.</p>",
	})
}
