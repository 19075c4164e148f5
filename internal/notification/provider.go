// Package notification renders weather reports, delivers them through a
// Provider and records every delivery attempt.
package notification

import "context"

// Message is the content to be delivered by a Provider.
type Message struct {
	To      string
	Subject string
	// Text is the plain-text body. HTML, when set, is attached as an alternative.
	Text string
	HTML string
}

// Provider is the interface for notification delivery backends.
type Provider interface {
	// Name returns the provider identifier (e.g. "smtp").
	Name() string
	// Send delivers the message using the provider's transport.
	Send(ctx context.Context, msg Message) error
}
