package provider

import (
	"context"
	"errors"
)

// ErrEmptyRecipient is returned when an Email has no To address.
var ErrEmptyRecipient = errors.New("email has no recipient")

// Email is one outbound notification with both body variants.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender abstracts delivery to an external email service.
// Mocking this interface in tests gives full control over transport
// behaviour without making real network calls. Implementations must be
// safe for concurrent use; the worker shares one Sender across all jobs.
type Sender interface {
	// Send delivers e and returns the transport's message id.
	Send(ctx context.Context, e Email) (string, error)
}
