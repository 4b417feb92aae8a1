// Package notify delivers portal emails: registration credentials,
// password resets, approval notices and linking correspondence.
package notify

import "context"

// Attachment is a file carried with an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a single outgoing email.
type Message struct {
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

type Provider interface {
	Send(ctx context.Context, msg Message) error
}

// NoOpProvider discards messages. Used in tests and local setups
// without an SMTP relay.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, msg Message) error {
	return nil
}
