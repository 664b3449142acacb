package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// mailgunAPI is the subset of *mailgun.MailgunImpl the sender uses.
type mailgunAPI interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// MailgunSender delivers email through the Mailgun HTTP API.
type MailgunSender struct {
	client  mailgunAPI
	from    string
	timeout time.Duration
}

// NewMailgunSender builds a sender for domain. apiBase is optional and
// selects the region endpoint (mailgun.APIBaseEU for EU domains).
func NewMailgunSender(domain, apiKey, apiBase, from string, timeout time.Duration) *MailgunSender {
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	return newMailgunSender(mg, from, timeout)
}

func newMailgunSender(client mailgunAPI, from string, timeout time.Duration) *MailgunSender {
	return &MailgunSender{client: client, from: from, timeout: timeout}
}

func (s *MailgunSender) Send(ctx context.Context, e Email) (string, error) {
	if e.To == "" {
		return "", ErrEmptyRecipient
	}

	message := s.client.NewMessage(s.from, e.Subject, e.Text, e.To)
	if e.HTML != "" {
		message.SetHtml(e.HTML)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	_, id, err := s.client.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("mailgun send: %w", err)
	}
	return id, nil
}

var _ Sender = (*MailgunSender)(nil)
