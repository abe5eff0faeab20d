package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

// Message is one rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	Tag     string
}

// Sender delivers rendered email and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Mailgun delivers through the Mailgun HTTP API.
type Mailgun struct {
	Sender string
	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Sender: sender, client: mg.NewMailgun(domain, apiKey)}
}

var _ Sender = (*Mailgun)(nil)

// Send delivers msg. HTML is optional; Tag groups messages per template in Mailgun analytics.
func (m *Mailgun) Send(ctx context.Context, msg Message) (string, error) {
	if m.client == nil || m.Sender == "" {
		return "", errors.New("mailgun is not configured")
	}
	out := m.client.NewMessage(m.Sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		out.SetHtml(msg.HTML)
	}
	if msg.Tag != "" {
		if err := out.AddTag(msg.Tag); err != nil {
			return "", err
		}
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, id, err := m.client.Send(c, out)
	return id, err
}
