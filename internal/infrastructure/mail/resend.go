package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// Resend sends mail through the Resend HTTP API.
type Resend struct {
	client *resend.Client
	from   string
}

var _ ports.Mailer = (*Resend)(nil)

func NewResend(apiKey, from string) *Resend {
	return &Resend{client: resend.NewClient(apiKey), from: from}
}

func (r *Resend) Send(ctx context.Context, msg domain.Email) (string, error) {
	req, err := request(r.from, msg)
	if err != nil {
		return "", err
	}
	sent, err := r.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: resend: %v", domain.ErrUpstream, err)
	}
	return sent.Id, nil
}

func request(from string, msg domain.Email) (*resend.SendEmailRequest, error) {
	if from == "" {
		return nil, errors.New("mail: sender address not configured")
	}
	if len(msg.To) == 0 {
		return nil, domain.InvalidInput("email needs at least one recipient")
	}
	if msg.Text == "" && msg.HTML == "" {
		return nil, domain.InvalidInput("email body is empty")
	}
	return &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}, nil
}
