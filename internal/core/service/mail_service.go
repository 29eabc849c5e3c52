package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

type MailService struct {
	mailer     ports.Mailer
	adminEmail string
	log        zerolog.Logger
}

func NewMailService(mailer ports.Mailer, adminEmail string, log zerolog.Logger) *MailService {
	return &MailService{mailer: mailer, adminEmail: adminEmail, log: log}
}

// SendTest sends a diagnostic message, by default to the admin mailbox.
func (s *MailService) SendTest(ctx context.Context, viewer domain.Viewer, to string) (*ports.MailResult, error) {
	if err := requireAdminMode(viewer); err != nil {
		return nil, err
	}
	to = strings.TrimSpace(to)
	if to == "" {
		to = s.adminEmail
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return nil, domain.InvalidInput("a valid recipient is required")
	}

	sentAt := time.Now().UTC().Format(time.RFC3339)
	msg := domain.Email{
		To:      []string{to},
		Subject: "Test d'envoi",
		Text:    "Ceci est un message de test envoyé le " + sentAt + ".",
		HTML:    "<p>Ceci est un message de test envoyé le " + sentAt + ".</p>",
	}
	id, err := s.mailer.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("send test email: %w", err)
	}
	s.log.Info().Str("message_id", id).Str("user_id", viewer.UserID).Msg("test email sent")
	return &ports.MailResult{ID: id, To: msg.To}, nil
}

func (s *MailService) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	if order.Email == "" {
		return domain.InvalidInput("order %s has no email", order.ID)
	}

	var lines strings.Builder
	for _, it := range order.Items {
		fmt.Fprintf(&lines, "- %d x %s\n", it.Quantity, it.Name)
	}
	total := formatAmount(order.TotalCents, order.Currency)
	msg := domain.Email{
		To:      []string{order.Email},
		Subject: fmt.Sprintf("Confirmation de commande %s", shortID(order.ID)),
		Text:    fmt.Sprintf("Merci pour votre commande.\n\n%s\nTotal : %s\n", lines.String(), total),
	}
	id, err := s.mailer.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}
	s.log.Info().Str("message_id", id).Str("order_id", order.ID).Msg("order confirmation sent")
	return nil
}
