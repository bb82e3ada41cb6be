// Package notify sends reservation emails. Sending is best-effort by
// contract: the booking is already committed when a mail goes out, so
// failures are logged by the caller and never fail the reservation.
package notify

import (
	"context"
	"fmt"

	"github.com/asiacuisine/reservation-api/internal/model"
	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Mailer dispatches the customer confirmation and the admin notification for
// a freshly recorded booking. partySize comes straight from the form and is
// not persisted.
type Mailer interface {
	BookingReceived(ctx context.Context, b model.Booking, partySize string) error
}

// ResendMailer sends mail through the Resend API.
type ResendMailer struct {
	client  *resend.Client
	from    string
	notify  string
	adminTo string
}

// NewResendMailer constructs a ResendMailer. from is the customer-facing
// sender, notifyFrom the sender for admin alerts, adminTo the restaurant's
// own inbox.
func NewResendMailer(apiKey, from, notifyFrom, adminTo string) *ResendMailer {
	return &ResendMailer{
		client:  resend.NewClient(apiKey),
		from:    from,
		notify:  notifyFrom,
		adminTo: adminTo,
	}
}

// BookingReceived sends both emails. The admin alert is still attempted when
// the customer mail fails; the first error is returned for logging.
func (m *ResendMailer) BookingReceived(ctx context.Context, b model.Booking, partySize string) error {
	ref := uuid.NewString()[:8]

	_, customerErr := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{b.Email},
		Subject: "Confirmation de votre demande de réservation",
		Html: fmt.Sprintf(`
			<h1>Merci pour votre réservation, %s !</h1>
			<p>Nous avons bien reçu votre demande pour le service suivant :</p>
			<ul>
				<li><strong>Service :</strong> %s</li>
				<li><strong>Date :</strong> %s</li>
				<li><strong>Nombre de personnes :</strong> %s</li>
				<li><strong>Référence :</strong> %s</li>
			</ul>
			<p>Nous vous recontacterons très prochainement pour confirmer les détails.</p>
			<p>L'équipe Asiacuisine.re</p>`,
			b.Name, b.Service, b.BookingDate, orDefault(partySize, "Non précisé"), ref,
		),
	})

	_, adminErr := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.notify,
		To:      []string{m.adminTo},
		Subject: fmt.Sprintf("Nouvelle demande de réservation de %s", b.Name),
		Html: fmt.Sprintf(`
			<h1>Nouvelle demande de réservation</h1>
			<p>Une nouvelle demande a été faite sur le site (réf. %s) :</p>
			<ul>
				<li><strong>Nom :</strong> %s</li>
				<li><strong>Email :</strong> %s</li>
				<li><strong>Téléphone :</strong> %s</li>
				<li><strong>Service :</strong> %s</li>
				<li><strong>Date :</strong> %s</li>
				<li><strong>Personnes :</strong> %s</li>
				<li><strong>Message :</strong> %s</li>
			</ul>`,
			ref, b.Name, b.Email, orDefault(b.Phone, "Non fourni"), b.Service,
			b.BookingDate, orDefault(partySize, "Non précisé"), orDefault(b.Message, "Aucun"),
		),
	})

	if customerErr != nil {
		return fmt.Errorf("send customer confirmation: %w", customerErr)
	}
	if adminErr != nil {
		return fmt.Errorf("send admin notification: %w", adminErr)
	}
	return nil
}

// LogMailer only logs the notification. Used in development when no Resend
// API key is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) BookingReceived(_ context.Context, b model.Booking, partySize string) error {
	m.logger.Info("booking notification (mail disabled)",
		zap.Int("booking_id", b.ID),
		zap.String("date", b.BookingDate.String()),
		zap.String("email", b.Email),
		zap.String("party_size", partySize),
	)
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
