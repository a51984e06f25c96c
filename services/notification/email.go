package notification

import (
	"fmt"
	"net/smtp"

	"slotwise/config"
	"slotwise/models"
	"slotwise/services/civil"
)

// RenderSummary produces the subject and body for a booking email in the
// requester's timezone.
func RenderSummary(template string, b *models.Booking, providerName string) (subject, body string) {
	when := b.Start.UTC().Format("2 January 2006, 15:04 MST")
	if loc, err := civil.Zone(b.RequesterTimezone); err == nil {
		when = b.Start.In(loc).Format("2 January 2006, 15:04 MST")
	}

	switch template {
	case TemplateBookingConfirmed:
		subject = "Your session is confirmed"
		body = fmt.Sprintf("Your %d-minute session with %s on %s is confirmed.", b.DurationMinutes, providerName, when)
		if b.MeetingURL != "" {
			body += fmt.Sprintf("\n\nJoin link: %s", b.MeetingURL)
		}
	case TemplateBookingCancelled:
		subject = "Your session was cancelled"
		body = fmt.Sprintf("Your %d-minute session with %s on %s has been cancelled.", b.DurationMinutes, providerName, when)
	case TemplateBookingRescheduled:
		subject = "Your session was rescheduled"
		body = fmt.Sprintf("Your %d-minute session with %s has moved to %s.", b.DurationMinutes, providerName, when)
	default:
		subject = "Booking update"
		body = fmt.Sprintf("Your booking %s was updated.", b.ID)
	}
	return subject, body
}

// SendMail delivers one message over the configured SMTP host.
func SendMail(recipient, subject, body string) error {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" {
		return fmt.Errorf("smtp host not configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		cfg.SMTPFrom, recipient, subject, body)

	addr := cfg.SMTPHost + ":" + cfg.SMTPPort
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, cfg.SMTPFrom, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
