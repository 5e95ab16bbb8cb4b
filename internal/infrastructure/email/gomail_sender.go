package email

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/facturio/facturio-api/internal/application/reminder"
	"github.com/facturio/facturio-api/pkg/config"
)

var _ reminder.EmailSender = (*GomailSender)(nil)

// GomailSender envoie les relances par SMTP via gomail.
type GomailSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewGomailSender construit l'expéditeur depuis la configuration SMTP.
func NewGomailSender(cfg config.SMTPConfig) (*GomailSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("email: SMTP_HOST et SMTP_FROM requis")
	}
	return &GomailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}, nil
}

// SendReminder envoie un email de relance en texte brut.
func (s *GomailSender) SendReminder(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email: envoi à %s: %w", to, err)
	}
	return nil
}
