package notification

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/okulab/therapy-api/internal/config"
	"github.com/okulab/therapy-api/internal/model"
	"github.com/okulab/therapy-api/pkg/logger"
)

// Mailer sends a single email
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

type noopMailer struct{}

// NewNoopMailer returns a mailer that drops everything, for deployments
// without SMTP configured.
func NewNoopMailer() Mailer {
	return noopMailer{}
}

func (noopMailer) Send(string, string, string) error { return nil }

// Service sends patient-facing notifications. All sends are best effort:
// failures are logged and never fail the calling request.
type Service struct {
	mailer Mailer
	logger *logger.Logger
}

func NewService(mailer Mailer, logger *logger.Logger) *Service {
	return &Service{mailer: mailer, logger: logger}
}

func (s *Service) NotifyClaimed(patient, doctor *model.User) {
	subject := "A clinician has taken over your care"
	body := fmt.Sprintf(
		"Hi %s,\n\nDr. %s is now your assigned clinician and will prescribe your therapy plan shortly.\n",
		patient.Name, doctor.Name,
	)
	if err := s.mailer.Send(patient.Email, subject, body); err != nil {
		s.logger.Error(err, "failed to send claim notification", "patient_id", patient.ID.String())
	}
}

func (s *Service) NotifyPrescribed(patient *model.User, prescription *model.Prescription) {
	subject := "Your therapy plan was updated"
	body := fmt.Sprintf(
		"Hi %s,\n\nA new exercise was prescribed: %s. Open the app to see your updated plan.\n",
		patient.Name, prescription.ProtocolName,
	)
	if err := s.mailer.Send(patient.Email, subject, body); err != nil {
		s.logger.Error(err, "failed to send prescription notification", "patient_id", patient.ID.String())
	}
}
