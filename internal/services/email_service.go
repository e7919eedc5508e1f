package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, firstName string) error
	SendRecoveryCodeEmail(email, code string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, firstName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to ComplaintDesk!")

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Thank you for registering with us. Your account has been successfully created.</p>
		<p>You can now file complaints and track their status.</p>
		<p>Best regards,<br>The ComplaintDesk Team</p>
	`, firstName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}

	return nil
}

func (s *emailService) SendRecoveryCodeEmail(email, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Password recovery code")

	body := fmt.Sprintf(`
		<h3>Password recovery requested</h3>
		<p>We received a request to recover the password for your account.</p>
		<p>Your one-time code: <strong>%s</strong></p>
		<p>The code expires in a few minutes. If you did not request this, you can ignore this email.</p>
	`, code)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send recovery code email: %w", err)
	}

	return nil
}
