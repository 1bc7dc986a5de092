package services

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, username string) error
	SendPasswordResetEmail(email, token string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, frontendURL string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer:      dialer,
		from:        fromEmail,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// ResetLink is the frontend page a reset token is redeemed on.
func ResetLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/reset-password/" + token
}

func welcomeMessage(from, to, username string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Welcome to TaskHub!")

	body := fmt.Sprintf(`
		<h2>Welcome to TaskHub, %s!</h2>
		<p>Your account has been successfully created.</p>
		<p>Create tasks, share them with your team and keep track of what is due.</p>
	`, username)

	m.SetBody("text/html", body)
	return m
}

func passwordResetMessage(from, to, link string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password reset request")

	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>We received a request to reset the password for your account.</p>
		<p><a href="%s">Reset your password</a>. The link is valid for one hour.</p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, link)

	m.SetBody("text/html", body)
	return m
}

func (s *emailService) SendWelcomeEmail(email, username string) error {
	if err := s.dialer.DialAndSend(welcomeMessage(s.from, email, username)); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(email, token string) error {
	m := passwordResetMessage(s.from, email, ResetLink(s.frontendURL, token))
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
