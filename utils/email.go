// utils/email.go
package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/keighl/postmark"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
}

// NewEmailService initializes and returns a new EmailService instance.
// Without a POSTMARK_API_TOKEN the service stays disabled and send calls
// return an error for the caller to log.
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		log.Println("POSTMARK_API_TOKEN not set, outgoing email disabled")
		return &EmailService{}
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if es.client == nil {
		return fmt.Errorf("email service is not configured")
	}

	_, err := es.client.SendEmail(postmark.Email{
		From:     os.Getenv("EMAIL_SENDER"),
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendPasswordResetEmail sends a password reset link to the user
func (es *EmailService) SendPasswordResetEmail(toEmail, token string) error {
	subject := "Reset Your MedTrap Password"
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:5000"
	}
	resetLink := fmt.Sprintf("%s/reset-password/%s", base, token)
	htmlContent := fmt.Sprintf(
		"<strong>You requested a password reset.</strong> The link below is valid for 10 minutes:<br><a href=\"%s\">Reset Password</a><br>If you did not request this, ignore this email.",
		resetLink,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
