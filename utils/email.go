package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

// SendEmail sends a notification email over plain SMTP. Configuration comes
// from the environment: SMTP_FROM, SMTP_PASSWORD, SMTP_HOST, SMTP_PORT.
func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")

	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		smtpPort = "587"
	}

	if from == "" || password == "" {
		return fmt.Errorf("SMTP_FROM or SMTP_PASSWORD is not set")
	}

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}

// SMTPMailer adapts SendEmail to the dispatcher's mailer interface.
type SMTPMailer struct{}

func (SMTPMailer) Send(to, subject, body string) error {
	return SendEmail(to, subject, body)
}
