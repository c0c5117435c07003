package utils

import (
	"fmt"
	"html"
	"sync"

	"skillchain/logger"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers one HTML email
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SendGridMailer sends through the SendGrid v3 API
type SendGridMailer struct {
	client     *sendgrid.Client
	senderMail string
	senderName string
}

func NewSendGridMailer(apiKey, senderMail, senderName string) *SendGridMailer {
	return &SendGridMailer{
		client:     sendgrid.NewSendClient(apiKey),
		senderMail: senderMail,
		senderName: senderName,
	}
}

func (m *SendGridMailer) Send(to, subject, htmlBody string) error {
	from := mail.NewEmail(m.senderName, m.senderMail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", htmlBody)

	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer only logs. Used when no API key is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer() *LogMailer {
	return &LogMailer{log: logger.For("mailer")}
}

func (m *LogMailer) Send(to, subject, _ string) error {
	m.log.Info().Str("to", to).Str("subject", subject).Msg("email not sent, no provider configured")
	return nil
}

// NewMailer picks SendGrid when apiKey is set and the log mailer otherwise.
func NewMailer(apiKey, senderMail, senderName string) Mailer {
	if apiKey == "" {
		return NewLogMailer()
	}
	return NewSendGridMailer(apiKey, senderMail, senderName)
}

// HTML wrapper shared by every platform mail
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #0B3D2E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2933; line-height: 1.6; }
			.content h2 { margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E6F4EA; padding: 15px; border-radius: 4px; border-left: 4px solid #2F9E6E; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>SKILLCHAIN</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 SkillChain. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// EmailNotifier turns platform events into mails. Sends run in the
// background and failures are only logged.
type EmailNotifier struct {
	mailer Mailer
	log    zerolog.Logger
	wg     sync.WaitGroup
}

func NewEmailNotifier(mailer Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, log: logger.For("email")}
}

func (n *EmailNotifier) send(to, subject, title, body string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.mailer.Send(to, subject, getEmailTemplate(title, body)); err != nil {
			n.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("error sending email")
		}
	}()
}

// Wait blocks until every queued mail has been attempted.
func (n *EmailNotifier) Wait() {
	n.wg.Wait()
}

// --- Triggers ---

// 1. Enrollment confirmed
func (n *EmailNotifier) EnrollmentConfirmed(email, courseTitle string) {
	subject := "You're enrolled: " + courseTitle
	body := fmt.Sprintf(`
		<p>Hello,</p>
		<p>Your enrollment in <strong>%s</strong> is confirmed.</p>
		<div class="info-box">
			<strong>Next Steps:</strong> Open the course from your dashboard and start the first lesson.
		</div>
	`, html.EscapeString(courseTitle))

	n.send(email, subject, "Enrollment Confirmed", body)
}

// 2. Certificate issued
func (n *EmailNotifier) CertificateIssued(email, courseTitle, certificateNumber string) {
	subject := "Your certificate for " + courseTitle
	body := fmt.Sprintf(`
		<p>Congratulations!</p>
		<p>You have completed <strong>%s</strong>.</p>
		<div class="info-box">
			Certificate number: <strong>%s</strong>
		</div>
		<p>You can download it any time from your certificates page.</p>
	`, html.EscapeString(courseTitle), html.EscapeString(certificateNumber))

	n.send(email, subject, "Certificate Issued", body)
}
