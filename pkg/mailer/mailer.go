package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"sync"

	"gopkg.in/gomail.v2"
)

// TemplateData feeds the notification email template
type TemplateData struct {
	Username    string
	Title       string
	Description string
}

var notificationTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background-color: #f6f6f6; padding: 24px;">
    <div style="max-width: 520px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
      <p>Olá, <strong>{{.Username}}</strong>!</p>
      <h2 style="color: #4f46e5;">{{.Title}}</h2>
      <p>{{.Description}}</p>
      <hr style="border: none; border-top: 1px solid #eee; margin: 24px 0;">
      <p style="color: #999; font-size: 12px;">Você está recebendo este email porque ativou notificações no seu assistente.</p>
    </div>
  </body>
</html>`))

// Mailer sends templated notification emails over SMTP. Transport
// connectivity is verified once and cached.
type Mailer struct {
	dialer *gomail.Dialer
	from   string

	mu       sync.Mutex
	verified bool
}

// NewMailer creates a new SMTP mailer
func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Verify checks transport connectivity. The first success is cached so
// subsequent dispatches skip the handshake.
func (m *Mailer) Verify() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.verified {
		return nil
	}

	closer, err := m.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp verify failed: %w", err)
	}
	closer.Close()

	m.verified = true
	log.Println("[Mailer] SMTP transport verified")
	return nil
}

// Send renders the notification template and delivers it
func (m *Mailer) Send(to, subject string, data TemplateData) error {
	if err := m.Verify(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := notificationTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
