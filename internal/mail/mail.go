// Package mail delivers outbound HTML email over SMTP. Used for
// password-reset notifications only.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func New(host, port, username, password, from, fromName string) *Mailer {
	return &Mailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		FromName: fromName,
	}
}

// Send delivers a single HTML message. Errors never include credentials.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if m.Host == "" {
		return fmt.Errorf("mail: SMTP_HOST not configured")
	}

	from := fmt.Sprintf("%s <%s>", m.FromName, m.From)

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)

	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("mail: send to %s failed: %w", to, err)
	}
	return nil
}
