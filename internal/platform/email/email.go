package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"hrdesk/internal/domain/notifications"
	"hrdesk/internal/platform/config"
)

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, to, subject, html, text string) error {
	return nil
}

type smtpMailer struct {
	cfg config.Config
}

func New(cfg config.Config) notifications.Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return noopMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

func (s *smtpMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	msg := buildMessage(s.cfg.EmailFrom, to, subject, html, text)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.cfg.SMTPUseTLS {
		tlsConfig := &tls.Config{ServerName: s.cfg.SMTPHost}
		if err := client.StartTLS(tlsConfig); err != nil {
			return err
		}
	}

	if s.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(s.cfg.EmailFrom); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

const altBoundary = "hrdesk-alt"

func buildMessage(from, to, subject, html, text string) []byte {
	var b strings.Builder
	write := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	write(fmt.Sprintf("From: %s", from))
	write(fmt.Sprintf("To: %s", to))
	write(fmt.Sprintf("Subject: %s", subject))
	write("MIME-Version: 1.0")

	if html == "" {
		write("Content-Type: text/plain; charset=\"UTF-8\"")
		write("")
		b.WriteString(text)
		return []byte(b.String())
	}

	write(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", altBoundary))
	write("")
	write("--" + altBoundary)
	write("Content-Type: text/plain; charset=\"UTF-8\"")
	write("")
	write(text)
	write("--" + altBoundary)
	write("Content-Type: text/html; charset=\"UTF-8\"")
	write("")
	write(html)
	write("--" + altBoundary + "--")
	return []byte(b.String())
}
