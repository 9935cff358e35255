package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfportal/internal/config"
	"github.com/mfportal/internal/logger"
	"go.uber.org/zap"
)

// EmailMessage is a single outgoing email.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers an email.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// ErrInvalidRecipient is returned when a message has no usable recipient address.
var ErrInvalidRecipient = errors.New("invalid email recipient")

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg     config.SMTPConfig
	timeout time.Duration
}

var _ EmailSender = (*SMTPSender)(nil)

// NewSMTPSender 构造 SMTPSender。
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, timeout: 15 * time.Second}
}

// Send implements EmailSender.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}

	body, err := buildMIMEMessage(s.cfg.From, s.cfg.FromName, msg, time.Now())
	if err != nil {
		return err
	}

	return s.deliver(ctx, to.Address, body)
}

func (s *SMTPSender) deliver(ctx context.Context, to string, body []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to smtp server: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.timeout))
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Close()

	if s.cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("start tls: %w", err)
			}
		}
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp authentication: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	if _, err := writer.Write(body); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	_ = client.Quit()
	return nil
}

func buildMIMEMessage(from, fromName string, msg EmailMessage, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	sender := mail.Address{Name: fromName, Address: from}
	recipient := mail.Address{Name: msg.ToName, Address: msg.To}
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}

	fmt.Fprintf(&buf, "From: %s\r\n", sender.String())
	fmt.Fprintf(&buf, "To: %s\r\n", recipient.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domain)
	buf.WriteString("MIME-Version: 1.0\r\n")

	hasHTML := msg.HTML != ""
	hasText := msg.Text != ""

	switch {
	case hasHTML && hasText:
		boundary := "portal_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
		if err := writeMIMEPart(&buf, boundary, "text/plain", msg.Text); err != nil {
			return nil, err
		}
		if err := writeMIMEPart(&buf, boundary, "text/html", msg.HTML); err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	case hasHTML:
		if err := writeQuotedPrintable(&buf, "text/html", msg.HTML); err != nil {
			return nil, err
		}
	default:
		if err := writeQuotedPrintable(&buf, "text/plain", msg.Text); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func writeMIMEPart(buf *bytes.Buffer, boundary, contentType, body string) error {
	fmt.Fprintf(buf, "--%s\r\n", boundary)
	if err := writeQuotedPrintable(buf, contentType, body); err != nil {
		return err
	}
	buf.WriteString("\r\n")
	return nil
}

func writeQuotedPrintable(buf *bytes.Buffer, contentType, body string) error {
	fmt.Fprintf(buf, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
	qp := quotedprintable.NewWriter(buf)
	if _, err := qp.Write([]byte(body)); err != nil {
		return fmt.Errorf("encode message body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return fmt.Errorf("encode message body: %w", err)
	}
	return nil
}

// LogSender writes emails to the log instead of delivering them. Used when no
// SMTP host is configured.
type LogSender struct {
	log *zap.Logger
}

var _ EmailSender = (*LogSender)(nil)

// NewLogSender 构造 LogSender，log 为空时使用全局 logger。
func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send implements EmailSender.
func (s *LogSender) Send(ctx context.Context, msg EmailMessage) error {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	log := s.log
	if log == nil {
		log = logger.FromContext(ctx)
	}
	log.Info("email not delivered, smtp disabled",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
		zap.String("text", msg.Text))
	return nil
}

// NewEmailSender picks the SMTP sender when a host is configured.
func NewEmailSender(cfg config.SMTPConfig, log *zap.Logger) EmailSender {
	if strings.TrimSpace(cfg.Host) == "" {
		return NewLogSender(log)
	}
	return NewSMTPSender(cfg)
}
