package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/mfportal/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildMIMEMessageMultipart(t *testing.T) {
	raw, err := buildMIMEMessage("info@portal.test", "Portal Team", EmailMessage{
		To:      "jane@example.com",
		ToName:  "Jane Doe",
		Subject: "Investor Request Café",
		HTML:    "<p>Hello</p>",
		Text:    "Hello",
	}, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build message failed: %v", err)
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parse message failed: %v", err)
	}

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	if err != nil || subject != "Investor Request Café" {
		t.Fatalf("unexpected subject %q (%v)", subject, err)
	}
	if !strings.Contains(msg.Header.Get("From"), "info@portal.test") {
		t.Fatalf("unexpected from header %q", msg.Header.Get("From"))
	}
	if !strings.HasSuffix(msg.Header.Get("Message-ID"), "@portal.test>") {
		t.Fatalf("unexpected message id %q", msg.Header.Get("Message-ID"))
	}

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/alternative" {
		t.Fatalf("unexpected content type %q (%v)", mediaType, err)
	}

	reader := multipart.NewReader(msg.Body, params["boundary"])
	var parts []string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read part failed: %v", err)
		}
		body, _ := io.ReadAll(part)
		parts = append(parts, part.Header.Get("Content-Type")+"|"+strings.TrimSpace(string(body)))
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0] != "text/plain; charset=UTF-8|Hello" || parts[1] != "text/html; charset=UTF-8|<p>Hello</p>" {
		t.Fatalf("unexpected parts %q", parts)
	}
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	if err := sender.Send(context.Background(), EmailMessage{To: "jane@example.com", Subject: "Hi"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if logs.Len() != 1 || logs.All()[0].ContextMap()["subject"] != "Hi" {
		t.Fatalf("expected one log entry with subject")
	}

	if err := sender.Send(context.Background(), EmailMessage{To: "not-an-address"}); !errors.Is(err, ErrInvalidRecipient) {
		t.Fatalf("expected ErrInvalidRecipient, got %v", err)
	}
}

func TestNewEmailSenderSelectsTransport(t *testing.T) {
	if _, ok := NewEmailSender(config.SMTPConfig{}, nil).(*LogSender); !ok {
		t.Fatalf("expected log sender without smtp host")
	}
	if _, ok := NewEmailSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, nil).(*SMTPSender); !ok {
		t.Fatalf("expected smtp sender with host")
	}
}
