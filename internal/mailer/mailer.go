package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sender delivers one HTML message.
type Sender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := BuildMessage(s.from, to, subject, htmlBody)
	if err := smtp.SendMail(s.addr, s.auth, s.from, to, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, to []string, subject, htmlBody string) error {
	s.log.Info("email (not delivered)",
		zap.Strings("to", to),
		zap.String("subject", subject),
		zap.String("body", htmlBody),
	)
	return nil
}

// MailboxTTL is how long RedisSender keeps a message.
const MailboxTTL = 15 * time.Minute

// RedisSender stores messages in a per-recipient Redis list so end-to-end
// environments can read them back.
type RedisSender struct {
	client *redis.Client
	from   string
}

func NewRedisSender(client *redis.Client, from string) *RedisSender {
	return &RedisSender{client: client, from: from}
}

// MailboxKey is the Redis list holding messages for a recipient.
func MailboxKey(to string) string {
	return "mailbox:" + strings.ToLower(strings.TrimSpace(to))
}

type storedMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	SentAt  string `json:"sentAt"`
}

func (s *RedisSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	for _, rcpt := range to {
		data, err := json.Marshal(storedMessage{
			From:    s.from,
			To:      rcpt,
			Subject: subject,
			Body:    htmlBody,
			SentAt:  time.Now().UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}

		key := MailboxKey(rcpt)
		pipe := s.client.TxPipeline()
		pipe.LPush(ctx, key, data)
		pipe.Expire(ctx, key, MailboxTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("store message in %s: %w", key, err)
		}
	}
	return nil
}

// BuildMessage renders RFC 5322 headers and an HTML body.
func BuildMessage(from string, to []string, subject, htmlBody string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.Bytes()
}

var resetTemplate = template.Must(template.New("reset").Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif">
<h2>Reset your password</h2>
<p>We received a request to reset the password for your Propzy account.</p>
<p><a href="{{.Link}}" style="background:#2563eb;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none">Choose a new password</a></p>
<p>This link expires in {{.Validity}}. If you did not ask for it, ignore this email.</p>
</body></html>`))

// PasswordResetMessage renders the reset email.
func PasswordResetMessage(link string, validity time.Duration) (subject, body string, err error) {
	var b bytes.Buffer
	err = resetTemplate.Execute(&b, struct {
		Link     string
		Validity string
	}{Link: link, Validity: humanDuration(validity)})
	if err != nil {
		return "", "", fmt.Errorf("render reset email: %w", err)
	}
	return "Reset your Propzy password", b.String(), nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
