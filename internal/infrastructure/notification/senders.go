// Package notification holds the delivery adapters behind the domain Sender port.
package notification

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	port "github.com/oksasatya/go-ddd-user-certification/internal/domain/notification"
	"github.com/oksasatya/go-ddd-user-certification/pkg/mailer"
)

// Mailer is satisfied by *mailer.Mailgun.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Publisher is satisfied by *helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// MailgunSender calls Mailgun synchronously. An open breaker fails fast.
type MailgunSender struct {
	mailer Mailer
}

func NewMailgunSender(m Mailer) *MailgunSender {
	return &MailgunSender{mailer: m}
}

func (s *MailgunSender) Send(ctx context.Context, to, title, body string) error {
	return domain.AsDeliveryError(to, s.mailer.Send(ctx, to, title, body, ""))
}

// QueueSender hands the message to the email worker through RabbitMQ.
// Delivery counts as done once the broker accepted the job.
type QueueSender struct {
	publisher Publisher
	kind      string
}

func NewQueueSender(p Publisher, kind string) *QueueSender {
	if kind == "" {
		kind = mailer.KindCertification
	}
	return &QueueSender{publisher: p, kind: kind}
}

func (s *QueueSender) Send(ctx context.Context, to, title, body string) error {
	job := mailer.EmailJob{To: to, Subject: title, Text: body, Kind: s.kind}
	return domain.AsDeliveryError(to, s.publisher.PublishJSON(ctx, job))
}

// LogSender writes the message to the log instead of sending it.
type LogSender struct {
	logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, title, body string) error {
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"to": to, "title": title, "body": body}).
			Info("mail sending disabled; message logged")
	}
	return nil
}

var (
	_ port.Sender = (*MailgunSender)(nil)
	_ port.Sender = (*QueueSender)(nil)
	_ port.Sender = (*LogSender)(nil)
)
