package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Mailgun wraps Mailgun client configuration and a circuit breaker around the API.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string

	client  *mg.MailgunImpl
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

type MailgunOption func(*Mailgun)

// WithAPIBase points the client at another Mailgun endpoint (EU region, test servers).
func WithAPIBase(url string) MailgunOption {
	return func(m *Mailgun) { m.client.SetAPIBase(url) }
}

func WithTimeout(d time.Duration) MailgunOption {
	return func(m *Mailgun) { m.timeout = d }
}

// WithBreakerSettings replaces the default breaker.
func WithBreakerSettings(st gobreaker.Settings) MailgunOption {
	return func(m *Mailgun) { m.cb = gobreaker.NewCircuitBreaker(st) }
}

func NewMailgun(domain, apiKey, sender string, logger *logrus.Logger, opts ...MailgunOption) *Mailgun {
	m := &Mailgun{
		Domain:  domain,
		APIKey:  apiKey,
		Sender:  sender,
		client:  mg.NewMailgun(domain, apiKey),
		timeout: 10 * time.Second,
	}
	m.cb = gobreaker.NewCircuitBreaker(DefaultBreakerSettings(logger))
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultBreakerSettings trips after 5 consecutive failures or a 60% failure ratio over 10 requests.
func DefaultBreakerSettings(logger *logrus.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "mailgun",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
					Warn("circuit breaker state changed")
			}
		},
	}
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
// It returns gobreaker.ErrOpenState without calling Mailgun while the breaker is open.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	_, err := m.cb.Execute(func() (interface{}, error) {
		msg := m.client.NewMessage(m.Sender, subject, text, to)
		if html != "" {
			msg.SetHtml(html)
		}
		c, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		_, id, err := m.client.Send(c, msg)
		return id, err
	})
	return err
}

// State exposes the breaker state for health reporting.
func (m *Mailgun) State() gobreaker.State {
	return m.cb.State()
}
