package notification

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/pkg/mailer"
)

type Outcome int

const (
	Ack Outcome = iota
	Requeue
	Drop
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	default:
		return "drop"
	}
}

// Worker forwards queued EmailJobs to a Mailer.
type Worker struct {
	Mailer     Mailer
	Logger     *logrus.Logger
	Timeout    time.Duration
	RetryDelay time.Duration // pause before a requeue
}

func NewWorker(m Mailer, logger *logrus.Logger) *Worker {
	return &Worker{Mailer: m, Logger: logger, Timeout: 15 * time.Second, RetryDelay: time.Second}
}

// Handle decodes and sends one job. Malformed payloads are dropped; send failures are requeued.
func (w *Worker) Handle(ctx context.Context, body []byte) Outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.log().WithError(err).Warn("bad email job payload")
		return Drop
	}
	if !job.Valid() {
		w.log().WithField("to", job.To).Warn("incomplete email job")
		return Drop
	}

	sendCtx := ctx
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}
	if err := w.Mailer.Send(sendCtx, job.To, job.Subject, job.Text, job.HTML); err != nil {
		w.log().WithError(err).WithFields(logrus.Fields{"to": job.To, "kind": job.Kind}).Warn("send failed")
		return Requeue
	}
	w.log().WithFields(logrus.Fields{"to": job.To, "kind": job.Kind}).Info("email sent")
	return Ack
}

// Run consumes deliveries until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.settle(ctx, d, w.Handle(ctx, d.Body))
		}
	}
}

func (w *Worker) settle(ctx context.Context, d amqp.Delivery, outcome Outcome) {
	var err error
	switch outcome {
	case Ack:
		err = d.Ack(false)
	case Requeue:
		if w.RetryDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(w.RetryDelay):
			}
		}
		err = d.Nack(false, true)
	default:
		err = d.Nack(false, false)
	}
	if err != nil {
		w.log().WithError(err).WithField("outcome", outcome.String()).Error("settle delivery failed")
	}
}

func (w *Worker) log() *logrus.Logger {
	if w.Logger == nil {
		return logrus.StandardLogger()
	}
	return w.Logger
}
