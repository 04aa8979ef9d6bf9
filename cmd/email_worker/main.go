package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/config"
	"github.com/oksasatya/go-ddd-user-certification/internal/container"
	"github.com/oksasatya/go-ddd-user-certification/internal/infrastructure/notification"
	"github.com/oksasatya/go-ddd-user-certification/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	mg, err := container.NewMailgun(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("mailgun")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, cfg.RabbitMQPrefetch)
	if err != nil {
		logger.WithError(err).Fatal("amqp consumer")
	}
	defer consumer.Close()

	deliveries, err := consumer.Deliveries()
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{"queue": cfg.RabbitMQEmailQueue, "prefetch": cfg.RabbitMQPrefetch}).Info("email worker listening")
	err = notification.NewWorker(mg, logger).Run(ctx, deliveries)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("email worker stopped")
		os.Exit(1)
	}
	logger.Info("email worker exited")
}
