package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/config"
	"github.com/oksasatya/go-ddd-user-certification/internal/container"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-certification/pkg/helpers"
)

// seeds one verified and one pending account through the regular service path.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	cfg.MailSendEnabled = false
	cfg.SearchEnabled = false
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("container: %v", err)
	}
	defer c.Close()

	active := seed(ctx, c, entity.UserCreate{Email: "demo@example.com", Nickname: "demo", Address: "Seoul"}, logger)
	if active != nil {
		if err := c.Users.VerifyEmail(ctx, active.ID, active.CertificationCode); err != nil {
			log.Fatalf("verify %s: %v", active.Email, err)
		}
		logger.WithFields(logrus.Fields{"id": active.ID, "email": active.Email}).Info("seeded active user")
	}

	pending := seed(ctx, c, entity.UserCreate{Email: "pending@example.com", Nickname: "pending", Address: "Busan"}, logger)
	if pending != nil {
		logger.WithFields(logrus.Fields{"id": pending.ID, "email": pending.Email, "certification_code": pending.CertificationCode}).
			Info("seeded pending user")
	}
}

func seed(ctx context.Context, c *container.Container, in entity.UserCreate, logger *logrus.Logger) *entity.User {
	u, err := c.Users.Create(ctx, in)
	var de *domain.DeliveryError
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		logger.WithField("email", in.Email).Info("already seeded")
		return nil
	case err != nil && !(errors.As(err, &de) && u != nil):
		log.Fatalf("seed %s: %v", in.Email, err)
	}
	return u
}
