// Package container is the composition root: it turns a Config into wired services.
package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/config"
	"github.com/oksasatya/go-ddd-user-certification/internal/application"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
	port "github.com/oksasatya/go-ddd-user-certification/internal/domain/notification"
	"github.com/oksasatya/go-ddd-user-certification/internal/infrastructure/cache"
	"github.com/oksasatya/go-ddd-user-certification/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-user-certification/internal/infrastructure/notification"
	"github.com/oksasatya/go-ddd-user-certification/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-certification/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-user-certification/internal/infrastructure/sqlite"
	"github.com/oksasatya/go-ddd-user-certification/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-certification/pkg/mailer"
)

// Stores groups the persistence ports of one storage driver.
type Stores struct {
	Users repo.UserRepository
	Posts repo.PostRepository
	Tx    repo.Transactor
}

// MemoryStores is the in-process driver.
func MemoryStores() Stores {
	s := memory.NewStore()
	return Stores{Users: s.Users(), Posts: s.Posts(), Tx: s}
}

type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Users *application.UserService
	Posts *application.PostService

	// Mailgun is set only for direct delivery.
	Mailgun *mailer.Mailgun

	closers []func()
}

// Build wires services on top of already opened adapters. index may be nil.
func Build(cfg *config.Config, logger *logrus.Logger, stores Stores, sender port.Sender, index application.UserIndex) *Container {
	c := &Container{Config: cfg, Logger: logger}
	c.wire(stores, sender, index)
	return c
}

// New opens every adapter the config asks for. On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}
	stores, err := c.openStores(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	if cfg.CacheEnabled {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		c.onClose(func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			helpers.LogWarn(logger, "redis unreachable; cache will fall through", err, nil)
		}
		stores.Users = cache.NewUserRepository(stores.Users, rdb, cfg.CacheTTL, logger)
	}
	sender, err := c.openSender()
	if err != nil {
		c.Close()
		return nil, err
	}
	index, err := c.openIndex()
	if err != nil {
		c.Close()
		return nil, err
	}
	c.wire(stores, sender, index)
	return c, nil
}

func (c *Container) wire(stores Stores, sender port.Sender, index application.UserIndex) {
	cert := application.NewCertificationService(sender, c.Config.CertificationBaseURL)
	c.Users = application.NewUserService(stores.Users, stores.Tx, cert, nil, nil, index, c.Logger)
	c.Posts = application.NewPostService(stores.Posts, c.Users, stores.Tx, nil, c.Logger)
}

func (c *Container) openStores(ctx context.Context) (Stores, error) {
	cfg := c.Config
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return MemoryStores(), nil

	case config.StorageSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return Stores{}, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return Stores{}, err
		}
		c.onClose(func() { _ = db.Close() })
		if err := sqlite.Migrate(ctx, db); err != nil {
			return Stores{}, err
		}
		return Stores{Users: sqlite.NewUserRepository(db), Posts: sqlite.NewPostRepository(db), Tx: sqlite.NewTransactor(db)}, nil

	case config.StoragePostgres:
		if cfg.AutoMigrate {
			if err := postgres.MigrateUp(cfg.PostgresDSN(), c.Logger); err != nil {
				return Stores{}, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return Stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		c.onClose(pool.Close)
		return Stores{Users: postgres.NewUserRepository(pool), Posts: postgres.NewPostRepository(pool), Tx: postgres.NewTransactor(pool)}, nil

	default:
		return Stores{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func (c *Container) openSender() (port.Sender, error) {
	cfg := c.Config
	if !cfg.MailSendEnabled {
		return notification.NewLogSender(c.Logger), nil
	}
	switch cfg.MailDelivery {
	case config.MailDeliveryQueue:
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		c.onClose(pub.Close)
		return notification.NewQueueSender(pub, mailer.KindCertification), nil
	case config.MailDeliveryDirect:
		m, err := NewMailgun(cfg, c.Logger)
		if err != nil {
			return nil, err
		}
		c.Mailgun = m
		return notification.NewMailgunSender(m), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_DELIVERY %q", cfg.MailDelivery)
	}
}

// NewMailgun builds the Mailgun client shared by the API and the email worker.
func NewMailgun(cfg *config.Config, logger *logrus.Logger) (*mailer.Mailgun, error) {
	if !cfg.MailgunConfigured() {
		return nil, errors.New("mailgun not configured")
	}
	var opts []mailer.MailgunOption
	if cfg.MailgunAPIBase != "" {
		opts = append(opts, mailer.WithAPIBase(cfg.MailgunAPIBase))
	}
	return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, logger, opts...), nil
}

func (c *Container) openIndex() (application.UserIndex, error) {
	cfg := c.Config
	if !cfg.SearchEnabled {
		return nil, nil
	}
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass, nil)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return search.NewUserIndex(es, cfg.ESUsersIndex, c.Logger), nil
}

// HealthChecks reports component state for the health endpoint.
func (c *Container) HealthChecks() map[string]func() string {
	checks := map[string]func() string{
		"storage": func() string { return c.Config.StorageDriver },
	}
	if c.Mailgun != nil {
		checks["mailgun"] = func() string { return c.Mailgun.State().String() }
	}
	return checks
}

func (c *Container) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases adapters in reverse order of opening.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
