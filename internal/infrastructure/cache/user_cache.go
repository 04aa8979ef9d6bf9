// Package cache puts Redis in front of the active-only user lookups.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-certification/pkg/helpers"
)

const DefaultTTL = 5 * time.Minute

type cachedUser struct {
	ID                int64  `json:"id"`
	Email             string `json:"email"`
	Nickname          string `json:"nickname"`
	Address           string `json:"address"`
	CertificationCode string `json:"certification_code"`
	Status            string `json:"status"`
	LastLoginAt       *int64 `json:"last_login_at,omitempty"`
}

func fromEntity(u *entity.User) cachedUser {
	return cachedUser{
		ID:                u.ID,
		Email:             u.Email,
		Nickname:          u.Nickname,
		Address:           u.Address,
		CertificationCode: u.CertificationCode,
		Status:            string(u.Status),
		LastLoginAt:       u.LastLoginAt,
	}
}

func (c cachedUser) toEntity() *entity.User {
	return &entity.User{
		ID:                c.ID,
		Email:             c.Email,
		Nickname:          c.Nickname,
		Address:           c.Address,
		CertificationCode: c.CertificationCode,
		Status:            entity.UserStatus(c.Status),
		LastLoginAt:       c.LastLoginAt,
	}
}

func idKey(id int64) string         { return fmt.Sprintf("user:active:id:%d", id) }
func emailKey(email string) string { return "user:active:email:" + email }

// UserRepository decorates another UserRepository. Only ACTIVE lookups are cached; unfiltered
// lookups always reach the store so certification sees fresh state. Every Save evicts both keys.
// Redis failures are logged and the call falls through to the wrapped repository.
type UserRepository struct {
	next   repo.UserRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger
}

func NewUserRepository(next repo.UserRepository, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *UserRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UserRepository{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	saved, err := r.next.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	r.evict(ctx, saved)
	return saved, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.next.FindByID(ctx, id)
}

func (r *UserRepository) FindByIDAndStatus(ctx context.Context, id int64, status entity.UserStatus) (*entity.User, error) {
	if status != entity.UserStatusActive {
		return r.next.FindByIDAndStatus(ctx, id, status)
	}
	return r.cached(ctx, idKey(id), func() (*entity.User, error) {
		return r.next.FindByIDAndStatus(ctx, id, status)
	})
}

func (r *UserRepository) FindByEmailAndStatus(ctx context.Context, email string, status entity.UserStatus) (*entity.User, error) {
	if status != entity.UserStatusActive {
		return r.next.FindByEmailAndStatus(ctx, email, status)
	}
	return r.cached(ctx, emailKey(email), func() (*entity.User, error) {
		return r.next.FindByEmailAndStatus(ctx, email, status)
	})
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.next.ExistsByEmail(ctx, email)
}

func (r *UserRepository) cached(ctx context.Context, key string, load func() (*entity.User, error)) (*entity.User, error) {
	var hit cachedUser
	found, err := helpers.RedisGetJSON(ctx, r.rdb, key, &hit)
	if err != nil {
		helpers.LogWarn(r.logger, "user cache read failed", err, logrus.Fields{"key": key})
	} else if found {
		return hit.toEntity(), nil
	}

	u, err := load()
	if err != nil {
		return nil, err
	}
	if err := helpers.RedisSetJSON(ctx, r.rdb, key, fromEntity(u), r.ttl); err != nil {
		helpers.LogWarn(r.logger, "user cache write failed", err, logrus.Fields{"key": key})
	}
	return u, nil
}

func (r *UserRepository) evict(ctx context.Context, u *entity.User) {
	if err := helpers.RedisDel(ctx, r.rdb, idKey(u.ID), emailKey(u.Email)); err != nil {
		helpers.LogWarn(r.logger, "user cache evict failed", err, logrus.Fields{"user_id": u.ID})
	}
}

var _ repo.UserRepository = (*UserRepository)(nil)
