package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-certification/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-certification/pkg/validation"
)

const (
	resourceUsers = "Users"

	defaultSearchSize = 10
	maxSearchSize     = 50
)

// UserIndex keeps a searchable copy of active user profiles.
type UserIndex interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, query string, size int) ([]*entity.User, error)
}

// UserService owns the user lifecycle: registration, certification, login tracking and profile updates.
//
// Update, Login and VerifyEmail look users up without a status filter so pending accounts can finish
// certification. GetByID and GetByEmail only ever return ACTIVE users.
type UserService struct {
	Repo          repo.UserRepository
	Tx            repo.Transactor
	Certification Certifier
	Codes         helpers.CodeGenerator
	Clock         helpers.Clock
	Index         UserIndex
	Logger        *logrus.Logger
}

func NewUserService(repo repo.UserRepository, tx repo.Transactor, cert Certifier, codes helpers.CodeGenerator, clock helpers.Clock, index UserIndex, logger *logrus.Logger) *UserService {
	if codes == nil {
		codes = helpers.CertificationCodeGenerator{}
	}
	if clock == nil {
		clock = helpers.SystemClock{}
	}
	return &UserService{
		Repo:          repo,
		Tx:            tx,
		Certification: cert,
		Codes:         codes,
		Clock:         clock,
		Index:         index,
		Logger:        logger,
	}
}

// Create registers a pending user and sends the certification message once the user is stored.
// A delivery failure is returned together with the persisted user; the registration is kept.
func (s *UserService) Create(ctx context.Context, in entity.UserCreate) (*entity.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if fields := validation.Check(in); fields != nil {
		return nil, &domain.ValidationError{Fields: fields}
	}

	var created *entity.User
	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.Repo.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return domain.ErrDuplicateEmail
		}
		created, err = s.Repo.Save(ctx, entity.NewUser(in, s.Codes.Generate()))
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) {
				return err
			}
			return fmt.Errorf("save user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	count(metricUsersCreated)
	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": created.ID})

	if s.Certification != nil {
		if err := s.Certification.Send(ctx, created.Email, created.ID, created.CertificationCode); err != nil {
			count(metricCertificationFailed)
			helpers.LogWarn(s.Logger, "certification delivery failed", err, logrus.Fields{"user_id": created.ID})
			return created, err
		}
	}
	return created, nil
}

// Update applies the supplied profile fields to a user of any status.
func (s *UserService) Update(ctx context.Context, id int64, in entity.UserUpdate) (*entity.User, error) {
	if fields := validation.Check(in); fields != nil {
		return nil, &domain.ValidationError{Fields: fields}
	}
	var updated *entity.User
	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := s.findByID(ctx, id)
		if err != nil {
			return err
		}
		updated, err = s.save(ctx, u.Update(in))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.index(ctx, updated)
	return updated, nil
}

// UpdateByEmail updates the active user registered under email.
func (s *UserService) UpdateByEmail(ctx context.Context, email string, in entity.UserUpdate) (*entity.User, error) {
	if fields := validation.Check(in); fields != nil {
		return nil, &domain.ValidationError{Fields: fields}
	}
	var updated *entity.User
	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := s.lockActiveByEmail(ctx, email)
		if err != nil {
			return err
		}
		updated, err = s.save(ctx, u.Update(in))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.index(ctx, updated)
	return updated, nil
}

// Login records the current time as the user's last login.
func (s *UserService) Login(ctx context.Context, id int64) error {
	return s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := s.findByID(ctx, id)
		if err != nil {
			return err
		}
		_, err = s.touchLogin(ctx, u)
		return err
	})
}

// GetMyInfo resolves the active user by email and records a login for it.
func (s *UserService) GetMyInfo(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := s.lockActiveByEmail(ctx, email)
		if err != nil {
			return err
		}
		out, err = s.touchLogin(ctx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UserService) touchLogin(ctx context.Context, u *entity.User) (*entity.User, error) {
	now := s.Clock.NowMillis()
	if u.LastLoginAt != nil && now <= *u.LastLoginAt {
		now = *u.LastLoginAt + 1
	}
	u.ChangeLastLoginAt(now)
	saved, err := s.save(ctx, u)
	if err != nil {
		return nil, err
	}
	count(metricLogins)
	return saved, nil
}

// VerifyEmail activates the user when code equals the stored certification code.
// On mismatch nothing is written and domain.ErrCertificationMismatch is returned.
func (s *UserService) VerifyEmail(ctx context.Context, id int64, code string) error {
	var verified *entity.User
	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := s.findByID(ctx, id)
		if err != nil {
			return err
		}
		if !u.CertificationCodeMatches(code) {
			return domain.ErrCertificationMismatch
		}
		u.Activate()
		verified, err = s.save(ctx, u)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrCertificationMismatch) {
			helpers.LogWarn(s.Logger, "certification code mismatch", nil, logrus.Fields{"user_id": id})
		}
		return err
	}
	count(metricUsersVerified)
	helpers.LogInfo(s.Logger, "user verified", logrus.Fields{"user_id": id})
	s.index(ctx, verified)
	return nil
}

// GetByID returns the active user with the given id.
func (s *UserService) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.FindByIDAndStatus(ctx, id, entity.UserStatusActive)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return u, nil
}

// GetByEmail returns the active user registered under email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.FindByEmailAndStatus(ctx, email, entity.UserStatusActive)
	if err != nil {
		return nil, s.translate(err, email)
	}
	return u, nil
}

// Search queries the profile index. It returns no results when no index is configured.
func (s *UserService) Search(ctx context.Context, query string, size int) ([]*entity.User, error) {
	if s.Index == nil || strings.TrimSpace(query) == "" {
		return []*entity.User{}, nil
	}
	switch {
	case size <= 0:
		size = defaultSearchSize
	case size > maxSearchSize:
		size = maxSearchSize
	}
	return s.Index.Search(ctx, query, size)
}

// lockActiveByEmail re-reads the user found by email through FindByID, which is uncached and row-locked.
func (s *UserService) lockActiveByEmail(ctx context.Context, email string) (*entity.User, error) {
	found, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	u, err := s.findByID(ctx, found.ID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, domain.NewNotFound(resourceUsers, email)
	}
	return u, nil
}

func (s *UserService) findByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return u, nil
}

func (s *UserService) save(ctx context.Context, u *entity.User) (*entity.User, error) {
	saved, err := s.Repo.Save(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("save user %d: %w", u.ID, err)
	}
	return saved, nil
}

func (s *UserService) translate(err error, key any) error {
	if errors.Is(err, repo.ErrNotFound) {
		return domain.NewNotFound(resourceUsers, key)
	}
	return fmt.Errorf("find user %v: %w", key, err)
}

// index is best-effort; only active profiles are searchable.
func (s *UserService) index(ctx context.Context, u *entity.User) {
	if s.Index == nil || u == nil || !u.IsActive() {
		return
	}
	if err := s.Index.Index(ctx, u); err != nil {
		helpers.LogWarn(s.Logger, "index user failed", err, logrus.Fields{"user_id": u.ID})
	}
}
