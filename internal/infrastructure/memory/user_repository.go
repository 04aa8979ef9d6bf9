package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	defer r.store.guard(ctx)()
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row := copyUser(*u)
	if row.ID == 0 {
		for _, existing := range s.users {
			if existing.Email == row.Email {
				return nil, domain.ErrDuplicateEmail
			}
		}
		s.nextUserID++
		row.ID = s.nextUserID
	} else if _, ok := s.users[row.ID]; !ok {
		return nil, fmt.Errorf("update user %d: %w", row.ID, repo.ErrNotFound)
	}
	s.users[row.ID] = row
	out := copyUser(row)
	return &out, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.find(ctx, func(u entity.User) bool { return u.ID == id })
}

func (r *UserRepository) FindByIDAndStatus(ctx context.Context, id int64, status entity.UserStatus) (*entity.User, error) {
	return r.find(ctx, func(u entity.User) bool { return u.ID == id && u.Status == status })
}

func (r *UserRepository) FindByEmailAndStatus(ctx context.Context, email string, status entity.UserStatus) (*entity.User, error) {
	return r.find(ctx, func(u entity.User) bool { return u.Email == email && u.Status == status })
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.find(ctx, func(u entity.User) bool { return u.Email == email })
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) find(ctx context.Context, match func(entity.User) bool) (*entity.User, error) {
	defer r.store.guard(ctx)()
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			out := copyUser(u)
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

var _ repo.UserRepository = (*UserRepository)(nil)
