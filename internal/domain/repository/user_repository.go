package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
)

// ErrNotFound is returned by finders when no row matches, including rows whose status differs from the filter.
var ErrNotFound = errors.New("not found")

// UserRepository defines the persistence capability required by the user service.
type UserRepository interface {
	// Save inserts a user when ID is zero, otherwise overwrites the stored row. The returned user carries the ID.
	Save(ctx context.Context, u *entity.User) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByIDAndStatus(ctx context.Context, id int64, status entity.UserStatus) (*entity.User, error)
	FindByEmailAndStatus(ctx context.Context, email string, status entity.UserStatus) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
