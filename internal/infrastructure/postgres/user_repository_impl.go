package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
)

const userColumns = "id, email, nickname, address, certification_code, status, last_login_at"

type UserRepository struct {
	pool Pool
}

func NewUserRepository(pool Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Save inserts users without an id and updates the mutable columns of the rest.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	out := *u
	db := conn(ctx, r.pool)
	if u.ID == 0 {
		err := db.QueryRow(ctx, `
			INSERT INTO users (email, nickname, address, certification_code, status, last_login_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, u.Email, u.Nickname, u.Address, u.CertificationCode, string(u.Status), u.LastLoginAt).Scan(&out.ID)
		if err != nil {
			if hasCode(err, codeUniqueViolation) {
				return nil, domain.ErrDuplicateEmail
			}
			return nil, err
		}
		return &out, nil
	}

	tag, err := db.Exec(ctx, `
		UPDATE users
		SET nickname = $1, address = $2, status = $3, last_login_at = $4
		WHERE id = $5
	`, u.Nickname, u.Address, string(u.Status), u.LastLoginAt, u.ID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, repo.ErrNotFound
	}
	return &out, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`+lockClause(ctx), id)
}

func (r *UserRepository) FindByIDAndStatus(ctx context.Context, id int64, status entity.UserStatus) (*entity.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND status = $2`+lockClause(ctx), id, string(status))
}

func (r *UserRepository) FindByEmailAndStatus(ctx context.Context, email string, status entity.UserStatus) (*entity.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND status = $2`+lockClause(ctx), email, string(status))
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) one(ctx context.Context, query string, args ...any) (*entity.User, error) {
	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("query users: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u      entity.User
		status string
		last   *int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Nickname, &u.Address, &u.CertificationCode, &status, &last); err != nil {
		return nil, err
	}
	u.Status = entity.UserStatus(status)
	u.LastLoginAt = last
	return &u, nil
}

var _ repo.UserRepository = (*UserRepository)(nil)
