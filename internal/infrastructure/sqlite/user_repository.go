package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
)

type userRow struct {
	ID                int64         `db:"id"`
	Email             string        `db:"email"`
	Nickname          string        `db:"nickname"`
	Address           string        `db:"address"`
	CertificationCode string        `db:"certification_code"`
	Status            string        `db:"status"`
	LastLoginAt       sql.NullInt64 `db:"last_login_at"`
}

func (r userRow) toEntity() *entity.User {
	u := &entity.User{
		ID:                r.ID,
		Email:             r.Email,
		Nickname:          r.Nickname,
		Address:           r.Address,
		CertificationCode: r.CertificationCode,
		Status:            entity.UserStatus(r.Status),
	}
	if r.LastLoginAt.Valid {
		v := r.LastLoginAt.Int64
		u.LastLoginAt = &v
	}
	return u
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

const selectUser = `SELECT id, email, nickname, address, certification_code, status, last_login_at FROM users`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	out := *u
	db := conn(ctx, r.db)
	if u.ID == 0 {
		res, err := db.ExecContext(ctx, `
			INSERT INTO users (email, nickname, address, certification_code, status, last_login_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			u.Email, u.Nickname, u.Address, u.CertificationCode, string(u.Status), nullInt64(u.LastLoginAt))
		if err != nil {
			if isUniqueViolation(err) {
				return nil, domain.ErrDuplicateEmail
			}
			return nil, fmt.Errorf("insert user: %w", err)
		}
		if out.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		return &out, nil
	}

	res, err := db.ExecContext(ctx, `
		UPDATE users SET nickname = ?, address = ?, status = ?, last_login_at = ?
		WHERE id = ?`,
		u.Nickname, u.Address, string(u.Status), nullInt64(u.LastLoginAt), u.ID)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, repo.ErrNotFound
	}
	return &out, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.get(ctx, selectUser+` WHERE id = ?`, id)
}

func (r *UserRepository) FindByIDAndStatus(ctx context.Context, id int64, status entity.UserStatus) (*entity.User, error) {
	return r.get(ctx, selectUser+` WHERE id = ? AND status = ?`, id, string(status))
}

func (r *UserRepository) FindByEmailAndStatus(ctx context.Context, email string, status entity.UserStatus) (*entity.User, error) {
	return r.get(ctx, selectUser+` WHERE email = ? AND status = ?`, email, string(status))
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	if err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(1) FROM users WHERE email = ?`, email); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepository) get(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var row userRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("query users: %w", err)
	}
	return row.toEntity(), nil
}

var _ repo.UserRepository = (*UserRepository)(nil)
