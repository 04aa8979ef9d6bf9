package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
)

type PostRepository struct {
	pool Pool
}

func NewPostRepository(pool Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Save(ctx context.Context, p *entity.Post) (*entity.Post, error) {
	if p.Writer == nil {
		return nil, errors.New("save post: writer is required")
	}
	out := *p
	db := conn(ctx, r.pool)
	if p.ID == 0 {
		err := db.QueryRow(ctx, `
			INSERT INTO posts (content, created_at, modified_at, writer_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, p.Content, p.CreatedAt, p.ModifiedAt, p.Writer.ID).Scan(&out.ID)
		if err != nil {
			if hasCode(err, codeForeignKeyViolation) {
				return nil, fmt.Errorf("post writer %d: %w", p.Writer.ID, repo.ErrNotFound)
			}
			return nil, err
		}
		return &out, nil
	}

	tag, err := db.Exec(ctx, `UPDATE posts SET content = $1, modified_at = $2 WHERE id = $3`, p.Content, p.ModifiedAt, p.ID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, repo.ErrNotFound
	}
	return &out, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*entity.Post, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT p.id, p.content, p.created_at, p.modified_at,
		       u.id, u.email, u.nickname, u.address, u.certification_code, u.status, u.last_login_at
		FROM posts p
		JOIN users u ON u.id = p.writer_id
		WHERE p.id = $1`+lockClause(ctx), id)

	var (
		p         entity.Post
		w         entity.User
		modified  *int64
		status    string
		lastLogin *int64
	)
	err := row.Scan(&p.ID, &p.Content, &p.CreatedAt, &modified,
		&w.ID, &w.Email, &w.Nickname, &w.Address, &w.CertificationCode, &status, &lastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("query posts: %w", err)
	}
	p.ModifiedAt = modified
	w.Status = entity.UserStatus(status)
	w.LastLoginAt = lastLogin
	p.Writer = &w
	return &p, nil
}

var _ repo.PostRepository = (*PostRepository)(nil)
