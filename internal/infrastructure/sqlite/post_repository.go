package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
)

// postRow carries a post joined with its writer; writer columns are prefixed with w_.
type postRow struct {
	ID         int64         `db:"id"`
	Content    string        `db:"content"`
	CreatedAt  int64         `db:"created_at"`
	ModifiedAt sql.NullInt64 `db:"modified_at"`

	WriterID          int64         `db:"w_id"`
	WriterEmail       string        `db:"w_email"`
	WriterNickname    string        `db:"w_nickname"`
	WriterAddress     string        `db:"w_address"`
	WriterCode        string        `db:"w_certification_code"`
	WriterStatus      string        `db:"w_status"`
	WriterLastLoginAt sql.NullInt64 `db:"w_last_login_at"`
}

func (r postRow) toEntity() *entity.Post {
	writer := userRow{
		ID:                r.WriterID,
		Email:             r.WriterEmail,
		Nickname:          r.WriterNickname,
		Address:           r.WriterAddress,
		CertificationCode: r.WriterCode,
		Status:            r.WriterStatus,
		LastLoginAt:       r.WriterLastLoginAt,
	}.toEntity()
	p := &entity.Post{ID: r.ID, Content: r.Content, CreatedAt: r.CreatedAt, Writer: writer}
	if r.ModifiedAt.Valid {
		v := r.ModifiedAt.Int64
		p.ModifiedAt = &v
	}
	return p
}

type PostRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Save(ctx context.Context, p *entity.Post) (*entity.Post, error) {
	if p.Writer == nil {
		return nil, errors.New("save post: writer is required")
	}
	out := *p
	db := conn(ctx, r.db)
	if p.ID == 0 {
		res, err := db.ExecContext(ctx,
			`INSERT INTO posts (content, created_at, modified_at, writer_id) VALUES (?, ?, ?, ?)`,
			p.Content, p.CreatedAt, nullInt64(p.ModifiedAt), p.Writer.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, fmt.Errorf("post writer %d: %w", p.Writer.ID, repo.ErrNotFound)
			}
			return nil, fmt.Errorf("insert post: %w", err)
		}
		if out.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		return &out, nil
	}

	res, err := db.ExecContext(ctx, `UPDATE posts SET content = ?, modified_at = ? WHERE id = ?`,
		p.Content, nullInt64(p.ModifiedAt), p.ID)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, repo.ErrNotFound
	}
	return &out, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*entity.Post, error) {
	var row postRow
	err := conn(ctx, r.db).GetContext(ctx, &row, `
		SELECT p.id, p.content, p.created_at, p.modified_at,
		       u.id AS w_id, u.email AS w_email, u.nickname AS w_nickname, u.address AS w_address,
		       u.certification_code AS w_certification_code, u.status AS w_status, u.last_login_at AS w_last_login_at
		FROM posts p
		JOIN users u ON u.id = p.writer_id
		WHERE p.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("query posts: %w", err)
	}
	return row.toEntity(), nil
}

var _ repo.PostRepository = (*PostRepository)(nil)
