package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
)

// PostRepository persists posts. FindByID returns the post with its writer resolved.
type PostRepository interface {
	Save(ctx context.Context, p *entity.Post) (*entity.Post, error)
	FindByID(ctx context.Context, id int64) (*entity.Post, error)
}
