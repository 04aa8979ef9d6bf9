package memory

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
)

type PostRepository struct {
	store *Store
}

// Save requires the writer to exist, mirroring the foreign key of the SQL adapters.
func (r *PostRepository) Save(ctx context.Context, p *entity.Post) (*entity.Post, error) {
	if p.Writer == nil {
		return nil, fmt.Errorf("save post: writer is required")
	}
	defer r.store.guard(ctx)()
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	writer, ok := s.users[p.Writer.ID]
	if !ok {
		return nil, fmt.Errorf("post writer %d: %w", p.Writer.ID, repo.ErrNotFound)
	}
	row := postRow{ID: p.ID, Content: p.Content, CreatedAt: p.CreatedAt, ModifiedAt: p.ModifiedAt, WriterID: writer.ID}
	if row.ID == 0 {
		s.nextPostID++
		row.ID = s.nextPostID
	} else if _, ok := s.posts[row.ID]; !ok {
		return nil, fmt.Errorf("update post %d: %w", row.ID, repo.ErrNotFound)
	}
	s.posts[row.ID] = row
	return toPost(row, writer), nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*entity.Post, error) {
	defer r.store.guard(ctx)()
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.posts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return toPost(row, s.users[row.WriterID]), nil
}

func toPost(row postRow, writer entity.User) *entity.Post {
	w := copyUser(writer)
	p := &entity.Post{ID: row.ID, Content: row.Content, CreatedAt: row.CreatedAt, Writer: &w}
	if row.ModifiedAt != nil {
		v := *row.ModifiedAt
		p.ModifiedAt = &v
	}
	return p
}

var _ repo.PostRepository = (*PostRepository)(nil)
