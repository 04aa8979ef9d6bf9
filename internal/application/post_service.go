package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-certification/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-certification/pkg/validation"
)

const resourcePosts = "Posts"

// WriterFinder resolves the active user that authors a post.
type WriterFinder interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

type PostService struct {
	Repo   repo.PostRepository
	Users  WriterFinder
	Tx     repo.Transactor
	Clock  helpers.Clock
	Logger *logrus.Logger
}

func NewPostService(repo repo.PostRepository, users WriterFinder, tx repo.Transactor, clock helpers.Clock, logger *logrus.Logger) *PostService {
	if clock == nil {
		clock = helpers.SystemClock{}
	}
	return &PostService{Repo: repo, Users: users, Tx: tx, Clock: clock, Logger: logger}
}

func (s *PostService) GetByID(ctx context.Context, id int64) (*entity.Post, error) {
	p, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, domain.NewNotFound(resourcePosts, id)
		}
		return nil, fmt.Errorf("find post %d: %w", id, err)
	}
	return p, nil
}

// CreatePost stores a post written by an active user. A pending or unknown writer yields NotFoundError.
func (s *PostService) CreatePost(ctx context.Context, in entity.PostCreate) (*entity.Post, error) {
	if fields := validation.Check(in); fields != nil {
		return nil, &domain.ValidationError{Fields: fields}
	}
	var created *entity.Post
	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		writer, err := s.Users.GetByID(ctx, in.WriterID)
		if err != nil {
			return err
		}
		created, err = s.Repo.Save(ctx, entity.NewPost(in, writer, s.Clock.NowMillis()))
		if err != nil {
			return fmt.Errorf("save post: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	count(metricPostsCreated)
	helpers.LogInfo(s.Logger, "post created", logrus.Fields{"post_id": created.ID, "writer_id": in.WriterID})
	return created, nil
}

// UpdatePost replaces the content and stamps ModifiedAt.
func (s *PostService) UpdatePost(ctx context.Context, id int64, in entity.PostUpdate) (*entity.Post, error) {
	if fields := validation.Check(in); fields != nil {
		return nil, &domain.ValidationError{Fields: fields}
	}
	var updated *entity.Post
	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated, err = s.Repo.Save(ctx, p.Update(in, s.Clock.NowMillis()))
		if err != nil {
			return fmt.Errorf("save post %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
