package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-certification/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-user-certification/pkg/helpers"
)

func newPostFixture(t *testing.T) (*PostService, *UserService, *helpers.ManualClock) {
	t.Helper()
	store := memory.NewStore()
	clock := helpers.NewManualClock(1_000)
	users := NewUserService(store.Users(), store, nil, nil, clock, nil, nil)
	posts := NewPostService(store.Posts(), users, store, clock, nil)
	return posts, users, clock
}

func activeUser(t *testing.T, users *UserService, email string) *entity.User {
	t.Helper()
	ctx := context.Background()
	u, err := users.Create(ctx, entity.UserCreate{Email: email, Nickname: "writer", Address: "Seoul"})
	require.NoError(t, err)
	require.NoError(t, users.VerifyEmail(ctx, u.ID, u.CertificationCode))
	return u
}

func TestPostService_CreateResolvesWriter(t *testing.T) {
	posts, users, _ := newPostFixture(t)
	writer := activeUser(t, users, "w@example.com")

	p, err := posts.CreatePost(context.Background(), entity.PostCreate{WriterID: writer.ID, Content: "hello"})
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, int64(1_000), p.CreatedAt)
	assert.Nil(t, p.ModifiedAt)
	require.NotNil(t, p.Writer)
	assert.Equal(t, "w@example.com", p.Writer.Email)

	got, err := posts.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPostService_CreateRejectsPendingWriter(t *testing.T) {
	posts, users, _ := newPostFixture(t)
	u, err := users.Create(context.Background(), entity.UserCreate{Email: "p@example.com", Nickname: "p", Address: "x"})
	require.NoError(t, err)

	_, err = posts.CreatePost(context.Background(), entity.PostCreate{WriterID: u.ID, Content: "hello"})

	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Users", nf.Resource)
}

func TestPostService_CreateValidates(t *testing.T) {
	posts, _, _ := newPostFixture(t)

	_, err := posts.CreatePost(context.Background(), entity.PostCreate{Content: " "})

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "writerId")
	assert.Contains(t, ve.Fields, "content")
}

func TestPostService_UpdateStampsModifiedAt(t *testing.T) {
	posts, users, clock := newPostFixture(t)
	writer := activeUser(t, users, "w@example.com")
	ctx := context.Background()

	p, err := posts.CreatePost(ctx, entity.PostCreate{WriterID: writer.ID, Content: "draft"})
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	updated, err := posts.UpdatePost(ctx, p.ID, entity.PostUpdate{Content: strings.Repeat("x", 20)})
	require.NoError(t, err)

	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.ModifiedAt)
	assert.Equal(t, int64(3_000), *updated.ModifiedAt)
	assert.Equal(t, writer.ID, updated.Writer.ID)
}

func TestPostService_GetByIDNotFound(t *testing.T) {
	posts, _, _ := newPostFixture(t)

	_, err := posts.GetByID(context.Background(), 42)

	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Posts", nf.Resource)
	assert.Equal(t, int64(42), nf.Key)
}
