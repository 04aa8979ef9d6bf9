package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func pendingUser(email string) *entity.User {
	return entity.NewUser(entity.UserCreate{Email: email, Nickname: "foo", Address: "Seoul"}, "code-"+email)
}

func TestUserRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	saved, err := users.Save(ctx, pendingUser("foo@gmail.com"))
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	got, err := users.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = users.FindByIDAndStatus(ctx, saved.ID, entity.UserStatusActive)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	got.Activate()
	got.ChangeLastLoginAt(1_700_000_000_000)
	_, err = users.Save(ctx, got)
	require.NoError(t, err)

	active, err := users.FindByEmailAndStatus(ctx, "foo@gmail.com", entity.UserStatusActive)
	require.NoError(t, err)
	require.NotNil(t, active.LastLoginAt)
	assert.Equal(t, int64(1_700_000_000_000), *active.LastLoginAt)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	_, err := users.Save(ctx, pendingUser("dup@example.com"))
	require.NoError(t, err)

	_, err = users.Save(ctx, pendingUser("dup@example.com"))
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	exists, err := users.ExistsByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	users := NewUserRepository(newTestDB(t))
	_, err := users.Save(context.Background(), &entity.User{ID: 42, Status: entity.UserStatusPending})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestPostRepository_SaveFindUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	writer, err := NewUserRepository(db).Save(ctx, pendingUser("w@example.com"))
	require.NoError(t, err)

	posts := NewPostRepository(db)
	p, err := posts.Save(ctx, &entity.Post{Content: "hello", CreatedAt: 100, Writer: writer})
	require.NoError(t, err)

	got, err := posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Nil(t, got.ModifiedAt)
	assert.Equal(t, writer, got.Writer)

	updated := got.Update(entity.PostUpdate{Content: "bye"}, 200)
	_, err = posts.Save(ctx, updated)
	require.NoError(t, err)

	got, err = posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "bye", got.Content)
	require.NotNil(t, got.ModifiedAt)
	assert.Equal(t, int64(200), *got.ModifiedAt)
}

func TestPostRepository_UnknownWriter(t *testing.T) {
	posts := NewPostRepository(newTestDB(t))
	_, err := posts.Save(context.Background(), &entity.Post{Content: "x", CreatedAt: 1, Writer: &entity.User{ID: 77}})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestTransactor_RollsBackFailedUnitOfWork(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	tx := NewTransactor(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := users.Save(ctx, pendingUser("a@example.com")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	exists, err := users.ExistsByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransactor_CommitsWithMock(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlite")
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET nickname`).
		WithArgs("n", "a", "ACTIVE", sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	users := NewUserRepository(db)
	err = NewTransactor(db).WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, err := users.Save(ctx, &entity.User{ID: 1, Nickname: "n", Address: "a", Status: entity.UserStatusActive})
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_ReportsCommitFailure(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlite")
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

	err = NewTransactor(db).WithinTransaction(context.Background(), func(context.Context) error { return nil })
	assert.ErrorContains(t, err, "commit tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}
