// Package memory is an in-process implementation of the repository ports, used by tests and
// the STORAGE_DRIVER=memory mode. Units of work are serialized and rolled back from a snapshot.
package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-certification/internal/domain/repository"
)

type txKey struct{}

type postRow struct {
	ID         int64
	Content    string
	CreatedAt  int64
	ModifiedAt *int64
	WriterID   int64
}

type snapshot struct {
	users      map[int64]entity.User
	posts      map[int64]postRow
	nextUserID int64
	nextPostID int64
}

// Store holds users and posts. All access goes through txMu so a unit of work never interleaves with
// another writer; mu guards the maps themselves.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users      map[int64]entity.User
	posts      map[int64]postRow
	nextUserID int64
	nextPostID int64
}

func NewStore() *Store {
	return &Store{
		users: map[int64]entity.User{},
		posts: map[int64]postRow{},
	}
}

func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }
func (s *Store) Posts() *PostRepository { return &PostRepository{store: s} }

// WithinTransaction implements repository.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, s))
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// guard serializes a single repository call made outside a unit of work.
func (s *Store) guard(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		users:      make(map[int64]entity.User, len(s.users)),
		posts:      make(map[int64]postRow, len(s.posts)),
		nextUserID: s.nextUserID,
		nextPostID: s.nextPostID,
	}
	for id, u := range s.users {
		snap.users[id] = copyUser(u)
	}
	for id, p := range s.posts {
		snap.posts[id] = p
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.posts = snap.posts
	s.nextUserID = snap.nextUserID
	s.nextPostID = snap.nextPostID
}

func copyUser(u entity.User) entity.User {
	if u.LastLoginAt != nil {
		v := *u.LastLoginAt
		u.LastLoginAt = &v
	}
	return u
}

var _ repo.Transactor = (*Store)(nil)
