package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-certification/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-user-certification/pkg/helpers"
)

type UserServiceSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.Store
	sender *recordingSender
	clock  *helpers.ManualClock
	svc    *UserService
}

func (s *UserServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.sender = &recordingSender{}
	s.clock = helpers.NewManualClock(1_700_000_000_000)
	s.svc = NewUserService(
		s.store.Users(), s.store,
		NewCertificationService(s.sender, ""),
		&sequenceCodes{}, s.clock, nil, helpers.NewDiscardLogger(),
	)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) create(email string) *entity.User {
	u, err := s.svc.Create(s.ctx, entity.UserCreate{Email: email, Nickname: "foo", Address: "Seoul"})
	s.Require().NoError(err)
	return u
}

func (s *UserServiceSuite) TestCreateRegistersPendingUserAndSendsCertification() {
	u := s.create("foo@gmail.com")

	s.NotZero(u.ID)
	s.Equal(entity.UserStatusPending, u.Status)
	s.NotEmpty(u.CertificationCode)
	s.Nil(u.LastLoginAt)

	msgs := s.sender.messages()
	s.Require().Len(msgs, 1)
	s.Equal("foo@gmail.com", msgs[0].To)
	s.Contains(msgs[0].Body, "/api/users/1/verify?certificationCode="+u.CertificationCode)
}

func (s *UserServiceSuite) TestCreateGivesEachUserAFreshCode() {
	a := s.create("a@example.com")
	b := s.create("b@example.com")
	s.NotEqual(a.CertificationCode, b.CertificationCode)
	s.NotEqual(a.ID, b.ID)
}

func (s *UserServiceSuite) TestCreateRejectsDuplicateEmail() {
	s.create("foo@gmail.com")

	_, err := s.svc.Create(s.ctx, entity.UserCreate{Email: "foo@gmail.com", Nickname: "bar", Address: "Busan"})

	s.ErrorIs(err, domain.ErrDuplicateEmail)
	s.Len(s.sender.messages(), 1)
}

func (s *UserServiceSuite) TestCreateValidatesInput() {
	_, err := s.svc.Create(s.ctx, entity.UserCreate{Email: "not-an-email", Nickname: "", Address: "Seoul"})

	var ve *domain.ValidationError
	s.Require().True(errors.As(err, &ve))
	s.Contains(ve.Fields, "email")
	s.Contains(ve.Fields, "nickname")
	s.Empty(s.sender.messages())
}

func (s *UserServiceSuite) TestCreateRejectsWhitespaceOnlyFields() {
	_, err := s.svc.Create(s.ctx, entity.UserCreate{Email: "a@b.io", Nickname: "   ", Address: "\t"})

	var ve *domain.ValidationError
	s.Require().True(errors.As(err, &ve))
	s.Equal("must not be blank", ve.Fields["nickname"])
	s.Equal("must not be blank", ve.Fields["address"])
	s.Empty(s.sender.messages())

	exists, err := s.store.Users().ExistsByEmail(s.ctx, "a@b.io")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *UserServiceSuite) TestCreateKeepsUserWhenDeliveryFails() {
	s.sender.err = errSMTPDown

	u, err := s.svc.Create(s.ctx, entity.UserCreate{Email: "foo@gmail.com", Nickname: "foo", Address: "Seoul"})

	var de *domain.DeliveryError
	s.Require().True(errors.As(err, &de))
	s.Require().NotNil(u)

	stored, err := s.store.Users().FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(entity.UserStatusPending, stored.Status)
}

func (s *UserServiceSuite) TestScenarioCreateThenVerify() {
	u := s.create("foo@gmail.com")

	_, err := s.svc.GetByEmail(s.ctx, "foo@gmail.com")
	var nf *domain.NotFoundError
	s.Require().True(errors.As(err, &nf))
	s.Equal("Users", nf.Resource)
	s.Equal("foo@gmail.com", nf.Key)

	s.Require().NoError(s.svc.VerifyEmail(s.ctx, u.ID, u.CertificationCode))

	active, err := s.svc.GetByEmail(s.ctx, "foo@gmail.com")
	s.Require().NoError(err)
	s.Equal(entity.UserStatusActive, active.Status)
}

func (s *UserServiceSuite) TestVerifyRoundTripOnlyChangesStatus() {
	u := s.create("foo@gmail.com")
	s.Require().NoError(s.svc.VerifyEmail(s.ctx, u.ID, u.CertificationCode))

	got, err := s.svc.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)

	want := *u
	want.Status = entity.UserStatusActive
	s.Equal(&want, got)
}

func (s *UserServiceSuite) TestVerifyWithWrongCodeLeavesUserPending() {
	u := s.create("foo@gmail.com")

	err := s.svc.VerifyEmail(s.ctx, u.ID, "wrong-code")
	s.ErrorIs(err, domain.ErrCertificationMismatch)

	_, err = s.svc.GetByID(s.ctx, u.ID)
	var nf *domain.NotFoundError
	s.True(errors.As(err, &nf))

	stored, err := s.store.Users().FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(entity.UserStatusPending, stored.Status)
}

func (s *UserServiceSuite) TestVerifyRejectsPrefixOfCode() {
	u := s.create("foo@gmail.com")
	s.ErrorIs(s.svc.VerifyEmail(s.ctx, u.ID, u.CertificationCode[:len(u.CertificationCode)-1]), domain.ErrCertificationMismatch)
	s.ErrorIs(s.svc.VerifyEmail(s.ctx, u.ID, u.CertificationCode+" "), domain.ErrCertificationMismatch)
}

func (s *UserServiceSuite) TestVerifyIsIdempotent() {
	u := s.create("foo@gmail.com")
	s.Require().NoError(s.svc.VerifyEmail(s.ctx, u.ID, u.CertificationCode))
	s.Require().NoError(s.svc.VerifyEmail(s.ctx, u.ID, u.CertificationCode))

	got, err := s.svc.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(entity.UserStatusActive, got.Status)
}

func (s *UserServiceSuite) TestVerifyUnknownUser() {
	err := s.svc.VerifyEmail(s.ctx, 404, "x")
	var nf *domain.NotFoundError
	s.Require().True(errors.As(err, &nf))
	s.Equal(int64(404), nf.Key)
}

func (s *UserServiceSuite) TestUpdateChangesOnlySuppliedFields() {
	u := s.create("foo@gmail.com")
	s.Require().NoError(s.svc.VerifyEmail(s.ctx, u.ID, u.CertificationCode))

	nickname := "newname"
	updated, err := s.svc.Update(s.ctx, u.ID, entity.UserUpdate{Nickname: &nickname})
	s.Require().NoError(err)

	s.Equal("newname", updated.Nickname)
	s.Equal("Seoul", updated.Address)
	s.Equal(u.Email, updated.Email)
	s.Equal(u.CertificationCode, updated.CertificationCode)
	s.Equal(entity.UserStatusActive, updated.Status)
}

func (s *UserServiceSuite) TestUpdateWorksOnPendingUser() {
	u := s.create("foo@gmail.com")

	address := "Busan"
	updated, err := s.svc.Update(s.ctx, u.ID, entity.UserUpdate{Address: &address})
	s.Require().NoError(err)
	s.Equal("Busan", updated.Address)
	s.Equal(entity.UserStatusPending, updated.Status)
}

func (s *UserServiceSuite) TestUpdateRejectsBlankNickname() {
	u := s.create("foo@gmail.com")
	blank := "   "
	_, err := s.svc.Update(s.ctx, u.ID, entity.UserUpdate{Nickname: &blank})
	var ve *domain.ValidationError
	s.True(errors.As(err, &ve))
}

func (s *UserServiceSuite) TestUpdateUnknownUser() {
	_, err := s.svc.Update(s.ctx, 99, entity.UserUpdate{})
	var nf *domain.NotFoundError
	s.True(errors.As(err, &nf))
}

func (s *UserServiceSuite) TestLoginIsStrictlyIncreasing() {
	u := s.create("foo@gmail.com")

	s.Require().NoError(s.svc.Login(s.ctx, u.ID))
	first, err := s.store.Users().FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NotNil(first.LastLoginAt)
	s.Equal(int64(1_700_000_000_000), *first.LastLoginAt)

	// clock does not move
	s.Require().NoError(s.svc.Login(s.ctx, u.ID))
	second, err := s.store.Users().FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Greater(*second.LastLoginAt, *first.LastLoginAt)

	s.clock.Advance(time.Minute)
	s.Require().NoError(s.svc.Login(s.ctx, u.ID))
	third, err := s.store.Users().FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(int64(1_700_000_060_000), *third.LastLoginAt)
}

func (s *UserServiceSuite) TestLoginUnknownUser() {
	var nf *domain.NotFoundError
	s.True(errors.As(s.svc.Login(s.ctx, 5), &nf))
}

func (s *UserServiceSuite) TestGetMyInfoRequiresActiveUserAndRecordsLogin() {
	u := s.create("foo@gmail.com")

	_, err := s.svc.GetMyInfo(s.ctx, "foo@gmail.com")
	var nf *domain.NotFoundError
	s.Require().True(errors.As(err, &nf))

	s.Require().NoError(s.svc.VerifyEmail(s.ctx, u.ID, u.CertificationCode))
	me, err := s.svc.GetMyInfo(s.ctx, "foo@gmail.com")
	s.Require().NoError(err)
	s.NotNil(me.LastLoginAt)
}

func (s *UserServiceSuite) TestUpdateByEmailIgnoresPendingUsers() {
	s.create("foo@gmail.com")
	nickname := "bar"
	_, err := s.svc.UpdateByEmail(s.ctx, "foo@gmail.com", entity.UserUpdate{Nickname: &nickname})
	var nf *domain.NotFoundError
	s.True(errors.As(err, &nf))
}

func (s *UserServiceSuite) TestSearchWithoutIndexReturnsEmpty() {
	out, err := s.svc.Search(s.ctx, "foo", 5)
	s.Require().NoError(err)
	s.Empty(out)
}

type stubIndex struct {
	indexed []int64
	size    int
}

func (i *stubIndex) Index(_ context.Context, u *entity.User) error {
	i.indexed = append(i.indexed, u.ID)
	return nil
}

func (i *stubIndex) Search(_ context.Context, _ string, size int) ([]*entity.User, error) {
	i.size = size
	return nil, nil
}

func TestUserService_IndexesOnlyActiveUsers(t *testing.T) {
	store := memory.NewStore()
	idx := &stubIndex{}
	svc := NewUserService(store.Users(), store, nil, nil, nil, idx, nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, entity.UserCreate{Email: "a@b.io", Nickname: "a", Address: "x"})
	require.NoError(t, err)
	assert.Empty(t, idx.indexed)

	require.NoError(t, svc.VerifyEmail(ctx, u.ID, u.CertificationCode))
	assert.Equal(t, []int64{u.ID}, idx.indexed)

	_, err = svc.Search(ctx, "a", 500)
	require.NoError(t, err)
	assert.Equal(t, 50, idx.size)

	_, err = svc.Search(ctx, "a", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, idx.size)
}
