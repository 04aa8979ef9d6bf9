package entity

type UserStatus string

const (
	UserStatusPending UserStatus = "PENDING"
	UserStatusActive  UserStatus = "ACTIVE"
)

// User is the aggregate root for the user domain.
//
// Status only moves PENDING -> ACTIVE. Email and CertificationCode are fixed at creation.
type User struct {
	ID                int64
	Email             string
	Nickname          string
	Address           string
	CertificationCode string
	Status            UserStatus
	LastLoginAt       *int64 // epoch millis, UTC
}

type UserCreate struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Nickname string `json:"nickname" validate:"required,notblank,max=50"`
	Address  string `json:"address" validate:"required,notblank,max=255"`
}

// UserUpdate carries optional profile changes; nil fields are left untouched.
type UserUpdate struct {
	Nickname *string `json:"nickname" validate:"omitempty,notblank,max=50"`
	Address  *string `json:"address" validate:"omitempty,notblank,max=255"`
}

// NewUser builds a pending user that has not been persisted yet.
func NewUser(in UserCreate, certificationCode string) *User {
	return &User{
		Email:             in.Email,
		Nickname:          in.Nickname,
		Address:           in.Address,
		CertificationCode: certificationCode,
		Status:            UserStatusPending,
	}
}

// Update returns a copy with the supplied profile fields applied.
func (u *User) Update(in UserUpdate) *User {
	next := *u
	if in.Nickname != nil {
		next.Nickname = *in.Nickname
	}
	if in.Address != nil {
		next.Address = *in.Address
	}
	return &next
}

func (u *User) ChangeLastLoginAt(millis int64) {
	u.LastLoginAt = &millis
}

// Activate marks the user certified. Calling it on an active user is a no-op.
func (u *User) Activate() {
	u.Status = UserStatusActive
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

func (u *User) CertificationCodeMatches(code string) bool {
	return u.CertificationCode == code
}
