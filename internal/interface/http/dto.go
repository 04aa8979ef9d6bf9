package handlers

import "github.com/oksasatya/go-ddd-user-certification/internal/domain/entity"

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	Status      string `json:"status"`
	LastLoginAt *int64 `json:"lastLoginAt"`
}

// MyProfileResponse is returned to the owner and additionally exposes the address.
type MyProfileResponse struct {
	UserResponse
	Address string `json:"address"`
}

type PostResponse struct {
	ID         int64         `json:"id"`
	Content    string        `json:"content"`
	CreatedAt  int64         `json:"createdAt"`
	ModifiedAt *int64        `json:"modifiedAt"`
	Writer     *UserResponse `json:"writer"`
}

func toUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Nickname:    u.Nickname,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
	}
}

func toMyProfileResponse(u *entity.User) MyProfileResponse {
	return MyProfileResponse{UserResponse: *toUserResponse(u), Address: u.Address}
}

func toUserResponses(users []*entity.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toPostResponse(p *entity.Post) PostResponse {
	return PostResponse{
		ID:         p.ID,
		Content:    p.Content,
		CreatedAt:  p.CreatedAt,
		ModifiedAt: p.ModifiedAt,
		Writer:     toUserResponse(p.Writer),
	}
}
