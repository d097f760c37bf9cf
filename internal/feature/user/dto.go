package user

import (
	"time"

	"go-user-api/internal/domain"
)

type createIn struct {
	Name     string `json:"name"     binding:"required,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// updateIn mirrors the tri-state partial: absent JSON keys stay nil and
// untouched. Password has no min binding on purpose; the lifecycle rules
// decide between "empty" and "too short".
type updateIn struct {
	Name     *string `json:"name"     binding:"omitempty,max=64"`
	Email    *string `json:"email"    binding:"omitempty,email"`
	Password *string `json:"password"`
}

type byEmailQ struct {
	Email string `form:"email" binding:"required,email"`
}

// userOut never carries the password hash.
type userOut struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type lookupOut struct {
	User *userOut `json:"user"`
}

type listOut struct {
	Items []userOut `json:"items"`
}

func toOut(u *domain.User) userOut {
	return userOut{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
