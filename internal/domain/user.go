package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// User is the persisted account record. DeletedAt drives gorm's soft-delete
// scope: a non-null value retires the row from every default query, so any
// new read path gets the "active only" filter for free.
type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Name         string         `gorm:"size:64;not null" json:"name"`
	PasswordHash string         `gorm:"size:191;not null" json:"-"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// CreateUserInput carries the plain fields for a new account. Shape
// validation (required, email format, minimum length) belongs to the
// transport binding; the service only re-checks what it owns.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput is a tri-state partial: a nil field means "leave as is",
// a non-nil pointer means "set to this value". That includes the empty
// string, which for Password must be rejected rather than ignored.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UserRepository is the storage contract. Find methods return (nil, nil)
// when no active row matches; SoftDelete reports how many rows it touched.
//
// The email unique index behind Create and Update is the real uniqueness
// guarantee: the service's pre-check can race with a concurrent writer,
// and when it loses the race the write must surface ErrEmailTaken.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListActive(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id string) (int64, error)
}

// PasswordHasher produces a salted one-way hash. The work factor is fixed
// at construction; output is opaque and non-deterministic.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
}
