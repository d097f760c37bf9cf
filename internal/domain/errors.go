package domain

import "errors"

// Sentinel errors for deterministic transport mapping.
var (
	ErrEmailTaken       = errors.New("email already registered")
	ErrUserNotFound     = errors.New("user not found")
	ErrPasswordEmpty    = errors.New("password must not be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

// MinPasswordLen is the password policy floor, checked before any hashing.
const MinPasswordLen = 8

// Kind buckets errors for callers that only care about the category.
// The empty/too-short split stays visible through errors.Is for callers
// that want distinct messages.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindNotFound
	KindConflict
)

func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return KindConflict
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrPasswordEmpty), errors.Is(err, ErrPasswordTooShort):
		return KindBadRequest
	default:
		return KindInternal
	}
}

// ValidatePassword enforces the policy without touching the hasher, so a
// rejected value never costs a hash round.
func ValidatePassword(plaintext string) error {
	if plaintext == "" {
		return ErrPasswordEmpty
	}
	if len(plaintext) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}
