package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, KindConflict, KindOf(ErrEmailTaken))
	require.Equal(t, KindNotFound, KindOf(ErrUserNotFound))
	require.Equal(t, KindBadRequest, KindOf(ErrPasswordEmpty))
	require.Equal(t, KindBadRequest, KindOf(ErrPasswordTooShort))
	require.Equal(t, KindInternal, KindOf(errors.New("connection refused")))
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("update user: %w", ErrEmailTaken)
	require.Equal(t, KindConflict, KindOf(wrapped))
}

func TestValidatePassword(t *testing.T) {
	require.ErrorIs(t, ValidatePassword(""), ErrPasswordEmpty)
	require.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	require.ErrorIs(t, ValidatePassword("1234567"), ErrPasswordTooShort)
	require.NoError(t, ValidatePassword("12345678"))
	require.NoError(t, ValidatePassword("passwordSeguro"))
}

func TestEmptyPasswordIsEmptyNotShort(t *testing.T) {
	err := ValidatePassword("")
	require.ErrorIs(t, err, ErrPasswordEmpty)
	require.NotErrorIs(t, err, ErrPasswordTooShort)
}
