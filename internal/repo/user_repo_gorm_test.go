package repo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsDupKey(t *testing.T) {
	cases := []struct {
		msg string
		dup bool
	}{
		{"Error 1062: Duplicate entry 'a@b.c' for key 'users.idx_users_email'", true},
		{"ERROR: duplicate key value violates unique constraint \"idx_users_email\" (SQLSTATE 23505)", true},
		{"UNIQUE constraint failed: users.email", true},
		{"dial tcp 127.0.0.1:5432: connect: connection refused", false},
		{"context deadline exceeded", false},
	}
	for _, c := range cases {
		require.Equal(t, c.dup, isDupKey(errors.New(c.msg)), c.msg)
	}
}
