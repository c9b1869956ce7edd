package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()

		alice, err := e.users.CreateUser(ctx, "alice_01")
		require.NoError(t, err)

		_, err = e.users.CreateUser(ctx, "alice_01")
		assert.ErrorIs(t, err, ErrDuplicateUsername)

		for _, bad := range []string{"", "has space", "dash-ed", "way_too_long_username_for_this_service"} {
			_, err = e.users.CreateUser(ctx, bad)
			assert.ErrorIs(t, err, ErrInvalidInput, "username %q", bad)
		}

		found, err := e.users.FindByUsername(ctx, "alice_01")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, found.ID)

		got, err := e.users.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice_01", got.Username)

		_, err = e.users.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)
		_, err = e.users.GetUser(ctx, "usr-nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)

		users, err := e.users.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}
