package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threetgame/backend/internal/apperror"
	"github.com/threetgame/backend/internal/entity"
	"github.com/threetgame/backend/internal/repository/storage"
)

func newTestUserRepo(t *testing.T) (context.Context, UserRepository) {
	t.Helper()

	ctx := context.Background()

	st, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Init(ctx))

	t.Cleanup(func() {
		_ = st.Close()
	})

	return ctx, NewUserRepository(st.Connection)
}

func TestUserRepository_Save(t *testing.T) {
	t.Run("Saves and reads back a user", func(t *testing.T) {
		ctx, userRepo := newTestUserRepo(t)

		// Given: a fresh user
		user := &entity.User{
			ID:           "user-1",
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: "hash",
		}

		// When: the user is saved
		err := userRepo.Save(ctx, user)

		// Then: it can be found by username
		require.NoError(t, err)

		found, err := userRepo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, user.Email, found.Email)
		assert.Equal(t, user.PasswordHash, found.PasswordHash)
	})

	t.Run("A duplicate username is rejected", func(t *testing.T) {
		ctx, userRepo := newTestUserRepo(t)

		user := &entity.User{ID: "user-1", Username: "alice", Email: "a@example.com", PasswordHash: "hash"}
		require.NoError(t, userRepo.Save(ctx, user))

		// When: another user claims the same username
		dup := &entity.User{ID: "user-2", Username: "alice", Email: "b@example.com", PasswordHash: "hash"}
		err := userRepo.Save(ctx, dup)

		// Then: the save fails with ErrUserExists
		assert.ErrorIs(t, err, ErrUserExists)
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	t.Run("FindByID_Success", func(t *testing.T) {
		ctx, userRepo := newTestUserRepo(t)

		user := &entity.User{ID: "user-1", Username: "alice", Email: "a@example.com", PasswordHash: "hash"}
		require.NoError(t, userRepo.Save(ctx, user))

		found, err := userRepo.FindByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
	})

	t.Run("FindByID_NotFound", func(t *testing.T) {
		ctx, userRepo := newTestUserRepo(t)

		found, err := userRepo.FindByID(ctx, "nobody")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, found)
	})
}
