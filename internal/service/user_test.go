package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threetgame/backend/internal/apperror"
	"github.com/threetgame/backend/internal/entity"
	"github.com/threetgame/backend/internal/repository"
)

type memoryUserRepo struct {
	users map[string]*entity.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*entity.User)}
}

func (that *memoryUserRepo) Save(_ context.Context, user *entity.User) error {
	for _, existing := range that.users {
		if existing.Username == user.Username {
			return repository.ErrUserExists
		}
	}
	that.users[user.ID] = user
	return nil
}

func (that *memoryUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, user := range that.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (that *memoryUserRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	user, ok := that.users[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Registers a user with a hashed password", func(t *testing.T) {
		repo := newMemoryUserRepo()
		users := NewUserService(repo)

		// When: a user registers
		identity, err := users.Register(ctx, "alice", "alice@example.com", "s3cret")

		// Then: an identity comes back and the stored hash is not the password
		require.NoError(t, err)
		assert.NotEmpty(t, identity.ID)
		assert.Equal(t, "alice", identity.Username)

		stored, err := repo.FindByID(ctx, identity.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "s3cret", stored.PasswordHash)
	})

	t.Run("A duplicate username fails", func(t *testing.T) {
		repo := newMemoryUserRepo()
		users := NewUserService(repo)

		_, err := users.Register(ctx, "alice", "a@example.com", "s3cret")
		require.NoError(t, err)

		_, err = users.Register(ctx, "alice", "b@example.com", "other")
		assert.ErrorIs(t, err, repository.ErrUserExists)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	repo := newMemoryUserRepo()
	users := NewUserService(repo)

	registered, err := users.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	t.Run("Correct credentials yield the registered identity", func(t *testing.T) {
		identity, err := users.Login(ctx, "alice", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, registered, identity)
	})

	t.Run("A wrong password is unauthorized", func(t *testing.T) {
		_, err := users.Login(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("An unknown username is unauthorized", func(t *testing.T) {
		_, err := users.Login(ctx, "nobody", "s3cret")
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}
