package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threetgame/backend/testing/suite"
)

func TestPlayerRepository_ClaimActiveRoom(t *testing.T) {
	t.Run("A free user claims a room", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// When: a user claims a room code
		claimed, err := playerRepo.ClaimActiveRoom(ctx, "user-1", "AB12CD")

		// Then: the claim lands and is readable back
		require.NoError(t, err)
		assert.True(t, claimed)

		code, err := playerRepo.GetActiveRoom(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "AB12CD", code)
	})

	t.Run("A bound user cannot claim a second room", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		claimed, err := playerRepo.ClaimActiveRoom(ctx, "user-1", "AB12CD")
		require.NoError(t, err)
		require.True(t, claimed)

		// When: the same user claims another code
		claimed, err = playerRepo.ClaimActiveRoom(ctx, "user-1", "ZZ99XX")

		// Then: the claim is refused and the original binding stands
		require.NoError(t, err)
		assert.False(t, claimed)

		code, err := playerRepo.GetActiveRoom(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "AB12CD", code)
	})
}

func TestPlayerRepository_GetActiveRoom(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// When: GetActiveRoom is called for a user with no binding
	code, err := playerRepo.GetActiveRoom(ctx, "nobody")

	// Then: no error and no code
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestPlayerRepository_ReleaseActiveRoom(t *testing.T) {
	t.Run("Releasing with the bound code frees the user", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		claimed, err := playerRepo.ClaimActiveRoom(ctx, "user-1", "AB12CD")
		require.NoError(t, err)
		require.True(t, claimed)

		// When: the binding is released with its own code, twice
		require.NoError(t, playerRepo.ReleaseActiveRoom(ctx, "user-1", "AB12CD"))
		require.NoError(t, playerRepo.ReleaseActiveRoom(ctx, "user-1", "AB12CD"))

		// Then: the user reads back as unbound
		code, err := playerRepo.GetActiveRoom(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, code)
	})

	t.Run("Releasing with another room's code is a no-op", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		claimed, err := playerRepo.ClaimActiveRoom(ctx, "user-1", "AB12CD")
		require.NoError(t, err)
		require.True(t, claimed)

		// When: a release carries the code of a different room
		require.NoError(t, playerRepo.ReleaseActiveRoom(ctx, "user-1", "ZZ99XX"))

		// Then: the binding survives
		code, err := playerRepo.GetActiveRoom(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "AB12CD", code)
	})
}
