package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threetgame/backend/testing/suite"
)

func TestStatsRepository_Increment(t *testing.T) {
	ctx, st := suite.New(t)

	statsRepo := NewStatsRepository(st.Storage)

	// Given: a user with two wins, a loss and a draw
	require.NoError(t, statsRepo.AddWin(ctx, "user-1"))
	require.NoError(t, statsRepo.AddWin(ctx, "user-1"))
	require.NoError(t, statsRepo.AddLoss(ctx, "user-1"))
	require.NoError(t, statsRepo.AddDraw(ctx, "user-1"))

	// When: the stats are read back
	stats, err := statsRepo.GetByUserID(ctx, "user-1")

	// Then: every counter reflects its increments
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Wins)
	assert.Equal(t, int64(1), stats.Losses)
	assert.Equal(t, int64(1), stats.Draws)
}

func TestStatsRepository_GetByUserID(t *testing.T) {
	t.Run("Unknown user yields zero counters", func(t *testing.T) {
		ctx, st := suite.New(t)

		statsRepo := NewStatsRepository(st.Storage)

		// When: stats are requested for a user that never played
		stats, err := statsRepo.GetByUserID(ctx, "nobody")

		// Then: all counters are zero
		require.NoError(t, err)
		assert.Zero(t, stats.Wins)
		assert.Zero(t, stats.Losses)
		assert.Zero(t, stats.Draws)
	})

	t.Run("Counters are isolated per user", func(t *testing.T) {
		ctx, st := suite.New(t)

		statsRepo := NewStatsRepository(st.Storage)

		require.NoError(t, statsRepo.AddWin(ctx, "user-1"))
		require.NoError(t, statsRepo.AddLoss(ctx, "user-2"))

		first, err := statsRepo.GetByUserID(ctx, "user-1")
		require.NoError(t, err)
		second, err := statsRepo.GetByUserID(ctx, "user-2")
		require.NoError(t, err)

		assert.Equal(t, int64(1), first.Wins)
		assert.Zero(t, first.Losses)
		assert.Equal(t, int64(1), second.Losses)
		assert.Zero(t, second.Wins)
	})
}
