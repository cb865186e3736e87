package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threetgame/backend/internal/entity"
	"github.com/threetgame/backend/internal/repository"
)

func newTestStatsService(t *testing.T) (context.Context, StatsService) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return context.Background(), NewStatsService(logger, repository.NewStatsRepository(client))
}

func finishedSnapshot(winner string, isDraw bool) entity.Snapshot {
	return entity.Snapshot{
		Code:   "AB12CD",
		Status: entity.StatusFinished,
		Players: entity.Players{
			Host:  &entity.Player{ID: "host-1", Username: "alice", Mark: entity.PlayerX},
			Guest: &entity.Player{ID: "guest-1", Username: "bob", Mark: entity.PlayerO},
		},
		Winner: winner,
		IsDraw: isDraw,
	}
}

func TestStatsService_RecordResult(t *testing.T) {
	t.Run("A host win records a win and a loss", func(t *testing.T) {
		ctx, stats := newTestStatsService(t)

		stats.RecordResult(ctx, finishedSnapshot(entity.PlayerX, false))

		host, err := stats.GetByUserID(ctx, "host-1")
		require.NoError(t, err)
		guest, err := stats.GetByUserID(ctx, "guest-1")
		require.NoError(t, err)

		assert.Equal(t, int64(1), host.Wins)
		assert.Zero(t, host.Losses)
		assert.Equal(t, int64(1), guest.Losses)
		assert.Zero(t, guest.Wins)
	})

	t.Run("A guest win records the mirror result", func(t *testing.T) {
		ctx, stats := newTestStatsService(t)

		stats.RecordResult(ctx, finishedSnapshot(entity.PlayerO, false))

		host, err := stats.GetByUserID(ctx, "host-1")
		require.NoError(t, err)
		guest, err := stats.GetByUserID(ctx, "guest-1")
		require.NoError(t, err)

		assert.Equal(t, int64(1), host.Losses)
		assert.Equal(t, int64(1), guest.Wins)
	})

	t.Run("A draw records a draw for both seats", func(t *testing.T) {
		ctx, stats := newTestStatsService(t)

		stats.RecordResult(ctx, finishedSnapshot("", true))

		host, err := stats.GetByUserID(ctx, "host-1")
		require.NoError(t, err)
		guest, err := stats.GetByUserID(ctx, "guest-1")
		require.NoError(t, err)

		assert.Equal(t, int64(1), host.Draws)
		assert.Equal(t, int64(1), guest.Draws)
	})

	t.Run("An unfinished snapshot records nothing", func(t *testing.T) {
		ctx, stats := newTestStatsService(t)

		snapshot := finishedSnapshot(entity.PlayerX, false)
		snapshot.Status = entity.StatusPlaying

		stats.RecordResult(ctx, snapshot)

		host, err := stats.GetByUserID(ctx, "host-1")
		require.NoError(t, err)
		assert.Zero(t, host.Wins)
	})

	t.Run("A room abandoned before a guest arrived records nothing", func(t *testing.T) {
		ctx, stats := newTestStatsService(t)

		snapshot := finishedSnapshot(entity.PlayerX, false)
		snapshot.Players.Guest = nil

		stats.RecordResult(ctx, snapshot)

		host, err := stats.GetByUserID(ctx, "host-1")
		require.NoError(t, err)
		assert.Zero(t, host.Wins)
	})
}
