package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/threetgame/backend/internal/entity"
)

const (
	fieldWins   = "wins"
	fieldLosses = "losses"
	fieldDraws  = "draws"
)

type StatsRepository interface {
	AddWin(ctx context.Context, userID string) error
	AddLoss(ctx context.Context, userID string) error
	AddDraw(ctx context.Context, userID string) error
	GetByUserID(ctx context.Context, userID string) (*entity.Stats, error)
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

func (that *dbStats) AddWin(ctx context.Context, userID string) error {
	return that.increment(ctx, userID, fieldWins)
}

func (that *dbStats) AddLoss(ctx context.Context, userID string) error {
	return that.increment(ctx, userID, fieldLosses)
}

func (that *dbStats) AddDraw(ctx context.Context, userID string) error {
	return that.increment(ctx, userID, fieldDraws)
}

func (that *dbStats) GetByUserID(ctx context.Context, userID string) (*entity.Stats, error) {
	fields, err := that.client.HGetAll(ctx, statsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	stats := &entity.Stats{}
	for field, raw := range fields {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stats field %s: %w", field, err)
		}

		switch field {
		case fieldWins:
			stats.Wins = value
		case fieldLosses:
			stats.Losses = value
		case fieldDraws:
			stats.Draws = value
		}
	}

	return stats, nil
}

func (that *dbStats) increment(ctx context.Context, userID, field string) error {
	if err := that.client.HIncrBy(ctx, statsKey(userID), field, 1).Err(); err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}

	return nil
}

func statsKey(userID string) string {
	return "stats:" + userID
}
