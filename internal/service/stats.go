package service

import (
	"context"
	"log/slog"

	"github.com/threetgame/backend/internal/entity"
)

// StatsService is the statistics collaborator: it is handed the final
// snapshot of every finished room. Recording is best-effort and never
// blocks or fails gameplay.
type StatsService interface {
	RecordResult(ctx context.Context, snapshot entity.Snapshot)
	GetByUserID(ctx context.Context, userID string) (*entity.Stats, error)
}

type statsRepo interface {
	AddWin(ctx context.Context, userID string) error
	AddLoss(ctx context.Context, userID string) error
	AddDraw(ctx context.Context, userID string) error
	GetByUserID(ctx context.Context, userID string) (*entity.Stats, error)
}

type statsService struct {
	logger    *slog.Logger
	statsRepo statsRepo
}

func NewStatsService(logger *slog.Logger, statsRepo statsRepo) StatsService {
	return &statsService{
		logger:    logger.With("component", "stats"),
		statsRepo: statsRepo,
	}
}

func (that *statsService) RecordResult(ctx context.Context, snapshot entity.Snapshot) {
	log := that.logger.With("method", "RecordResult", "code", snapshot.Code)

	if !snapshot.IsFinished() {
		return
	}

	host, guest := snapshot.Players.Host, snapshot.Players.Guest
	if host == nil || guest == nil {
		// a room abandoned before a guest arrived has no result to record
		return
	}

	if snapshot.IsDraw {
		for _, player := range []*entity.Player{host, guest} {
			if err := that.statsRepo.AddDraw(ctx, player.ID); err != nil {
				log.Error("failed to record draw", "player", player.ID, "error", err)
			}
		}
		return
	}

	winner, loser := host, guest
	if guest.Mark == snapshot.Winner {
		winner, loser = guest, host
	}

	if err := that.statsRepo.AddWin(ctx, winner.ID); err != nil {
		log.Error("failed to record win", "player", winner.ID, "error", err)
	}

	if err := that.statsRepo.AddLoss(ctx, loser.ID); err != nil {
		log.Error("failed to record loss", "player", loser.ID, "error", err)
	}
}

func (that *statsService) GetByUserID(ctx context.Context, userID string) (*entity.Stats, error) {
	return that.statsRepo.GetByUserID(ctx, userID)
}
