package registry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/threetgame/backend/internal/apperror"
	"github.com/threetgame/backend/internal/entity"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	maxCodeAttempts = 16
)

var ErrCodeSpaceExhausted = errors.New("could not generate an unused room code")

// playerIndex tracks which room a user is currently in, so a user id
// appears in at most one active room at a time. Claims are atomic and
// releases are conditional on the code.
type playerIndex interface {
	ClaimActiveRoom(ctx context.Context, userID, code string) (bool, error)
	GetActiveRoom(ctx context.Context, userID string) (string, error)
	ReleaseActiveRoom(ctx context.Context, userID, code string) error
}

// Config bounds a room's lifetime outside of play.
type Config struct {
	WaitingTimeout  time.Duration
	FinishedTTL     time.Duration
	CleanupInterval time.Duration
}

// Registry owns every live room, keyed by code. The registry lock guards
// only the code space; each room serializes its own commands, so creating
// one room never blocks a move in another.
type Registry struct {
	logger *slog.Logger
	conf   Config

	mu    sync.RWMutex
	rooms map[string]*entity.Room

	players playerIndex
}

func New(logger *slog.Logger, conf Config, players playerIndex) *Registry {
	return &Registry{
		logger:  logger.With("component", "registry"),
		conf:    conf,
		rooms:   make(map[string]*entity.Room),
		players: players,
	}
}

// Create - makes a new waiting room for host under a fresh code. Codes are
// drawn at random and retried on collision; there is no global counter, so
// one code reveals nothing about the others.
func (that *Registry) Create(ctx context.Context, host entity.Identity) (*entity.Room, error) {
	that.mu.Lock()

	var room *entity.Room
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateRoomCode()
		if err != nil {
			that.mu.Unlock()
			return nil, fmt.Errorf("failed to generate room code: %w", err)
		}

		if _, taken := that.rooms[code]; taken {
			continue
		}

		room = entity.NewRoom(code, host)
		that.rooms[code] = room
		break
	}

	that.mu.Unlock()

	if room == nil {
		return nil, ErrCodeSpaceExhausted
	}

	// the claim is atomic: two racing creates for one user cannot both win
	if err := that.claimPlayer(ctx, host.ID, room.Code()); err != nil {
		that.mu.Lock()
		delete(that.rooms, room.Code())
		that.mu.Unlock()

		return nil, err
	}

	that.logger.Info("room created", "code", room.Code(), "host", host.ID)

	return room, nil
}

// Get - looks up a room by code.
func (that *Registry) Get(code string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[code]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

// Join - seats identity as the guest of the room with the given code. The
// claim happens before the room's critical section and is rolled back on a
// rejected join, so no I/O runs under the room lock.
func (that *Registry) Join(ctx context.Context, code string, identity entity.Identity) (entity.Snapshot, error) {
	room, err := that.Get(code)
	if err != nil {
		return entity.Snapshot{}, err
	}

	// rejoining a room you are already seated in is a no-op
	if room.HasPlayer(identity.ID) {
		return room.Snapshot(), nil
	}

	if err = that.claimPlayer(ctx, identity.ID, code); err != nil {
		return entity.Snapshot{}, err
	}

	snapshot, err := room.Join(identity)
	if err != nil {
		if releaseErr := that.players.ReleaseActiveRoom(ctx, identity.ID, code); releaseErr != nil {
			that.logger.Error("failed to release claim after rejected join", "code", code, "error", releaseErr)
		}

		return entity.Snapshot{}, err
	}

	return snapshot, nil
}

// Remove - destroys a room. Idempotent.
func (that *Registry) Remove(ctx context.Context, code string) {
	that.mu.Lock()
	room, ok := that.rooms[code]
	delete(that.rooms, code)
	that.mu.Unlock()

	if !ok {
		return
	}

	that.ReleaseMembers(ctx, room.Snapshot())
	that.logger.Info("room removed", "code", code)
}

// ReleaseMembers - clears the active-room binding of every seated player so
// they may create or join another room. Called on finished transitions and
// on eviction; idempotent. The release is conditional on the room code: a
// binding the player has since moved to another room survives a late
// release of this one.
func (that *Registry) ReleaseMembers(ctx context.Context, snapshot entity.Snapshot) {
	for _, player := range []*entity.Player{snapshot.Players.Host, snapshot.Players.Guest} {
		if player == nil {
			continue
		}

		if err := that.players.ReleaseActiveRoom(ctx, player.ID, snapshot.Code); err != nil {
			that.logger.Error("failed to release active room", "player", player.ID, "error", err)
		}
	}
}

// Run - sweeps expired rooms until ctx is cancelled.
func (that *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(that.conf.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			that.sweep(ctx, now)
		}
	}
}

func (that *Registry) sweep(ctx context.Context, now time.Time) {
	that.mu.RLock()
	expired := make([]string, 0)
	for code, room := range that.rooms {
		if room.ShouldEvict(now, that.conf.WaitingTimeout, that.conf.FinishedTTL) {
			expired = append(expired, code)
		}
	}
	that.mu.RUnlock()

	for _, code := range expired {
		that.Remove(ctx, code)
	}
}

// claimPlayer atomically binds userID to code. A stale binding left behind
// by an evicted room is released and the claim retried.
func (that *Registry) claimPlayer(ctx context.Context, userID, code string) error {
	for attempt := 0; attempt < 2; attempt++ {
		claimed, err := that.players.ClaimActiveRoom(ctx, userID, code)
		if err != nil {
			return fmt.Errorf("failed to claim active room: %w", err)
		}
		if claimed {
			return nil
		}

		current, err := that.players.GetActiveRoom(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check active room: %w", err)
		}

		switch current {
		case "":
			// binding vanished between the claim and the read
			continue
		case code:
			return nil
		}

		// a stale binding to an evicted room does not block the player
		if _, err = that.Get(current); !errors.Is(err, apperror.ErrRoomNotFound) {
			return fmt.Errorf("%w: room %s", apperror.ErrAlreadyInRoom, current)
		}

		if err = that.players.ReleaseActiveRoom(ctx, userID, current); err != nil {
			return fmt.Errorf("failed to release stale room binding: %w", err)
		}
	}

	return apperror.ErrAlreadyInRoom
}

func generateRoomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}

	return string(buf), nil
}
