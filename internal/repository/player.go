package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// bindings outlive any sane game but not a dead server
const activeRoomTTL = 24 * time.Hour

// delete the binding only while it still points at this room
var releaseActiveRoomScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// PlayerRepository maps a user id to the code of the room it currently
// occupies. Claims are atomic, so two racing commands cannot seat one user
// in two rooms; releases are conditional on the code, so a late release of
// a dead room cannot wipe a binding the user has since moved to a new one.
type PlayerRepository interface {
	ClaimActiveRoom(ctx context.Context, userID, code string) (bool, error)
	GetActiveRoom(ctx context.Context, userID string) (string, error)
	ReleaseActiveRoom(ctx context.Context, userID, code string) error
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func (that *dbPlayer) ClaimActiveRoom(ctx context.Context, userID, code string) (bool, error) {
	claimed, err := that.client.SetNX(ctx, activeRoomKey(userID), code, activeRoomTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim active room: %w", err)
	}

	return claimed, nil
}

func (that *dbPlayer) GetActiveRoom(ctx context.Context, userID string) (string, error) {
	code, err := that.client.Get(ctx, activeRoomKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get active room: %w", err)
	}

	return code, nil
}

func (that *dbPlayer) ReleaseActiveRoom(ctx context.Context, userID, code string) error {
	if err := releaseActiveRoomScript.Run(ctx, that.client, []string{activeRoomKey(userID)}, code).Err(); err != nil {
		return fmt.Errorf("failed to release active room: %w", err)
	}

	return nil
}

func activeRoomKey(userID string) string {
	return "player:room:" + userID
}
