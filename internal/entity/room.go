package entity

import (
	"fmt"
	"sync"
	"time"

	"github.com/threetgame/backend/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Players holds both seats of a room. Guest is nil while the room waits.
type Players struct {
	Host  *Player `json:"host"`
	Guest *Player `json:"guest"`
}

// Snapshot is the complete, immutable state of a room at one instant. Every
// accepted command returns one for broadcast; clients never see partial
// state.
type Snapshot struct {
	// Version increases with every accepted command; the gateway orders
	// broadcasts by it. Not part of the wire contract.
	Version uint64 `json:"-"`

	Code         string  `json:"code"`
	Board        Board   `json:"board"`
	Status       string  `json:"status"`
	Turn         string  `json:"turn"`
	Players      Players `json:"players"`
	Winner       string  `json:"winner,omitempty"`
	IsDraw       bool    `json:"isDraw,omitempty"`
	Disconnected bool    `json:"disconnected,omitempty"`
}

func (that Snapshot) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that Snapshot) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that Snapshot) IsFinished() bool {
	return that.Status == StatusFinished
}

// Room owns one game session. All state mutation goes through its command
// methods, which serialize under the room's own lock: commands for one room
// are processed first-come-first-served while unrelated rooms progress in
// parallel. No command does I/O while holding the lock.
type Room struct {
	mu sync.Mutex

	code    string
	board   Board
	version uint64

	status string
	turn   string

	host  Player
	guest *Player

	winner       string
	isDraw       bool
	disconnected bool

	doomed     bool
	createdAt  time.Time
	finishedAt time.Time
}

// NewRoom - creates a room in waiting state with the host seated as X.
func NewRoom(code string, host Identity) *Room {
	return &Room{
		code:      code,
		board:     NewBoard(),
		status:    StatusWaiting,
		turn:      PlayerX,
		host:      NewPlayer(host, PlayerX),
		createdAt: time.Now(),
	}
}

func (that *Room) Code() string {
	return that.code
}

// Join - seats identity as the guest and starts the game. The host keeps
// the first move.
func (that *Room) Join(identity Identity) (Snapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if identity.ID == that.host.ID {
		return Snapshot{}, apperror.ErrSelfJoin
	}

	if that.guest != nil {
		return Snapshot{}, apperror.ErrRoomFull
	}

	if that.status != StatusWaiting {
		return Snapshot{}, apperror.ErrNotWaiting
	}

	guest := NewPlayer(identity, PlayerO)
	that.guest = &guest
	that.status = StatusPlaying
	that.version++

	return that.snapshot(), nil
}

// Move - applies a move for the given user. On acceptance the turn flips,
// or the room finishes with the evaluated outcome. Rejections leave the
// room untouched.
func (that *Room) Move(userID string, cell int) (Snapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status != StatusPlaying {
		return Snapshot{}, apperror.ErrNotPlaying
	}

	player, ok := that.playerByID(userID)
	if !ok {
		return Snapshot{}, apperror.ErrForbidden
	}

	if player.Mark != that.turn {
		return Snapshot{}, apperror.ErrNotYourTurn
	}

	board, err := that.board.Apply(cell, player.Mark)
	if err != nil {
		return Snapshot{}, fmt.Errorf("invalid move: %w", err)
	}

	that.board = board

	switch result := that.board.Evaluate(); result {
	case PlayerX, PlayerO:
		that.finish(result, false, false)
	case ResultTie:
		that.finish("", true, false)
	default:
		that.turn = ToggleMark(that.turn)
	}

	that.version++

	return that.snapshot(), nil
}

// Disconnect - handles a member leaving. During play the remaining player
// wins immediately. A host abandoning a waiting room dooms it for eviction.
// The returned bool reports whether the room state changed.
func (that *Room) Disconnect(userID string) (Snapshot, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.playerByID(userID)
	if !ok {
		return that.snapshot(), false
	}

	switch that.status {
	case StatusPlaying:
		that.finish(ToggleMark(player.Mark), false, true)
		that.version++
		return that.snapshot(), true
	case StatusWaiting:
		if player.ID == that.host.ID {
			that.doomed = true
			that.version++
			return that.snapshot(), true
		}
	}

	return that.snapshot(), false
}

// Snapshot - returns the current state without mutating anything.
func (that *Room) Snapshot() Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot()
}

// HasPlayer - reports whether userID occupies a seat in this room.
func (that *Room) HasPlayer(userID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, ok := that.playerByID(userID)
	return ok
}

// Doomed - reports whether the room was abandoned before play started.
func (that *Room) Doomed() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.doomed
}

// ShouldEvict - reports whether the registry janitor may destroy this room:
// abandoned, waiting past its timeout, or finished past its idle period.
func (that *Room) ShouldEvict(now time.Time, waitingTimeout, finishedTTL time.Duration) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.doomed {
		return true
	}

	switch that.status {
	case StatusWaiting:
		return now.Sub(that.createdAt) > waitingTimeout
	case StatusFinished:
		return now.Sub(that.finishedAt) > finishedTTL
	}

	return false
}

func (that *Room) finish(winner string, isDraw, disconnected bool) {
	that.status = StatusFinished
	that.turn = ""
	that.winner = winner
	that.isDraw = isDraw
	that.disconnected = disconnected
	that.finishedAt = time.Now()
}

func (that *Room) playerByID(userID string) (Player, bool) {
	if userID == that.host.ID {
		return that.host, true
	}

	if that.guest != nil && userID == that.guest.ID {
		return *that.guest, true
	}

	return Player{}, false
}

// callers hold that.mu.
func (that *Room) snapshot() Snapshot {
	players := Players{Host: clonePlayer(&that.host), Guest: clonePlayer(that.guest)}

	return Snapshot{
		Version:      that.version,
		Code:         that.code,
		Board:        that.board,
		Status:       that.status,
		Turn:         that.turn,
		Players:      players,
		Winner:       that.winner,
		IsDraw:       that.isDraw,
		Disconnected: that.disconnected,
	}
}

func clonePlayer(player *Player) *Player {
	if player == nil {
		return nil
	}

	clone := *player
	return &clone
}
