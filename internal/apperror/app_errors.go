package apperror

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is already full")
	ErrSelfJoin      = errors.New("cannot join your own room")
	ErrNotWaiting    = errors.New("room is not waiting for players")
	ErrAlreadyInRoom = errors.New("already in an active room")

	ErrNotPlaying   = errors.New("game is not in progress")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrInvalidCell  = errors.New("cell index is out of range")
	ErrCellOccupied = errors.New("cell is already occupied")
)
