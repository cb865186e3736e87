package websocket

import (
	"encoding/json"
	"errors"

	"github.com/threetgame/backend/internal/apperror"
	"github.com/threetgame/backend/internal/entity"
)

func (that *Server) handleJoinRoom(client *Client, payload json.RawMessage) {
	log := that.logger.With("method", "handleJoinRoom")

	var req JoinRoomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		that.sendError(client, "malformed payload")
		return
	}

	if req.RoomCode == "" {
		that.sendError(client, "roomCode is required")
		return
	}

	identity, err := that.auth.VerifyToken(req.Token)
	if err != nil {
		that.sendError(client, reasonFor(apperror.ErrUnauthorized))
		return
	}

	if client.bound {
		if client.roomCode == req.RoomCode && client.identity.ID == identity.ID {
			room, getErr := that.registry.Get(client.roomCode)
			if getErr != nil {
				that.sendError(client, reasonFor(getErr))
				return
			}
			that.sendSnapshot(client, room.Snapshot())
			return
		}

		that.sendError(client, "connection is already bound to a room")
		return
	}

	log = log.With("code", req.RoomCode, "player", identity.ID)

	room, err := that.registry.Get(req.RoomCode)
	if err != nil {
		that.sendError(client, reasonFor(err))
		return
	}

	// a seated player reconnecting resumes silently; everyone else goes
	// through the join state machine
	if room.HasPlayer(identity.ID) {
		that.bind(client, req.RoomCode, identity)
		that.cancelAbandon(req.RoomCode, identity.ID)
		that.sendSnapshot(client, room.Snapshot())

		log.Info("player rebound to room")
		return
	}

	snapshot, err := that.registry.Join(that.ctx, req.RoomCode, identity)
	if err != nil {
		log.Info("join rejected", "reason", reasonFor(err))
		that.sendError(client, reasonFor(err))
		return
	}

	that.bind(client, req.RoomCode, identity)
	that.broadcast(req.RoomCode, snapshot)

	log.Info("player joined room")
}

func (that *Server) handleMakeMove(client *Client, payload json.RawMessage) {
	log := that.logger.With("method", "handleMakeMove")

	var req MakeMovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		that.sendError(client, "malformed payload")
		return
	}

	if !client.bound {
		that.sendError(client, reasonFor(apperror.ErrUnauthorized))
		return
	}

	if req.RoomCode != "" && req.RoomCode != client.roomCode {
		that.sendError(client, reasonFor(apperror.ErrForbidden))
		return
	}

	log = log.With("code", client.roomCode, "player", client.identity.ID)

	room, err := that.registry.Get(client.roomCode)
	if err != nil {
		that.sendError(client, reasonFor(err))
		return
	}

	snapshot, err := room.Move(client.identity.ID, req.Index)
	if err != nil {
		log.Info("move rejected", "cell", req.Index, "reason", reasonFor(err))
		that.sendError(client, reasonFor(err))
		return
	}

	that.broadcast(client.roomCode, snapshot)

	if snapshot.IsFinished() {
		that.finishRoom(snapshot)
		log.Info("game finished", "winner", snapshot.Winner, "draw", snapshot.IsDraw)
		return
	}

	log.Info("player made a move", "cell", req.Index)
}

func (that *Server) bind(client *Client, code string, identity entity.Identity) {
	client.roomCode = code
	client.identity = identity
	client.bound = true

	that.register(client)
}

// reasonFor maps an error to the stable reason code sent on the wire.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, apperror.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperror.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, apperror.ErrRoomFull):
		return "room_full"
	case errors.Is(err, apperror.ErrSelfJoin):
		return "self_join"
	case errors.Is(err, apperror.ErrNotWaiting):
		return "not_waiting"
	case errors.Is(err, apperror.ErrAlreadyInRoom):
		return "already_in_room"
	case errors.Is(err, apperror.ErrNotPlaying):
		return "not_playing"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, apperror.ErrInvalidCell):
		return "invalid_cell"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "cell_occupied"
	default:
		return "internal_error"
	}
}
