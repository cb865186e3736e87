package websocket

import "encoding/json"

const (
	actionJoinRoom = "joinRoom"
	actionMakeMove = "makeMove"

	actionGameUpdate = "gameUpdate"
	actionError      = "error"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Token    string `json:"token"`
}

type MakeMovePayload struct {
	RoomCode string `json:"roomCode"`
	Index    int    `json:"index"`
	Token    string `json:"token,omitempty"`
}

// ErrorPayload goes to the offending socket only; other participants never
// observe a rejected command.
type ErrorPayload struct {
	Reason string `json:"reason"`
}
