package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/threetgame/backend/internal/entity"
	"github.com/threetgame/backend/internal/service"
)

type roomRegistry interface {
	Get(code string) (*entity.Room, error)
	Join(ctx context.Context, code string, identity entity.Identity) (entity.Snapshot, error)
	Remove(ctx context.Context, code string)
	ReleaseMembers(ctx context.Context, snapshot entity.Snapshot)
}

// Server is the session gateway: it authenticates sockets, binds each one
// to a room and an identity, feeds commands into rooms and fans the
// resulting snapshots back out. Broadcasts to one room are totally ordered
// because the room serializes its commands; delivery itself is
// fire-and-forget through buffered per-client channels.
type Server struct {
	logger *slog.Logger

	auth     service.AuthService
	stats    service.StatsService
	registry roomRegistry

	// DisconnectGrace delays win-by-disconnect after a socket drops and is
	// cancelled when the same user rebinds. Zero finalizes immediately.
	grace time.Duration

	upgrader websocket.Upgrader

	ctx context.Context

	mu    sync.RWMutex
	rooms map[string]map[*Client]bool

	// highest snapshot version broadcast per room; stale snapshots that
	// lost the race to the audience lock are dropped, never published
	published map[string]uint64

	timersMu    sync.Mutex
	graceTimers map[string]*time.Timer

	handlers map[string]func(client *Client, payload json.RawMessage)
}

func New(logger *slog.Logger, auth service.AuthService, stats service.StatsService, registry roomRegistry, grace time.Duration) *Server {
	server := &Server{
		logger:   logger.With("component", "gateway"),
		auth:     auth,
		stats:    stats,
		registry: registry,
		grace:    grace,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ctx:         context.Background(),
		rooms:       make(map[string]map[*Client]bool),
		published:   make(map[string]uint64),
		graceTimers: make(map[string]*time.Timer),
		handlers:    make(map[string]func(*Client, json.RawMessage)),
	}

	server.handlers[actionJoinRoom] = server.handleJoinRoom
	server.handlers[actionMakeMove] = server.handleMakeMove

	return server
}

// Start - serves websocket upgrades until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	that.ctx = ctx

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(that, conn)

	go client.writePump()
	go client.readPump()

	log.Info("connection established", "remote", conn.RemoteAddr().String())
}

func (that *Server) dispatch(client *Client, data []byte) {
	log := that.logger.With("method", "dispatch")

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		that.sendError(client, "malformed message")
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action", "action", message.Action)
		that.sendError(client, "unknown action")
		return
	}

	handler(client, message.Payload)
}

// register adds client to the audience of its bound room. The binding
// fields must be set before this call.
func (that *Server) register(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	audience, ok := that.rooms[client.roomCode]
	if !ok {
		audience = make(map[*Client]bool)
		that.rooms[client.roomCode] = audience
	}

	audience[client] = true
}

func (that *Server) unregister(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	audience, ok := that.rooms[client.roomCode]
	if !ok {
		return
	}

	if audience[client] {
		delete(audience, client)
		close(client.send)
	}

	if len(audience) == 0 {
		delete(that.rooms, client.roomCode)
		delete(that.published, client.roomCode)
	}
}

// broadcast fans a snapshot out to every socket in the room's audience.
// Snapshots race from the room's critical section to the audience lock on
// different goroutines; the version check keeps the published sequence
// monotonic, so no audience ever observes the board go backwards. A client
// whose send buffer is full is dropped rather than allowed to stall the
// room.
func (that *Server) broadcast(code string, snapshot entity.Snapshot) {
	data, err := marshalMessage(actionGameUpdate, snapshot)
	if err != nil {
		that.logger.Error("failed to marshal game update", "code", code, "error", err)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if snapshot.Version <= that.published[code] {
		return
	}
	that.published[code] = snapshot.Version

	for client := range that.rooms[code] {
		select {
		case client.send <- data:
		default:
			delete(that.rooms[code], client)
			close(client.send)
		}
	}
}

func (that *Server) sendError(client *Client, reason string) {
	data, err := marshalMessage(actionError, ErrorPayload{Reason: reason})
	if err != nil {
		that.logger.Error("failed to marshal error event", "error", err)
		return
	}

	that.unicast(client, data)
}

// sendSnapshot unicasts the current state to one socket, for rebinds that
// change nothing room-wide.
func (that *Server) sendSnapshot(client *Client, snapshot entity.Snapshot) {
	data, err := marshalMessage(actionGameUpdate, snapshot)
	if err != nil {
		that.logger.Error("failed to marshal game update", "error", err)
		return
	}

	that.unicast(client, data)
}

// unicast delivers to one socket. The broadcaster closes the send channel
// of a client it drops while holding the lock, so the membership check here
// must happen under the same lock before touching the channel.
func (that *Server) unicast(client *Client, data []byte) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if client.bound && !that.rooms[client.roomCode][client] {
		return
	}

	select {
	case client.send <- data:
	default:
	}
}

// handleDisconnect runs when a socket drops for any reason. Transport
// disconnects are asynchronous with the player's last command; the room's
// own serialization decides which lands first.
func (that *Server) handleDisconnect(client *Client) {
	that.unregister(client)

	if !client.bound {
		return
	}

	log := that.logger.With("method", "handleDisconnect", "code", client.roomCode, "player", client.identity.ID)
	log.Info("player disconnected")

	if that.stillConnected(client.roomCode, client.identity.ID) {
		return
	}

	if that.grace <= 0 {
		that.abandonRoom(client.roomCode, client.identity.ID)
		return
	}

	that.scheduleAbandon(client.roomCode, client.identity.ID)
}

// abandonRoom finalizes the player's departure through the room state
// machine and publishes whatever transition resulted.
func (that *Server) abandonRoom(code, userID string) {
	room, err := that.registry.Get(code)
	if err != nil {
		return
	}

	snapshot, changed := room.Disconnect(userID)
	if !changed {
		return
	}

	if snapshot.IsFinished() {
		that.broadcast(code, snapshot)
		that.finishRoom(snapshot)
		return
	}

	// host left a waiting room: nobody to notify, nothing to score
	that.registry.Remove(that.ctx, code)
}

// finishRoom runs after a room reached its terminal state, outside any
// room critical section: release the players for new games and hand the
// final snapshot to the statistics collaborator.
func (that *Server) finishRoom(snapshot entity.Snapshot) {
	that.registry.ReleaseMembers(that.ctx, snapshot)
	that.stats.RecordResult(that.ctx, snapshot)
}

func (that *Server) stillConnected(code, userID string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for client := range that.rooms[code] {
		if client.identity.ID == userID {
			return true
		}
	}

	return false
}

func (that *Server) scheduleAbandon(code, userID string) {
	key := graceKey(code, userID)

	that.timersMu.Lock()
	defer that.timersMu.Unlock()

	if _, pending := that.graceTimers[key]; pending {
		return
	}

	that.graceTimers[key] = time.AfterFunc(that.grace, func() {
		that.timersMu.Lock()
		delete(that.graceTimers, key)
		that.timersMu.Unlock()

		if that.stillConnected(code, userID) {
			return
		}

		that.abandonRoom(code, userID)
	})
}

func (that *Server) cancelAbandon(code, userID string) {
	that.timersMu.Lock()
	defer that.timersMu.Unlock()

	key := graceKey(code, userID)
	if timer, ok := that.graceTimers[key]; ok {
		timer.Stop()
		delete(that.graceTimers, key)
	}
}

func graceKey(code, userID string) string {
	return code + "/" + userID
}

func marshalMessage(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
