package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/threetgame/backend/internal/apperror"
	"github.com/threetgame/backend/internal/entity"
	"github.com/threetgame/backend/internal/repository"
	"github.com/threetgame/backend/internal/service"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  entity.Identity `json:"user"`
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleRegister")

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		that.writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	identity, err := that.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, repository.ErrUserExists) || errors.Is(err, service.ErrUsernameTaken) {
		that.writeError(w, http.StatusConflict, "username is already taken")
		return
	}
	if err != nil {
		log.Error("failed to register user", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	that.respondWithToken(w, log, identity)
}

func (that *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleLogin")

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, err := that.users.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, apperror.ErrUnauthorized) {
		that.writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		log.Error("failed to log user in", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	that.respondWithToken(w, log, identity)
}

func (that *Server) handleUser(w http.ResponseWriter, r *http.Request, identity entity.Identity) {
	log := that.logger.With("method", "handleUser")

	stats, err := that.stats.GetByUserID(r.Context(), identity.ID)
	if err != nil {
		log.Error("failed to get stats", "user", identity.ID, "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]any{
		"user":  identity,
		"stats": stats,
	})
}

func (that *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request, identity entity.Identity) {
	log := that.logger.With("method", "handleCreateRoom", "user", identity.ID)

	room, err := that.registry.Create(r.Context(), identity)
	if errors.Is(err, apperror.ErrAlreadyInRoom) {
		that.writeError(w, http.StatusConflict, "already in an active room")
		return
	}
	if err != nil {
		log.Error("failed to create room", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	that.writeJSON(w, http.StatusCreated, map[string]string{"code": room.Code()})
}

func (that *Server) handleGetRoom(w http.ResponseWriter, r *http.Request, identity entity.Identity) {
	code := r.PathValue("code")

	room, err := that.registry.Get(code)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		that.logger.Error("failed to get room", "code", code, "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to get room")
		return
	}

	snapshot := room.Snapshot()

	// a waiting room is visible to anyone holding its code; once the game
	// starts only its participants may read it
	if !snapshot.IsWaiting() && !room.HasPlayer(identity.ID) {
		that.writeError(w, http.StatusForbidden, "not a participant of this room")
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]entity.Snapshot{"room": snapshot})
}

func (that *Server) respondWithToken(w http.ResponseWriter, log *slog.Logger, identity entity.Identity) {
	token, err := that.auth.GenerateToken(identity)
	if err != nil {
		log.Error("failed to generate token", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	that.writeJSON(w, http.StatusOK, authResponse{Token: token, User: identity})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, status int, reason string) {
	that.writeJSON(w, status, map[string]string{"error": reason})
}
