package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/threetgame/backend/internal/entity"
	"github.com/threetgame/backend/internal/service"
)

type roomRegistry interface {
	Create(ctx context.Context, host entity.Identity) (*entity.Room, error)
	Get(code string) (*entity.Room, error)
}

type Server struct {
	logger *slog.Logger

	auth     service.AuthService
	users    service.UserService
	stats    service.StatsService
	registry roomRegistry
}

func New(logger *slog.Logger, auth service.AuthService, users service.UserService, stats service.StatsService, registry roomRegistry) *Server {
	return &Server{
		logger:   logger.With("component", "rest"),
		auth:     auth,
		users:    users,
		stats:    stats,
		registry: registry,
	}
}

func (that *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.handlePing)
	mux.HandleFunc("POST /register", that.handleRegister)
	mux.HandleFunc("POST /login", that.handleLogin)
	mux.HandleFunc("GET /user", that.withAuth(that.handleUser))
	mux.HandleFunc("POST /room", that.withAuth(that.handleCreateRoom))
	mux.HandleFunc("GET /room/{code}", that.withAuth(that.handleGetRoom))

	return mux
}

// Start - serves the REST API until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down http server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
