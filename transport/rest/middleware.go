package rest

import (
	"net/http"
	"strings"

	"github.com/threetgame/backend/internal/entity"
)

type authedHandler func(w http.ResponseWriter, r *http.Request, identity entity.Identity)

// withAuth resolves the bearer token before the handler runs; a bad or
// missing credential terminates the request with 401.
func (that *Server) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			that.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		identity, err := that.auth.VerifyToken(token)
		if err != nil {
			that.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r, identity)
	}
}
