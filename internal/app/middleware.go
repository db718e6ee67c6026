package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/internal/config"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Propagate the client identity headers into context for downstream
	// services. X-Session-Id is an opaque UID minted by the client on first
	// visit; X-Admin-Token is issued by the admin login endpoint.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			session := auth.Session{
				UID: req.Header.Get("X-Session-Id"),
			}
			if token := req.Header.Get("X-Admin-Token"); token != "" {
				if deps.AdminAuth.IsValid(token) {
					session.Admin = true
				} else {
					log.Debug("rejected stale admin token")
				}
			}
			if session.UID != "" || session.Admin {
				ctx = auth.WithSession(ctx, session)
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
