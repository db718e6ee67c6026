package auth

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const SessionKey contextKey = "session"

var ErrNoSession = errors.New("no session established")

// Session is the opaque identity of a connected client. The UID is the only
// thing mutations care about: a customer is keyed by it, and self-service
// actions are authorized against it. Content beyond that is never inspected.
type Session struct {
	UID   string
	Admin bool
}

// CurrentSession retrieves the session from the context. Returns ErrNoSession
// when no identity has been established yet.
func CurrentSession(ctx context.Context) (Session, error) {
	s, ok := ctx.Value(SessionKey).(Session)
	if !ok || s.UID == "" {
		log.Trace("session not found in context")
		return Session{}, ErrNoSession
	}
	return s, nil
}

// IsAdmin reports whether the context carries an admin session.
func IsAdmin(ctx context.Context) bool {
	s, ok := ctx.Value(SessionKey).(Session)
	return ok && s.Admin
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}
