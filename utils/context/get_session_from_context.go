package context

import (
	"context"

	"github.com/octabyte/alumni-portal/session"
)

type key int

const (
	sessionKey key = iota
	clientKey
	visitorKey
)

func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSessionFromContext returns the visitor's session, or nil outside the
// session middleware.
func GetSessionFromContext(ctx context.Context) session.Session {
	s, _ := ctx.Value(sessionKey).(session.Session)
	return s
}

func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorKey, id)
}

func GetVisitorIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(visitorKey).(string)
	return id
}
