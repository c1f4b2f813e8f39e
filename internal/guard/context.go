package guard

import (
	"context"

	"trustharbor.org/internal/vault"
)

type sessionContextKey struct{}

// ContextWithSession attaches the resolved session to the context, so
// downstream code (audit, logging) can name the actor without re-reading
// the store.
func ContextWithSession(ctx context.Context, session vault.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, &session)
}

// SessionFromContext extracts the session previously attached to the
// context.
func SessionFromContext(ctx context.Context) (vault.Session, bool) {
	if ctx == nil {
		return vault.Session{}, false
	}
	v, ok := ctx.Value(sessionContextKey{}).(*vault.Session)
	if !ok || v == nil {
		return vault.Session{}, false
	}
	return *v, true
}
