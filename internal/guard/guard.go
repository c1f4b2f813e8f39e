// Package guard gates access to protected views off the stored session and
// computes the pending-request notification badge. It only reads the
// repository; it never mutates entities.
package guard

import (
	"context"
	"errors"

	"trustharbor.org/internal/obs"
	"trustharbor.org/internal/vault"
)

// ErrUnauthenticated is returned when no session is present; protected
// views redirect to sign-in on it.
var ErrUnauthenticated = errors.New("guard: unauthenticated")

// Guard answers access-control questions from fresh repository reads.
// Checks are evaluated per call, not cached; the answer reflects the
// persisted store at call time and nothing more.
type Guard struct {
	repo *vault.Repository
}

// New constructs a Guard over the repository.
func New(repo *vault.Repository) *Guard {
	return &Guard{repo: repo}
}

// IsAuthenticated reports whether a session is present.
func (g *Guard) IsAuthenticated(ctx context.Context) bool {
	_, ok := g.repo.GetSession(ctx)
	return ok
}

// RequireSession returns the active session or ErrUnauthenticated.
func (g *Guard) RequireSession(ctx context.Context) (vault.Session, error) {
	session, ok := g.repo.GetSession(ctx)
	if !ok {
		return vault.Session{}, ErrUnauthenticated
	}
	return session, nil
}

// PendingRequestCount counts license requests still awaiting a decision,
// recomputed from a fresh read on every call. Badge display only.
func (g *Guard) PendingRequestCount(ctx context.Context) int {
	requests, _ := g.repo.ListLicenseRequests(ctx)
	n := 0
	for _, req := range requests {
		if req.Status == vault.RequestPending {
			n++
		}
	}
	obs.SetPendingRequests(n)
	return n
}
