package auth

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/smartodo/go-profilesync/pkg/types"
)

const textCodeSessionMissing = "SESSION_MISSING"

type contextKey struct{}

var userContextKey contextKey

// WithUser stores an authenticated user on the context so downstream handlers
// can resolve it without another backend round trip.
func WithUser(ctx context.Context, user *types.AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the user stored by WithUser.
func UserFromContext(ctx context.Context) (*types.AuthUser, bool) {
	user, ok := ctx.Value(userContextKey).(*types.AuthUser)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// SessionHolder is an in-process session cache implementing
// types.SessionResolver. The auth adapter updates it on sign in/out; command
// handlers read from it instead of hitting the auth backend per call.
type SessionHolder struct {
	mu       sync.RWMutex
	user     *types.AuthUser
	fallback types.SessionResolver
}

// NewSessionHolder constructs an empty session holder. The optional fallback
// resolver is consulted when no local session is cached, letting a cold
// process recover the session from a stored token.
func NewSessionHolder(fallback types.SessionResolver) *SessionHolder {
	return &SessionHolder{fallback: fallback}
}

var _ types.SessionResolver = (*SessionHolder)(nil)

// Set caches the signed-in user.
func (h *SessionHolder) Set(user *types.AuthUser) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.user = user
}

// Clear drops the cached session.
func (h *SessionHolder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.user = nil
}

// CurrentUser returns the context user if present, then the cached session,
// then whatever the fallback resolver reports.
func (h *SessionHolder) CurrentUser(ctx context.Context) (*types.AuthUser, error) {
	if user, ok := UserFromContext(ctx); ok {
		clone := *user
		return &clone, nil
	}

	h.mu.RLock()
	cached := h.user
	fallback := h.fallback
	h.mu.RUnlock()

	if cached != nil {
		clone := *cached
		return &clone, nil
	}
	if fallback != nil {
		user, err := fallback.CurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		h.Set(user)
		clone := *user
		return &clone, nil
	}

	return nil, goerrors.Wrap(types.ErrNoUserLoggedIn, goerrors.CategoryAuth, types.ErrNoUserLoggedIn.Error()).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode(textCodeSessionMissing)
}
