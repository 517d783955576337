package supabase

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/smartodo/go-profilesync/pkg/types"
	gotrue "github.com/supabase-community/gotrue-go/types"
	supa "github.com/supabase-community/supabase-go"
)

// Auth implements types.AuthAPI on GoTrue. The most recent session is cached
// behind a mutex so CurrentUser and token-scoped calls work without callers
// threading tokens through.
type Auth struct {
	sb          *supa.Client
	autoRefresh bool

	mu      sync.RWMutex
	session *gotrue.Session
}

var _ types.AuthAPI = (*Auth)(nil)

// SignInWithPassword exchanges credentials for a session and caches it.
func (a *Auth) SignInWithPassword(_ context.Context, email, password string) (*types.AuthUser, error) {
	session, err := a.sb.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, translateAuthError(err)
	}

	a.mu.Lock()
	a.session = &session
	a.mu.Unlock()

	if a.autoRefresh {
		a.sb.EnableTokenAutoRefresh(session)
	}
	return authUser(session.User), nil
}

// SignUp registers an account. The metadata map lands in the auth user's
// raw_user_meta_data column, which is where the backend's profile-seeding
// trigger reads full_name from.
func (a *Auth) SignUp(_ context.Context, email, password string, metadata map[string]any) (*types.AuthUser, error) {
	resp, err := a.sb.Auth.Signup(gotrue.SignupRequest{
		Email:    email,
		Password: password,
		Data:     metadata,
	})
	if err != nil {
		return nil, translateAuthError(err)
	}
	return authUser(resp.User), nil
}

// SignOut revokes the cached session's token and drops the cache. Signing out
// without a session is a no-op.
func (a *Auth) SignOut(_ context.Context) error {
	a.mu.Lock()
	session := a.session
	a.session = nil
	a.mu.Unlock()

	if session == nil {
		return nil
	}
	if err := a.sb.Auth.WithToken(session.AccessToken).Logout(); err != nil {
		return translateAuthError(err)
	}
	return nil
}

// SendPasswordReset triggers the recovery email. The redirect target is
// configured project-side; GoTrue's recover endpoint does not take it per
// request, so redirectTo only participates in validation here.
func (a *Auth) SendPasswordReset(_ context.Context, email, _ string) error {
	if err := a.sb.Auth.Recover(gotrue.RecoverRequest{Email: email}); err != nil {
		return translateAuthError(err)
	}
	return nil
}

// UpdatePassword sets a new password on the signed-in account.
func (a *Auth) UpdatePassword(_ context.Context, newPassword string) error {
	a.mu.RLock()
	session := a.session
	a.mu.RUnlock()

	if session == nil {
		return types.ErrNoUserLoggedIn
	}
	_, err := a.sb.Auth.WithToken(session.AccessToken).UpdateUser(gotrue.UpdateUserRequest{
		Password: &newPassword,
	})
	if err != nil {
		return translateAuthError(err)
	}
	return nil
}

// CurrentUser serves the cached session's user, falling back to a GetUser
// round trip to pick up server-side changes to the account.
func (a *Auth) CurrentUser(_ context.Context) (*types.AuthUser, error) {
	a.mu.RLock()
	session := a.session
	a.mu.RUnlock()

	if session == nil {
		return nil, types.ErrNoUserLoggedIn
	}

	resp, err := a.sb.Auth.WithToken(session.AccessToken).GetUser()
	if err != nil {
		return authUser(session.User), nil
	}
	return authUser(resp.User), nil
}

// AccessToken exposes the current session token for subsystems that speak to
// the backend directly, like the realtime socket.
func (a *Auth) AccessToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return ""
	}
	return a.session.AccessToken
}

func authUser(u gotrue.User) *types.AuthUser {
	user := &types.AuthUser{ID: u.ID, Email: u.Email}
	if name, ok := u.UserMetadata["full_name"].(string); ok {
		user.FullName = name
	}
	return user
}

func translateAuthError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryAuth, err.Error()).
		WithCode(goerrors.CodeUnauthorized)
}
