package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestSessionHolderLifecycle(t *testing.T) {
	holder := NewSessionHolder(nil)

	_, err := holder.CurrentUser(context.Background())
	require.ErrorIs(t, err, types.ErrNoUserLoggedIn)
	require.Equal(t, "No user logged in", types.ErrNoUserLoggedIn.Error())

	user := &types.AuthUser{ID: uuid.New(), Email: "user@example.com"}
	holder.Set(user)

	got, err := holder.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	got.Email = "mutated@example.com"
	again, err := holder.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "user@example.com", again.Email, "callers get a copy, not the cached record")

	holder.Clear()
	_, err = holder.CurrentUser(context.Background())
	require.ErrorIs(t, err, types.ErrNoUserLoggedIn)
}

func TestSessionHolderPrefersContextUser(t *testing.T) {
	holder := NewSessionHolder(nil)
	holder.Set(&types.AuthUser{ID: uuid.New(), Email: "cached@example.com"})

	ctxUser := &types.AuthUser{ID: uuid.New(), Email: "request@example.com"}
	ctx := WithUser(context.Background(), ctxUser)

	got, err := holder.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, ctxUser.ID, got.ID)
}

func TestSessionHolderFallbackResolver(t *testing.T) {
	remote := &staticResolver{user: &types.AuthUser{ID: uuid.New(), Email: "token@example.com"}}
	holder := NewSessionHolder(remote)

	got, err := holder.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, remote.user.ID, got.ID)
	require.Equal(t, 1, remote.calls)

	// Second call serves the cached session without another round trip.
	_, err = holder.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, remote.calls)
}

func TestSessionHolderFallbackError(t *testing.T) {
	remote := &staticResolver{err: errors.New("token expired")}
	holder := NewSessionHolder(remote)

	_, err := holder.CurrentUser(context.Background())
	require.EqualError(t, err, "token expired")
}

func TestUserFromContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	require.False(t, ok)

	ctx := WithUser(context.Background(), &types.AuthUser{ID: uuid.New()})
	_, ok = UserFromContext(ctx)
	require.True(t, ok)
}

type staticResolver struct {
	user  *types.AuthUser
	err   error
	calls int
}

func (r *staticResolver) CurrentUser(context.Context) (*types.AuthUser, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.user, nil
}
