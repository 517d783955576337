package query

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	profile *types.Profile
	err     error
	gotID   uuid.UUID
}

func (r *stubRepo) Get(_ context.Context, userID uuid.UUID) (*types.Profile, error) {
	r.gotID = userID
	return r.profile, r.err
}

func (r *stubRepo) Create(context.Context, uuid.UUID) (*types.Profile, error) {
	return nil, errors.New("not implemented")
}

func (r *stubRepo) Upsert(context.Context, uuid.UUID, types.ProfilePatch) (*types.Profile, error) {
	return nil, errors.New("not implemented")
}

func (r *stubRepo) Delete(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}

type stubSessions struct {
	user *types.AuthUser
}

func (s *stubSessions) CurrentUser(context.Context) (*types.AuthUser, error) {
	if s.user == nil {
		return nil, types.ErrNoUserLoggedIn
	}
	return s.user, nil
}

func TestProfileQuery(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{profile: &types.Profile{UserID: userID, FullName: "Ada"}}
	q := NewProfileQuery(repo)

	got, err := q.Query(context.Background(), ProfileQueryInput{UserID: userID})
	require.NoError(t, err)
	require.Equal(t, "Ada", got.FullName)
	require.Equal(t, userID, repo.gotID)
}

func TestProfileQueryMissIsNil(t *testing.T) {
	q := NewProfileQuery(&stubRepo{})
	got, err := q.Query(context.Background(), ProfileQueryInput{UserID: uuid.New()})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestProfileQueryValidatesInput(t *testing.T) {
	q := NewProfileQuery(&stubRepo{})
	_, err := q.Query(context.Background(), ProfileQueryInput{})
	require.ErrorIs(t, err, types.ErrUserIDRequired)
}

func TestCurrentProfileQuery(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{profile: &types.Profile{UserID: userID}}
	q := NewCurrentProfileQuery(repo, &stubSessions{user: &types.AuthUser{ID: userID}})

	got, err := q.Query(context.Background(), CurrentProfileInput{})
	require.NoError(t, err)
	require.Equal(t, userID, got.UserID)
	require.Equal(t, userID, repo.gotID, "lookup must be scoped to the session user")
}

func TestCurrentProfileQueryRequiresSession(t *testing.T) {
	repo := &stubRepo{}
	q := NewCurrentProfileQuery(repo, &stubSessions{})

	_, err := q.Query(context.Background(), CurrentProfileInput{})
	require.ErrorIs(t, err, types.ErrNoUserLoggedIn)
	require.Equal(t, uuid.Nil, repo.gotID, "no repository call without a session")
}
