package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/smartodo/go-profilesync/pkg/types"
)

// CurrentProfileInput has no fields; the session decides whose profile loads.
type CurrentProfileInput struct{}

// CurrentProfileQuery resolves the signed-in user and loads their profile.
type CurrentProfileQuery struct {
	repo     types.ProfileRepository
	sessions types.SessionResolver
}

// NewCurrentProfileQuery constructs the session-scoped lookup helper.
func NewCurrentProfileQuery(repo types.ProfileRepository, sessions types.SessionResolver) *CurrentProfileQuery {
	return &CurrentProfileQuery{repo: repo, sessions: sessions}
}

var _ gocommand.Querier[CurrentProfileInput, *types.Profile] = (*CurrentProfileQuery)(nil)

// Query fails with the session sentinel before any network call when no user
// is signed in; otherwise it behaves like ProfileQuery.
func (q *CurrentProfileQuery) Query(ctx context.Context, _ CurrentProfileInput) (*types.Profile, error) {
	if q.repo == nil {
		return nil, types.ErrMissingProfileRepository
	}
	if q.sessions == nil {
		return nil, types.ErrMissingSessionResolver
	}
	user, err := q.sessions.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return q.repo.Get(ctx, user.ID)
}
