package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
)

// ProfileQueryInput identifies the profile row to fetch.
type ProfileQueryInput struct {
	UserID uuid.UUID
}

// ProfileQuery fetches profile rows by owning user id.
type ProfileQuery struct {
	repo types.ProfileRepository
}

// NewProfileQuery constructs the profile lookup helper.
func NewProfileQuery(repo types.ProfileRepository) *ProfileQuery {
	return &ProfileQuery{repo: repo}
}

var _ gocommand.Querier[ProfileQueryInput, *types.Profile] = (*ProfileQuery)(nil)

// Query returns the profile for the supplied user id, or nil when no row
// exists. A miss is not exceptional; every other failure is.
func (q *ProfileQuery) Query(ctx context.Context, input ProfileQueryInput) (*types.Profile, error) {
	if q.repo == nil {
		return nil, types.ErrMissingProfileRepository
	}
	if input.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	return q.repo.Get(ctx, input.UserID)
}
