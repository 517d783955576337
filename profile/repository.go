package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
	postgrest "github.com/supabase-community/postgrest-go"
)

// RestClient is the slice of the PostgREST client the repository needs. Both
// *postgrest.Client and *supabase.Client satisfy it.
type RestClient interface {
	From(table string) *postgrest.QueryBuilder
}

// RepositoryConfig wires the PostgREST-backed profile repository.
type RepositoryConfig struct {
	Rest   RestClient
	Table  string
	Logger types.Logger
}

// Repository implements types.ProfileRepository against the profiles table.
type Repository struct {
	rest  RestClient
	table string
	log   types.Logger
}

// NewRepository constructs the default profile repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Rest == nil {
		return nil, errors.New("profile: rest client required")
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	log := cfg.Logger
	if log == nil {
		log = types.NopLogger{}
	}
	return &Repository{rest: cfg.Rest, table: table, log: log}, nil
}

var _ types.ProfileRepository = (*Repository)(nil)

// Get returns the profile row owned by userID, or (nil, nil) when none
// exists. Any other backend failure is returned as-is.
func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	var row types.Profile
	_, err := r.rest.From(r.table).
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Single().
		ExecuteTo(&row)
	if err != nil {
		if types.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Create inserts a fresh row carrying only the owning user id. A redundant
// create surfaces the backend uniqueness violation unchanged; callers that
// want get-or-create semantics go through the ensure command instead.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	payload := map[string]any{"user_id": userID.String()}
	var row types.Profile
	_, err := r.rest.From(r.table).
		Insert(payload, false, "", "representation", "").
		Single().
		ExecuteTo(&row)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert applies the patch on top of whatever row exists, inserting one when
// needed. The conflict target is user_id, which keeps the row-per-user
// invariant and makes the operation idempotent for identical patches.
func (r *Repository) Upsert(ctx context.Context, userID uuid.UUID, patch types.ProfilePatch) (*types.Profile, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	var row types.Profile
	_, err := r.rest.From(r.table).
		Insert(patchPayload(userID, patch), true, "user_id", "representation", "").
		Single().
		ExecuteTo(&row)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes the profile row owned by userID.
func (r *Repository) Delete(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	_, _, err := r.rest.From(r.table).
		Delete("", "").
		Eq("user_id", userID.String()).
		Execute()
	return err
}
