package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/smartodo/go-profilesync/pkg/types"
)

// ProfileUpsertInput captures a partial profile update for the current user.
type ProfileUpsertInput struct {
	Patch  types.ProfilePatch
	Result *types.Profile
}

// Type implements gocommand.Message.
func (ProfileUpsertInput) Type() string {
	return "command.profile.upsert"
}

// Validate implements gocommand.Message.
func (ProfileUpsertInput) Validate() error {
	return nil
}

// ProfileUpsertCommand applies a patch to the signed-in user's row, creating
// it when absent. Applying the same patch twice yields the same final row.
type ProfileUpsertCommand struct {
	repo     types.ProfileRepository
	sessions types.SessionResolver
	hooks    types.Hooks
	clock    types.Clock
}

// NewProfileUpsertCommand constructs the upsert handler.
func NewProfileUpsertCommand(cfg ProfileCommandConfig) *ProfileUpsertCommand {
	return &ProfileUpsertCommand{
		repo:     cfg.Repository,
		sessions: cfg.Sessions,
		hooks:    safeHooks(cfg.Hooks),
		clock:    safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[ProfileUpsertInput] = (*ProfileUpsertCommand)(nil)

// Execute resolves the current session and upserts the patch keyed on its
// user id. Without a session it fails before any network call.
func (c *ProfileUpsertCommand) Execute(ctx context.Context, input ProfileUpsertInput) error {
	if c.repo == nil {
		return types.ErrMissingProfileRepository
	}
	if c.sessions == nil {
		return types.ErrMissingSessionResolver
	}

	user, err := c.sessions.CurrentUser(ctx)
	if err != nil {
		return err
	}

	updated, err := c.repo.Upsert(ctx, user.ID, input.Patch)
	if err != nil {
		return err
	}
	if input.Result != nil && updated != nil {
		*input.Result = *updated
	}
	if updated != nil {
		emitProfileHook(ctx, c.hooks, types.ProfileEvent{
			UserID:     user.ID,
			Action:     types.ProfileActionUpserted,
			Profile:    *updated,
			OccurredAt: now(c.clock),
		})
	}
	return nil
}
