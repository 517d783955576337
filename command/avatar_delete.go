package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/smartodo/go-profilesync/profile"
)

// AvatarDeleteInput removes the current user's avatar, if any.
type AvatarDeleteInput struct{}

// Type implements gocommand.Message.
func (AvatarDeleteInput) Type() string {
	return "command.avatar.delete"
}

// Validate implements gocommand.Message.
func (AvatarDeleteInput) Validate() error {
	return nil
}

// AvatarDeleteCommand deletes the stored avatar object and explicitly nulls
// avatar_url on the profile row. A profile without an avatar is a no-op, not
// an error; an avatar URL the object path cannot be recovered from fails
// before any storage call.
type AvatarDeleteCommand struct {
	repo     types.ProfileRepository
	sessions types.SessionResolver
	avatars  types.AvatarStore
	hooks    types.Hooks
	clock    types.Clock
}

// NewAvatarDeleteCommand constructs the delete handler.
func NewAvatarDeleteCommand(cfg AvatarCommandConfig) *AvatarDeleteCommand {
	return &AvatarDeleteCommand{
		repo:     cfg.Repository,
		sessions: cfg.Sessions,
		avatars:  cfg.Avatars,
		hooks:    safeHooks(cfg.Hooks),
		clock:    safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[AvatarDeleteInput] = (*AvatarDeleteCommand)(nil)

// Execute removes the object, then clears the column.
func (c *AvatarDeleteCommand) Execute(ctx context.Context, input AvatarDeleteInput) error {
	if c.repo == nil {
		return types.ErrMissingProfileRepository
	}
	if c.sessions == nil {
		return types.ErrMissingSessionResolver
	}
	if c.avatars == nil {
		return types.ErrMissingAvatarStore
	}

	user, err := c.sessions.CurrentUser(ctx)
	if err != nil {
		return err
	}

	current, err := c.repo.Get(ctx, user.ID)
	if err != nil {
		return err
	}
	if current == nil || current.AvatarURL == "" {
		return nil
	}

	path, err := profile.ObjectPathFromPublicURL(current.AvatarURL)
	if err != nil {
		return err
	}

	if err := c.avatars.Remove(ctx, path); err != nil {
		return err
	}

	updated, err := c.repo.Upsert(ctx, user.ID, profile.ClearAvatarPatch())
	if err != nil {
		return err
	}
	if updated != nil {
		emitProfileHook(ctx, c.hooks, types.ProfileEvent{
			UserID:     user.ID,
			Action:     types.ProfileActionAvatarChanged,
			Profile:    *updated,
			OccurredAt: now(c.clock),
		})
	}
	return nil
}
