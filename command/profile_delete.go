package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
)

// ProfileDeleteInput requests removal of a user's profile row.
type ProfileDeleteInput struct {
	UserID uuid.UUID
}

// Type implements gocommand.Message.
func (ProfileDeleteInput) Type() string {
	return "command.profile.delete"
}

// Validate implements gocommand.Message.
func (input ProfileDeleteInput) Validate() error {
	if input.UserID == uuid.Nil {
		return ErrUserIDRequired
	}
	return nil
}

// ProfileDeleteCommand deletes the row keyed by user id.
type ProfileDeleteCommand struct {
	repo  types.ProfileRepository
	hooks types.Hooks
	clock types.Clock
}

// NewProfileDeleteCommand constructs the delete handler.
func NewProfileDeleteCommand(cfg ProfileCommandConfig) *ProfileDeleteCommand {
	return &ProfileDeleteCommand{
		repo:  cfg.Repository,
		hooks: safeHooks(cfg.Hooks),
		clock: safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[ProfileDeleteInput] = (*ProfileDeleteCommand)(nil)

// Execute deletes the row and propagates any backend error unchanged.
func (c *ProfileDeleteCommand) Execute(ctx context.Context, input ProfileDeleteInput) error {
	if c.repo == nil {
		return types.ErrMissingProfileRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	if err := c.repo.Delete(ctx, input.UserID); err != nil {
		return err
	}
	emitProfileHook(ctx, c.hooks, types.ProfileEvent{
		UserID:     input.UserID,
		Action:     types.ProfileActionDeleted,
		Profile:    types.Profile{UserID: input.UserID},
		OccurredAt: now(c.clock),
	})
	return nil
}
