package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
)

// ProfileCommandConfig wires dependencies for the profile row commands.
type ProfileCommandConfig struct {
	Repository types.ProfileRepository
	Sessions   types.SessionResolver
	Hooks      types.Hooks
	Clock      types.Clock
	Logger     types.Logger
}

// ProfileCreateInput requests an empty profile row for a user.
type ProfileCreateInput struct {
	UserID uuid.UUID
	Result *types.Profile
}

// Type implements gocommand.Message.
func (ProfileCreateInput) Type() string {
	return "command.profile.create"
}

// Validate implements gocommand.Message.
func (input ProfileCreateInput) Validate() error {
	if input.UserID == uuid.Nil {
		return ErrUserIDRequired
	}
	return nil
}

// ProfileCreateCommand inserts a row with only user_id populated. It does
// not guard against redundant creates; a second call surfaces the backend
// uniqueness violation. Use ProfileEnsureCommand for get-or-create.
type ProfileCreateCommand struct {
	repo  types.ProfileRepository
	hooks types.Hooks
	clock types.Clock
}

// NewProfileCreateCommand constructs the create handler.
func NewProfileCreateCommand(cfg ProfileCommandConfig) *ProfileCreateCommand {
	return &ProfileCreateCommand{
		repo:  cfg.Repository,
		hooks: safeHooks(cfg.Hooks),
		clock: safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[ProfileCreateInput] = (*ProfileCreateCommand)(nil)

// Execute inserts the row and reports it through Result and the hooks.
func (c *ProfileCreateCommand) Execute(ctx context.Context, input ProfileCreateInput) error {
	if c.repo == nil {
		return types.ErrMissingProfileRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	created, err := c.repo.Create(ctx, input.UserID)
	if err != nil {
		return err
	}
	if input.Result != nil && created != nil {
		*input.Result = *created
	}
	if created != nil {
		emitProfileHook(ctx, c.hooks, types.ProfileEvent{
			UserID:     input.UserID,
			Action:     types.ProfileActionCreated,
			Profile:    *created,
			OccurredAt: now(c.clock),
		})
	}
	return nil
}
