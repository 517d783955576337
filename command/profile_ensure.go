package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
)

// ProfileEnsureInput requests the profile row for a user, creating it when
// no row exists yet.
type ProfileEnsureInput struct {
	UserID uuid.UUID
	Result *types.Profile
}

// Type implements gocommand.Message.
func (ProfileEnsureInput) Type() string {
	return "command.profile.ensure"
}

// Validate implements gocommand.Message.
func (input ProfileEnsureInput) Validate() error {
	if input.UserID == uuid.Nil {
		return ErrUserIDRequired
	}
	return nil
}

// ProfileEnsureCommand centralizes the lazy create-on-first-read flow. Two
// concurrent callers can both observe the miss and both attempt creation;
// the loser's uniqueness violation is absorbed by re-reading the row the
// winner created instead of surfacing the 23505 to the caller.
type ProfileEnsureCommand struct {
	repo  types.ProfileRepository
	hooks types.Hooks
	clock types.Clock
}

// NewProfileEnsureCommand constructs the get-or-create handler.
func NewProfileEnsureCommand(cfg ProfileCommandConfig) *ProfileEnsureCommand {
	return &ProfileEnsureCommand{
		repo:  cfg.Repository,
		hooks: safeHooks(cfg.Hooks),
		clock: safeClock(cfg.Clock),
	}
}

var _ gocommand.Commander[ProfileEnsureInput] = (*ProfileEnsureCommand)(nil)

// Execute reads the row, creating it on a miss.
func (c *ProfileEnsureCommand) Execute(ctx context.Context, input ProfileEnsureInput) error {
	if c.repo == nil {
		return types.ErrMissingProfileRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	existing, err := c.repo.Get(ctx, input.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		if input.Result != nil {
			*input.Result = *existing
		}
		return nil
	}

	created, err := c.repo.Create(ctx, input.UserID)
	if err != nil {
		if !types.IsUniqueViolation(err) {
			return err
		}
		created, err = c.repo.Get(ctx, input.UserID)
		if err != nil {
			return err
		}
		if input.Result != nil && created != nil {
			*input.Result = *created
		}
		return nil
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
