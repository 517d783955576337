package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/smartodo/go-profilesync/profile"
)

// AvatarCommandConfig wires dependencies for the avatar commands.
type AvatarCommandConfig struct {
	Repository types.ProfileRepository
	Sessions   types.SessionResolver
	Avatars    types.AvatarStore
	Hooks      types.Hooks
	Clock      types.Clock
	Logger     types.Logger
}

// AvatarUploadInput carries a base64 data URI with the new avatar image.
type AvatarUploadInput struct {
	Image  string
	Result *string
}

// Type implements gocommand.Message.
func (AvatarUploadInput) Type() string {
	return "command.avatar.upload"
}

// Validate implements gocommand.Message.
func (input AvatarUploadInput) Validate() error {
	if input.Image == "" {
		return ErrAvatarImageRequired
	}
	return nil
}

// AvatarUploadCommand uploads a new avatar and points the profile at it.
// The MIME allow-list runs before any network call; if the storage write
// lands but the profile update fails, the fresh object is removed again so
// storage never accumulates objects no profile references.
type AvatarUploadCommand struct {
	repo     types.ProfileRepository
	sessions types.SessionResolver
	avatars  types.AvatarStore
	hooks    types.Hooks
	clock    types.Clock
	log      types.Logger
}

// NewAvatarUploadCommand constructs the upload handler.
func NewAvatarUploadCommand(cfg AvatarCommandConfig) *AvatarUploadCommand {
	return &AvatarUploadCommand{
		repo:     cfg.Repository,
		sessions: cfg.Sessions,
		avatars:  cfg.Avatars,
		hooks:    safeHooks(cfg.Hooks),
		clock:    safeClock(cfg.Clock),
		log:      safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[AvatarUploadInput] = (*AvatarUploadCommand)(nil)

// Execute runs the upload flow strictly in order: session, validation, path
// derivation, storage write, public URL, profile update.
func (c *AvatarUploadCommand) Execute(ctx context.Context, input AvatarUploadInput) error {
	if c.repo == nil {
		return types.ErrMissingProfileRepository
	}
	if c.sessions == nil {
		return types.ErrMissingSessionResolver
	}
	if c.avatars == nil {
		return types.ErrMissingAvatarStore
	}
	if err := input.Validate(); err != nil {
		return err
	}

	user, err := c.sessions.CurrentUser(ctx)
	if err != nil {
		return err
	}

	img, err := profile.ParseImageData(input.Image)
	if err != nil {
		return err
	}

	path := profile.ObjectPath(user.ID, now(c.clock), img.Ext)
	if err := c.avatars.Upload(ctx, path, img.Data, img.ContentType); err != nil {
		return err
	}

	publicURL, err := c.avatars.PublicURL(ctx, path)
	if err != nil {
		c.removeOrphan(ctx, path)
		return err
	}

	updated, err := c.repo.Upsert(ctx, user.ID, profile.AvatarPatch(publicURL))
	if err != nil {
		c.removeOrphan(ctx, path)
		return err
	}

	if input.Result != nil {
		*input.Result = publicURL
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

// removeOrphan compensates a failed persistence step. Best effort: the
// original error is what callers need to see.
func (c *AvatarUploadCommand) removeOrphan(ctx context.Context, path string) {
	if err := c.avatars.Remove(ctx, path); err != nil {
		c.log.Error("profilesync: could not remove orphaned avatar object", err, "path", path)
	}
}
