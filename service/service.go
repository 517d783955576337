package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/auth"
	"github.com/smartodo/go-profilesync/command"
	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/smartodo/go-profilesync/profile"
	"github.com/smartodo/go-profilesync/query"
)

// Service is the entry point for go-profilesync. It wires the profile
// repository, avatar store, session resolver, realtime feed, and auth gateway
// supplied by the host application into command/query facades.
type Service struct {
	cfg           Config
	commands      Commands
	queries       Queries
	subscriptions *profile.Subscriptions
	gateway       *auth.Gateway
}

// Commands exposes the service command handlers.
type Commands struct {
	ProfileCreate *command.ProfileCreateCommand
	ProfileUpsert *command.ProfileUpsertCommand
	ProfileEnsure *command.ProfileEnsureCommand
	ProfileDelete *command.ProfileDeleteCommand
	AvatarUpload  *command.AvatarUploadCommand
	AvatarDelete  *command.AvatarDeleteCommand
	WaitlistJoin  *command.WaitlistJoinCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	Profile        *query.ProfileQuery
	CurrentProfile *query.CurrentProfileQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (Supabase adapters, cached repositories, hooks, etc.).
type Config struct {
	Repository types.ProfileRepository
	Avatars    types.AvatarStore
	Sessions   types.SessionResolver
	Feed       types.ChangeFeed
	Waitlist   types.WaitlistStore
	Auth       types.AuthAPI
	Hooks      types.Hooks
	Clock      types.Clock
	IDGen      types.IDGenerator
	Logger     types.Logger
	// Table overrides the profiles table name used for realtime filters.
	Table string
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)

	s := &Service{cfg: norm}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()

	if norm.Feed != nil {
		subs, err := profile.NewSubscriptions(profile.SubscriptionsConfig{
			Feed:   norm.Feed,
			Table:  norm.Table,
			Logger: norm.Logger,
		})
		if err != nil {
			norm.Logger.Error("profilesync: subscription manager initialization failed", err)
		} else {
			s.subscriptions = subs
		}
	}

	s.gateway = auth.New(auth.Config{
		API:      norm.Auth,
		Waitlist: norm.Waitlist,
		Logger:   norm.Logger,
	})
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGen == nil {
		cfg.IDGen = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Auth returns the auth gateway.
func (s *Service) Auth() *auth.Gateway {
	return s.gateway
}

// Subscriptions returns the realtime subscription manager, or nil when no
// change feed was configured.
func (s *Service) Subscriptions() *profile.Subscriptions {
	return s.subscriptions
}

// Ready reports whether the service has the required dependencies wired in.
// The waitlist store and change feed are optional surfaces and do not gate
// readiness.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.Repository != nil &&
		s.cfg.Avatars != nil &&
		s.cfg.Sessions != nil
}

// HealthCheck surfaces the first missing dependency so upstream transports
// can report a precise readiness failure.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if s.cfg.Repository == nil {
		return types.ErrMissingProfileRepository
	}
	if s.cfg.Avatars == nil {
		return types.ErrMissingAvatarStore
	}
	if s.cfg.Sessions == nil {
		return types.ErrMissingSessionResolver
	}
	return nil
}

// GetProfile returns the profile owned by userID, or nil when none exists.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	return s.queries.Profile.Query(ctx, query.ProfileQueryInput{UserID: userID})
}

// GetCurrentUserProfile returns the signed-in user's profile, or nil when no
// row exists yet.
func (s *Service) GetCurrentUserProfile(ctx context.Context) (*types.Profile, error) {
	return s.queries.CurrentProfile.Query(ctx, query.CurrentProfileInput{})
}

// GetOrCreateProfile returns the existing profile or creates an empty one,
// absorbing the race where a concurrent caller creates the row first.
func (s *Service) GetOrCreateProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	var result types.Profile
	if err := s.commands.ProfileEnsure.Execute(ctx, command.ProfileEnsureInput{
		UserID: userID,
		Result: &result,
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateProfile inserts an empty profile row for userID.
func (s *Service) CreateProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	var result types.Profile
	if err := s.commands.ProfileCreate.Execute(ctx, command.ProfileCreateInput{
		UserID: userID,
		Result: &result,
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpsertUserProfile applies the patch to the signed-in user's profile,
// creating the row when needed.
func (s *Service) UpsertUserProfile(ctx context.Context, patch types.ProfilePatch) (*types.Profile, error) {
	var result types.Profile
	if err := s.commands.ProfileUpsert.Execute(ctx, command.ProfileUpsertInput{
		Patch:  patch,
		Result: &result,
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateAvatar points the signed-in user's profile at an already-hosted
// avatar URL without uploading anything.
func (s *Service) UpdateAvatar(ctx context.Context, avatarURL string) (*types.Profile, error) {
	return s.UpsertUserProfile(ctx, profile.AvatarPatch(avatarURL))
}

// DeleteProfile removes the profile row owned by userID.
func (s *Service) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	return s.commands.ProfileDelete.Execute(ctx, command.ProfileDeleteInput{UserID: userID})
}

// UploadAvatar stores the image carried by the data URI and returns the
// public URL the profile row now points at.
func (s *Service) UploadAvatar(ctx context.Context, image string) (string, error) {
	var url string
	if err := s.commands.AvatarUpload.Execute(ctx, command.AvatarUploadInput{
		Image:  image,
		Result: &url,
	}); err != nil {
		return "", err
	}
	return url, nil
}

// DeleteAvatar removes the signed-in user's avatar object and clears the
// profile column. A profile without an avatar is a no-op.
func (s *Service) DeleteAvatar(ctx context.Context) error {
	return s.commands.AvatarDelete.Execute(ctx, command.AvatarDeleteInput{})
}

// SubscribeToProfileUpdates opens a realtime channel delivering every change
// to the user's profile row. The returned closure tears the channel down.
func (s *Service) SubscribeToProfileUpdates(ctx context.Context, userID uuid.UUID, callback func(types.Profile)) (func(), error) {
	if s.subscriptions == nil {
		return nil, types.ErrMissingChangeFeed
	}
	return s.subscriptions.Subscribe(ctx, userID, callback)
}

// UnsubscribeFromProfileUpdates tears down the channels for the given users,
// or every tracked channel when called with no arguments.
func (s *Service) UnsubscribeFromProfileUpdates(userIDs ...uuid.UUID) {
	if s.subscriptions == nil {
		return
	}
	s.subscriptions.Unsubscribe(userIDs...)
}

func (s *Service) buildCommands() Commands {
	profileCfg := command.ProfileCommandConfig{
		Repository: s.cfg.Repository,
		Sessions:   s.cfg.Sessions,
		Hooks:      s.cfg.Hooks,
		Clock:      s.cfg.Clock,
		Logger:     s.cfg.Logger,
	}
	avatarCfg := command.AvatarCommandConfig{
		Repository: s.cfg.Repository,
		Sessions:   s.cfg.Sessions,
		Avatars:    s.cfg.Avatars,
		Hooks:      s.cfg.Hooks,
		Clock:      s.cfg.Clock,
		Logger:     s.cfg.Logger,
	}
	return Commands{
		ProfileCreate: command.NewProfileCreateCommand(profileCfg),
		ProfileUpsert: command.NewProfileUpsertCommand(profileCfg),
		ProfileEnsure: command.NewProfileEnsureCommand(profileCfg),
		ProfileDelete: command.NewProfileDeleteCommand(profileCfg),
		AvatarUpload:  command.NewAvatarUploadCommand(avatarCfg),
		AvatarDelete:  command.NewAvatarDeleteCommand(avatarCfg),
		WaitlistJoin:  command.NewWaitlistJoinCommand(command.WaitlistCommandConfig{Store: s.cfg.Waitlist}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		Profile:        query.NewProfileQuery(s.cfg.Repository),
		CurrentProfile: query.NewCurrentProfileQuery(s.cfg.Repository, s.cfg.Sessions),
	}
}
