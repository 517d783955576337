// Package supabase wires the module's abstract backends to a Supabase
// project: PostgREST for profile rows, Storage for avatar objects, GoTrue
// for authentication.
package supabase

import (
	"os"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/smartodo/go-profilesync/profile"
	supa "github.com/supabase-community/supabase-go"
)

// DefaultAvatarBucket is the storage bucket avatar objects live in.
const DefaultAvatarBucket = "avatars"

// Environment variables read by FromEnv.
const (
	EnvURL     = "SUPABASE_URL"
	EnvAnonKey = "SUPABASE_ANON_KEY"
)

// Config carries the project coordinates and tuning knobs for the client.
type Config struct {
	URL     string
	AnonKey string
	// Bucket overrides DefaultAvatarBucket when set.
	Bucket string
	// AutoRefreshToken keeps the session alive in the background after a
	// successful sign in.
	AutoRefreshToken bool
	Logger           types.Logger
}

// FromEnv builds a Config from SUPABASE_URL and SUPABASE_ANON_KEY. Both are
// required; a partial configuration fails fast instead of producing a client
// that errors on first use.
func FromEnv() (Config, error) {
	cfg := Config{
		URL:              strings.TrimSpace(os.Getenv(EnvURL)),
		AnonKey:          strings.TrimSpace(os.Getenv(EnvAnonKey)),
		AutoRefreshToken: true,
	}
	if cfg.URL == "" || cfg.AnonKey == "" {
		return Config{}, goerrors.New(
			"profilesync: missing "+EnvURL+" or "+EnvAnonKey,
			goerrors.CategoryValidation,
		).WithCode(goerrors.CodeBadRequest).WithTextCode("SUPABASE_CONFIG_MISSING")
	}
	return cfg, nil
}

// Client bundles the Supabase SDK client with adapters for each of the
// module's backend contracts.
type Client struct {
	sb       *supa.Client
	cfg      Config
	profiles *profile.Repository
}

// New dials nothing; it validates the config and prepares the SDK client.
// All network traffic happens lazily on first use.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, goerrors.New(
			"profilesync: supabase url and anon key are required",
			goerrors.CategoryValidation,
		).WithCode(goerrors.CodeBadRequest).WithTextCode("SUPABASE_CONFIG_MISSING")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultAvatarBucket
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}

	sb, err := supa.NewClient(cfg.URL, cfg.AnonKey, &supa.ClientOptions{})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "profilesync: could not build supabase client")
	}
	profiles, err := profile.NewRepository(profile.RepositoryConfig{Rest: sb, Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}
	return &Client{sb: sb, cfg: cfg, profiles: profiles}, nil
}

// Profiles returns the profile repository backed by PostgREST.
func (c *Client) Profiles() *profile.Repository {
	return c.profiles
}

// Avatars returns the avatar store backed by Supabase Storage.
func (c *Client) Avatars() *AvatarStore {
	return &AvatarStore{storage: c.sb.Storage, bucket: c.cfg.Bucket}
}

// Auth returns the auth adapter backed by GoTrue.
func (c *Client) Auth() *Auth {
	return &Auth{sb: c.sb, autoRefresh: c.cfg.AutoRefreshToken}
}

// Waitlist returns the waitlist store backed by PostgREST.
func (c *Client) Waitlist() *WaitlistStore {
	return NewWaitlistStore(c.sb)
}
