package types

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Profile models a row of the profiles table. One row exists per
// authenticated user; user_id is unique and immutable after creation.
type Profile struct {
	ID        uuid.UUID  `json:"id,omitempty"`
	UserID    uuid.UUID  `json:"user_id"`
	FullName  string     `json:"full_name,omitempty"`
	Username  string     `json:"username,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	Bio       string     `json:"bio,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ProfilePatch carries a partial profile update. Nil fields leave the column
// untouched. An AvatarURL pointing at the empty string clears the column to
// SQL NULL; a plain omission would keep the previous value on upsert.
type ProfilePatch struct {
	FullName  *string
	Username  *string
	Bio       *string
	AvatarURL *string
}

// IsZero reports whether the patch carries no fields at all.
func (p ProfilePatch) IsZero() bool {
	return p.FullName == nil && p.Username == nil && p.Bio == nil && p.AvatarURL == nil
}

// AuthUser is the subset of the auth subsystem's user record the module needs.
type AuthUser struct {
	ID       uuid.UUID
	Email    string
	FullName string
}

// ProfileRepository is the contract for profile row access. Get returns
// (nil, nil) when no row exists for the user; every other backend failure is
// returned as-is.
type ProfileRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Create(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Upsert(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*Profile, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// AvatarStore abstracts the object storage bucket holding avatar images.
type AvatarStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(ctx context.Context, path string) (string, error)
	Remove(ctx context.Context, paths ...string) error
}

// SessionResolver resolves the currently signed-in user. Implementations
// return ErrNoUserLoggedIn when no session exists.
type SessionResolver interface {
	CurrentUser(ctx context.Context) (*AuthUser, error)
}

// AuthAPI wraps the backend auth service used by the gateway.
type AuthAPI interface {
	SessionResolver
	SignInWithPassword(ctx context.Context, email, password string) (*AuthUser, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*AuthUser, error)
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, newPassword string) error
}

// WaitlistEntry models a row of the waitlist table.
type WaitlistEntry struct {
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Status   string `json:"status,omitempty"`
}

// WaitlistStore persists waitlist signups. A duplicate email surfaces the
// backend unique-violation error (see IsUniqueViolation).
type WaitlistStore interface {
	Add(ctx context.Context, entry WaitlistEntry) error
}

// ChangeFilter scopes a realtime channel to a slice of table changes.
type ChangeFilter struct {
	Event  string
	Schema string
	Table  string
	Filter string
}

// ChangeEvent is a single table change delivered over a realtime channel.
// New and Old hold the raw row payloads when the backend provides them.
type ChangeEvent struct {
	Type string
	New  json.RawMessage
	Old  json.RawMessage
}

// ChangeChannel is one realtime channel. On registers a handler before
// Subscribe opens the channel; the network handshake completes asynchronously
// and is not observed through this interface.
type ChangeChannel interface {
	On(filter ChangeFilter, handler func(ChangeEvent)) ChangeChannel
	Subscribe(ctx context.Context) error
}

// ChangeFeed hands out realtime channels and tears them down.
type ChangeFeed interface {
	Channel(name string) ChangeChannel
	RemoveChannel(ch ChangeChannel) error
}

// Clock abstracts time lookups for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used across the module.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// Profile event actions emitted through Hooks.
const (
	ProfileActionCreated       = "created"
	ProfileActionUpserted      = "upserted"
	ProfileActionDeleted       = "deleted"
	ProfileActionAvatarChanged = "avatar_changed"
)

// ProfileEvent describes a profile mutation performed by a command handler.
type ProfileEvent struct {
	UserID     uuid.UUID
	Action     string
	Profile    Profile
	OccurredAt time.Time
}

// Hooks lets host applications observe mutations without wrapping handlers.
type Hooks struct {
	AfterProfileChange func(context.Context, ProfileEvent)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrNoUserLoggedIn is returned whenever an operation needs a session and
	// none exists. The message is part of the caller contract.
	ErrNoUserLoggedIn = errors.New("No user logged in")
	// ErrUserIDRequired indicates a user identifier was omitted.
	ErrUserIDRequired = errors.New("profilesync: user id required")
	// ErrServiceNotReady indicates the service has not been fully configured.
	ErrServiceNotReady = errors.New("profilesync: service not ready")
	// ErrMissingProfileRepository occurs when no profile repository was supplied.
	ErrMissingProfileRepository = errors.New("profilesync: missing profile repository")
	// ErrMissingAvatarStore occurs when no avatar store was supplied.
	ErrMissingAvatarStore = errors.New("profilesync: missing avatar store")
	// ErrMissingSessionResolver occurs when no session resolver was supplied.
	ErrMissingSessionResolver = errors.New("profilesync: missing session resolver")
	// ErrMissingChangeFeed occurs when no realtime change feed was supplied.
	ErrMissingChangeFeed = errors.New("profilesync: missing change feed")
	// ErrMissingWaitlistStore occurs when no waitlist store was supplied.
	ErrMissingWaitlistStore = errors.New("profilesync: missing waitlist store")
)
