package command

import (
	"errors"

	"github.com/smartodo/go-profilesync/pkg/types"
)

var (
	// ErrNoUserLoggedIn re-exports the session sentinel for callers that only
	// import the command package.
	ErrNoUserLoggedIn = types.ErrNoUserLoggedIn
	// ErrUserIDRequired indicates a user identifier was omitted.
	ErrUserIDRequired = types.ErrUserIDRequired
	// ErrAvatarImageRequired indicates an avatar upload without a payload.
	ErrAvatarImageRequired = errors.New("profilesync: avatar image payload required")
	// ErrWaitlistEmailRequired indicates a waitlist signup without an email.
	ErrWaitlistEmailRequired = errors.New("profilesync: waitlist email required")
)
