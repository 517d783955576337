package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/smartodo/go-profilesync/command"
	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/smartodo/go-profilesync/validation"
)

// Result is the uniform outcome envelope for auth operations. Gateway methods
// never return Go errors to callers; failures are folded into Success=false
// with a human-readable message.
type Result struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *types.AuthUser `json:"data,omitempty"`
}

// Config wires the gateway's dependencies.
type Config struct {
	API      types.AuthAPI
	Waitlist types.WaitlistStore
	Logger   types.Logger
}

// Gateway fronts the backend auth service with sanitized inputs and stable
// user-facing messages.
type Gateway struct {
	api      types.AuthAPI
	waitlist *command.WaitlistJoinCommand
	log      types.Logger
}

// New constructs the auth gateway.
func New(cfg Config) *Gateway {
	log := cfg.Logger
	if log == nil {
		log = types.NopLogger{}
	}
	return &Gateway{
		api:      cfg.API,
		waitlist: command.NewWaitlistJoinCommand(command.WaitlistCommandConfig{Store: cfg.Waitlist}),
		log:      log,
	}
}

// SignIn authenticates with an email/password pair. The email is sanitized
// before it reaches the backend; the password is passed through untouched.
func (g *Gateway) SignIn(ctx context.Context, email, password string) Result {
	if g.api == nil {
		return failure("An unexpected error occurred during sign in")
	}
	user, err := g.api.SignInWithPassword(ctx, validation.SanitizeEmail(email), password)
	if err != nil {
		g.log.Debug("profilesync: sign in failed", "error", err)
		return failureFrom(err, "An unexpected error occurred during sign in")
	}
	return Result{Success: true, Message: "Successfully signed in", Data: user}
}

// SignUp registers a new account, storing the full name as user metadata so
// the backend trigger can seed the profile row.
func (g *Gateway) SignUp(ctx context.Context, email, password, fullName string) Result {
	if g.api == nil {
		return failure("An unexpected error occurred during sign up")
	}
	user, err := g.api.SignUp(ctx, validation.SanitizeEmail(email), password, map[string]any{
		"full_name": fullName,
	})
	if err != nil {
		g.log.Debug("profilesync: sign up failed", "error", err)
		return failureFrom(err, "An unexpected error occurred during sign up")
	}
	return Result{
		Success: true,
		Message: "Successfully signed up. Please check your email for confirmation.",
		Data:    user,
	}
}

// SignOut ends the current session.
func (g *Gateway) SignOut(ctx context.Context) Result {
	if g.api == nil {
		return failure("An unexpected error occurred during sign out")
	}
	if err := g.api.SignOut(ctx); err != nil {
		g.log.Debug("profilesync: sign out failed", "error", err)
		return failureFrom(err, "An unexpected error occurred during sign out")
	}
	return Result{Success: true, Message: "Successfully signed out"}
}

// ResetPassword sends a password recovery email pointing at redirectTo.
func (g *Gateway) ResetPassword(ctx context.Context, email, redirectTo string) Result {
	if g.api == nil {
		return failure("An unexpected error occurred during password reset")
	}
	if err := g.api.SendPasswordReset(ctx, validation.SanitizeEmail(email), redirectTo); err != nil {
		g.log.Debug("profilesync: password reset failed", "error", err)
		return failureFrom(err, "An unexpected error occurred during password reset")
	}
	return Result{Success: true, Message: "Password reset email sent successfully"}
}

// UpdatePassword sets a new password on the signed-in account.
func (g *Gateway) UpdatePassword(ctx context.Context, newPassword string) Result {
	if g.api == nil {
		return failure("An unexpected error occurred during password update")
	}
	if err := g.api.UpdatePassword(ctx, newPassword); err != nil {
		g.log.Debug("profilesync: password update failed", "error", err)
		return failureFrom(err, "An unexpected error occurred during password update")
	}
	return Result{Success: true, Message: "Password updated successfully"}
}

// AddToWaitlist records a signup on the waitlist table. Re-submitting a known
// email returns a friendly message instead of the raw constraint violation.
func (g *Gateway) AddToWaitlist(ctx context.Context, email, fullName string) Result {
	err := g.waitlist.Execute(ctx, command.WaitlistJoinInput{Email: email, FullName: fullName})
	if err != nil {
		if types.IsUniqueViolation(err) {
			return failure("This email is already on the waitlist")
		}
		g.log.Debug("profilesync: waitlist insert failed", "error", err)
		return failureFrom(err, "An unexpected error occurred")
	}
	return Result{Success: true, Message: "Successfully added to waitlist"}
}

// CurrentUser returns the signed-in user, or nil when no session exists or
// the lookup fails. Failures are deliberately swallowed: callers use this for
// display and routing decisions, not for error handling.
func (g *Gateway) CurrentUser(ctx context.Context) *types.AuthUser {
	if g.api == nil {
		return nil
	}
	user, err := g.api.CurrentUser(ctx)
	if err != nil {
		return nil
	}
	return user
}

// IsAuthenticated reports whether a user session is currently active.
func (g *Gateway) IsAuthenticated(ctx context.Context) bool {
	return g.CurrentUser(ctx) != nil
}

func failure(message string) Result {
	return Result{Success: false, Message: message}
}

// failureFrom prefers the backend's own message when the error carries one,
// and falls back to the operation's generic message otherwise.
func failureFrom(err error, fallback string) Result {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Message != "" {
		return failure(rich.Message)
	}
	return failure(fallback)
}
