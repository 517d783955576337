package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/smartodo/go-profilesync/validation"
)

// WaitlistJoinInput adds an email address to the signup waitlist.
type WaitlistJoinInput struct {
	Email    string
	FullName string
}

// Type implements gocommand.Message.
func (WaitlistJoinInput) Type() string {
	return "command.waitlist.join"
}

// Validate implements gocommand.Message.
func (input WaitlistJoinInput) Validate() error {
	if validation.SanitizeEmail(input.Email) == "" {
		return ErrWaitlistEmailRequired
	}
	return nil
}

// WaitlistCommandConfig wires the waitlist handler.
type WaitlistCommandConfig struct {
	Store types.WaitlistStore
}

// WaitlistJoinCommand inserts a pending waitlist row. A duplicate email
// surfaces the backend unique violation; the auth gateway translates it
// into the user-facing message.
type WaitlistJoinCommand struct {
	store types.WaitlistStore
}

// NewWaitlistJoinCommand constructs the waitlist handler.
func NewWaitlistJoinCommand(cfg WaitlistCommandConfig) *WaitlistJoinCommand {
	return &WaitlistJoinCommand{store: cfg.Store}
}

var _ gocommand.Commander[WaitlistJoinInput] = (*WaitlistJoinCommand)(nil)

// Execute sanitizes the inputs and inserts the row.
func (c *WaitlistJoinCommand) Execute(ctx context.Context, input WaitlistJoinInput) error {
	if c.store == nil {
		return types.ErrMissingWaitlistStore
	}
	if err := input.Validate(); err != nil {
		return err
	}

	return c.store.Add(ctx, types.WaitlistEntry{
		Email:    validation.SanitizeEmail(input.Email),
		FullName: validation.SanitizeFullName(input.FullName),
		Status:   "pending",
	})
}
