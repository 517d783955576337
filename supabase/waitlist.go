package supabase

import (
	"context"
	"errors"

	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/smartodo/go-profilesync/profile"
)

// DefaultWaitlistTable is the table waitlist signups are inserted into.
const DefaultWaitlistTable = "waitlist"

// WaitlistStore implements types.WaitlistStore on PostgREST.
type WaitlistStore struct {
	rest  profile.RestClient
	table string
}

// NewWaitlistStore constructs the store over any PostgREST-capable client.
func NewWaitlistStore(rest profile.RestClient) *WaitlistStore {
	return &WaitlistStore{rest: rest, table: DefaultWaitlistTable}
}

var _ types.WaitlistStore = (*WaitlistStore)(nil)

// Add inserts the entry. A duplicate email surfaces the backend's unique
// violation unchanged so the auth gateway can translate it.
func (s *WaitlistStore) Add(_ context.Context, entry types.WaitlistEntry) error {
	if s.rest == nil {
		return errors.New("profilesync: waitlist rest client required")
	}
	_, _, err := s.rest.From(s.table).
		Insert([]types.WaitlistEntry{entry}, false, "", "minimal", "").
		Execute()
	return err
}
