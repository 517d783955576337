package profile

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	name     string
	handlers []func(types.ChangeEvent)
	filters  []types.ChangeFilter
	err      error
}

func (c *fakeChannel) On(filter types.ChangeFilter, handler func(types.ChangeEvent)) types.ChangeChannel {
	c.filters = append(c.filters, filter)
	c.handlers = append(c.handlers, handler)
	return c
}

func (c *fakeChannel) Subscribe(context.Context) error { return c.err }

func (c *fakeChannel) emit(event types.ChangeEvent) {
	for _, handler := range c.handlers {
		handler(event)
	}
}

type fakeFeed struct {
	created []*fakeChannel
	removed []types.ChangeChannel
}

func (f *fakeFeed) Channel(name string) types.ChangeChannel {
	ch := &fakeChannel{name: name}
	f.created = append(f.created, ch)
	return ch
}

func (f *fakeFeed) RemoveChannel(ch types.ChangeChannel) error {
	f.removed = append(f.removed, ch)
	return nil
}

func newTestSubscriptions(t *testing.T) (*Subscriptions, *fakeFeed) {
	t.Helper()
	feed := &fakeFeed{}
	subs, err := NewSubscriptions(SubscriptionsConfig{Feed: feed})
	require.NoError(t, err)
	return subs, feed
}

func TestSubscribeDeliversNewRowPayloads(t *testing.T) {
	subs, feed := newTestSubscriptions(t)
	userID := uuid.New()

	var got []types.Profile
	_, err := subs.Subscribe(context.Background(), userID, func(p types.Profile) {
		got = append(got, p)
	})
	require.NoError(t, err)

	ch := feed.created[0]
	require.Equal(t, "profile:"+userID.String(), ch.name)
	require.Equal(t, []types.ChangeFilter{{
		Event:  "*",
		Schema: "public",
		Table:  "profiles",
		Filter: "user_id=eq." + userID.String(),
	}}, ch.filters)

	row, err := json.Marshal(types.Profile{UserID: userID, FullName: "Ada"})
	require.NoError(t, err)
	ch.emit(types.ChangeEvent{Type: "UPDATE", New: row})
	require.Len(t, got, 1)
	require.Equal(t, "Ada", got[0].FullName)

	// Deletes carry no new row and must not reach the callback.
	ch.emit(types.ChangeEvent{Type: "DELETE"})
	require.Len(t, got, 1)

	// Undecodable payloads are dropped, not delivered.
	ch.emit(types.ChangeEvent{Type: "UPDATE", New: json.RawMessage(`{"user_id": 42}`)})
	require.Len(t, got, 1)
}

func TestSubscribeReplacesExistingChannel(t *testing.T) {
	subs, feed := newTestSubscriptions(t)
	userID := uuid.New()
	ctx := context.Background()

	_, err := subs.Subscribe(ctx, userID, func(types.Profile) {})
	require.NoError(t, err)
	_, err = subs.Subscribe(ctx, userID, func(types.Profile) {})
	require.NoError(t, err)

	require.Len(t, feed.created, 2)
	require.Equal(t, []types.ChangeChannel{feed.created[0]}, feed.removed, "first channel is torn down, not stacked")
	require.Equal(t, []uuid.UUID{userID}, subs.Active())
}

func TestUnsubscribeClosureRemovesOnlyItsChannel(t *testing.T) {
	subs, feed := newTestSubscriptions(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	stopAlice, err := subs.Subscribe(ctx, alice, func(types.Profile) {})
	require.NoError(t, err)
	_, err = subs.Subscribe(ctx, bob, func(types.Profile) {})
	require.NoError(t, err)

	stopAlice()
	require.Equal(t, []uuid.UUID{bob}, subs.Active())
	require.Equal(t, []types.ChangeChannel{feed.created[0]}, feed.removed)

	// Calling the closure again is a safe no-op.
	stopAlice()
	require.Len(t, feed.removed, 1)
}

func TestStaleClosureDoesNotRemoveReplacementChannel(t *testing.T) {
	subs, feed := newTestSubscriptions(t)
	ctx := context.Background()
	userID := uuid.New()

	stale, err := subs.Subscribe(ctx, userID, func(types.Profile) {})
	require.NoError(t, err)
	_, err = subs.Subscribe(ctx, userID, func(types.Profile) {})
	require.NoError(t, err)

	stale()
	require.Equal(t, []uuid.UUID{userID}, subs.Active(), "replacement channel must survive the stale closure")
	require.Len(t, feed.removed, 1)
}

func TestUnsubscribeAllAndTargeted(t *testing.T) {
	subs, feed := newTestSubscriptions(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	_, err := subs.Subscribe(ctx, alice, func(types.Profile) {})
	require.NoError(t, err)
	_, err = subs.Subscribe(ctx, bob, func(types.Profile) {})
	require.NoError(t, err)

	subs.Unsubscribe(alice)
	require.Equal(t, []uuid.UUID{bob}, subs.Active())

	// Unknown ids are safe no-ops.
	subs.Unsubscribe(uuid.New())
	require.Equal(t, []uuid.UUID{bob}, subs.Active())

	subs.Unsubscribe()
	require.Empty(t, subs.Active())
	require.Len(t, feed.removed, 2)

	// Bulk teardown with nothing tracked is a safe no-op too.
	subs.Unsubscribe()
	require.Len(t, feed.removed, 2)
}

func TestSubscribeValidatesInput(t *testing.T) {
	subs, _ := newTestSubscriptions(t)

	_, err := subs.Subscribe(context.Background(), uuid.Nil, func(types.Profile) {})
	require.ErrorIs(t, err, types.ErrUserIDRequired)

	_, err = subs.Subscribe(context.Background(), uuid.New(), nil)
	require.ErrorIs(t, err, ErrCallbackRequired)
}

func TestSubscribeErrorDoesNotTrackChannel(t *testing.T) {
	feed := &fakeFeed{}
	subs, err := NewSubscriptions(SubscriptionsConfig{Feed: &erroringFeed{fakeFeed: feed}})
	require.NoError(t, err)

	_, err = subs.Subscribe(context.Background(), uuid.New(), func(types.Profile) {})
	require.Error(t, err)
	require.Empty(t, subs.Active())
}

type erroringFeed struct {
	fakeFeed *fakeFeed
}

func (f *erroringFeed) Channel(name string) types.ChangeChannel {
	ch := f.fakeFeed.Channel(name).(*fakeChannel)
	ch.err = context.DeadlineExceeded
	return ch
}

func (f *erroringFeed) RemoveChannel(ch types.ChangeChannel) error {
	return f.fakeFeed.RemoveChannel(ch)
}
