package profile

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/smartodo/go-profilesync/pkg/types"
)

// ErrCallbackRequired indicates a subscription was requested without a handler.
var ErrCallbackRequired = errors.New("profilesync: subscription callback required")

// SubscriptionsConfig wires the realtime subscription manager.
type SubscriptionsConfig struct {
	Feed   types.ChangeFeed
	Table  string
	Schema string
	Logger types.Logger
}

// Subscriptions owns the per-user realtime channels. At most one channel
// exists per user id: subscribing again replaces the previous channel rather
// than stacking a second one. The manager is an explicit collaborator owned
// by the composition root, not module-level state, so teardown is testable.
type Subscriptions struct {
	feed   types.ChangeFeed
	table  string
	schema string
	log    types.Logger

	mu       sync.Mutex
	channels map[uuid.UUID]types.ChangeChannel
}

// NewSubscriptions constructs the subscription manager.
func NewSubscriptions(cfg SubscriptionsConfig) (*Subscriptions, error) {
	if cfg.Feed == nil {
		return nil, types.ErrMissingChangeFeed
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	schema := cfg.Schema
	if schema == "" {
		schema = "public"
	}
	log := cfg.Logger
	if log == nil {
		log = types.NopLogger{}
	}
	return &Subscriptions{
		feed:     cfg.Feed,
		table:    table,
		schema:   schema,
		log:      log,
		channels: make(map[uuid.UUID]types.ChangeChannel),
	}, nil
}

// Subscribe opens a channel for all change events on the user's profile row
// and invokes callback with the new row payload of every event that carries
// one. The returned closure tears down exactly this channel; it is a no-op
// once the channel has been replaced by a newer Subscribe call for the same
// user. Callers own invoking the closure on view teardown.
func (s *Subscriptions) Subscribe(ctx context.Context, userID uuid.UUID, callback func(types.Profile)) (func(), error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	if callback == nil {
		return nil, ErrCallbackRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.channels[userID]; ok {
		delete(s.channels, userID)
		if err := s.feed.RemoveChannel(prev); err != nil {
			s.log.Error("profilesync: failed to tear down replaced channel", err, "user_id", userID)
		}
	}

	ch := s.feed.Channel("profile:" + userID.String())
	ch.On(types.ChangeFilter{
		Event:  "*",
		Schema: s.schema,
		Table:  s.table,
		Filter: "user_id=eq." + userID.String(),
	}, func(event types.ChangeEvent) {
		if len(event.New) == 0 {
			return
		}
		var row types.Profile
		if err := json.Unmarshal(event.New, &row); err != nil {
			s.log.Error("profilesync: dropping undecodable profile change", err, "user_id", userID)
			return
		}
		callback(row)
	})

	if err := ch.Subscribe(ctx); err != nil {
		return nil, err
	}
	s.channels[userID] = ch

	return func() { s.removeIfCurrent(userID, ch) }, nil
}

// Unsubscribe tears down the channels for the given user ids, or every
// tracked channel when called with no arguments. Missing entries are safe
// no-ops.
func (s *Subscriptions) Unsubscribe(userIDs ...uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(userIDs) == 0 {
		for id, ch := range s.channels {
			delete(s.channels, id)
			s.teardown(id, ch)
		}
		return
	}
	for _, id := range userIDs {
		ch, ok := s.channels[id]
		if !ok {
			continue
		}
		delete(s.channels, id)
		s.teardown(id, ch)
	}
}

// Active returns the user ids with a live channel, for diagnostics and tests.
func (s *Subscriptions) Active() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	return ids
}

func (s *Subscriptions) removeIfCurrent(userID uuid.UUID, ch types.ChangeChannel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.channels[userID]; !ok || current != ch {
		return
	}
	delete(s.channels, userID)
	s.teardown(userID, ch)
}

func (s *Subscriptions) teardown(userID uuid.UUID, ch types.ChangeChannel) {
	if err := s.feed.RemoveChannel(ch); err != nil {
		s.log.Error("profilesync: channel teardown failed", err, "user_id", userID)
	}
}
