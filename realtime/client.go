// Package realtime is a minimal Phoenix-channel client for Supabase's
// realtime service, scoped to the postgres_changes extension. Each channel
// owns its own websocket; tearing a channel down closes its socket without
// touching the others.
package realtime

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/gorilla/websocket"
	"github.com/smartodo/go-profilesync/pkg/types"
)

// DefaultHeartbeatInterval matches the server's expectation; missing two
// heartbeats gets the socket reaped.
const DefaultHeartbeatInterval = 30 * time.Second

// Config wires the realtime client.
type Config struct {
	// URL is the project base URL (https://<ref>.supabase.co) or a full
	// websocket endpoint. Base URLs are expanded to the realtime path.
	URL    string
	APIKey string
	// TokenProvider supplies the access token attached to channel joins.
	// Optional; anonymous joins use the API key alone.
	TokenProvider func() string
	// HeartbeatInterval overrides DefaultHeartbeatInterval when positive.
	HeartbeatInterval time.Duration
	Logger            types.Logger
	Dialer            *websocket.Dialer
}

// Client hands out channels over the realtime websocket endpoint.
type Client struct {
	endpoint  string
	apiKey    string
	token     func() string
	heartbeat time.Duration
	log       types.Logger
	dialer    *websocket.Dialer

	refs atomic.Int64
}

// New validates the config and derives the websocket endpoint. No connection
// is opened until a channel subscribes.
func New(cfg Config) (*Client, error) {
	endpoint, err := websocketEndpoint(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey != "" {
		endpoint += "?apikey=" + url.QueryEscape(cfg.APIKey) + "&vsn=1.0.0"
	}

	heartbeat := cfg.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	log := cfg.Logger
	if log == nil {
		log = types.NopLogger{}
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	return &Client{
		endpoint:  endpoint,
		apiKey:    cfg.APIKey,
		token:     cfg.TokenProvider,
		heartbeat: heartbeat,
		log:       log,
		dialer:    dialer,
	}, nil
}

var _ types.ChangeFeed = (*Client)(nil)

// Channel returns a channel for the given name. Nothing happens on the wire
// until Subscribe.
func (c *Client) Channel(name string) types.ChangeChannel {
	return &channel{
		client: c,
		topic:  "realtime:" + name,
		done:   make(chan struct{}),
	}
}

// RemoveChannel leaves and closes the channel's socket. Removing a channel
// that never subscribed, or one already removed, is a no-op.
func (c *Client) RemoveChannel(ch types.ChangeChannel) error {
	own, ok := ch.(*channel)
	if !ok {
		return goerrors.New("realtime: channel was not created by this client", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	own.close()
	return nil
}

func (c *Client) nextRef() string {
	return strconv.FormatInt(c.refs.Add(1), 10)
}

// websocketEndpoint maps a project base URL onto the realtime websocket
// endpoint, flipping the scheme to ws/wss.
func websocketEndpoint(raw string) (string, error) {
	if raw == "" {
		return "", goerrors.New("realtime: url is required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "realtime: invalid url")
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", goerrors.New("realtime: unsupported url scheme "+parsed.Scheme, goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	if parsed.Path == "" || parsed.Path == "/" {
		parsed.Path = "/realtime/v1/websocket"
	}
	parsed.RawQuery = ""
	return parsed.String(), nil
}

// channel is one Phoenix channel on its own socket.
type channel struct {
	client *Client
	topic  string

	mu       sync.Mutex
	bindings []binding
	conn     *websocket.Conn
	writeMu  sync.Mutex
	done     chan struct{}
	closed   bool
}

type binding struct {
	filter  types.ChangeFilter
	handler func(types.ChangeEvent)
}

var _ types.ChangeChannel = (*channel)(nil)

// On registers a handler for table changes matching the filter. Must be
// called before Subscribe; bindings added later never reach the server.
func (ch *channel) On(filter types.ChangeFilter, handler func(types.ChangeEvent)) types.ChangeChannel {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.bindings = append(ch.bindings, binding{filter: filter, handler: handler})
	return ch
}

// Subscribe dials the socket, joins the topic with the registered filters,
// and starts the read and heartbeat loops. The join handshake completes
// asynchronously; a nil return means the join frame was written, not that the
// server accepted it.
func (ch *channel) Subscribe(ctx context.Context) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.closed {
		return goerrors.New("realtime: channel already removed", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	if ch.conn != nil {
		return goerrors.New("realtime: channel already subscribed", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	conn, _, err := ch.client.dialer.DialContext(ctx, ch.client.endpoint, nil)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "realtime: could not open websocket")
	}

	join := joinPayload{}
	for _, b := range ch.bindings {
		join.Config.PostgresChanges = append(join.Config.PostgresChanges, postgresChangeFromFilter(b.filter))
	}
	if ch.client.token != nil {
		join.AccessToken = ch.client.token()
	}

	msg, err := encodeMessage(ch.topic, eventJoin, join, ch.client.nextRef())
	if err != nil {
		_ = conn.Close()
		return goerrors.Wrap(err, goerrors.CategoryInternal, "realtime: could not encode join")
	}
	if err := conn.WriteJSON(msg); err != nil {
		_ = conn.Close()
		return goerrors.Wrap(err, goerrors.CategoryInternal, "realtime: join failed")
	}

	ch.conn = conn
	go ch.readLoop(conn)
	go ch.heartbeatLoop(conn)
	return nil
}

func (ch *channel) readLoop(conn *websocket.Conn) {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case <-ch.done:
			default:
				ch.client.log.Error("realtime: read loop stopped", err, "topic", ch.topic)
			}
			return
		}

		switch msg.Event {
		case eventPostgresChanges:
			event, err := decodeChange(msg.Payload)
			if err != nil {
				ch.client.log.Error("realtime: undecodable change payload", err, "topic", ch.topic)
				continue
			}
			ch.dispatch(event)
		case eventReply, eventClose:
			// Join/leave acks carry nothing subscribers need.
		case eventError:
			ch.client.log.Error("realtime: channel error", nil, "topic", ch.topic, "payload", string(msg.Payload))
		}
	}
}

// dispatch fans a change event out to every binding. Filtering happened
// server-side when the channel joined.
func (ch *channel) dispatch(event types.ChangeEvent) {
	ch.mu.Lock()
	bindings := make([]binding, len(ch.bindings))
	copy(bindings, ch.bindings)
	ch.mu.Unlock()

	for _, b := range bindings {
		if b.handler != nil {
			b.handler(event)
		}
	}
}

func (ch *channel) heartbeatLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(ch.client.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ch.done:
			return
		case <-ticker.C:
			msg, err := encodeMessage(heartbeatTopic, eventHeartbeat, map[string]any{}, ch.client.nextRef())
			if err != nil {
				continue
			}
			if err := ch.write(conn, msg); err != nil {
				ch.client.log.Error("realtime: heartbeat failed", err, "topic", ch.topic)
				return
			}
		}
	}
}

func (ch *channel) write(conn *websocket.Conn, msg message) error {
	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

func (ch *channel) close() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return
	}
	ch.closed = true
	close(ch.done)

	if ch.conn != nil {
		if msg, err := encodeMessage(ch.topic, eventLeave, map[string]any{}, ch.client.nextRef()); err == nil {
			_ = ch.write(ch.conn, msg)
		}
		_ = ch.conn.Close()
		ch.conn = nil
	}
}
