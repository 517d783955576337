package realtime

import (
	"encoding/json"

	"github.com/smartodo/go-profilesync/pkg/types"
)

// Phoenix protocol events the client speaks.
const (
	eventJoin            = "phx_join"
	eventLeave           = "phx_leave"
	eventReply           = "phx_reply"
	eventError           = "phx_error"
	eventClose           = "phx_close"
	eventHeartbeat       = "heartbeat"
	eventPostgresChanges = "postgres_changes"
)

// heartbeatTopic is the reserved topic keeping the socket alive.
const heartbeatTopic = "phoenix"

// message is the Phoenix wire envelope. Every frame in both directions uses
// this shape.
type message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
	JoinRef string          `json:"join_ref,omitempty"`
}

// joinPayload is the phx_join body scoping a channel to table changes.
type joinPayload struct {
	Config      channelConfig `json:"config"`
	AccessToken string        `json:"access_token,omitempty"`
}

type channelConfig struct {
	PostgresChanges []postgresChange `json:"postgres_changes"`
}

type postgresChange struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

func postgresChangeFromFilter(f types.ChangeFilter) postgresChange {
	return postgresChange{
		Event:  f.Event,
		Schema: f.Schema,
		Table:  f.Table,
		Filter: f.Filter,
	}
}

// changePayload is the body of a postgres_changes frame. Only data matters to
// subscribers; ids and server bookkeeping are ignored.
type changePayload struct {
	Data changeData `json:"data"`
}

type changeData struct {
	Type      string          `json:"type"`
	Record    json.RawMessage `json:"record"`
	OldRecord json.RawMessage `json:"old_record"`
}

func (d changeData) event() types.ChangeEvent {
	return types.ChangeEvent{
		Type: d.Type,
		New:  d.Record,
		Old:  d.OldRecord,
	}
}

func encodeMessage(topic, event string, payload any, ref string) (message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return message{}, err
	}
	return message{Topic: topic, Event: event, Payload: raw, Ref: ref}, nil
}

func decodeChange(payload json.RawMessage) (types.ChangeEvent, error) {
	var body changePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return types.ChangeEvent{}, err
	}
	return body.Data.event(), nil
}
