package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oxjadex/catchme--catchyou/bus"
)

func EventsTopic(room string) string   { return "room:" + room + ":events" }
func CommandsTopic(room string) string { return "room:" + room + ":commands" }

// Fanout emits room events on the shared fabric. Every gateway subscribed to the
// room delivers them to its local connections, so an event reaches every client
// no matter which worker emitted it.
type Fanout struct {
	fabric bus.Fabric
	room   string
}

func NewFanout(fabric bus.Fabric, room string) *Fanout {
	return &Fanout{fabric: fabric, room: room}
}

// EmitAll delivers to every connected client, the sender included.
func (f *Fanout) EmitAll(ctx context.Context, event string, payload any) error {
	return f.publish(ctx, EventsTopic(f.room), bus.Message{Event: event}, payload)
}

// EmitOthers delivers to every connected client except excludeID.
func (f *Fanout) EmitOthers(ctx context.Context, event string, payload any, excludeID string) error {
	return f.publish(ctx, EventsTopic(f.room), bus.Message{Event: event, Exclude: excludeID}, payload)
}

// EmitTo delivers to a single connection only.
func (f *Fanout) EmitTo(ctx context.Context, event string, payload any, targetID string) error {
	return f.publish(ctx, EventsTopic(f.room), bus.Message{Event: event, Target: targetID}, payload)
}

// SendCommand forwards a connection event to the room owner.
func (f *Fanout) SendCommand(ctx context.Context, command, connID string, payload any) error {
	return f.publish(ctx, CommandsTopic(f.room), bus.Message{Event: command, Target: connID}, payload)
}

func (f *Fanout) publish(ctx context.Context, topic string, msg bus.Message, payload any) error {
	data, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", msg.Event, err)
	}
	msg.Payload = data
	return f.fabric.Publish(ctx, topic, msg)
}

func encodePayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		// relayed verbatim
		return p, nil
	default:
		return json.Marshal(p)
	}
}
