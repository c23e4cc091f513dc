package bus

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

var ErrMalformedMessage = errors.New("malformed-bus-message")

// Message is a single event or command travelling through a Fabric.
// Target restricts delivery to one connection, Exclude skips one.
type Message struct {
	Event   string
	Target  string
	Exclude string
	Payload []byte
}

// field numbers of the wire envelope
const (
	fieldEvent   protowire.Number = 1
	fieldTarget  protowire.Number = 2
	fieldExclude protowire.Number = 3
	fieldPayload protowire.Number = 4
)

// Marshal encodes the message as a protobuf-compatible envelope.
func (m Message) Marshal() []byte {
	b := make([]byte, 0, len(m.Event)+len(m.Target)+len(m.Exclude)+len(m.Payload)+16)
	b = appendField(b, fieldEvent, []byte(m.Event))
	b = appendField(b, fieldTarget, []byte(m.Target))
	b = appendField(b, fieldExclude, []byte(m.Exclude))
	b = appendField(b, fieldPayload, m.Payload)
	return b
}

func appendField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// Unmarshal decodes an envelope produced by Marshal. Unknown fields are skipped
// so that older workers keep working next to newer ones.
func Unmarshal(data []byte) (Message, error) {
	var m Message

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Message{}, ErrMalformedMessage
		}
		data = data[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Message{}, ErrMalformedMessage
			}
			data = data[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return Message{}, ErrMalformedMessage
		}
		data = data[n:]

		switch num {
		case fieldEvent:
			m.Event = string(v)
		case fieldTarget:
			m.Target = string(v)
		case fieldExclude:
			m.Exclude = string(v)
		case fieldPayload:
			m.Payload = append([]byte(nil), v...)
		}
	}

	if m.Event == "" {
		return Message{}, ErrMalformedMessage
	}
	return m, nil
}
