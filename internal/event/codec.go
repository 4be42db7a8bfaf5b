package event

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode parses a frame into an Event, unwrapping at most one relay envelope.
//
// Parse failures return an error wrapping ErrMalformed. A frame without a type
// (after unwrapping) returns ErrMissingType. Payload validation failures do not
// return an error; they yield Unknown.
func Decode(frame []byte) (Event, error) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(frame, &outer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if outer == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}

	env, err := envelopeOf(outer)
	if err != nil {
		return nil, err
	}

	if inner, ok := unwrap(env, outer); ok {
		env = inner
	}

	if env.Type == "" {
		return nil, ErrMissingType
	}

	return parse(env), nil
}

// Encode builds a single-wrapped frame.
func Encode(eventType string, data any) ([]byte, error) {
	if eventType == "" {
		return nil, ErrMissingType
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		Data any    `json:"data,omitempty"`
	}{eventType, data})
}

func envelopeOf(obj map[string]json.RawMessage) (Envelope, error) {
	var env Envelope
	if raw, ok := obj["type"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &env.Type); err != nil {
			return Envelope{}, fmt.Errorf("%w: type: %v", ErrMalformed, err)
		}
	}
	if raw, ok := obj["data"]; ok && !isNull(raw) {
		env.Data = raw
	}
	return env, nil
}

// unwrap returns the inner envelope when the outer data object is itself an
// event: it carries a type and either the outer frame has none or the inner
// object has its own data field. An inner object without data becomes its own
// payload so relay-flattened fields stay visible.
func unwrap(outer Envelope, outerObj map[string]json.RawMessage) (Envelope, bool) {
	trimmed := bytes.TrimSpace(outer.Data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Envelope{}, false
	}

	var innerObj map[string]json.RawMessage
	if err := json.Unmarshal(outer.Data, &innerObj); err != nil {
		return Envelope{}, false
	}

	inner, err := envelopeOf(innerObj)
	if err != nil || inner.Type == "" {
		return Envelope{}, false
	}

	_, hasData := innerObj["data"]
	if outer.Type != "" && !hasData {
		return Envelope{}, false
	}
	if !hasData {
		inner.Data = outer.Data
	}
	return inner, true
}

func parse(env Envelope) Event {
	switch env.Type {
	case TypeOrderNew, TypeOrderStatus:
		var p OrderPayload
		if err := unmarshalData(env.Data, &p); err != nil {
			return Unknown{Raw: env, Err: err}
		}
		if p.ID == "" {
			return Unknown{Raw: env, Err: fmt.Errorf("%w: order id missing", ErrInvalidPayload)}
		}
		if env.Type == TypeOrderNew {
			return OrderNew{Order: p.Order, Tables: p.Tables, env: env}
		}
		return OrderStatus{Order: p.Order, Tables: p.Tables, env: env}

	case TypeOrderCompleted:
		var p CompletionPayload
		if err := unmarshalData(env.Data, &p); err != nil {
			return Unknown{Raw: env, Err: err}
		}
		if p.OrderID == "" {
			return Unknown{Raw: env, Err: fmt.Errorf("%w: orderId missing", ErrInvalidPayload)}
		}
		return OrderCompleted{Completion: p.Completion, Tables: p.Tables, env: env}

	default:
		return Notification{Kind: env.Type, Data: env.Data}
	}
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: data missing", ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
