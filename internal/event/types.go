package event

import (
	"encoding/json"
	"errors"

	"github.com/fdvky1/sureyummy-sub000/internal/model"
)

// Event types understood by the displays.
const (
	TypeOrderNew       = "order.new"
	TypeOrderStatus    = "order.status"
	TypeOrderCompleted = "order.completed"
)

// Errors
var (
	ErrMalformed      = errors.New("malformed frame")
	ErrMissingType    = errors.New("frame has no type")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Envelope is the wire shape shared by the gateway, the relay and the client.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is one decoded notification. The concrete type is one of OrderNew,
// OrderStatus, OrderCompleted, Notification or Unknown.
type Event interface {
	// Type returns the wire type tag.
	Type() string

	// Envelope returns the envelope the event was decoded from.
	Envelope() Envelope
}

// OrderNew announces a freshly placed order.
type OrderNew struct {
	Order  model.Order
	Tables []model.Table // Updated table list, nil if the sender omitted it
	env    Envelope
}

func (e OrderNew) Type() string       { return TypeOrderNew }
func (e OrderNew) Envelope() Envelope { return e.env }

// OrderStatus carries the full order after a status change.
type OrderStatus struct {
	Order  model.Order
	Tables []model.Table
	env    Envelope
}

func (e OrderStatus) Type() string       { return TypeOrderStatus }
func (e OrderStatus) Envelope() Envelope { return e.env }

// OrderCompleted announces that an order (and possibly its session) is closed.
type OrderCompleted struct {
	Completion model.Completion
	Tables     []model.Table
	env        Envelope
}

func (e OrderCompleted) Type() string       { return TypeOrderCompleted }
func (e OrderCompleted) Envelope() Envelope { return e.env }

// Notification is a free-form event type; Data is left for the consumer.
type Notification struct {
	Kind string
	Data json.RawMessage
}

func (e Notification) Type() string       { return e.Kind }
func (e Notification) Envelope() Envelope { return Envelope{Type: e.Kind, Data: e.Data} }

// Unknown is a known event type whose payload could not be validated.
type Unknown struct {
	Raw Envelope
	Err error
}

func (e Unknown) Type() string       { return e.Raw.Type }
func (e Unknown) Envelope() Envelope { return e.Raw }

// OrderPayload is the data shape of order.new and order.status.
type OrderPayload struct {
	model.Order
	Tables []model.Table `json:"tables,omitempty"`
}

// CompletionPayload is the data shape of order.completed.
type CompletionPayload struct {
	model.Completion
	Tables []model.Table `json:"tables,omitempty"`
}
