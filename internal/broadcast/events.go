package broadcast

import (
	"context"

	"github.com/fdvky1/sureyummy-sub000/internal/event"
	"github.com/fdvky1/sureyummy-sub000/internal/model"
)

// DefaultMessage returns the human-readable message sent with an event type.
func DefaultMessage(eventType string) string {
	switch eventType {
	case event.TypeOrderNew:
		return "New order received"
	case event.TypeOrderStatus:
		return "Order status updated"
	case event.TypeOrderCompleted:
		return "Order completed"
	default:
		return "Notification"
	}
}

// Notifier is what order workflows call after a mutation commits.
type Notifier interface {
	NewOrder(ctx context.Context, order model.Order, tables []model.Table) Result
	OrderStatus(ctx context.Context, order model.Order, tables []model.Table) Result
	OrderCompleted(ctx context.Context, sessionID, orderID string, tables []model.Table) Result
}

var (
	_ Notifier = (*Gateway)(nil)
	_ Notifier = Nop{}
)

// NewOrder broadcasts order.new with the full order under data.
func (g *Gateway) NewOrder(ctx context.Context, order model.Order, tables []model.Table) Result {
	return g.Broadcast(ctx, event.TypeOrderNew, map[string]any{
		"orderId":   order.ID,
		"tableSlug": order.TableSlug,
		"data":      event.OrderPayload{Order: order, Tables: tables},
	})
}

// OrderStatus broadcasts order.status with the full order under data.
func (g *Gateway) OrderStatus(ctx context.Context, order model.Order, tables []model.Table) Result {
	return g.Broadcast(ctx, event.TypeOrderStatus, map[string]any{
		"orderId": order.ID,
		"status":  order.Status,
		"data":    event.OrderPayload{Order: order, Tables: tables},
	})
}

// OrderCompleted broadcasts order.completed for an order and its session.
func (g *Gateway) OrderCompleted(ctx context.Context, sessionID, orderID string, tables []model.Table) Result {
	return g.Broadcast(ctx, event.TypeOrderCompleted, map[string]any{
		"orderId": orderID,
		"data": event.CompletionPayload{
			Completion: model.Completion{SessionID: sessionID, OrderID: orderID},
			Tables:     tables,
		},
	})
}

// Nop discards notifications. Used when no relay is configured.
type Nop struct{}

func (Nop) NewOrder(context.Context, model.Order, []model.Table) Result {
	return Result{Success: true}
}

func (Nop) OrderStatus(context.Context, model.Order, []model.Table) Result {
	return Result{Success: true}
}

func (Nop) OrderCompleted(context.Context, string, string, []model.Table) Result {
	return Result{Success: true}
}
