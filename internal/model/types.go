package model

import "time"

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

// OrderStatus is the lifecycle position of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// IsActive reports whether the order still belongs on a kitchen display.
func (s OrderStatus) IsActive() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady:
		return true
	}
	return false
}

// Order is a customer order placed against a table session.
type Order struct {
	ID             string      `json:"id"`
	TableSessionID string      `json:"tableSessionId,omitempty"`
	TableSlug      string      `json:"tableSlug,omitempty"`
	TableName      string      `json:"tableName,omitempty"`
	Status         OrderStatus `json:"status"`
	Items          []OrderItem `json:"items,omitempty"`
	TotalPrice     int64       `json:"totalPrice"`
	Notes          string      `json:"notes,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// OrderItem is one menu line of an order.
type OrderItem struct {
	ID         string `json:"id"`
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Price      int64  `json:"price"` // Unit price at time of ordering
	Notes      string `json:"notes,omitempty"`
}

// ItemCount returns the total quantity across all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Completion is the payload of an order.completed event.
type Completion struct {
	SessionID string `json:"sessionId,omitempty"`
	OrderID   string `json:"orderId"`
}

// -----------------------------------------------------------------------------
// Tables
// -----------------------------------------------------------------------------

// TableStatus is the occupancy state of a dining table.
type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
	TableCleaning  TableStatus = "CLEANING"
)

// Table is a dining table addressable by its QR slug.
type Table struct {
	ID     string      `json:"id"`
	Slug   string      `json:"slug"`
	Name   string      `json:"name"`
	Status TableStatus `json:"status"`
}
