package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fdvky1/sureyummy-sub000/internal/model"
)

// Querier is the subset of *pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OrderStore reads orders and tables.
type OrderStore struct {
	db Querier
}

// NewOrderStore creates an OrderStore over db.
func NewOrderStore(db Querier) *OrderStore {
	return &OrderStore{db: db}
}

// activeStatuses are the statuses a kitchen display shows.
var activeStatuses = []string{
	string(model.OrderPending),
	string(model.OrderPreparing),
	string(model.OrderReady),
}

const activeOrdersQuery = `
SELECT o.id, o."tableSessionId", t.slug, t.name, o.status::text, o."totalPrice",
       COALESCE(o.notes, ''), o."createdAt", o."updatedAt",
       oi.id, oi."menuItemId", m.name, oi.quantity, oi.price, oi.notes
FROM "Order" o
JOIN "TableSession" s ON s.id = o."tableSessionId"
JOIN "Table" t ON t.id = s."tableId"
LEFT JOIN "OrderItem" oi ON oi."orderId" = o.id
LEFT JOIN "MenuItem" m ON m.id = oi."menuItemId"
WHERE o.status::text = ANY($1)
ORDER BY o."createdAt" DESC, o.id, oi.id`

// ActiveOrders returns pending, preparing and ready orders, newest first,
// each with its items.
func (s *OrderStore) ActiveOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.Query(ctx, activeOrdersQuery, activeStatuses)
	if err != nil {
		return nil, fmt.Errorf("query active orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var (
			o       model.Order
			status  string
			itemID  *string
			menuID  *string
			name    *string
			qty     *int
			price   *int64
			notes   *string
			created time.Time
			updated time.Time
		)
		if err := rows.Scan(
			&o.ID, &o.TableSessionID, &o.TableSlug, &o.TableName, &status, &o.TotalPrice,
			&o.Notes, &created, &updated,
			&itemID, &menuID, &name, &qty, &price, &notes,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		// Rows arrive grouped by order; start a new one when the id changes.
		if n := len(orders); n == 0 || orders[n-1].ID != o.ID {
			o.Status = model.OrderStatus(status)
			o.CreatedAt = created
			o.UpdatedAt = updated
			orders = append(orders, o)
		}

		if itemID != nil {
			last := &orders[len(orders)-1]
			last.Items = append(last.Items, model.OrderItem{
				ID:         *itemID,
				MenuItemID: deref(menuID),
				Name:       deref(name),
				Quantity:   derefInt(qty),
				Price:      derefInt64(price),
				Notes:      deref(notes),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

const tablesQuery = `SELECT id, slug, name, status::text FROM "Table" ORDER BY name`

// Tables returns every table with its current status.
func (s *OrderStore) Tables(ctx context.Context) ([]model.Table, error) {
	rows, err := s.db.Query(ctx, tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []model.Table
	for rows.Next() {
		var (
			t      model.Table
			status string
		)
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &status); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		t.Status = model.TableStatus(status)
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table rows: %w", err)
	}

	return tables, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func derefInt64(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
