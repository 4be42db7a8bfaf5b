package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fdvky1/sureyummy-sub000/internal/model"
)

// fakeRows serves canned rows through the pgx.Rows interface.
type fakeRows struct {
	data   [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

// Scan assigns each value to the matching pointer; nil zeroes it.
func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(row[i])
		if target.Kind() == reflect.Pointer {
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(v)
			target.Set(p)
			continue
		}
		target.Set(v)
	}
	return nil
}

// fakeQuerier records the query and returns rows or err.
type fakeQuerier struct {
	rows *fakeRows
	err  error
	sql  string
	args []any
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql = sql
	q.args = args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

var (
	t1 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 = t1.Add(5 * time.Minute)
)

func orderRow(id, status string, created time.Time, itemID, menuName any, qty, price any) []any {
	var menuID any
	if itemID != nil {
		menuID = "m-" + itemID.(string)
	}
	return []any{
		id, "s-" + id, "A1", "Meja 1", status, int64(30000),
		"", created, created,
		itemID, menuID, menuName, qty, price, nil,
	}
}

func TestActiveOrders(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][]any{
		orderRow("o2", "PREPARING", t2, "i1", "Nasi Goreng", 2, int64(15000)),
		orderRow("o2", "PREPARING", t2, "i2", "Es Teh", 1, int64(5000)),
		orderRow("o1", "PENDING", t1, nil, nil, nil, nil),
	}}}

	orders, err := NewOrderStore(q).ActiveOrders(context.Background())
	if err != nil {
		t.Fatalf("ActiveOrders failed: %v", err)
	}

	if len(orders) != 2 {
		t.Fatalf("len(orders) = %d, want 2", len(orders))
	}

	o2 := orders[0]
	if o2.ID != "o2" || o2.Status != model.OrderPreparing {
		t.Errorf("orders[0] = %s/%s, want o2/PREPARING", o2.ID, o2.Status)
	}
	if len(o2.Items) != 2 {
		t.Fatalf("len(o2.Items) = %d, want 2", len(o2.Items))
	}
	if o2.Items[0].Name != "Nasi Goreng" || o2.Items[0].Quantity != 2 || o2.Items[0].Price != 15000 {
		t.Errorf("o2.Items[0] = %+v", o2.Items[0])
	}
	if o2.Items[1].MenuItemID != "m-i2" {
		t.Errorf("o2.Items[1].MenuItemID = %q, want m-i2", o2.Items[1].MenuItemID)
	}
	if o2.ItemCount() != 3 {
		t.Errorf("ItemCount() = %d, want 3", o2.ItemCount())
	}
	if !o2.UpdatedAt.Equal(t2) {
		t.Errorf("UpdatedAt = %v, want %v", o2.UpdatedAt, t2)
	}

	o1 := orders[1]
	if o1.ID != "o1" || o1.Items != nil {
		t.Errorf("orders[1] = %+v, want o1 without items", o1)
	}
	if o1.TableSlug != "A1" || o1.TableSessionID != "s-o1" {
		t.Errorf("o1 table = %s/%s", o1.TableSlug, o1.TableSessionID)
	}

	if !q.rows.closed {
		t.Error("rows should be closed")
	}
	statuses, ok := q.args[0].([]string)
	if !ok || !reflect.DeepEqual(statuses, []string{"PENDING", "PREPARING", "READY"}) {
		t.Errorf("status arg = %v, want active statuses", q.args[0])
	}
	if !strings.Contains(q.sql, `FROM "Order"`) {
		t.Errorf("query does not read orders: %s", q.sql)
	}
}

func TestActiveOrders_Errors(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("query", func(t *testing.T) {
		_, err := NewOrderStore(&fakeQuerier{err: boom}).ActiveOrders(context.Background())
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want %v", err, boom)
		}
	})

	t.Run("iteration", func(t *testing.T) {
		q := &fakeQuerier{rows: &fakeRows{err: boom}}
		_, err := NewOrderStore(q).ActiveOrders(context.Background())
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want %v", err, boom)
		}
	})

	t.Run("scan", func(t *testing.T) {
		q := &fakeQuerier{rows: &fakeRows{data: [][]any{{"only-one-column"}}}}
		if _, err := NewOrderStore(q).ActiveOrders(context.Background()); err == nil {
			t.Error("expected scan error")
		}
	})
}

func TestTables(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][]any{
		{"t1", "A1", "Meja 1", "OCCUPIED"},
		{"t2", "A2", "Meja 2", "AVAILABLE"},
	}}}

	tables, err := NewOrderStore(q).Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}

	want := []model.Table{
		{ID: "t1", Slug: "A1", Name: "Meja 1", Status: model.TableOccupied},
		{ID: "t2", Slug: "A2", Name: "Meja 2", Status: model.TableAvailable},
	}
	if !reflect.DeepEqual(tables, want) {
		t.Errorf("Tables() = %+v, want %+v", tables, want)
	}
}
