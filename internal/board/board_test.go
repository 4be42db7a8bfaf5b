package board

import (
	"sync"
	"testing"
	"time"

	"github.com/fdvky1/sureyummy-sub000/internal/event"
	"github.com/fdvky1/sureyummy-sub000/internal/model"
	"github.com/fdvky1/sureyummy-sub000/internal/poller"
)

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func order(id string, status model.OrderStatus, updated time.Duration) model.Order {
	return model.Order{
		ID:        id,
		Status:    status,
		CreatedAt: base,
		UpdatedAt: base.Add(updated),
	}
}

// changeLog records board changes.
type changeLog struct {
	mu      sync.Mutex
	changes []Change
}

func (l *changeLog) record(c Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, c)
}

func (l *changeLog) kinds() []ChangeKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ChangeKind, len(l.changes))
	for i, c := range l.changes {
		out[i] = c.Kind
	}
	return out
}

func TestUpsert_LastWriteWins(t *testing.T) {
	log := &changeLog{}
	b := New(log.record, nil)

	b.Upsert(order("o1", model.OrderPending, 0))
	b.Upsert(order("o1", model.OrderReady, 2*time.Minute))
	// A stale poll result arrives after the push update.
	b.Upsert(order("o1", model.OrderPreparing, time.Minute))

	got, ok := b.Get("o1")
	if !ok {
		t.Fatal("o1 missing from board")
	}
	if got.Status != model.OrderReady {
		t.Errorf("Status = %s, want READY", got.Status)
	}

	want := []ChangeKind{Added, Updated}
	if kinds := log.kinds(); len(kinds) != len(want) || kinds[0] != want[0] || kinds[1] != want[1] {
		t.Errorf("changes = %v, want %v", kinds, want)
	}
}

func TestUpsert_SameTimestampIsIdempotent(t *testing.T) {
	b := New(nil, nil)
	o := order("o1", model.OrderPending, 0)

	b.Upsert(o)
	b.Upsert(o)

	if n := b.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

func TestUpsert_InactiveRemoves(t *testing.T) {
	log := &changeLog{}
	b := New(log.record, nil)

	b.Upsert(order("o1", model.OrderReady, 0))
	b.Upsert(order("o1", model.OrderCompleted, time.Minute))
	b.Upsert(order("o2", model.OrderCancelled, 0)) // Never shown

	if n := b.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
	if kinds := log.kinds(); len(kinds) != 2 || kinds[1] != Removed {
		t.Errorf("changes = %v, want [added removed]", kinds)
	}
}

func TestHandleEvent(t *testing.T) {
	b := New(nil, nil)

	frames := []string{
		`{"type":"order.new","data":{"id":"o1","status":"PENDING","updatedAt":"2024-05-01T10:00:00Z","tables":[{"id":"t1","slug":"A1","name":"Meja 1","status":"OCCUPIED"}]}}`,
		`{"data":{"type":"order.status","data":{"id":"o1","status":"READY","updatedAt":"2024-05-01T10:05:00Z"}}}`,
		`{"type":"order.new","data":{"id":"o2","status":"PENDING","updatedAt":"2024-05-01T10:06:00Z"}}`,
		`{"data":{"type":"order.completed","data":{"orderId":"o2"}}}`,
		`{"type":"order.new","data":{"orderId":"bad"}}`,
		`{"type":"menu.updated","data":{}}`,
	}

	for _, f := range frames {
		evt, err := event.Decode([]byte(f))
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", f, err)
		}
		if err := b.HandleEvent(evt); err != nil {
			t.Errorf("HandleEvent() error = %v", err)
		}
	}

	if n := b.Len(); n != 1 {
		t.Fatalf("Len() = %d, want 1", n)
	}
	o1, _ := b.Get("o1")
	if o1.Status != model.OrderReady {
		t.Errorf("o1.Status = %s, want READY", o1.Status)
	}
	if tbl, ok := b.Table("A1"); !ok || tbl.Status != model.TableOccupied {
		t.Errorf("Table(A1) = %+v, %v, want occupied", tbl, ok)
	}
}

func TestHandleSnapshot(t *testing.T) {
	log := &changeLog{}
	b := New(log.record, nil)

	b.Upsert(order("o1", model.OrderPending, 0))
	b.Upsert(order("gone", model.OrderPending, 0))

	err := b.HandleSnapshot(poller.Snapshot{
		Orders: []model.Order{
			order("o1", model.OrderPreparing, time.Minute),
			order("o3", model.OrderPending, 0),
		},
		Tables: []model.Table{{ID: "t2", Slug: "B2", Status: model.TableAvailable}},
	})
	if err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}

	orders := b.Orders()
	if len(orders) != 2 || orders[0].ID != "o1" || orders[1].ID != "o3" {
		t.Fatalf("Orders() = %+v, want o1, o3", orders)
	}
	if orders[0].Status != model.OrderPreparing {
		t.Errorf("o1.Status = %s, want PREPARING", orders[0].Status)
	}
	if _, ok := b.Get("gone"); ok {
		t.Error("order missing from snapshot should be removed")
	}
	if _, ok := b.Table("B2"); !ok {
		t.Error("snapshot tables should be stored")
	}
}

func decodeInto(t *testing.T, b *Board, frame string) {
	t.Helper()
	evt, err := event.Decode([]byte(frame))
	if err != nil {
		t.Fatalf("Decode(%s) failed: %v", frame, err)
	}
	if err := b.HandleEvent(evt); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
}

func TestHandleSnapshot_KeepsOrdersChangedAfterFetch(t *testing.T) {
	b := New(nil, nil)
	fetched := base.Add(time.Minute)

	b.Upsert(order("old", model.OrderPending, 0))
	decodeInto(t, b, `{"type":"order.new","data":{"id":"x","status":"PENDING","updatedAt":"2024-05-01T10:01:01Z"}}`)

	if err := b.HandleSnapshot(poller.Snapshot{FetchedAt: fetched}); err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}

	if _, ok := b.Get("x"); !ok {
		t.Error("order updated after the fetch should survive the snapshot")
	}
	if _, ok := b.Get("old"); ok {
		t.Error("order last updated before the fetch should be removed")
	}
}

func TestHandleSnapshot_DoesNotResurrectRemoved(t *testing.T) {
	log := &changeLog{}
	b := New(log.record, nil)
	now := base.Add(10 * time.Minute)
	b.now = func() time.Time { return now }

	b.Upsert(order("y", model.OrderPending, 0))
	decodeInto(t, b, `{"data":{"type":"order.completed","data":{"orderId":"y"}}}`)

	err := b.HandleSnapshot(poller.Snapshot{
		Orders:    []model.Order{order("y", model.OrderPending, 0)},
		FetchedAt: now.Add(-time.Second),
	})
	if err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}
	if _, ok := b.Get("y"); ok {
		t.Fatal("snapshot fetched before completion brought the order back")
	}

	kinds := log.kinds()
	if len(kinds) != 2 || kinds[0] != Added || kinds[1] != Removed {
		t.Errorf("changes = %v, want [added removed]", kinds)
	}

	// A fetch taken after the removal is authoritative.
	err = b.HandleSnapshot(poller.Snapshot{
		Orders:    []model.Order{order("y", model.OrderPending, time.Minute)},
		FetchedAt: now.Add(time.Second),
	})
	if err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}
	if _, ok := b.Get("y"); !ok {
		t.Error("snapshot fetched after the removal should add the order")
	}
}

func TestHandleSnapshot_CompletionForUnseenOrder(t *testing.T) {
	b := New(nil, nil)
	now := base.Add(10 * time.Minute)
	b.now = func() time.Time { return now }

	decodeInto(t, b, `{"type":"order.completed","data":{"orderId":"z"}}`)

	b.ReplaceActive([]model.Order{order("z", model.OrderReady, 0)}, now.Add(-time.Second))
	if _, ok := b.Get("z"); ok {
		t.Error("order completed after the fetch should not be added")
	}
}

func TestReplaceActive_ForgetsOldRemovals(t *testing.T) {
	b := New(nil, nil)
	now := base
	b.now = func() time.Time { return now }

	b.Remove("a")
	now = now.Add(removedTTL + time.Second)
	b.ReplaceActive(nil, now)

	b.mu.RLock()
	n := len(b.removed)
	b.mu.RUnlock()
	if n != 0 {
		t.Errorf("len(removed) = %d, want 0", n)
	}
}

func TestOrders_SortedOldestFirst(t *testing.T) {
	b := New(nil, nil)

	late := order("late", model.OrderPending, 0)
	late.CreatedAt = base.Add(time.Hour)
	b.Upsert(late)
	b.Upsert(order("b", model.OrderPending, 0))
	b.Upsert(order("a", model.OrderPending, 0))

	orders := b.Orders()
	ids := []string{orders[0].ID, orders[1].ID, orders[2].ID}
	if ids[0] != "a" || ids[1] != "b" || ids[2] != "late" {
		t.Errorf("order ids = %v, want [a b late]", ids)
	}
}

func TestChangeKindString(t *testing.T) {
	tests := []struct {
		kind ChangeKind
		want string
	}{
		{Added, "added"},
		{Updated, "updated"},
		{Removed, "removed"},
		{ChangeKind(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ChangeKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
