// Package board keeps the set of active orders a display shows.
//
// Updates arrive from two unordered paths, the push channel and the poller,
// so every write is last-write-wins on the order's UpdatedAt.
package board

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fdvky1/sureyummy-sub000/internal/event"
	"github.com/fdvky1/sureyummy-sub000/internal/model"
	"github.com/fdvky1/sureyummy-sub000/internal/poller"
	"github.com/fdvky1/sureyummy-sub000/internal/realtime"
)

// ChangeKind describes what happened to an order on the board.
type ChangeKind int

const (
	Added ChangeKind = iota
	Updated
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one board mutation, reported to the OnChange callback.
type Change struct {
	Kind  ChangeKind
	Order model.Order
}

// removedTTL is how long a removal shadows snapshots fetched before it.
const removedTTL = 5 * time.Minute

// Board is a concurrency-safe last-write-wins order set.
type Board struct {
	mu      sync.RWMutex
	orders  map[string]model.Order
	tables  map[string]model.Table // By slug
	removed map[string]time.Time   // Recently removed ids and when
	now     func() time.Time

	onChange func(Change)
	logger   *slog.Logger
}

var (
	_ realtime.Handler       = (*Board)(nil)
	_ poller.SnapshotHandler = (*Board)(nil)
)

// New creates an empty board. onChange, if non-nil, is called after every
// mutation without the board lock held.
func New(onChange func(Change), logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		orders:   make(map[string]model.Order),
		tables:   make(map[string]model.Table),
		removed:  make(map[string]time.Time),
		now:      time.Now,
		onChange: onChange,
		logger:   logger.With("component", "board"),
	}
}

// HandleEvent applies a push event.
func (b *Board) HandleEvent(evt event.Event) error {
	switch e := evt.(type) {
	case event.OrderNew:
		b.Upsert(e.Order)
		b.setTables(e.Tables)
	case event.OrderStatus:
		b.Upsert(e.Order)
		b.setTables(e.Tables)
	case event.OrderCompleted:
		b.Remove(e.Completion.OrderID)
		b.setTables(e.Tables)
	case event.Unknown:
		b.logger.Debug("ignoring invalid event", "type", e.Type(), "error", e.Err)
	default:
		b.logger.Debug("ignoring event", "type", evt.Type())
	}
	return nil
}

// HandleSnapshot reconciles against a poll result.
func (b *Board) HandleSnapshot(s poller.Snapshot) error {
	b.ReplaceActive(s.Orders, s.FetchedAt)
	b.replaceTables(s.Tables)
	return nil
}

// Upsert stores o unless the board already holds a newer version. Orders
// that are no longer active are removed.
func (b *Board) Upsert(o model.Order) {
	b.upsert(o, time.Time{})
}

// upsert applies o. A non-zero fetchedAt marks o as coming from a snapshot,
// which loses to any removal recorded after the fetch.
func (b *Board) upsert(o model.Order, fetchedAt time.Time) {
	if o.ID == "" {
		return
	}

	b.mu.Lock()
	if !fetchedAt.IsZero() {
		if at, ok := b.removed[o.ID]; ok && fetchedAt.Before(at) {
			b.mu.Unlock()
			b.logger.Debug("ignoring snapshot order removed after fetch", "order_id", o.ID)
			return
		}
	}

	cur, exists := b.orders[o.ID]
	if exists && o.UpdatedAt.Before(cur.UpdatedAt) {
		b.mu.Unlock()
		return
	}

	var change Change
	switch {
	case !o.Status.IsActive():
		b.removed[o.ID] = b.now()
		if !exists {
			b.mu.Unlock()
			return
		}
		delete(b.orders, o.ID)
		change = Change{Kind: Removed, Order: o}
	case exists:
		b.orders[o.ID] = o
		delete(b.removed, o.ID)
		change = Change{Kind: Updated, Order: o}
	default:
		b.orders[o.ID] = o
		delete(b.removed, o.ID)
		change = Change{Kind: Added, Order: o}
	}
	b.mu.Unlock()

	b.notify(change)
}

// Remove drops an order by id. The removal is remembered for a while so an
// older snapshot cannot bring the order back.
func (b *Board) Remove(id string) {
	b.mu.Lock()
	o, ok := b.orders[id]
	if ok {
		delete(b.orders, id)
	}
	b.removed[id] = b.now()
	b.mu.Unlock()

	if ok {
		b.notify(Change{Kind: Removed, Order: o})
	}
}

// ReplaceActive reconciles the board with a full snapshot fetched at
// fetchedAt. Orders missing from it are removed unless they changed after the
// fetch; the rest are upserted last-write-wins. A zero fetchedAt trusts the
// snapshot completely.
func (b *Board) ReplaceActive(snapshot []model.Order, fetchedAt time.Time) {
	seen := make(map[string]bool, len(snapshot))
	for _, o := range snapshot {
		seen[o.ID] = true
	}

	b.mu.Lock()
	b.pruneRemovedLocked()
	var stale []string
	for id, o := range b.orders {
		if seen[id] {
			continue
		}
		if !fetchedAt.IsZero() && o.UpdatedAt.After(fetchedAt) {
			continue
		}
		stale = append(stale, id)
	}
	b.mu.Unlock()

	for _, id := range stale {
		b.Remove(id)
	}
	for _, o := range snapshot {
		b.upsert(o, fetchedAt)
	}
}

func (b *Board) pruneRemovedLocked() {
	cutoff := b.now().Add(-removedTTL)
	for id, at := range b.removed {
		if at.Before(cutoff) {
			delete(b.removed, id)
		}
	}
}

// Get returns one order.
func (b *Board) Get(id string) (model.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.orders[id]
	return o, ok
}

// Orders returns the active orders, oldest first.
func (b *Board) Orders() []model.Order {
	b.mu.RLock()
	out := make([]model.Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of active orders.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}

// Table returns the last known state of a table by slug.
func (b *Board) Table(slug string) (model.Table, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tables[slug]
	return t, ok
}

// setTables merges tables carried on an event. Events may omit them.
func (b *Board) setTables(tables []model.Table) {
	if len(tables) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range tables {
		b.tables[t.Slug] = t
	}
}

func (b *Board) replaceTables(tables []model.Table) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tables = make(map[string]model.Table, len(tables))
	for _, t := range tables {
		b.tables[t.Slug] = t
	}
}

func (b *Board) notify(c Change) {
	if b.onChange != nil {
		b.onChange(c)
	}
}
