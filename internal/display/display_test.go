package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/fdvky1/sureyummy-sub000/internal/board"
	"github.com/fdvky1/sureyummy-sub000/internal/model"
	"github.com/fdvky1/sureyummy-sub000/internal/realtime"
)

func newTestRenderer(t *testing.T) (*Renderer, *bytes.Buffer) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	var buf bytes.Buffer
	r := New(&buf)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return r, &buf
}

func TestBadge(t *testing.T) {
	if got := Badge(realtime.Status{Connected: true}); got != "LIVE" {
		t.Errorf("Badge(connected) = %q, want LIVE", got)
	}
	if got := Badge(realtime.Status{}); got != "POLLING" {
		t.Errorf("Badge(disconnected) = %q, want POLLING", got)
	}
}

func TestStatus_PrintsOnModeChange(t *testing.T) {
	r, buf := newTestRenderer(t)

	r.Status(realtime.Status{})
	r.Status(realtime.Status{ReconnectAttempts: 1, State: realtime.StateClosedPendingReconnect})
	r.Status(realtime.Status{Connected: true, State: realtime.StateOpen})
	r.Status(realtime.Status{Connected: true, State: realtime.StateOpen})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q, want 2", lines)
	}
	if !strings.Contains(lines[0], "POLLING") {
		t.Errorf("line 0 = %q, want POLLING", lines[0])
	}
	if !strings.Contains(lines[1], "LIVE") {
		t.Errorf("line 1 = %q, want LIVE", lines[1])
	}
}

func TestChange(t *testing.T) {
	r, buf := newTestRenderer(t)

	r.Change(board.Change{
		Kind: board.Added,
		Order: model.Order{
			ID:        "ord-1234567890",
			TableName: "Meja 1",
			Status:    model.OrderPending,
			Items: []model.OrderItem{
				{Name: "Nasi Goreng", Quantity: 2},
				{Name: "Es Teh", Quantity: 1},
			},
		},
	})

	got := buf.String()
	for _, want := range []string{"10:00:00", "added", "ord-1234", "Meja 1", "PENDING", "2x Nasi Goreng, 1x Es Teh"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "ord-12345678") {
		t.Errorf("output %q should truncate the id", got)
	}
}

func TestChange_FallsBackToSlug(t *testing.T) {
	r, buf := newTestRenderer(t)

	r.Change(board.Change{Kind: board.Removed, Order: model.Order{ID: "o1", TableSlug: "A1", Status: model.OrderCompleted}})

	if got := buf.String(); !strings.Contains(got, "A1") || !strings.Contains(got, "removed") {
		t.Errorf("output = %q, want slug and removed", got)
	}
}
