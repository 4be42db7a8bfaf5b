// Package display renders board changes and connection state to a terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/fdvky1/sureyummy-sub000/internal/board"
	"github.com/fdvky1/sureyummy-sub000/internal/model"
	"github.com/fdvky1/sureyummy-sub000/internal/realtime"
)

// Renderer writes one line per board change and per connection mode switch.
type Renderer struct {
	mu   sync.Mutex
	out  io.Writer
	mode string // Last printed badge
	now  func() time.Time
}

// New creates a Renderer writing to out (color.Output when nil).
func New(out io.Writer) *Renderer {
	if out == nil {
		out = color.Output
	}
	return &Renderer{out: out, now: time.Now}
}

var (
	liveBadge    = color.New(color.FgBlack, color.BgGreen).SprintFunc()
	pollingBadge = color.New(color.FgBlack, color.BgYellow).SprintFunc()
	removedStyle = color.New(color.Faint, color.CrossedOut).SprintFunc()
)

// Badge returns the connection badge a display shows for st.
func Badge(st realtime.Status) string {
	if st.Connected {
		return "LIVE"
	}
	return "POLLING"
}

// Status prints the badge when the connection mode changes.
func (r *Renderer) Status(st realtime.Status) {
	badge := Badge(st)

	r.mu.Lock()
	defer r.mu.Unlock()
	if badge == r.mode {
		return
	}
	r.mode = badge

	styled := liveBadge(" " + badge + " ")
	detail := ""
	if !st.Connected {
		styled = pollingBadge(" " + badge + " ")
		if st.ReconnectAttempts > 0 {
			detail = fmt.Sprintf(" reconnect attempt %d (%s)", st.ReconnectAttempts, st.State)
		}
	}
	fmt.Fprintf(r.out, "%s %s%s\n", r.stamp(), styled, detail)
}

// Change prints one board change.
func (r *Renderer) Change(c board.Change) {
	o := c.Order
	table := o.TableName
	if table == "" {
		table = o.TableSlug
	}

	line := fmt.Sprintf("%-8s %-10s %-12s %s", shortID(o.ID), table, o.Status, items(o))
	switch c.Kind {
	case board.Removed:
		line = removedStyle(line)
	default:
		line = statusColor(o.Status).Sprint(line)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %-7s %s\n", r.stamp(), c.Kind, line)
}

func (r *Renderer) stamp() string {
	return color.HiBlackString(r.now().Format("15:04:05"))
}

func statusColor(s model.OrderStatus) *color.Color {
	switch s {
	case model.OrderPending:
		return color.New(color.FgYellow)
	case model.OrderPreparing:
		return color.New(color.FgCyan)
	case model.OrderReady:
		return color.New(color.FgGreen, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func items(o model.Order) string {
	if len(o.Items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
	}
	return strings.Join(parts, ", ")
}
