package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/fdvky1/sureyummy-sub000/internal/event"
)

// Client maintains a best-effort connection to the push relay and fans
// received events out to subscribers.
type Client struct {
	cfg       Config
	url       string // Derived websocket URL; empty = disabled
	logger    *slog.Logger
	dialer    Dialer
	afterFunc AfterFunc

	// Connection state
	mu            sync.Mutex
	state         State
	conn          Conn
	connected     bool
	attempts      int
	shouldConnect bool
	timer         *reconnectTimer
	gen           uint64 // Bumped per dial and on Disconnect; stale callbacks compare against it
	cancelDial    context.CancelFunc

	subs subscribers

	// Stats
	received      atomic.Int64
	dispatched    atomic.Int64
	parseErrors   atomic.Int64
	handlerErrors atomic.Int64
}

// reconnectTimer identifies one scheduled reconnect. A fired callback only
// acts if it is still the client's current timer.
type reconnectTimer struct {
	t Timer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDialer replaces the websocket dialer.
func WithDialer(d Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithAfterFunc replaces the reconnect scheduler (fake clocks in tests).
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Client) {
		c.afterFunc = f
	}
}

// New creates a Client. It does not connect until Connect is called.
func New(cfg Config, opts ...Option) *Client {
	cfg.applyDefaults()

	c := &Client{
		cfg:       cfg,
		logger:    slog.Default(),
		dialer:    DefaultWebsocketDialer(),
		afterFunc: realAfterFunc,
		subs:      subscribers{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "realtime", "client_id", uuid.NewString())

	if cfg.URL == "" {
		c.logger.Info("realtime url not configured, polling only")
		return c
	}

	wsURL, err := WebSocketURL(cfg.URL)
	if err != nil {
		c.logger.Error("invalid realtime url, polling only", "url", cfg.URL, "error", err)
		return c
	}
	c.url = wsURL

	return c
}

// Enabled reports whether the client has a usable relay URL.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Connect declares the intent to be connected and starts a dial if none is in
// flight. It is safe to call repeatedly.
func (c *Client) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shouldConnect = true
	if c.url == "" {
		return
	}

	switch c.state {
	case StateConnecting, StateOpen:
		return
	case StateClosedPendingReconnect:
		c.stopTimerLocked()
	case StateClosedExhausted:
		c.attempts = 0
	}

	c.dialLocked()
}

// Disconnect drops the intent to be connected, cancels any scheduled or
// in-flight reconnect and closes the live connection.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.shouldConnect = false
	c.stopTimerLocked()
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	c.gen++

	conn := c.conn
	wasActive := c.state != StateIdle && c.state != StateDisconnected
	c.conn = nil
	c.connected = false
	c.attempts = 0
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			c.logger.Debug("close connection", "error", err)
		}
	}
	if wasActive {
		c.logger.Info("realtime disconnected")
	}
}

// Subscribe registers h for every future event and returns a function that
// removes exactly this registration.
func (c *Client) Subscribe(h Handler) (unsubscribe func()) {
	if h == nil {
		return func() {}
	}

	id := c.subs.add(h)
	var once sync.Once
	return func() {
		once.Do(func() {
			c.subs.remove(id)
		})
	}
}

// Status returns a snapshot of the connection.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		Connected:         c.connected,
		ReconnectAttempts: c.attempts,
		State:             c.state,
	}
}

// SubscriberCount returns the number of registered handlers.
func (c *Client) SubscriberCount() int {
	return c.subs.count()
}

// Stats returns cumulative dispatch counters.
func (c *Client) Stats() Stats {
	return Stats{
		Received:      c.received.Load(),
		Dispatched:    c.dispatched.Load(),
		ParseErrors:   c.parseErrors.Load(),
		HandlerErrors: c.handlerErrors.Load(),
	}
}

// dialLocked starts one connection attempt. Caller holds c.mu.
func (c *Client) dialLocked() {
	c.gen++
	gen := c.gen
	c.state = StateConnecting

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
	c.cancelDial = cancel

	go c.dial(ctx, cancel, gen)
}

func (c *Client) dial(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer cancel()

	conn, err := c.dialer.Dial(ctx, c.url)
	if err == nil && ctx.Err() != nil {
		// Dialer ignored the deadline; the attempt still counts as failed.
		conn.Close()
		conn, err = nil, ctx.Err()
	}
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("%w after %v: %v", ErrConnectTimeout, c.cfg.ConnectTimeout, err)
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	c.cancelDial = nil

	if err != nil {
		c.logger.Warn("realtime connect failed",
			"url", c.url,
			"attempt", c.attempts,
			"error", err,
		)
		c.handleDropLocked()
		c.mu.Unlock()
		return
	}

	c.conn = conn
	c.connected = true
	c.attempts = 0
	c.state = StateOpen
	c.mu.Unlock()

	c.logger.Info("realtime connected", "url", c.url)

	c.readLoop(conn, gen)
}

// readLoop delivers frames in transport order until the connection fails.
func (c *Client) readLoop(conn Conn, gen uint64) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if gen == c.gen {
				c.logger.Warn("realtime connection lost", "error", err)
				c.conn = nil
				c.handleDropLocked()
			}
			c.mu.Unlock()
			conn.Close()
			return
		}

		if !c.isCurrent(gen) {
			return
		}

		c.received.Add(1)
		c.dispatch(data)
	}
}

func (c *Client) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// handleDropLocked routes any transport failure to the reconnect path.
// Caller holds c.mu.
func (c *Client) handleDropLocked() {
	c.connected = false
	if !c.shouldConnect {
		c.state = StateDisconnected
		return
	}
	c.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms the single reconnect timer unless one is
// already pending or the attempt budget is spent. Caller holds c.mu.
func (c *Client) scheduleReconnectLocked() {
	if c.timer != nil {
		return
	}

	if c.attempts >= c.cfg.MaxReconnectAttempts {
		c.state = StateClosedExhausted
		c.logger.Warn("realtime reconnect attempts exhausted, polling only",
			"attempts", c.attempts,
			"max", c.cfg.MaxReconnectAttempts,
		)
		return
	}

	c.attempts++
	delay := c.cfg.Backoff.Next(c.attempts)
	c.state = StateClosedPendingReconnect

	rt := &reconnectTimer{}
	c.timer = rt
	rt.t = c.afterFunc(delay, func() {
		c.onReconnectTimer(rt)
	})

	c.logger.Info("realtime reconnect scheduled",
		"attempt", c.attempts,
		"max", c.cfg.MaxReconnectAttempts,
		"delay", delay,
	)
}

func (c *Client) onReconnectTimer(rt *reconnectTimer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != rt {
		return
	}
	c.timer = nil

	if !c.shouldConnect || c.url == "" {
		return
	}

	c.logger.Debug("realtime reconnecting", "attempt", c.attempts)
	c.dialLocked()
}

// stopTimerLocked cancels the pending reconnect. Caller holds c.mu.
func (c *Client) stopTimerLocked() {
	if c.timer == nil {
		return
	}
	if c.timer.t != nil {
		c.timer.t.Stop()
	}
	c.timer = nil
}

// dispatch decodes one frame and delivers it to every current subscriber.
func (c *Client) dispatch(data []byte) {
	evt, err := event.Decode(data)
	if err != nil {
		c.parseErrors.Add(1)
		c.logger.Warn("dropping malformed frame", "error", err, "size", len(data))
		return
	}

	if u, ok := evt.(event.Unknown); ok {
		c.logger.Debug("event payload failed validation", "type", u.Type(), "error", u.Err)
	}

	for _, h := range c.subs.snapshot() {
		c.deliver(h, evt)
	}
	c.dispatched.Add(1)
}

// deliver runs one handler, containing its errors and panics.
func (c *Client) deliver(h Handler, evt event.Event) {
	defer func() {
		if r := recover(); r != nil {
			c.handlerErrors.Add(1)
			c.logger.Error("subscriber panicked", "type", evt.Type(), "panic", r)
		}
	}()

	if err := h.HandleEvent(evt); err != nil {
		c.handlerErrors.Add(1)
		c.logger.Warn("subscriber failed", "type", evt.Type(), "error", err)
	}
}

// subscribers is the handler registry, kept in subscription order.
type subscribers struct {
	mu      sync.RWMutex
	next    uint64
	entries []subscription
}

type subscription struct {
	id uint64
	h  Handler
}

func (s *subscribers) add(h Handler) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.entries = append(s.entries, subscription{id: s.next, h: h})
	return s.next
}

func (s *subscribers) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = slices.DeleteFunc(s.entries, func(e subscription) bool { return e.id == id })
}

func (s *subscribers) snapshot() []Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Handler, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.h
	}
	return out
}

func (s *subscribers) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
