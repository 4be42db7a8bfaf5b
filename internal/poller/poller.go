package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fdvky1/sureyummy-sub000/internal/model"
	"github.com/fdvky1/sureyummy-sub000/internal/realtime"
)

// StatusSource reports the push connection state.
type StatusSource interface {
	Status() realtime.Status
}

// OrderSource provides the authoritative order state.
type OrderSource interface {
	ActiveOrders(ctx context.Context) ([]model.Order, error)
	Tables(ctx context.Context) ([]model.Table, error)
}

// Snapshot is one poll result.
type Snapshot struct {
	Orders    []model.Order
	Tables    []model.Table
	FetchedAt time.Time
}

// SnapshotHandler receives fetched snapshots.
type SnapshotHandler interface {
	HandleSnapshot(snapshot Snapshot) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(Snapshot) error

func (f SnapshotHandlerFunc) HandleSnapshot(s Snapshot) error {
	return f(s)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 5s)
	Timeout  time.Duration // Per-fetch timeout (default: 4s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Second,
		Timeout:  4 * time.Second,
	}
}

// Stats are cumulative poll counters.
type Stats struct {
	Polls   int64 // Fetches attempted
	Skipped int64 // Ticks skipped because the push channel was up
	Errors  int64 // Failed fetches or handler errors
}

// Poller fetches order snapshots while the push channel is down.
type Poller struct {
	cfg     Config
	status  StatusSource
	source  OrderSource
	handler SnapshotHandler
	logger  *slog.Logger

	wasConnected bool

	polls   atomic.Int64
	skipped atomic.Int64
	errors  atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, status StatusSource, source OrderSource, handler SnapshotHandler, logger *slog.Logger) *Poller {
	d := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = d.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:     cfg,
		status:  status,
		source:  source,
		handler: handler,
		logger:  logger.With("component", "poller"),
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started", "interval", p.cfg.Interval)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns cumulative counters.
func (p *Poller) Stats() Stats {
	return Stats{
		Polls:   p.polls.Load(),
		Skipped: p.skipped.Load(),
		Errors:  p.errors.Load(),
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Load the board immediately on start.
	p.poll(p.ctx)
	p.wasConnected = p.status.Status().Connected

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.tick(p.ctx)
		}
	}
}

// tick polls when disconnected, or once right after a reconnect.
func (p *Poller) tick(ctx context.Context) {
	connected := p.status.Status().Connected
	reconnected := connected && !p.wasConnected
	p.wasConnected = connected

	if connected && !reconnected {
		p.skipped.Add(1)
		return
	}
	if reconnected {
		p.logger.Info("push channel restored, reconciling")
	}
	p.poll(ctx)
}

// poll fetches one snapshot and hands it to the handler.
func (p *Poller) poll(ctx context.Context) {
	p.polls.Add(1)
	start := time.Now()

	snapshot, err := p.fetch(ctx)
	if err != nil {
		p.errors.Add(1)
		p.logger.Warn("poll failed", "error", err)
		return
	}

	if p.handler != nil {
		if err := p.handler.HandleSnapshot(snapshot); err != nil {
			p.errors.Add(1)
			p.logger.Warn("snapshot handler failed", "error", err)
			return
		}
	}

	p.logger.Debug("poll complete",
		"orders", len(snapshot.Orders),
		"tables", len(snapshot.Tables),
		"duration", time.Since(start),
	)
}

// fetch loads orders and tables concurrently under one timeout.
func (p *Poller) fetch(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var snapshot Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		orders, err := p.source.ActiveOrders(gctx)
		if err != nil {
			return fmt.Errorf("fetch orders: %w", err)
		}
		snapshot.Orders = orders
		return nil
	})
	g.Go(func() error {
		tables, err := p.source.Tables(gctx)
		if err != nil {
			return fmt.Errorf("fetch tables: %w", err)
		}
		snapshot.Tables = tables
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	snapshot.FetchedAt = time.Now()
	return snapshot, nil
}
