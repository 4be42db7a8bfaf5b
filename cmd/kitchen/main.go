package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/fdvky1/sureyummy-sub000/internal/board"
	"github.com/fdvky1/sureyummy-sub000/internal/config"
	"github.com/fdvky1/sureyummy-sub000/internal/display"
	"github.com/fdvky1/sureyummy-sub000/internal/poller"
	"github.com/fdvky1/sureyummy-sub000/internal/realtime"
	"github.com/fdvky1/sureyummy-sub000/internal/store"
	"github.com/fdvky1/sureyummy-sub000/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// Set up structured logging
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting kitchen display",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	renderer := display.New(nil)
	orders := board.New(renderer.Change, logger)

	client := realtime.New(cfg.Realtime.ClientConfig(), realtime.WithLogger(logger))
	client.Subscribe(orders)

	// Connect to database (optional polling source)
	var pool *pgxpool.Pool
	var p *poller.Poller
	if cfg.Database.Enabled() {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err = store.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		p = poller.New(poller.Config{
			Interval: cfg.Poller.Interval,
			Timeout:  cfg.Poller.Timeout,
		}, client, store.NewOrderStore(pool), orders, logger)
	} else {
		logger.Warn("no database configured, board is fed by the push channel only")
	}

	healthServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Health.Port),
		Handler:           createHealthHandler(client, orders, pool),
		ReadHeaderTimeout: 5 * time.Second,
	}

	client.Connect()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	if p != nil {
		if err := p.Start(gctx); err != nil {
			logger.Error("failed to start poller", "error", err)
			os.Exit(1)
		}
	}

	// Badge refresh: the status snapshot is cheap enough to read every second.
	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			renderer.Status(client.Status())
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("shutting down...")
		client.Disconnect()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if p != nil {
			p.Stop(shutdownCtx)
		}
		return healthServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("kitchen display failed", "error", err)
		os.Exit(1)
	}

	logger.Info("kitchen display stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(client *realtime.Client, orders *board.Board, pool *pgxpool.Pool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Mode       string         `json:"mode"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Mode:       display.Badge(client.Status()),
			Components: make(map[string]any),
		}

		st := client.Status()
		health.Components["realtime"] = map[string]any{
			"enabled": client.Enabled(),
			"status":  st,
			"stats":   client.Stats(),
		}
		health.Components["board"] = map[string]any{
			"orders": orders.Len(),
		}

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["database"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["database"] = "connected"
			}
		}

		// Without push or a database the board cannot stay fresh.
		if !st.Connected && pool == nil {
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(orders.Orders())
	})

	return mux
}
