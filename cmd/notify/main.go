package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fdvky1/sureyummy-sub000/internal/broadcast"
	"github.com/fdvky1/sureyummy-sub000/internal/config"
	"github.com/fdvky1/sureyummy-sub000/internal/event"
	"github.com/fdvky1/sureyummy-sub000/internal/model"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	eventType := flag.String("type", event.TypeOrderStatus, "event type: order.new, order.status, order.completed")
	orderID := flag.String("order", "", "order id")
	status := flag.String("status", string(model.OrderReady), "order status for order.new and order.status")
	sessionID := flag.String("session", "", "table session id for order.completed")
	tableSlug := flag.String("table", "", "table slug")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *orderID == "" {
		fmt.Fprintln(os.Stderr, "-order is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateGateway(); err != nil {
		logger.Error("invalid relay config", "error", err)
		os.Exit(1)
	}

	gateway, err := broadcast.New(cfg.Relay.GatewayConfig(), broadcast.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create gateway", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	now := time.Now()
	order := model.Order{
		ID:        *orderID,
		TableSlug: *tableSlug,
		Status:    model.OrderStatus(*status),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var res broadcast.Result
	switch *eventType {
	case event.TypeOrderNew:
		res = gateway.NewOrder(ctx, order, nil)
	case event.TypeOrderStatus:
		res = gateway.OrderStatus(ctx, order, nil)
	case event.TypeOrderCompleted:
		res = gateway.OrderCompleted(ctx, *sessionID, *orderID, nil)
	default:
		res = gateway.Broadcast(ctx, *eventType, map[string]any{"orderId": *orderID})
	}

	if !res.Success {
		logger.Error("broadcast failed", "type", *eventType, "error", res.Err)
		os.Exit(1)
	}

	reached, total := "?", "?"
	if res.ClientsReached != nil {
		reached = fmt.Sprint(*res.ClientsReached)
	}
	if res.TotalClients != nil {
		total = fmt.Sprint(*res.TotalClients)
	}
	fmt.Printf("%s %s delivered to %s/%s displays\n", *eventType, *orderID, reached, total)
}
