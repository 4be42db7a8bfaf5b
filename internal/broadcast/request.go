package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fdvky1/sureyummy-sub000/internal/event"
	"github.com/fdvky1/sureyummy-sub000/internal/version"
)

// maxResponseBody caps how much of a relay reply is read.
const maxResponseBody = 64 << 10

// Broadcast sends one event to the relay. fields become siblings of type,
// message and timestamp inside the body's data object; a "message" or
// "timestamp" in fields overrides the default. The call is made exactly once.
func (g *Gateway) Broadcast(ctx context.Context, eventType string, fields map[string]any) Result {
	if eventType == "" {
		return Result{Err: event.ErrMissingType}
	}

	data := make(map[string]any, len(fields)+3)
	data["message"] = DefaultMessage(eventType)
	data["timestamp"] = g.now().UTC().Format(time.RFC3339)
	for k, v := range fields {
		data[k] = v
	}
	data["type"] = eventType

	body, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		return g.fail(eventType, "", fmt.Errorf("marshal body: %w", err))
	}

	requestID := uuid.NewString()
	resp, err := g.post(ctx, body, requestID)
	if err != nil {
		return g.fail(eventType, requestID, err)
	}

	res := Result{
		Success:        true,
		ClientsReached: resp.ClientsReached,
		TotalClients:   resp.TotalClients,
	}

	attrs := []any{"type", eventType, "request_id", requestID}
	if res.ClientsReached != nil {
		attrs = append(attrs, "clients_reached", *res.ClientsReached)
	}
	if res.TotalClients != nil {
		attrs = append(attrs, "total_clients", *res.TotalClients)
	}
	g.logger.Debug("broadcast sent", attrs...)

	return res
}

func (g *Gateway) fail(eventType, requestID string, err error) Result {
	g.logger.Warn("broadcast failed",
		"type", eventType,
		"request_id", requestID,
		"error", err,
	)
	return Result{Err: err}
}

// post performs the relay call and decodes its reply.
func (g *Gateway) post(ctx context.Context, body []byte, requestID string) (broadcastResponse, error) {
	var out broadcastResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", g.apiKey)
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return out, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &RelayError{
			StatusCode: resp.StatusCode,
			Message:    relayMessage(resp.StatusCode, respBody),
			Body:       respBody,
		}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(respBody, &out); err != nil {
		return out, fmt.Errorf("unmarshal response: %w", err)
	}

	if out.Success != nil && !*out.Success {
		msg := out.Error
		if msg == "" {
			msg = "no reason given"
		}
		return out, fmt.Errorf("%w: %s", ErrRelayRejected, msg)
	}

	return out, nil
}

// relayMessage prefers the relay's own error text over the status text.
func relayMessage(code int, body []byte) string {
	var reply broadcastResponse
	if err := json.Unmarshal(body, &reply); err == nil && reply.Error != "" {
		return reply.Error
	}
	return http.StatusText(code)
}

// IsRelayError reports whether err is a non-2xx reply and returns it.
func IsRelayError(err error) (*RelayError, bool) {
	var re *RelayError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
