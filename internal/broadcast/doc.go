// Package broadcast asks the push relay to fan an order event out to every
// connected display.
//
// Each call is a single POST {relay}/broadcast authenticated with X-API-Key:
//
//	{"data": {"type": "order.status", "message": "...", "data": {...}, "timestamp": "..."}}
//
// Calls are never retried. Every failure (network, non-2xx status, relay
// reported error) comes back as a Result with Success=false; nothing here
// returns an error to the order workflow that triggered the broadcast.
package broadcast
