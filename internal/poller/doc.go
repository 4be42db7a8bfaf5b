// Package poller implements the disconnected-mode fallback.
//
// The Poller:
//   - Ticks every 5 seconds by default
//   - Skips the fetch while the realtime client reports connected
//   - Fetches active orders and tables concurrently otherwise
//   - Fetches once more when the connection comes back, covering events
//     published while it was down
package poller
