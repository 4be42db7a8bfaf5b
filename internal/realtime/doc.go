// Package realtime implements the display-side order notification client.
//
// A Client owns one logical connection to the push relay and is shared by every
// consumer in the process:
//   - Reconnects after a drop with a bounded number of attempts (linear backoff
//     by default: 3s, 6s, 9s, 12s, 15s)
//   - Treats dial errors, connect timeouts, read errors and closes the same way
//   - Reports a cheap connected/attempts snapshot so consumers can poll instead
//     while the socket is down
//   - Decodes each frame once and fans it out to all subscribers, isolating
//     subscriber failures from each other and from the connection
//
// A Client built without a URL is permanently disabled and reports disconnected,
// which puts every consumer in polling-only mode.
package realtime
