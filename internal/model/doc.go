// Package model defines the point-of-sale types carried by order notifications.
//
// JSON tags follow the web app's camelCase wire form so an order serialized by the
// app decodes here unchanged.
//
// Conventions:
//   - Prices: integer rupiah (no minor unit)
//   - Timestamps: time.Time, RFC 3339 on the wire
//   - IDs: opaque strings generated by the app's database layer
package model
