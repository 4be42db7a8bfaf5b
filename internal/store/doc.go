// Package store reads the authoritative order state from PostgreSQL.
//
// Displays use it while the push channel is down: the poller asks for the
// active orders on every tick and the board reconciles against them. All
// access is read-only; order writes belong to the POS application.
package store
