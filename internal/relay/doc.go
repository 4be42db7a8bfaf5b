// Package relay is a push-channel relay compatible with the hosted service
// the displays use in production.
//
// Displays connect to GET /ws and receive every frame posted to
// POST /broadcast verbatim. The relay keeps no history: a display that is
// not connected when a frame arrives never sees it and falls back to
// polling.
package relay
