// Package server implements the HTTP server using Echo framework.
//
// Routes: ticket ingestion and lookup (/api/tickets), trend statistics
// (/api/trends), live alert feed (/ws/feed), health, version, metrics.
// Handlers split by domain: handlers_tickets.go, handlers_trends.go,
// handlers_health.go, handlers_feed.go.
package server
