// Package redis implements Redis-backed stores.
//
// Provides CooldownStore (atomic check-and-reserve suppression windows via
// SET NX PX) and TrendStore (durable trend bucket snapshots). All clients
// carry metrics and circuit breaker hooks.
package redis
