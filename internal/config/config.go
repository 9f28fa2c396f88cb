// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package config

import (
	"time"
)

// Config holds all daemon and launch-runtime configuration loaded from
// environment variables and an optional config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (bubbaloop.yaml or bubbaloop.yml)
//  3. Environment Variables: Override any setting (BUBBALOOP_* and the
//     Zenoh-compatible ZENOH_ENDPOINT variable)
//
// Configuration Categories:
//
//  1. Identity:
//     - Scope: the deployment's shared fabric namespace prefix
//     - Machine: machine ID override (defaults to sanitized hostname)
//
//  2. Fabric:
//     - Endpoint resolution order, session timeouts, circuit breaker tuning
//
//  3. Daemon:
//     - Registry reconciliation tick, heartbeat staleness window, per-command
//       timeouts
//
//  4. Launch Runtime:
//     - Default respawn policy, shutdown grace period
//
//  5. Observability:
//     - Logging: levels and output formats
//     - Metrics: optional Prometheus listener address
type Config struct {
	Scope   ScopeConfig   `koanf:"scope"`
	Fabric  FabricConfig  `koanf:"fabric"`
	Daemon  DaemonConfig  `koanf:"daemon"`
	Launch  LaunchConfig  `koanf:"launch"`
	Logging LoggingConfig `koanf:"logging"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// ScopeConfig identifies this daemon's position in the fleet namespace.
type ScopeConfig struct {
	// Name is the shared scope prefix all fleet members under one
	// administrative domain publish and subscribe under, e.g. "home" or
	// "warehouse-3".
	Name string `koanf:"name"`

	// Machine overrides the machine ID derived from the hostname. Left
	// empty, the machine ID is the sanitized hostname.
	Machine string `koanf:"machine"`
}

// FabricConfig controls how the daemon reaches the pub/sub + query fabric.
type FabricConfig struct {
	// Endpoint is the explicit fabric endpoint, used only if ZENOH_ENDPOINT
	// and BUBBALOOP_ZENOH_ENDPOINT are both unset.
	Endpoint string `koanf:"endpoint"`

	// ConnectTimeout bounds how long Session creation waits for the initial
	// connection to the endpoint.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`

	// DeclareTimeout bounds a single publisher/subscriber/queryable
	// declaration call.
	DeclareTimeout time.Duration `koanf:"declare_timeout"`

	// BreakerMaxRequests is the number of requests allowed through the
	// circuit breaker while half-open.
	BreakerMaxRequests uint32 `koanf:"breaker_max_requests"`

	// BreakerInterval is the cyclic period over which the breaker's closed-state
	// failure counts are cleared.
	BreakerInterval time.Duration `koanf:"breaker_interval"`

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`

	// BreakerFailureRatio trips the breaker once this fraction of requests
	// fail, given at least BreakerMinRequests samples.
	BreakerFailureRatio float64 `koanf:"breaker_failure_ratio"`

	// BreakerMinRequests is the minimum sample size before the failure
	// ratio is evaluated.
	BreakerMinRequests uint32 `koanf:"breaker_min_requests"`
}

// DaemonConfig controls the node supervisor's internal timing.
type DaemonConfig struct {
	// ReconcileInterval is how often the registry reconciler sweeps for
	// heartbeat staleness.
	ReconcileInterval time.Duration `koanf:"reconcile_interval"`

	// HeartbeatInterval is how often a node publishes its own status.
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`

	// HeartbeatStaleAfter marks a node Unknown once its last heartbeat is
	// older than this.
	HeartbeatStaleAfter time.Duration `koanf:"heartbeat_stale_after"`

	// CommandTimeout bounds a single NodeCommand round trip for every
	// command except logs.
	CommandTimeout time.Duration `koanf:"command_timeout"`

	// LogsTimeout bounds a logs command round trip, which tends to take
	// longer than a start/stop/restart/build since it reads the journal.
	LogsTimeout time.Duration `koanf:"logs_timeout"`

	// StatusPollRate caps how often the Service-Manager adapter is polled
	// for a single unit's status, in polls per second.
	StatusPollRate float64 `koanf:"status_poll_rate"`
}

// LaunchConfig controls the launch runtime's default process supervision
// policy, overridable per-node in a launch file.
type LaunchConfig struct {
	// ShutdownGrace is how long a child process is given to exit after
	// SIGTERM before the executor escalates to SIGKILL.
	ShutdownGrace time.Duration `koanf:"shutdown_grace"`

	// RespawnMaxAttempts is the number of restarts tolerated within
	// RespawnWindow before the executor gives up.
	RespawnMaxAttempts int `koanf:"respawn_max_attempts"`

	// RespawnWindow is the sliding window the respawn count is measured
	// against.
	RespawnWindow time.Duration `koanf:"respawn_window"`

	// RespawnBackoffCap is the maximum backoff delay between respawn
	// attempts.
	RespawnBackoffCap time.Duration `koanf:"respawn_backoff_cap"`
}

// LoggingConfig configures the zerolog-based logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig configures the optional Prometheus HTTP listener.
type MetricsConfig struct {
	// Addr is the listen address, e.g. ":9467". Empty disables the
	// listener entirely.
	Addr string `koanf:"addr"`

	// CORSAllowedOrigins is a comma-separated list of origins allowed to
	// fetch /metrics and /healthz from a browser (e.g. a fleet dashboard
	// served from a different origin). Empty means no cross-origin
	// access.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`
}
