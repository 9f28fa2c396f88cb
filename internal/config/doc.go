// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

/*
Package config provides centralized configuration management for the
bubbaloop daemon and launch runtime.

This package handles loading, validation, and layering of configuration from
defaults, an optional YAML file, and environment variables. It ensures
consistent configuration across bubbaloopd and the launch runtime.

Note: the declarative launch file (node definitions, dependencies, groups)
is a separate document parsed by internal/launchfile with yaml.v3; this
package only covers daemon/runtime settings.

# Configuration Sources

Layered in order of increasing precedence:
  - Defaults: built-in sensible defaults for all settings
  - Config file: optional YAML file (bubbaloop.yaml)
  - Environment variables: BUBBALOOP_* overrides

# Configuration Structure

  - ScopeConfig: fleet namespace and machine ID override
  - FabricConfig: pub/sub + query fabric endpoint and circuit breaker tuning
  - DaemonConfig: registry reconciliation, heartbeat, and command timing
  - LaunchConfig: default respawn and shutdown policy for the launch runtime
  - LoggingConfig: zerolog level and output format
  - MetricsConfig: optional Prometheus listener address

# Environment Variables

	BUBBALOOP_SCOPE                        - fleet namespace (default: "local")
	BUBBALOOP_MACHINE                      - machine ID override
	BUBBALOOP_FABRIC_ENDPOINT              - fallback fabric endpoint
	BUBBALOOP_FABRIC_CONNECT_TIMEOUT       - session connect timeout (default: 10s)
	BUBBALOOP_FABRIC_DECLARE_TIMEOUT       - declare-call timeout (default: 5s)
	BUBBALOOP_RECONCILE_INTERVAL           - registry sweep interval (default: 2s)
	BUBBALOOP_HEARTBEAT_INTERVAL           - node heartbeat interval (default: 5s)
	BUBBALOOP_HEARTBEAT_STALE_AFTER        - staleness window (default: 20s)
	BUBBALOOP_COMMAND_TIMEOUT              - daemon command timeout (default: 5s)
	BUBBALOOP_SHUTDOWN_GRACE               - SIGTERM grace period (default: 5s)
	BUBBALOOP_RESPAWN_MAX_ATTEMPTS         - respawn cap per window (default: 5)
	BUBBALOOP_RESPAWN_WINDOW               - respawn window (default: 60s)
	BUBBALOOP_LOG_LEVEL                    - trace|debug|info|warn|error (default: info)
	BUBBALOOP_LOG_FORMAT                   - json|console (default: json)
	BUBBALOOP_METRICS_ADDR                 - Prometheus listen address, empty disables
	BUBBALOOP_METRICS_CORS_ALLOWED_ORIGINS - comma-separated origins allowed to read /metrics, /healthz

Note: the fabric's own endpoint resolution (ZENOH_ENDPOINT, then
BUBBALOOP_ZENOH_ENDPOINT, then BUBBALOOP_FABRIC_ENDPOINT above, then the
tcp/127.0.0.1:7447 default) is implemented in internal/fabric, not here.

# Usage Example

	import "github.com/kornia/bubbaloop/internal/config"

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatalf("failed to load config: %v", err)
	}

	fmt.Printf("scope=%s fabric=%s\n", cfg.Scope.Name, cfg.Fabric.Endpoint)

# Validation

LoadWithKoanf validates the assembled configuration before returning it:
non-positive durations, an empty scope name, and an unrecognized log level
or format all produce an error naming the offending field.

# Thread Safety

The Config struct is immutable after LoadWithKoanf returns, making it safe
for concurrent access from multiple goroutines without synchronization.

# See Also

  - internal/launchfile: the separate declarative launch file format
  - internal/fabric: fabric endpoint resolution order
*/
package config
