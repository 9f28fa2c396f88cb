// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

/*
Package metrics provides the Prometheus metrics the bubbaloop daemon and
launch runtime expose over the optional /metrics HTTP listener (see
internal/config's MetricsConfig and internal/supervisor/services'
HTTPServerService).

# Metrics

Registry:

	bubbaloop_registry_generation (gauge)
	    Monotonic generation counter of the node registry, bumped on every
	    add/remove/status change. Lets scrapers detect registry churn
	    without diffing the full node list.

Daemon commands:

	bubbaloop_daemon_commands_total{command,outcome} (counter)
	    Count of node commands (start/stop/restart/build/logs) handled by
	    the daemon's queryables, labeled by outcome (success: the manager
	    reported OK; failure: it reported not OK; error: the manager call
	    or the request failed; not_found: unknown node).

Node status:

	bubbaloop_node_status{node,status} (gauge)
	    1 for the node's current status (running/stopped/unknown/failed),
	    0 for all other statuses of that node. Set by the registry
	    reconciler whenever a node's status changes.

Launch runtime process events:

	bubbaloop_launch_process_events_total{node,kind} (counter)
	    Count of process events (started/stdout/stderr/exited/failed) the
	    executor emits for each launched node.

# Usage Example

	import "github.com/kornia/bubbaloop/internal/metrics"

	metrics.SetRegistryGeneration(42)
	metrics.RecordDaemonCommand("restart", "success")
	metrics.SetNodeStatus("camera-1", "running")
	metrics.RecordLaunchProcessEvent("camera-1", "exited")

# Registration

All metrics are registered with promauto against the default Prometheus
registry at package init, so importing this package for its side effects
is sufficient; no explicit Register call is needed.
*/
package metrics
