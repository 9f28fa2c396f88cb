// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registryGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bubbaloop_registry_generation",
		Help: "Monotonic generation counter of the node registry.",
	})

	daemonCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bubbaloop_daemon_commands_total",
		Help: "Total number of node commands handled by the daemon, by outcome.",
	}, []string{"command", "outcome"})

	nodeStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bubbaloop_node_status",
		Help: "1 if the node currently has this status, 0 otherwise.",
	}, []string{"node", "status"})

	launchProcessEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bubbaloop_launch_process_events_total",
		Help: "Total number of process lifecycle events observed by the launch executor.",
	}, []string{"node", "kind"})
)

// nodeStatuses enumerates every status bubbaloop_node_status tracks, so a
// status transition can zero out the node's previous status alongside
// setting the new one.
var nodeStatuses = []string{"running", "stopped", "unknown", "failed"}

// SetRegistryGeneration records the registry's current generation counter.
func SetRegistryGeneration(generation uint64) {
	registryGeneration.Set(float64(generation))
}

// RecordDaemonCommand records a handled daemon command and its outcome.
// The daemon uses the outcomes "success", "failure", "error", and
// "not_found".
func RecordDaemonCommand(command, outcome string) {
	daemonCommandsTotal.WithLabelValues(command, outcome).Inc()
}

// SetNodeStatus records a node's current status, clearing any other status
// gauge previously set for that node.
func SetNodeStatus(node, status string) {
	for _, s := range nodeStatuses {
		if s == status {
			nodeStatus.WithLabelValues(node, s).Set(1)
		} else {
			nodeStatus.WithLabelValues(node, s).Set(0)
		}
	}
}

// RecordLaunchProcessEvent records a process lifecycle event for a launched
// node. The executor passes its event kind names: "started", "stdout",
// "stderr", "exited", or "failed".
func RecordLaunchProcessEvent(node, kind string) {
	launchProcessEventsTotal.WithLabelValues(node, kind).Inc()
}
