// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

/*
Package registry tracks every installed node's descriptor and live status
on one machine.

A single goroutine owns the underlying map; every read and write reaches
it through a channel-borne request, never a shared mutex. Generation is a
uint64 bumped on every applied mutation, mirrored to the
bubbaloop_registry_generation gauge (internal/metrics) and to a Notify
callback the daemon wires to its fabric publisher, so a fresh
wire.RegistryView goes out on every observable change rather than on a
fixed schedule.

Reconcile sweeps the svcmanager.Manager's unit list on a timer
(DaemonConfig.ReconcileInterval), adds newly discovered units, marks
entries whose last status transition is older than
DaemonConfig.HeartbeatStaleAfter as StatusUnknown, and emits no view at
all when nothing changed since the previous sweep.

Registry.Serve implements the same Serve(ctx) error shape as the teacher's
supervisor services, so it can be wrapped directly into the supervisor
tree's core layer alongside the fabric session keeper.
*/
package registry
