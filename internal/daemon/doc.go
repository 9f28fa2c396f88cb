// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

/*
Package daemon binds the daemon/api/... queryable surface to a
registry.Registry and a svcmanager.Manager.

Bound topics, relative to bubbaloop/<scope>/<machine>/:

	daemon/api/nodes/list              -> wire.RegistryView
	daemon/api/nodes/<name>/status     -> wire.RegistryEntry
	daemon/api/nodes/<name>/start      -> wire.CommandResult
	daemon/api/nodes/<name>/stop       -> wire.CommandResult
	daemon/api/nodes/<name>/restart    -> wire.CommandResult
	daemon/api/nodes/<name>/build      -> wire.CommandResult
	daemon/api/nodes/<name>/logs       -> wire.LogsResponse

A status query for an unknown node draws no reply at all rather than an
error payload, consistent with a queryable's "replies zero or more times"
contract — the caller of fabric.Session.Query simply collects zero
samples and treats that the same as registry.ErrNotFound.

Concurrent identical commands for the same unit are coalesced with
golang.org/x/sync/singleflight, keyed "<unit>:<command>": the second
caller observes the first caller's CommandResult without invoking the
Manager twice. Reply timeouts are enforced with context.WithTimeout (30s
for logs, DaemonConfig.CommandTimeout — 5s by default — for everything
else); a command whose reply races past the deadline still completes
against the Manager, so command semantics are at-least-once and
idempotent on the server side, never silently abandoned mid-flight.

Daemon.Serve implements the same Serve(ctx) error shape as the teacher's
supervisor services, so the daemon's queryables live in the supervisor
tree's API layer alongside the optional metrics HTTP listener.
*/
package daemon
