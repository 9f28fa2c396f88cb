// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

/*
Package executor spawns and supervises a dependency.Plan's processes.

Each node runs as its own explicit state machine — Spawning, Running,
Terminating, Exited — driven by a goroutine that selects over its
child's stdout/stderr pipes, the child's exit, the shared shutdown
broadcast, and its own respawn timer. golang.org/x/sync/errgroup
coordinates the whole fleet: the first node that fails fast (an
unrespawnable exit, or a respawn budget exhausted) cancels every other
node's context, and Run returns that first error.

A node only spawns once every node it depends_on has reached Running, so
the plan's topological order is honored as an actual startup barrier,
not just a cosmetic ordering of an otherwise-concurrent launch.

Respawn policy: exponential backoff starting at 1s, doubling per
attempt, capped at LaunchConfig.RespawnBackoffCap (default 30s); a node
exceeding LaunchConfig.RespawnMaxAttempts restarts within a rolling
LaunchConfig.RespawnWindow (default 5 attempts / 60s) is marked Failed
and trips the errgroup's fail-fast cancellation.

Dry-run mode emits a synthetic Started(pid=0) immediately followed by
Exited(code=0) for every node in plan order, without spawning anything,
so `bubbaloop-launch --dry-run` can show the resolved plan without side
effects.
*/
package executor
