// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

/*
Package dependency turns a set of launchfile.ResolvedNode into an
ordered startup Plan.

Filtering runs first: groups restricts to nodes in the named groups (or
every node when empty), enable/disable name individual nodes, and
disable always wins over both group membership and enable. The
transitive closure over depends_on then re-adds any filtered-out node
that a retained node still depends on — unless that dependency was
explicitly disabled, which produces an UnsatisfiedDependency error
rather than silently dropping the edge.

Ordering is Kahn's algorithm: nodes with no remaining unresolved
dependency are ready; when several are ready at once the
lexicographically smallest name runs first, for a deterministic plan
given the same launch file and the same filters. It is implemented as a
sorted-slice scan of the ready set rather than a container/heap, since
the ready set stays small (one launch file's node count) and a sorted
scan reads more plainly than a heap for that size — no suitable
third-party graph library exists in this module's dependency set, so
this one component is plain standard library by necessity, not choice.

A cycle leaves nodes permanently unready; whatever remains once no node
is ready is reported as a Cycle error naming every node still stuck in
it.
*/
package dependency
