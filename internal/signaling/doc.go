// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

/*
Package signaling provides one shutdown broadcast shared by the daemon,
the launch runtime, and the node SDK.

A Broadcast wraps a context.Context/CancelFunc pair plus an atomic
"escalate" flag. The first SIGINT/SIGTERM cancels the context politely;
a second signal received while shutdown is already in flight flips
Escalate() to true without canceling twice, which the executor checks
before sending a unit's polite termination signal — letting it skip
straight to a forceful kill.

Watch installs exactly one signal.Notify call; callers needing their own
shutdown channel (the node SDK's health heartbeat, for instance) read
Done() rather than calling signal.Notify themselves.
*/
package signaling
