// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

/*
Package svcmanager provides a uniform capability interface over the host's
service manager, so the daemon never conditionally compiles on OS
specifics — only one backend (SystemdManager) is concrete today, but
callers depend solely on the Manager interface.

# Backends

SystemdManager shells out to systemctl and journalctl via os/exec, the
same pattern as the original_source's cli/node/lifecycle.rs. Long-running
output (journal follow) is consumed line-buffered with bufio.Scanner.

Mock is a table-driven, call-counting backend for daemon and registry
tests that don't need a live systemd, in the style of the teacher's
internal/supervisor.MockService.

# Status Enrichment

Status reports are enriched past systemctl's own text output with live
pid/memory/cpu metrics sampled via github.com/shirou/gopsutil/v4/process
when a pid is resolvable. Status calls are rate-limited per-unit to at
most once per second using golang.org/x/time/rate, so a chatty caller
can't flood systemctl with redundant polls.
*/
package svcmanager
