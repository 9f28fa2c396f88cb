// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kornia/bubbaloop/internal/fabric"
	"github.com/kornia/bubbaloop/internal/metrics"
	"github.com/kornia/bubbaloop/internal/registry"
	"github.com/kornia/bubbaloop/internal/svcmanager"
	"github.com/kornia/bubbaloop/internal/wire"
)

// maxLogLines bounds how many lines a single logs request can return,
// regardless of what the caller asks for.
const maxLogLines = 10000

// Daemon binds the daemon/api/... queryable surface to a registry and a
// service-manager backend.
type Daemon struct {
	sess    *fabric.Session
	reg     *registry.Registry
	mgr     svcmanager.Manager
	machine string
	scope   string

	commandTimeout time.Duration
	logsTimeout    time.Duration

	group      singleflight.Group
	queryables []*fabric.Queryable
	logger     *slog.Logger
}

// New constructs a Daemon. It does not bind any queryables until Serve (or
// Bind) is called.
func New(sess *fabric.Session, reg *registry.Registry, mgr svcmanager.Manager, machine, scope string, commandTimeout, logsTimeout time.Duration, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		sess:           sess,
		reg:            reg,
		mgr:            mgr,
		machine:        machine,
		scope:          scope,
		commandTimeout: commandTimeout,
		logsTimeout:    logsTimeout,
		logger:         logger,
	}
}

func (d *Daemon) topic(suffix string) string {
	return fmt.Sprintf("bubbaloop/%s/%s/%s", d.scope, d.machine, suffix)
}

// Serve binds every daemon/api queryable and blocks until ctx is done, then
// undeclares them. It implements suture.Service so the supervisor tree can
// run it directly.
func (d *Daemon) Serve(ctx context.Context) error {
	if err := d.Bind(); err != nil {
		return err
	}
	defer d.Unbind()

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (d *Daemon) String() string { return "daemon-api" }

// Bind declares every daemon/api/... queryable.
func (d *Daemon) Bind() error {
	bindings := []struct {
		suffix  string
		handler fabric.QueryableHandler
	}{
		{"daemon/api/nodes/list", d.handleList},
		{"daemon/api/nodes/*/status", d.handleStatus},
		{"daemon/api/nodes/*/start", d.handleStart},
		{"daemon/api/nodes/*/stop", d.handleStop},
		{"daemon/api/nodes/*/restart", d.handleRestart},
		{"daemon/api/nodes/*/build", d.handleBuild},
		{"daemon/api/nodes/*/logs", d.handleLogs},
	}

	for _, b := range bindings {
		q, err := d.sess.DeclareQueryable(d.topic(b.suffix), b.handler)
		if err != nil {
			d.Unbind()
			return fmt.Errorf("bind %s: %w", b.suffix, err)
		}
		d.queryables = append(d.queryables, q)
	}
	return nil
}

// Unbind undeclares every queryable bound by Bind.
func (d *Daemon) Unbind() {
	for _, q := range d.queryables {
		if err := q.Undeclare(); err != nil {
			d.logger.Warn("undeclare queryable failed", "error", err)
		}
	}
	d.queryables = nil
}

// nodeName extracts <name> from a bound topic matching
// daemon/api/nodes/<name>/<suffix>.
func nodeName(topic string) string {
	parts := strings.Split(topic, "/")
	for i, p := range parts {
		if p == "nodes" && i+2 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func (d *Daemon) handleList(ctx context.Context, topic string, payload []byte, reply func([]byte)) {
	ctx, cancel := context.WithTimeout(ctx, d.commandTimeout)
	defer cancel()

	view, err := d.reg.View(ctx)
	if err != nil {
		d.logger.Warn("nodes/list failed", "error", err)
		return
	}
	reply(view.Marshal())
}

func (d *Daemon) handleStatus(ctx context.Context, topic string, payload []byte, reply func([]byte)) {
	ctx, cancel := context.WithTimeout(ctx, d.commandTimeout)
	defer cancel()

	name := nodeName(topic)
	entry, err := d.reg.Get(ctx, name)
	if err != nil {
		// Not found: reply zero times, per this package's doc comment.
		return
	}
	view := wire.RegistryEntry{Descriptor: entry.Descriptor, Status: entry.Status}
	reply(view.Marshal())
}

func (d *Daemon) runCommand(ctx context.Context, topic, command string, action func(ctx context.Context, unit string) (svcmanager.Result, error), reply func([]byte)) {
	ctx, cancel := context.WithTimeout(ctx, d.commandTimeout)
	defer cancel()

	name := nodeName(topic)
	entry, err := d.reg.Get(ctx, name)
	if err != nil {
		reply(wire.CommandResult{OK: false, Message: fmt.Sprintf("unknown node %q", name)}.Marshal())
		metrics.RecordDaemonCommand(command, "not_found")
		return
	}

	key := entry.Descriptor.Unit + ":" + command
	v, err, _ := d.group.Do(key, func() (any, error) {
		return action(ctx, entry.Descriptor.Unit)
	})
	if err != nil {
		reply(wire.CommandResult{OK: false, Message: err.Error()}.Marshal())
		metrics.RecordDaemonCommand(command, "error")
		return
	}

	result := v.(svcmanager.Result)
	reply(wire.CommandResult{OK: result.OK, Message: result.Message}.Marshal())

	outcome := "success"
	if !result.OK {
		outcome = "failure"
	}
	metrics.RecordDaemonCommand(command, outcome)
}

func (d *Daemon) handleStart(ctx context.Context, topic string, payload []byte, reply func([]byte)) {
	d.runCommand(ctx, topic, "start", d.mgr.Start, reply)
}

func (d *Daemon) handleStop(ctx context.Context, topic string, payload []byte, reply func([]byte)) {
	d.runCommand(ctx, topic, "stop", d.mgr.Stop, reply)
}

func (d *Daemon) handleRestart(ctx context.Context, topic string, payload []byte, reply func([]byte)) {
	d.runCommand(ctx, topic, "restart", d.mgr.Restart, reply)
}

// handleBuild triggers the installer hook for a node. There is no
// concrete installer in this module (it lives entirely out-of-band, per
// this system's non-goals); the service manager is asked to restart the
// unit, which picks up a rebuilt executable already installed at the
// same path.
func (d *Daemon) handleBuild(ctx context.Context, topic string, payload []byte, reply func([]byte)) {
	d.runCommand(ctx, topic, "build", d.mgr.Restart, reply)
}

func (d *Daemon) handleLogs(ctx context.Context, topic string, payload []byte, reply func([]byte)) {
	ctx, cancel := context.WithTimeout(ctx, d.logsTimeout)
	defer cancel()

	name := nodeName(topic)
	entry, err := d.reg.Get(ctx, name)
	if err != nil {
		reply(wire.LogsResponse{Success: false, Error: fmt.Sprintf("unknown node %q", name)}.Marshal())
		metrics.RecordDaemonCommand("logs", "not_found")
		return
	}

	req, err := wire.UnmarshalLogsRequest(payload)
	if err != nil {
		reply(wire.LogsResponse{Success: false, Error: "malformed request"}.Marshal())
		metrics.RecordDaemonCommand("logs", "error")
		return
	}

	if req.Lines == 0 {
		reply(wire.LogsResponse{Success: true}.Marshal())
		metrics.RecordDaemonCommand("logs", "success")
		return
	}

	lines := int(req.Lines)
	if lines > maxLogLines {
		lines = maxLogLines
	}

	key := entry.Descriptor.Unit + ":logs"
	v, err, _ := d.group.Do(key, func() (any, error) {
		return d.mgr.JournalTail(ctx, entry.Descriptor.Unit, lines)
	})
	if err != nil {
		reply(wire.LogsResponse{Success: false, Error: err.Error()}.Marshal())
		metrics.RecordDaemonCommand("logs", "error")
		return
	}

	reply(wire.LogsResponse{Lines: v.([]string), Success: true}.Marshal())
	metrics.RecordDaemonCommand("logs", "success")
}
