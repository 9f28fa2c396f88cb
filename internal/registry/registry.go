// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kornia/bubbaloop/internal/metrics"
	"github.com/kornia/bubbaloop/internal/svcmanager"
	"github.com/kornia/bubbaloop/internal/wire"
)

// ErrNotFound is returned when a lookup names a node the registry doesn't
// know about.
var ErrNotFound = errors.New("registry: node not found")

// Entry pairs a node's static descriptor with its live status.
type Entry struct {
	Descriptor wire.NodeDescriptor
	Status     wire.NodeStatus
}

// Notify is called with a fresh snapshot every time the registry's
// generation advances. Implementations must not block.
type Notify func(wire.RegistryView)

type state struct {
	entries    map[string]Entry
	generation uint64
	lastUnits  []string
}

// Registry owns a machine's node map behind a single actor goroutine.
type Registry struct {
	reqCh   chan func(*state)
	mgr     svcmanager.Manager
	notify  Notify
	logger  *slog.Logger
	machine string
	scope   string

	reconcileInterval   time.Duration
	heartbeatStaleAfter time.Duration
}

// New constructs a Registry. notify may be nil, in which case generation
// bumps are silent (useful in tests that only care about the map state).
func New(mgr svcmanager.Manager, machine, scope string, reconcileInterval, heartbeatStaleAfter time.Duration, notify Notify, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		reqCh:               make(chan func(*state)),
		mgr:                 mgr,
		notify:              notify,
		logger:              logger,
		machine:             machine,
		scope:               scope,
		reconcileInterval:   reconcileInterval,
		heartbeatStaleAfter: heartbeatStaleAfter,
	}
}

// Serve owns the map for its lifetime, implementing suture.Service so the
// supervisor tree can run it directly.
func (r *Registry) Serve(ctx context.Context) error {
	st := &state{entries: make(map[string]Entry)}

	ticker := time.NewTicker(r.reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-r.reqCh:
			req(st)
		case <-ticker.C:
			r.reconcile(ctx, st)
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (r *Registry) String() string { return "registry-reconciler" }

func (r *Registry) do(ctx context.Context, fn func(*state)) error {
	done := make(chan struct{})
	wrapped := func(st *state) {
		fn(st)
		close(done)
	}
	select {
	case r.reqCh <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register adds or replaces a node's descriptor, leaving its status
// StatusUnknown until the next status report or reconcile sweep resolves
// it. Registering an already-known node updates the descriptor in place
// without disturbing its current status.
func (r *Registry) Register(ctx context.Context, desc wire.NodeDescriptor) error {
	return r.do(ctx, func(st *state) {
		entry, ok := st.entries[desc.Name]
		if !ok {
			entry = Entry{Status: wire.NodeStatus{Status: wire.StatusUnknown}}
		}
		entry.Descriptor = desc
		st.entries[desc.Name] = entry
		r.bump(st)
	})
}

// ApplyStatus updates a known node's live status and bumps the
// generation. It returns ErrNotFound if the node was never registered.
func (r *Registry) ApplyStatus(ctx context.Context, name string, status wire.NodeStatus) error {
	var notFound bool
	err := r.do(ctx, func(st *state) {
		entry, ok := st.entries[name]
		if !ok {
			notFound = true
			return
		}
		status.LastTransitionUnixNano = time.Now().UnixNano()
		entry.Status = status
		st.entries[name] = entry
		r.bump(st)
		metrics.SetNodeStatus(name, statusLabel(status.Status))
	})
	if err != nil {
		return err
	}
	if notFound {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Get returns a single node's entry.
func (r *Registry) Get(ctx context.Context, name string) (Entry, error) {
	var entry Entry
	var notFound bool
	err := r.do(ctx, func(st *state) {
		e, ok := st.entries[name]
		if !ok {
			notFound = true
			return
		}
		entry = e
	})
	if err != nil {
		return Entry{}, err
	}
	if notFound {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return entry, nil
}

// View returns a snapshot of the whole registry as a wire.RegistryView.
func (r *Registry) View(ctx context.Context) (wire.RegistryView, error) {
	var view wire.RegistryView
	err := r.do(ctx, func(st *state) {
		view = r.snapshot(st)
	})
	return view, err
}

func (r *Registry) snapshot(st *state) wire.RegistryView {
	names := make([]string, 0, len(st.entries))
	for name := range st.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]wire.RegistryEntry, 0, len(names))
	for _, name := range names {
		e := st.entries[name]
		entries = append(entries, wire.RegistryEntry{Descriptor: e.Descriptor, Status: e.Status})
	}

	return wire.RegistryView{
		Machine:    r.machine,
		Scope:      r.scope,
		Entries:    entries,
		Generation: st.generation,
	}
}

func (r *Registry) bump(st *state) {
	st.generation++
	metrics.SetRegistryGeneration(st.generation)
	if r.notify != nil {
		r.notify(r.snapshot(st))
	}
}

// reconcile adds newly discovered units, marks stale entries Unknown, and
// publishes only if something actually changed.
func (r *Registry) reconcile(ctx context.Context, st *state) {
	units, err := r.mgr.ListUnits(ctx)
	if err != nil {
		r.logger.Warn("reconcile: list units failed", "error", err)
		return
	}
	sort.Strings(units)

	changed := !sameUnits(st.lastUnits, units)
	st.lastUnits = units

	now := time.Now()
	for _, unit := range units {
		name := nameFromUnit(unit)
		entry, ok := st.entries[name]
		if !ok {
			st.entries[name] = Entry{
				Descriptor: wire.NodeDescriptor{Name: name, Unit: unit},
				Status:     wire.NodeStatus{Status: wire.StatusUnknown, LastTransitionUnixNano: now.UnixNano()},
			}
			changed = true
			continue
		}
		if entry.Status.Status == wire.StatusUnknown {
			continue
		}
		age := now.Sub(time.Unix(0, entry.Status.LastTransitionUnixNano))
		if age > r.heartbeatStaleAfter {
			entry.Status.Status = wire.StatusUnknown
			st.entries[name] = entry
			metrics.SetNodeStatus(name, statusLabel(wire.StatusUnknown))
			changed = true
		}
	}

	if changed {
		r.bump(st)
	}
}

// nameFromUnit derives a NodeDescriptor.Name from a systemd unit string,
// stripping the "bubbaloop-" prefix and ".service" suffix convention
// documented in spec.md §6 so self-discovered names stay within
// [a-z0-9_]+ like every other NodeDescriptor.Name, and so they never
// collide with literal dots in fabric.topicToSubject's "/"→"." topic
// translation.
func nameFromUnit(unit string) string {
	name := strings.TrimSuffix(unit, ".service")
	name = strings.TrimPrefix(name, "bubbaloop-")
	return strings.ReplaceAll(name, "-", "_")
}

func sameUnits(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func statusLabel(s wire.StatusKind) string {
	switch s {
	case wire.StatusActive:
		return "running"
	case wire.StatusFailed:
		return "failed"
	case wire.StatusUnknown:
		return "unknown"
	default:
		return "stopped"
	}
}
