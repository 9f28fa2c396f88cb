// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sort"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kornia/bubbaloop/internal/dependency"
	"github.com/kornia/bubbaloop/internal/launchfile"
	"github.com/kornia/bubbaloop/internal/metrics"
	"github.com/kornia/bubbaloop/internal/signaling"
)

// ErrSpawn wraps every error raised while starting or supervising a
// child process.
var ErrSpawn = errors.New("executor: spawn error")

// Options configures an Executor.
type Options struct {
	DryRun bool

	ShutdownGrace      time.Duration
	RespawnMaxAttempts int
	RespawnWindow      time.Duration
	RespawnBackoffCap  time.Duration

	Logger *slog.Logger
}

// Executor spawns and supervises every node in a dependency.Plan.
type Executor struct {
	plan      *dependency.Plan
	opts      Options
	broadcast *signaling.Broadcast
	events    chan Event
	logger    *slog.Logger
}

// New constructs an Executor for plan.
func New(plan *dependency.Plan, broadcast *signaling.Broadcast, opts Options) *Executor {
	if opts.ShutdownGrace <= 0 {
		opts.ShutdownGrace = 5 * time.Second
	}
	if opts.RespawnMaxAttempts <= 0 {
		opts.RespawnMaxAttempts = 5
	}
	if opts.RespawnWindow <= 0 {
		opts.RespawnWindow = 60 * time.Second
	}
	if opts.RespawnBackoffCap <= 0 {
		opts.RespawnBackoffCap = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		plan:      plan,
		opts:      opts,
		broadcast: broadcast,
		events:    make(chan Event, 256),
		logger:    logger,
	}
}

// Events returns the channel every lifecycle event is emitted on. It is
// closed once Run returns.
func (e *Executor) Events() <-chan Event {
	return e.events
}

func (e *Executor) emit(ev Event) {
	e.events <- ev
	metrics.RecordLaunchProcessEvent(ev.Node, ev.Kind.String())
}

// Run starts every node in the plan's topological order and blocks until
// shutdown, until a node fails fast, or until every node has exited for
// good. It returns the first fail-fast error, or nil otherwise.
func (e *Executor) Run(ctx context.Context) error {
	defer close(e.events)

	if e.opts.DryRun {
		return e.runDry()
	}

	g, gctx := errgroup.WithContext(ctx)

	started := make(map[string]chan struct{}, len(e.plan.Order))
	exited := make(map[string]chan struct{}, len(e.plan.Order))
	for _, name := range e.plan.Order {
		started[name] = make(chan struct{})
		exited[name] = make(chan struct{})
	}

	for i, name := range e.plan.Order {
		name := name
		deps := e.plan.Nodes[name].DependsOn
		// dependents is every node started after this one; on shutdown
		// they must all exit first so Exited events come out in the
		// reverse of Started order.
		dependents := e.plan.Order[i+1:]
		g.Go(func() error {
			if err := waitForDeps(gctx, deps, started); err != nil {
				close(exited[name])
				return err
			}
			return e.runNode(gctx, name, started[name], exited[name], dependents, exited)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (e *Executor) runDry() error {
	for _, name := range e.plan.Order {
		e.emit(Event{Node: name, Kind: Started, Pid: 0})
		e.emit(Event{Node: name, Kind: Exited, ExitCode: 0})
	}
	return nil
}

func waitForDeps(ctx context.Context, deps []string, started map[string]chan struct{}) error {
	for _, dep := range deps {
		ch, ok := started[dep]
		if !ok {
			continue
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// waitForDependents blocks until every node started after this one has
// exited, so shutdown unwinds in exactly the reverse of startup order.
// ctx is already done by the time this is called, so there is no second
// cancellation path to race against: every dependent is itself running
// this same shutdown sequence and will eventually close its exited
// channel.
func waitForDependents(dependents []string, exited map[string]chan struct{}) {
	for _, dep := range dependents {
		<-exited[dep]
	}
}

// runNode owns one node's spawn/respawn loop until ctx is cancelled or
// the node exhausts its respawn budget. exitedCh is closed exactly once,
// when this node has no more process to supervise; dependents lists
// every node started after this one, whose own exitedCh this node must
// wait on before tearing its own process down on shutdown.
func (e *Executor) runNode(ctx context.Context, name string, startedCh, exitedCh chan struct{}, dependents []string, exited map[string]chan struct{}) error {
	node := e.plan.Nodes[name]

	var attempts []time.Time
	var closeOnce sync.Once
	markStarted := func() {
		closeOnce.Do(func() { close(startedCh) })
	}
	var exitOnce sync.Once
	markExited := func() {
		exitOnce.Do(func() { close(exitedCh) })
	}
	defer markExited()

	for {
		select {
		case <-ctx.Done():
			markStarted()
			return nil
		default:
		}

		cmd, stdout, stderr, err := spawn(node)
		if err != nil {
			markStarted()
			e.emit(Event{Node: name, Kind: Failed, Cause: err.Error()})
			return fmt.Errorf("%w: node %q: %v", ErrSpawn, name, err)
		}

		pid := cmd.Process.Pid
		e.emit(Event{Node: name, Kind: Started, Pid: pid})
		markStarted()

		var wg sync.WaitGroup
		wg.Add(2)
		go e.pump(&wg, name, Stdout, stdout)
		go e.pump(&wg, name, Stderr, stderr)

		start := time.Now()
		exitCh := make(chan error, 1)
		go func() { exitCh <- cmd.Wait() }()

		var exitErr error
		select {
		case exitErr = <-exitCh:
		case <-ctx.Done():
			waitForDependents(dependents, exited)
			e.shutdownChild(cmd, node)
			exitErr = <-exitCh
			wg.Wait()
			duration := time.Since(start)
			code, signal := exitStatus(exitErr)
			e.emit(Event{Node: name, Kind: Exited, ExitCode: code, Signal: signal, Duration: duration})
			return nil
		}
		wg.Wait()

		duration := time.Since(start)
		code, signal := exitStatus(exitErr)
		e.emit(Event{Node: name, Kind: Exited, ExitCode: code, Signal: signal, Duration: duration})

		if !node.Respawn {
			if code != 0 {
				return fmt.Errorf("%w: node %q exited with code %d", ErrSpawn, name, code)
			}
			return nil
		}

		attempts = pruneAttempts(append(attempts, time.Now()), e.opts.RespawnWindow)
		if len(attempts) > e.opts.RespawnMaxAttempts {
			e.emit(Event{Node: name, Kind: Failed, Cause: "respawn budget exhausted"})
			return fmt.Errorf("%w: node %q exceeded %d respawns within %s", ErrSpawn, name, e.opts.RespawnMaxAttempts, e.opts.RespawnWindow)
		}

		backoff := respawnBackoff(len(attempts), e.opts.RespawnBackoffCap)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil
		}
	}
}

func (e *Executor) pump(wg *sync.WaitGroup, name string, kind Kind, r io.Reader) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		e.emit(Event{Node: name, Kind: kind, Line: scanner.Text()})
	}
}

// shutdownChild sends SIGTERM and waits up to shutdownGrace (or the
// node's own shutdown_timeout_ms override) before escalating to SIGKILL.
// If the shared broadcast has already recorded a second shutdown signal,
// it escalates straight to SIGKILL.
func (e *Executor) shutdownChild(cmd *exec.Cmd, node launchfile.ResolvedNode) {
	grace := e.opts.ShutdownGrace
	if node.ShutdownTimeoutMS > 0 {
		grace = time.Duration(node.ShutdownTimeoutMS) * time.Millisecond
	}

	if e.broadcast != nil && e.broadcast.Escalate() {
		_ = cmd.Process.Kill()
		return
	}

	_ = cmd.Process.Signal(syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		_, _ = cmd.Process.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		_ = cmd.Process.Kill()
	}
}

func pruneAttempts(attempts []time.Time, window time.Duration) []time.Time {
	cutoff := time.Now().Add(-window)
	kept := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

func respawnBackoff(attempt int, ceiling time.Duration) time.Duration {
	d := time.Second
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	if d > ceiling {
		return ceiling
	}
	return d
}

func exitStatus(err error) (code int, signal string) {
	if err == nil {
		return 0, ""
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return -1, status.Signal().String()
			}
			return status.ExitStatus(), ""
		}
		return exitErr.ExitCode(), ""
	}
	return -1, ""
}

// spawn starts node's process with its resolved args, environment, and
// working directory, returning stdout/stderr pipes for line pumping.
//
// node.Args values become the child's positional command-line arguments,
// ordered by key so a launch file's ordering is stable regardless of
// Go's map iteration order. The keys themselves are not passed through;
// they exist only to give each argument a name in the launch file.
func spawn(node launchfile.ResolvedNode) (*exec.Cmd, io.Reader, io.Reader, error) {
	args := make([]string, 0, len(node.Args))
	for _, k := range sortedKeys(node.Args) {
		args = append(args, node.Args[k])
	}

	cmd := exec.Command(node.Executable, args...)
	cmd.Dir = node.Cwd

	if len(node.Env) > 0 {
		env := make([]string, 0, len(node.Env))
		for k, v := range node.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = append(cmd.Environ(), env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, nil, err
	}

	return cmd, stdout, stderr, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
