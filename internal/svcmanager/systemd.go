// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package svcmanager

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/time/rate"
)

// SystemdManager shells out to systemctl and journalctl. It is the only
// concrete Manager backend this module ships.
type SystemdManager struct {
	statusPollRate float64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewSystemdManager returns a SystemdManager that rate-limits Status calls
// to statusPollRate per unit per second (spec default: 1.0).
func NewSystemdManager(statusPollRate float64) *SystemdManager {
	return &SystemdManager{
		statusPollRate: statusPollRate,
		limiters:       make(map[string]*rate.Limiter),
	}
}

func (m *SystemdManager) limiterFor(unit string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.limiters[unit]
	if !ok {
		l = rate.NewLimiter(rate.Limit(m.statusPollRate), 1)
		m.limiters[unit] = l
	}
	return l
}

// ListUnits lists every bubbaloop-*.service unit systemd knows about.
func (m *SystemdManager) ListUnits(ctx context.Context) ([]string, error) {
	out, err := exec.CommandContext(ctx, "systemctl", "list-units", "--all", "--no-legend", "--plain", "bubbaloop-*.service").Output()
	if err != nil {
		return nil, fmt.Errorf("%w: list-units: %v", ErrAdapter, err)
	}

	var units []string
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		units = append(units, fields[0])
	}
	return units, nil
}

// Start invokes systemctl start. Already-active is treated as success per
// the daemon API's idempotence invariant — systemctl itself already
// returns success for a no-op start, so no special casing is needed here.
func (m *SystemdManager) Start(ctx context.Context, unit string) (Result, error) {
	return m.runctl(ctx, "start", unit)
}

// Stop invokes systemctl stop.
func (m *SystemdManager) Stop(ctx context.Context, unit string) (Result, error) {
	return m.runctl(ctx, "stop", unit)
}

// Restart invokes systemctl restart.
func (m *SystemdManager) Restart(ctx context.Context, unit string) (Result, error) {
	return m.runctl(ctx, "restart", unit)
}

func (m *SystemdManager) runctl(ctx context.Context, verb, unit string) (Result, error) {
	out, err := exec.CommandContext(ctx, "systemctl", verb, unit).CombinedOutput()
	if err != nil {
		return Result{OK: false, Message: strings.TrimSpace(string(out))}, nil
	}
	return Result{OK: true, Message: fmt.Sprintf("%s succeeded", verb)}, nil
}

// Status invokes systemctl show and enriches it with live process metrics
// when a pid is resolvable. Calls are rate-limited to at most
// statusPollRate per second per unit.
func (m *SystemdManager) Status(ctx context.Context, unit string) (StatusReport, error) {
	if err := m.limiterFor(unit).Wait(ctx); err != nil {
		return StatusReport{}, fmt.Errorf("%w: status %s: %v", ErrAdapter, unit, err)
	}

	out, err := exec.CommandContext(ctx, "systemctl", "show", unit,
		"--property=ActiveState,SubState,MainPID,NRestarts").Output()
	if err != nil {
		return StatusReport{}, fmt.Errorf("%w: status %s: %v", ErrAdapter, unit, err)
	}

	props := parseShowOutput(string(out))
	report := StatusReport{Status: mapActiveState(props["ActiveState"], props["SubState"])}

	if restarts, ok := props["NRestarts"]; ok {
		if n, err := strconv.ParseUint(restarts, 10, 32); err == nil {
			report.RestartCount = uint32(n)
		}
	}

	if pidStr, ok := props["MainPID"]; ok {
		if pid, err := strconv.ParseUint(pidStr, 10, 32); err == nil && pid > 0 {
			report.Pid = uint32(pid)
			report.HasPid = true
			enrichProcessMetrics(ctx, int32(pid), &report)
		}
	}

	return report, nil
}

func enrichProcessMetrics(ctx context.Context, pid int32, report *StatusReport) {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return
	}
	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		report.MemoryBytes = mem.RSS
		report.HasMemory = true
	}
	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		report.CPUPercent = cpu
		report.HasCPU = true
	}
}

func parseShowOutput(out string) map[string]string {
	props := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[k] = v
	}
	return props
}

func mapActiveState(active, sub string) Status {
	switch active {
	case "active":
		return StatusActive
	case "activating":
		return StatusActivating
	case "deactivating":
		return StatusDeactivating
	case "failed":
		return StatusFailed
	case "inactive":
		return StatusInactive
	default:
		return StatusUnknown
	}
}

// JournalTail returns the last n lines of the unit's journal.
func (m *SystemdManager) JournalTail(ctx context.Context, unit string, lines int) ([]string, error) {
	out, err := exec.CommandContext(ctx, "journalctl", "-u", unit, "-n", strconv.Itoa(lines), "--no-pager", "-o", "cat").Output()
	if err != nil {
		return nil, fmt.Errorf("%w: journal-tail %s: %v", ErrAdapter, unit, err)
	}

	var result []string
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}
	return result, nil
}

// JournalFollow streams new journal lines for unit until the returned
// cancel function is called or ctx is done.
func (m *SystemdManager) JournalFollow(ctx context.Context, unit string) (<-chan string, func(), error) {
	cmd := exec.CommandContext(ctx, "journalctl", "-u", unit, "-f", "--no-pager", "-o", "cat")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: journal-follow %s: %v", ErrAdapter, unit, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("%w: journal-follow %s: %v", ErrAdapter, unit, err)
	}

	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
	return lines, cancel, nil
}
