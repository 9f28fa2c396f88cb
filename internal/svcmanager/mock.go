// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package svcmanager

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Mock is a table-driven, call-counting Manager for tests that don't need
// a live systemd. Each unit starts StatusInactive; Start/Stop/Restart
// transition a per-unit StatusReport that subsequent Status calls return.
type Mock struct {
	mu       sync.Mutex
	units    map[string]StatusReport
	journals map[string][]string

	startCalls       atomic.Int64
	stopCalls        atomic.Int64
	restartCalls     atomic.Int64
	statusCalls      atomic.Int64
	journalTailCalls atomic.Int64

	failUnit string
	failErr  error
}

// NewMock returns a Mock with the given units pre-registered as inactive.
func NewMock(units ...string) *Mock {
	m := &Mock{
		units:    make(map[string]StatusReport),
		journals: make(map[string][]string),
	}
	for _, u := range units {
		m.units[u] = StatusReport{Status: StatusInactive}
		m.journals[u] = nil
	}
	return m
}

// SetFailure makes every call naming unit fail with err, until cleared by
// passing an empty unit.
func (m *Mock) SetFailure(unit string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUnit = unit
	m.failErr = err
}

// SetJournal seeds the journal lines returned for unit.
func (m *Mock) SetJournal(unit string, lines []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journals[unit] = lines
}

func (m *Mock) shouldFail(unit string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUnit != "" && m.failUnit == unit {
		return m.failErr
	}
	return nil
}

// StartCalls, StopCalls, RestartCalls, StatusCalls, JournalTailCalls
// report how many times each method has been invoked, across all units.
func (m *Mock) StartCalls() int64       { return m.startCalls.Load() }
func (m *Mock) StopCalls() int64        { return m.stopCalls.Load() }
func (m *Mock) RestartCalls() int64     { return m.restartCalls.Load() }
func (m *Mock) StatusCalls() int64      { return m.statusCalls.Load() }
func (m *Mock) JournalTailCalls() int64 { return m.journalTailCalls.Load() }

func (m *Mock) ListUnits(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	units := make([]string, 0, len(m.units))
	for u := range m.units {
		units = append(units, u)
	}
	return units, nil
}

func (m *Mock) Start(ctx context.Context, unit string) (Result, error) {
	m.startCalls.Add(1)
	if err := m.shouldFail(unit); err != nil {
		return Result{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	report := m.units[unit]
	report.Status = StatusActive
	report.Pid, report.HasPid = 1000, true
	m.units[unit] = report
	return Result{OK: true, Message: "start succeeded"}, nil
}

func (m *Mock) Stop(ctx context.Context, unit string) (Result, error) {
	m.stopCalls.Add(1)
	if err := m.shouldFail(unit); err != nil {
		return Result{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	report := m.units[unit]
	report.Status = StatusInactive
	report.Pid, report.HasPid = 0, false
	m.units[unit] = report
	return Result{OK: true, Message: "stop succeeded"}, nil
}

func (m *Mock) Restart(ctx context.Context, unit string) (Result, error) {
	m.restartCalls.Add(1)
	if err := m.shouldFail(unit); err != nil {
		return Result{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	report := m.units[unit]
	report.Status = StatusActive
	report.RestartCount++
	report.Pid, report.HasPid = 1000, true
	m.units[unit] = report
	return Result{OK: true, Message: "restart succeeded"}, nil
}

func (m *Mock) Status(ctx context.Context, unit string) (StatusReport, error) {
	m.statusCalls.Add(1)
	if err := m.shouldFail(unit); err != nil {
		return StatusReport{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	report, ok := m.units[unit]
	if !ok {
		return StatusReport{}, fmt.Errorf("%w: unknown unit %s", ErrAdapter, unit)
	}
	return report, nil
}

func (m *Mock) JournalTail(ctx context.Context, unit string, lines int) ([]string, error) {
	m.journalTailCalls.Add(1)
	if err := m.shouldFail(unit); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.journals[unit]
	if lines <= 0 || lines >= len(all) {
		return all, nil
	}
	return all[len(all)-lines:], nil
}

func (m *Mock) JournalFollow(ctx context.Context, unit string) (<-chan string, func(), error) {
	if err := m.shouldFail(unit); err != nil {
		return nil, nil, err
	}
	ch := make(chan string)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, func() {}, nil
}
