// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package svcmanager

import (
	"context"
	"errors"
)

// ErrAdapter wraps every error a Manager implementation returns, so callers
// can test with errors.Is(err, svcmanager.ErrAdapter) regardless of which
// concrete command failed underneath.
var ErrAdapter = errors.New("service manager error")

// Result is the outcome of a start/stop/restart invocation.
type Result struct {
	OK      bool
	Message string
}

// StatusReport is a unit's live status, as reported by the service manager
// and enriched with process metrics when resolvable.
type StatusReport struct {
	Status       Status
	Pid          uint32
	HasPid       bool
	MemoryBytes  uint64
	HasMemory    bool
	CPUPercent   float64
	HasCPU       bool
	RestartCount uint32
}

// Status enumerates the lifecycle states a unit can report.
type Status int

const (
	StatusInactive Status = iota
	StatusActivating
	StatusActive
	StatusDeactivating
	StatusFailed
	StatusUnknown
)

// Manager is the capability boundary every service-manager backend
// implements. The daemon and registry depend only on this interface.
type Manager interface {
	ListUnits(ctx context.Context) ([]string, error)
	Start(ctx context.Context, unit string) (Result, error)
	Stop(ctx context.Context, unit string) (Result, error)
	Restart(ctx context.Context, unit string) (Result, error)
	Status(ctx context.Context, unit string) (StatusReport, error)
	JournalTail(ctx context.Context, unit string, lines int) ([]string, error)
	JournalFollow(ctx context.Context, unit string) (<-chan string, func(), error)
}
