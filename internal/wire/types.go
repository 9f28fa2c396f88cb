// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package wire

// CommandType enumerates the daemon API's node commands.
type CommandType int32

const (
	CommandStart CommandType = iota
	CommandStop
	CommandRestart
	CommandBuild
)

// NodeCommand is the request payload for daemon/api/nodes/<name>/<command>.
type NodeCommand struct {
	Name    string
	Command CommandType
}

// CommandResult is the reply payload for start/stop/restart/build.
type CommandResult struct {
	OK      bool
	Message string
}

// StatusKind enumerates the node lifecycle states the supervisor observes.
type StatusKind int32

const (
	StatusInactive StatusKind = iota
	StatusActivating
	StatusActive
	StatusDeactivating
	StatusFailed
	StatusUnknown
)

// NodeDescriptor is the static identity of an installed bubble-node.
type NodeDescriptor struct {
	Name        string
	Unit        string
	Executable  string
	ConfigPath  string // empty means absent
	Description string // empty means absent
}

// NodeStatus is a node's live status as tracked by the registry.
//
// Pid, MemoryBytes, and CPUPercent are optional; HasPid/HasMemory/HasCPU
// report whether the daemon could resolve them on this platform.
type NodeStatus struct {
	Status            StatusKind
	Pid               uint32
	HasPid            bool
	MemoryBytes       uint64
	HasMemory         bool
	CPUPercent        float64
	HasCPU            bool
	RestartCount      uint32
	LastTransitionUnixNano int64
}

// RegistryEntry pairs a node's descriptor with its current status.
type RegistryEntry struct {
	Descriptor NodeDescriptor
	Status     NodeStatus
}

// RegistryView is a versioned snapshot of every installed node on a
// machine. Generation increases on every observable change; subscribers
// use it to detect missed updates.
type RegistryView struct {
	Machine    string
	Scope      string
	Entries    []RegistryEntry
	Generation uint64
}

// LogsRequest is the request payload for daemon/api/nodes/<name>/logs.
type LogsRequest struct {
	Lines uint32
}

// LogsResponse is the reply payload for a logs request.
type LogsResponse struct {
	Lines   []string
	Success bool
	Error   string // empty means absent
}
