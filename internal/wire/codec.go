// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package wire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers. Kept in one place so codec.go and any future compiled
// .proto definition stay aligned.
const (
	fieldNodeCommandName    = 1
	fieldNodeCommandCommand = 2

	fieldCommandResultOK      = 1
	fieldCommandResultMessage = 2

	fieldNodeDescriptorName        = 1
	fieldNodeDescriptorUnit        = 2
	fieldNodeDescriptorExecutable  = 3
	fieldNodeDescriptorConfigPath  = 4
	fieldNodeDescriptorDescription = 5

	fieldNodeStatusStatus       = 1
	fieldNodeStatusPid          = 2
	fieldNodeStatusHasPid       = 3
	fieldNodeStatusMemoryBytes  = 4
	fieldNodeStatusHasMemory    = 5
	fieldNodeStatusCPUPercent   = 6
	fieldNodeStatusHasCPU       = 7
	fieldNodeStatusRestartCount = 8
	fieldNodeStatusLastTransit  = 9

	fieldRegistryEntryDescriptor = 1
	fieldRegistryEntryStatus     = 2

	fieldRegistryViewMachine    = 1
	fieldRegistryViewScope      = 2
	fieldRegistryViewEntries    = 3
	fieldRegistryViewGeneration = 4

	fieldLogsRequestLines = 1

	fieldLogsResponseLines   = 1
	fieldLogsResponseSuccess = 2
	fieldLogsResponseError   = 3
)

// Marshal encodes a NodeCommand as a protobuf message (no length prefix).
func (m NodeCommand) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldNodeCommandName, protowire.BytesType)
	b = protowire.AppendString(b, m.Name)
	b = protowire.AppendTag(b, fieldNodeCommandCommand, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Command))
	return b
}

// UnmarshalNodeCommand decodes a NodeCommand from a protobuf message (no length prefix).
func UnmarshalNodeCommand(b []byte) (NodeCommand, error) {
	var m NodeCommand
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: NodeCommand: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldNodeCommandName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeCommand.name: %w", protowire.ParseError(n))
			}
			m.Name = v
			b = b[n:]
		case num == fieldNodeCommandCommand && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeCommand.command: %w", protowire.ParseError(n))
			}
			m.Command = CommandType(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeCommand: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// Marshal encodes a CommandResult as a protobuf message (no length prefix).
func (m CommandResult) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldCommandResultOK, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(m.OK))
	b = protowire.AppendTag(b, fieldCommandResultMessage, protowire.BytesType)
	b = protowire.AppendString(b, m.Message)
	return b
}

// UnmarshalCommandResult decodes a CommandResult from a protobuf message (no length prefix).
func UnmarshalCommandResult(b []byte) (CommandResult, error) {
	var m CommandResult
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: CommandResult: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldCommandResultOK && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: CommandResult.ok: %w", protowire.ParseError(n))
			}
			m.OK = v != 0
			b = b[n:]
		case num == fieldCommandResultMessage && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: CommandResult.message: %w", protowire.ParseError(n))
			}
			m.Message = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: CommandResult: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// Marshal encodes a NodeDescriptor as a protobuf message (no length prefix).
func (m NodeDescriptor) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldNodeDescriptorName, protowire.BytesType)
	b = protowire.AppendString(b, m.Name)
	b = protowire.AppendTag(b, fieldNodeDescriptorUnit, protowire.BytesType)
	b = protowire.AppendString(b, m.Unit)
	b = protowire.AppendTag(b, fieldNodeDescriptorExecutable, protowire.BytesType)
	b = protowire.AppendString(b, m.Executable)
	if m.ConfigPath != "" {
		b = protowire.AppendTag(b, fieldNodeDescriptorConfigPath, protowire.BytesType)
		b = protowire.AppendString(b, m.ConfigPath)
	}
	if m.Description != "" {
		b = protowire.AppendTag(b, fieldNodeDescriptorDescription, protowire.BytesType)
		b = protowire.AppendString(b, m.Description)
	}
	return b
}

// UnmarshalNodeDescriptor decodes a NodeDescriptor from a protobuf message (no length prefix).
func UnmarshalNodeDescriptor(b []byte) (NodeDescriptor, error) {
	var m NodeDescriptor
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: NodeDescriptor: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldNodeDescriptorName && typ == protowire.BytesType:
			v, n := consumeStringField(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeDescriptor.name: %w", protowire.ParseError(n))
			}
			m.Name = v
			b = b[n:]
		case num == fieldNodeDescriptorUnit && typ == protowire.BytesType:
			v, n := consumeStringField(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeDescriptor.unit: %w", protowire.ParseError(n))
			}
			m.Unit = v
			b = b[n:]
		case num == fieldNodeDescriptorExecutable && typ == protowire.BytesType:
			v, n := consumeStringField(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeDescriptor.executable: %w", protowire.ParseError(n))
			}
			m.Executable = v
			b = b[n:]
		case num == fieldNodeDescriptorConfigPath && typ == protowire.BytesType:
			v, n := consumeStringField(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeDescriptor.config_path: %w", protowire.ParseError(n))
			}
			m.ConfigPath = v
			b = b[n:]
		case num == fieldNodeDescriptorDescription && typ == protowire.BytesType:
			v, n := consumeStringField(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeDescriptor.description: %w", protowire.ParseError(n))
			}
			m.Description = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeDescriptor: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// Marshal encodes a NodeStatus as a protobuf message (no length prefix).
func (m NodeStatus) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldNodeStatusStatus, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Status))
	if m.HasPid {
		b = protowire.AppendTag(b, fieldNodeStatusPid, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Pid))
		b = protowire.AppendTag(b, fieldNodeStatusHasPid, protowire.VarintType)
		b = protowire.AppendVarint(b, boolToVarint(true))
	}
	if m.HasMemory {
		b = protowire.AppendTag(b, fieldNodeStatusMemoryBytes, protowire.VarintType)
		b = protowire.AppendVarint(b, m.MemoryBytes)
		b = protowire.AppendTag(b, fieldNodeStatusHasMemory, protowire.VarintType)
		b = protowire.AppendVarint(b, boolToVarint(true))
	}
	if m.HasCPU {
		b = protowire.AppendTag(b, fieldNodeStatusCPUPercent, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(m.CPUPercent))
		b = protowire.AppendTag(b, fieldNodeStatusHasCPU, protowire.VarintType)
		b = protowire.AppendVarint(b, boolToVarint(true))
	}
	b = protowire.AppendTag(b, fieldNodeStatusRestartCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.RestartCount))
	b = protowire.AppendTag(b, fieldNodeStatusLastTransit, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.LastTransitionUnixNano))
	return b
}

// UnmarshalNodeStatus decodes a NodeStatus from a protobuf message (no length prefix).
func UnmarshalNodeStatus(b []byte) (NodeStatus, error) {
	var m NodeStatus
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: NodeStatus: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldNodeStatusStatus && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeStatus.status: %w", protowire.ParseError(n))
			}
			m.Status = StatusKind(v)
			b = b[n:]
		case num == fieldNodeStatusPid && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeStatus.pid: %w", protowire.ParseError(n))
			}
			m.Pid = uint32(v)
			b = b[n:]
		case num == fieldNodeStatusHasPid && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeStatus.has_pid: %w", protowire.ParseError(n))
			}
			m.HasPid = v != 0
			b = b[n:]
		case num == fieldNodeStatusMemoryBytes && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeStatus.memory_bytes: %w", protowire.ParseError(n))
			}
			m.MemoryBytes = v
			b = b[n:]
		case num == fieldNodeStatusHasMemory && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeStatus.has_memory: %w", protowire.ParseError(n))
			}
			m.HasMemory = v != 0
			b = b[n:]
		case num == fieldNodeStatusCPUPercent && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeStatus.cpu_percent: %w", protowire.ParseError(n))
			}
			m.CPUPercent = math.Float64frombits(v)
			b = b[n:]
		case num == fieldNodeStatusHasCPU && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeStatus.has_cpu: %w", protowire.ParseError(n))
			}
			m.HasCPU = v != 0
			b = b[n:]
		case num == fieldNodeStatusRestartCount && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeStatus.restart_count: %w", protowire.ParseError(n))
			}
			m.RestartCount = uint32(v)
			b = b[n:]
		case num == fieldNodeStatusLastTransit && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeStatus.last_transition: %w", protowire.ParseError(n))
			}
			m.LastTransitionUnixNano = protowire.DecodeZigZag(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: NodeStatus: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// Marshal encodes a RegistryEntry as a protobuf message (no length prefix).
func (m RegistryEntry) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldRegistryEntryDescriptor, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Descriptor.Marshal())
	b = protowire.AppendTag(b, fieldRegistryEntryStatus, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Status.Marshal())
	return b
}

// UnmarshalRegistryEntry decodes a RegistryEntry from a protobuf message (no length prefix).
func UnmarshalRegistryEntry(b []byte) (RegistryEntry, error) {
	var m RegistryEntry
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: RegistryEntry: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldRegistryEntryDescriptor && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return m, fmt.Errorf("wire: RegistryEntry.descriptor: %w", protowire.ParseError(n))
			}
			d, err := UnmarshalNodeDescriptor(v)
			if err != nil {
				return m, err
			}
			m.Descriptor = d
			b = b[n:]
		case num == fieldRegistryEntryStatus && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return m, fmt.Errorf("wire: RegistryEntry.status: %w", protowire.ParseError(n))
			}
			s, err := UnmarshalNodeStatus(v)
			if err != nil {
				return m, err
			}
			m.Status = s
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: RegistryEntry: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// Marshal encodes a RegistryView as a protobuf message (no length prefix).
func (m RegistryView) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldRegistryViewMachine, protowire.BytesType)
	b = protowire.AppendString(b, m.Machine)
	b = protowire.AppendTag(b, fieldRegistryViewScope, protowire.BytesType)
	b = protowire.AppendString(b, m.Scope)
	for _, e := range m.Entries {
		b = protowire.AppendTag(b, fieldRegistryViewEntries, protowire.BytesType)
		b = protowire.AppendBytes(b, e.Marshal())
	}
	b = protowire.AppendTag(b, fieldRegistryViewGeneration, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Generation)
	return b
}

// UnmarshalRegistryView decodes a RegistryView from a protobuf message (no length prefix).
func UnmarshalRegistryView(b []byte) (RegistryView, error) {
	var m RegistryView
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: RegistryView: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldRegistryViewMachine && typ == protowire.BytesType:
			v, n := consumeStringField(b)
			if n < 0 {
				return m, fmt.Errorf("wire: RegistryView.machine: %w", protowire.ParseError(n))
			}
			m.Machine = v
			b = b[n:]
		case num == fieldRegistryViewScope && typ == protowire.BytesType:
			v, n := consumeStringField(b)
			if n < 0 {
				return m, fmt.Errorf("wire: RegistryView.scope: %w", protowire.ParseError(n))
			}
			m.Scope = v
			b = b[n:]
		case num == fieldRegistryViewEntries && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return m, fmt.Errorf("wire: RegistryView.entries: %w", protowire.ParseError(n))
			}
			e, err := UnmarshalRegistryEntry(v)
			if err != nil {
				return m, err
			}
			m.Entries = append(m.Entries, e)
			b = b[n:]
		case num == fieldRegistryViewGeneration && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: RegistryView.generation: %w", protowire.ParseError(n))
			}
			m.Generation = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: RegistryView: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// Marshal encodes a LogsRequest as a protobuf message (no length prefix).
func (m LogsRequest) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldLogsRequestLines, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Lines))
	return b
}

// UnmarshalLogsRequest decodes a LogsRequest from a protobuf message (no length prefix).
func UnmarshalLogsRequest(b []byte) (LogsRequest, error) {
	var m LogsRequest
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: LogsRequest: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldLogsRequestLines && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: LogsRequest.lines: %w", protowire.ParseError(n))
			}
			m.Lines = uint32(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: LogsRequest: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// Marshal encodes a LogsResponse as a protobuf message (no length prefix).
func (m LogsResponse) Marshal() []byte {
	var b []byte
	for _, line := range m.Lines {
		b = protowire.AppendTag(b, fieldLogsResponseLines, protowire.BytesType)
		b = protowire.AppendString(b, line)
	}
	b = protowire.AppendTag(b, fieldLogsResponseSuccess, protowire.VarintType)
	b = protowire.AppendVarint(b, boolToVarint(m.Success))
	if m.Error != "" {
		b = protowire.AppendTag(b, fieldLogsResponseError, protowire.BytesType)
		b = protowire.AppendString(b, m.Error)
	}
	return b
}

// UnmarshalLogsResponse decodes a LogsResponse from a protobuf message (no length prefix).
func UnmarshalLogsResponse(b []byte) (LogsResponse, error) {
	var m LogsResponse
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: LogsResponse: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldLogsResponseLines && typ == protowire.BytesType:
			v, n := consumeStringField(b)
			if n < 0 {
				return m, fmt.Errorf("wire: LogsResponse.lines: %w", protowire.ParseError(n))
			}
			m.Lines = append(m.Lines, v)
			b = b[n:]
		case num == fieldLogsResponseSuccess && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: LogsResponse.success: %w", protowire.ParseError(n))
			}
			m.Success = v != 0
			b = b[n:]
		case num == fieldLogsResponseError && typ == protowire.BytesType:
			v, n := consumeStringField(b)
			if n < 0 {
				return m, fmt.Errorf("wire: LogsResponse.error: %w", protowire.ParseError(n))
			}
			m.Error = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: LogsResponse: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

func boolToVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func consumeStringField(b []byte) (string, int) {
	return protowire.ConsumeString(b)
}
