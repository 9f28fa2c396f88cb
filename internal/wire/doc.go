// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

// Package wire hand-encodes the daemon API's request/reply payloads as
// protobuf messages (one message per payload, no length prefix), using
// google.golang.org/protobuf/encoding/protowire directly against field
// numbers. There is no .proto compilation step — message shapes are fixed
// Go structs with Marshal/Unmarshal methods that are wire-compatible with
// what a generated protoc-gen-go type would produce for the same field
// layout, so a future compiled client (or a protoc-decode on the wire)
// reads the same bytes.
//
// Messages:
//
//	NodeCommand     - daemon/api/nodes/<name>/{start,stop,restart,build} request
//	CommandResult   - {ok, message} reply to a command
//	NodeDescriptor  - static identity of an installed node
//	NodeStatus      - live status of a node
//	RegistryView    - a versioned snapshot of every node's descriptor+status
//	LogsRequest     - {lines} request to daemon/api/nodes/<name>/logs
//	LogsResponse    - {lines, success, error} reply to a logs request
//
// Marshal followed by Unmarshal is the identity function for every message
// in this package; this is exercised directly in the package's tests.
package wire
