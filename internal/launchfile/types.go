// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package launchfile

import "errors"

// ErrParse wraps every error produced while reading a launch file or
// validating its structure (malformed YAML, an executable that can't be
// found on PATH).
var ErrParse = errors.New("launchfile: parse error")

// ErrPlan wraps errors in how a launch file's nodes fit together once
// parsed: a $(arg NAME) token with no value, or a depends_on target
// naming a node that isn't in the set. These are planning failures, not
// parse failures — spec.md's error taxonomy keeps them distinct (exit 2
// vs exit 3) since fixing one means changing arguments or node wiring,
// not the file's syntax.
var ErrPlan = errors.New("launchfile: plan error")

// SupportedVersion is the only version header this package accepts.
const SupportedVersion = "1.0"

// ArgSpec is one entry of a launch file's top-level args map.
type ArgSpec struct {
	Default     string `yaml:"default"`
	Description string `yaml:"description,omitempty"`
}

// NodeSpec is one entry of a launch file's top-level nodes map, before
// substitution.
type NodeSpec struct {
	Executable        string            `yaml:"executable,omitempty"`
	Package           string            `yaml:"package,omitempty"`
	Binary            string            `yaml:"binary,omitempty"`
	Args              map[string]string `yaml:"args,omitempty"`
	Env               map[string]string `yaml:"env,omitempty"`
	Cwd               string            `yaml:"cwd,omitempty"`
	Group             string            `yaml:"group,omitempty"`
	DependsOn         []string          `yaml:"depends_on,omitempty"`
	Respawn           bool              `yaml:"respawn,omitempty"`
	ShutdownTimeoutMS int               `yaml:"shutdown_timeout_ms,omitempty"`
}

// LaunchFile is the parsed, not-yet-substituted launch description.
type LaunchFile struct {
	Version string              `yaml:"version"`
	Args    map[string]ArgSpec  `yaml:"args,omitempty"`
	Nodes   map[string]NodeSpec `yaml:"nodes"`
}

// ResolvedNode is a NodeSpec with every $(arg NAME) token substituted. It
// is immutable after planning.
type ResolvedNode struct {
	Name              string
	Executable         string
	Args              map[string]string
	Env               map[string]string
	Cwd               string
	Group             string
	DependsOn         []string
	Respawn           bool
	ShutdownTimeoutMS int
}
