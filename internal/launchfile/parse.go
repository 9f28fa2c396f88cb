// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package launchfile

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var allowedTopLevelKeys = map[string]bool{
	"version": true,
	"args":    true,
	"nodes":   true,
}

// Parse decodes a launch file document, rejecting unknown top-level
// keys and any version header other than SupportedVersion.
func Parse(data []byte) (*LaunchFile, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var unknown []string
	for key := range raw {
		if !allowedTopLevelKeys[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown top-level key(s): %s", ErrParse, strings.Join(unknown, ", "))
	}

	var lf LaunchFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if lf.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: unsupported version %q, want %q", ErrParse, lf.Version, SupportedVersion)
	}
	if len(lf.Nodes) == 0 {
		return nil, fmt.Errorf("%w: launch file declares no nodes", ErrParse)
	}

	for name, node := range lf.Nodes {
		if node.Executable == "" && (node.Package == "" || node.Binary == "") {
			return nil, fmt.Errorf("%w: node %q has neither executable nor package+binary", ErrParse, name)
		}
	}

	return &lf, nil
}
