// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package launchfile

import (
	"fmt"
	"os/exec"
	"sort"
)

// Validate checks every resolved node's executable is runnable and every
// depends_on target names another node in the set.
func Validate(nodes map[string]ResolvedNode) error {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := nodes[name]

		if _, err := exec.LookPath(node.Executable); err != nil {
			return fmt.Errorf("%w: node %q executable %q not runnable: %v", ErrParse, name, node.Executable, err)
		}

		for _, dep := range node.DependsOn {
			if _, ok := nodes[dep]; !ok {
				return fmt.Errorf("%w: node %q depends_on unknown node %q", ErrPlan, name, dep)
			}
		}
	}
	return nil
}
