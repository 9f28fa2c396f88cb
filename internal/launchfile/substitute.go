// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package launchfile

import (
	"fmt"
	"path/filepath"
	"regexp"
)

var argToken = regexp.MustCompile(`\$\(arg ([A-Za-z0-9_]+)\)`)

// Resolve merges overrides over the file's arg defaults, substitutes
// every $(arg NAME) token in every node's string fields in a single
// pass, and returns the resolved nodes keyed by name. Resolve does not
// validate executables or depends_on targets; call Validate afterward.
func Resolve(lf *LaunchFile, overrides map[string]string) (map[string]ResolvedNode, error) {
	values := make(map[string]string, len(lf.Args))
	for name, spec := range lf.Args {
		values[name] = spec.Default
	}
	for name, v := range overrides {
		if _, ok := lf.Args[name]; !ok {
			return nil, fmt.Errorf("%w: override for undeclared arg %q", ErrParse, name)
		}
		values[name] = v
	}

	resolved := make(map[string]ResolvedNode, len(lf.Nodes))
	for name, spec := range lf.Nodes {
		r, err := resolveNode(name, spec, values)
		if err != nil {
			return nil, err
		}
		resolved[name] = r
	}
	return resolved, nil
}

func resolveNode(name string, spec NodeSpec, values map[string]string) (ResolvedNode, error) {
	executable := spec.Executable
	if executable == "" {
		executable = filepath.Join(spec.Package, spec.Binary)
	}

	sub, err := substitute(executable, values)
	if err != nil {
		return ResolvedNode{}, fmt.Errorf("node %q executable: %w", name, err)
	}
	executable = sub

	cwd, err := substitute(spec.Cwd, values)
	if err != nil {
		return ResolvedNode{}, fmt.Errorf("node %q cwd: %w", name, err)
	}

	args := make(map[string]string, len(spec.Args))
	for k, v := range spec.Args {
		sv, err := substitute(v, values)
		if err != nil {
			return ResolvedNode{}, fmt.Errorf("node %q arg %q: %w", name, k, err)
		}
		args[k] = sv
	}

	env := make(map[string]string, len(spec.Env))
	for k, v := range spec.Env {
		sv, err := substitute(v, values)
		if err != nil {
			return ResolvedNode{}, fmt.Errorf("node %q env %q: %w", name, k, err)
		}
		env[k] = sv
	}

	return ResolvedNode{
		Name:              name,
		Executable:        executable,
		Args:              args,
		Env:               env,
		Cwd:               cwd,
		Group:             spec.Group,
		DependsOn:         spec.DependsOn,
		Respawn:           spec.Respawn,
		ShutdownTimeoutMS: spec.ShutdownTimeoutMS,
	}, nil
}

func substitute(s string, values map[string]string) (string, error) {
	var outerErr error
	result := argToken.ReplaceAllStringFunc(s, func(token string) string {
		name := argToken.FindStringSubmatch(token)[1]
		v, ok := values[name]
		if !ok {
			outerErr = fmt.Errorf("%w: undefined arg %q", ErrPlan, name)
			return token
		}
		return v
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}
