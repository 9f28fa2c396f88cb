// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package naming

import (
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultScope is used when BUBBALOOP_SCOPE is unset.
	DefaultScope = "local"

	// unknownMachine is the fallback machine id when neither the override
	// env var nor the OS hostname is available.
	unknownMachine = "unknown"
)

// MachineID resolves the sanitized machine identifier: BUBBALOOP_MACHINE_ID
// if set, otherwise the system hostname, with every "-" replaced by "_".
// Falls back to "unknown" if neither source is available.
//
// getenv and hostname are injected so callers (and tests) don't depend on
// the real process environment or host.
func MachineID(getenv func(string) string, hostname func() (string, error)) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if hostname == nil {
		hostname = os.Hostname
	}

	if id := getenv("BUBBALOOP_MACHINE_ID"); id != "" {
		return sanitize(id)
	}

	if h, err := hostname(); err == nil && h != "" {
		return sanitize(h)
	}

	return unknownMachine
}

// Scope resolves the deployment scope: BUBBALOOP_SCOPE if set, otherwise
// DefaultScope.
func Scope(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if s := getenv("BUBBALOOP_SCOPE"); s != "" {
		return s
	}
	return DefaultScope
}

// Topic builds a fabric topic of the form bubbaloop/<scope>/<machine>/<suffix>.
// scope and machine must already be sanitized; Topic never re-sanitizes them.
func Topic(scope, machine, suffix string) string {
	return "bubbaloop/" + scope + "/" + machine + "/" + suffix
}

// ParseTopic is Topic's inverse: it splits a fabric topic back into its
// scope, machine, and suffix segments. It returns an error if topic
// doesn't start with the "bubbaloop/" prefix or doesn't have enough
// segments to hold a suffix.
//
// ParseTopic(Topic(scope, machine, suffix)) == (scope, machine, suffix, nil)
// for any valid scope, machine, and non-empty suffix.
func ParseTopic(topic string) (scope, machine, suffix string, err error) {
	const prefix = "bubbaloop/"
	if !strings.HasPrefix(topic, prefix) {
		return "", "", "", fmt.Errorf("naming: topic %q missing %q prefix", topic, prefix)
	}
	rest := strings.TrimPrefix(topic, prefix)
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("naming: topic %q does not have scope/machine/suffix segments", topic)
	}
	return parts[0], parts[1], parts[2], nil
}

func sanitize(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "-", "_")
}
