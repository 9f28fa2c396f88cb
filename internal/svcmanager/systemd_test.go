// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package svcmanager

import "testing"

func TestParseShowOutput(t *testing.T) {
	out := "ActiveState=active\nSubState=running\nMainPID=4242\nNRestarts=3\n"
	props := parseShowOutput(out)

	want := map[string]string{
		"ActiveState": "active",
		"SubState":    "running",
		"MainPID":     "4242",
		"NRestarts":   "3",
	}
	for k, v := range want {
		if props[k] != v {
			t.Errorf("props[%q] = %q, want %q", k, props[k], v)
		}
	}
}

func TestParseShowOutputIgnoresMalformedLines(t *testing.T) {
	out := "ActiveState=active\nthis line has no equals\nSubState=running\n"
	props := parseShowOutput(out)
	if len(props) != 2 {
		t.Fatalf("len(props) = %d, want 2", len(props))
	}
}

func TestMapActiveState(t *testing.T) {
	tests := []struct {
		active string
		want   Status
	}{
		{"active", StatusActive},
		{"activating", StatusActivating},
		{"deactivating", StatusDeactivating},
		{"failed", StatusFailed},
		{"inactive", StatusInactive},
		{"reloading", StatusUnknown},
		{"", StatusUnknown},
	}
	for _, tt := range tests {
		if got := mapActiveState(tt.active, ""); got != tt.want {
			t.Errorf("mapActiveState(%q) = %v, want %v", tt.active, got, tt.want)
		}
	}
}

func TestNewSystemdManagerLimiterPerUnit(t *testing.T) {
	m := NewSystemdManager(1.0)
	l1 := m.limiterFor("bubbaloop-camera-1.service")
	l2 := m.limiterFor("bubbaloop-camera-1.service")
	l3 := m.limiterFor("bubbaloop-camera-2.service")

	if l1 != l2 {
		t.Error("limiterFor() returned different limiters for the same unit")
	}
	if l1 == l3 {
		t.Error("limiterFor() returned the same limiter for different units")
	}
}
