// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package naming

import (
	"errors"
	"testing"
)

func TestMachineID(t *testing.T) {
	tests := []struct {
		name     string
		getenv   func(string) string
		hostname func() (string, error)
		want     string
	}{
		{
			name:   "env override sanitized",
			getenv: envMap(map[string]string{"BUBBALOOP_MACHINE_ID": "jetson-orin-nano"}),
			want:   "jetson_orin_nano",
		},
		{
			name:     "falls back to hostname",
			getenv:   envMap(nil),
			hostname: func() (string, error) { return "edge-host-7", nil },
			want:     "edge_host_7",
		},
		{
			name:     "falls back to unknown",
			getenv:   envMap(nil),
			hostname: func() (string, error) { return "", errors.New("no hostname") },
			want:     "unknown",
		},
		{
			name:   "env override takes precedence over hostname",
			getenv: envMap(map[string]string{"BUBBALOOP_MACHINE_ID": "override"}),
			hostname: func() (string, error) {
				t.Fatal("hostname should not be called when env override is set")
				return "", nil
			},
			want: "override",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MachineID(tt.getenv, tt.hostname)
			if got != tt.want {
				t.Errorf("MachineID() = %q, want %q", got, tt.want)
			}
			if n := countHyphens(got); n != 0 {
				t.Errorf("MachineID() = %q contains %d hyphens, want 0", got, n)
			}
		})
	}
}

func TestScope(t *testing.T) {
	if got := Scope(envMap(nil)); got != DefaultScope {
		t.Errorf("Scope() = %q, want %q", got, DefaultScope)
	}
	if got := Scope(envMap(map[string]string{"BUBBALOOP_SCOPE": "greenhouse"})); got != "greenhouse" {
		t.Errorf("Scope() = %q, want greenhouse", got)
	}
}

func TestTopic(t *testing.T) {
	got := Topic("local", "jetson_orin_nano", "health/foo")
	want := "bubbaloop/local/jetson_orin_nano/health/foo"
	if got != want {
		t.Errorf("Topic() = %q, want %q", got, want)
	}
}

func TestParseTopicRoundTrip(t *testing.T) {
	cases := []struct {
		scope, machine, suffix string
	}{
		{"local", "jetson_orin_nano", "health/foo"},
		{"greenhouse", "camera_1", "daemon/nodes"},
		{"local", "edge_host_7", "daemon/api/nodes/camera_1/logs"},
	}
	for _, tt := range cases {
		topic := Topic(tt.scope, tt.machine, tt.suffix)
		scope, machine, suffix, err := ParseTopic(topic)
		if err != nil {
			t.Fatalf("ParseTopic(%q) error = %v", topic, err)
		}
		if scope != tt.scope || machine != tt.machine || suffix != tt.suffix {
			t.Errorf("ParseTopic(%q) = (%q, %q, %q), want (%q, %q, %q)",
				topic, scope, machine, suffix, tt.scope, tt.machine, tt.suffix)
		}
	}
}

func TestParseTopicRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"not-bubbaloop/local/machine/suffix",
		"bubbaloop/local",
		"bubbaloop/local/machine",
		"bubbaloop//machine/suffix",
		"bubbaloop/local//suffix",
	}
	for _, topic := range cases {
		if _, _, _, err := ParseTopic(topic); err == nil {
			t.Errorf("ParseTopic(%q) error = nil, want error", topic)
		}
	}
}

func envMap(m map[string]string) func(string) string {
	return func(key string) string {
		return m[key]
	}
}

func countHyphens(s string) int {
	n := 0
	for _, r := range s {
		if r == '-' {
			n++
		}
	}
	return n
}
