// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package svcmanager

import (
	"context"
	"errors"
	"testing"
)

func TestMockStartStopRestart(t *testing.T) {
	m := NewMock("bubbaloop-camera-1.service")
	ctx := context.Background()

	if _, err := m.Start(ctx, "bubbaloop-camera-1.service"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	report, err := m.Status(ctx, "bubbaloop-camera-1.service")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if report.Status != StatusActive || !report.HasPid {
		t.Errorf("after Start, report = %+v", report)
	}

	if _, err := m.Restart(ctx, "bubbaloop-camera-1.service"); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	report, _ = m.Status(ctx, "bubbaloop-camera-1.service")
	if report.RestartCount != 1 {
		t.Errorf("RestartCount = %d, want 1", report.RestartCount)
	}

	if _, err := m.Stop(ctx, "bubbaloop-camera-1.service"); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	report, _ = m.Status(ctx, "bubbaloop-camera-1.service")
	if report.Status != StatusInactive || report.HasPid {
		t.Errorf("after Stop, report = %+v", report)
	}

	if m.StartCalls() != 1 || m.StopCalls() != 1 || m.RestartCalls() != 1 || m.StatusCalls() != 3 {
		t.Errorf("call counts = start:%d stop:%d restart:%d status:%d",
			m.StartCalls(), m.StopCalls(), m.RestartCalls(), m.StatusCalls())
	}
}

func TestMockSetFailure(t *testing.T) {
	m := NewMock("bubbaloop-camera-1.service")
	wantErr := errors.New("boom")
	m.SetFailure("bubbaloop-camera-1.service", wantErr)

	ctx := context.Background()
	if _, err := m.Start(ctx, "bubbaloop-camera-1.service"); !errors.Is(err, wantErr) {
		t.Errorf("Start() error = %v, want %v", err, wantErr)
	}

	m.SetFailure("", nil)
	if _, err := m.Start(ctx, "bubbaloop-camera-1.service"); err != nil {
		t.Errorf("Start() after clearing failure: error = %v", err)
	}
}

func TestMockStatusUnknownUnit(t *testing.T) {
	m := NewMock()
	if _, err := m.Status(context.Background(), "missing.service"); !errors.Is(err, ErrAdapter) {
		t.Errorf("Status() error = %v, want ErrAdapter", err)
	}
}

func TestMockJournalTail(t *testing.T) {
	m := NewMock("bubbaloop-camera-1.service")
	m.SetJournal("bubbaloop-camera-1.service", []string{"a", "b", "c", "d"})

	lines, err := m.JournalTail(context.Background(), "bubbaloop-camera-1.service", 2)
	if err != nil {
		t.Fatalf("JournalTail() error = %v", err)
	}
	want := []string{"c", "d"}
	if len(lines) != 2 || lines[0] != want[0] || lines[1] != want[1] {
		t.Errorf("JournalTail() = %v, want %v", lines, want)
	}
}

func TestMockJournalFollowClosesOnCancel(t *testing.T) {
	m := NewMock("bubbaloop-camera-1.service")
	ctx, cancel := context.WithCancel(context.Background())

	lines, _, err := m.JournalFollow(ctx, "bubbaloop-camera-1.service")
	if err != nil {
		t.Fatalf("JournalFollow() error = %v", err)
	}
	cancel()
	if _, ok := <-lines; ok {
		t.Error("expected channel to close after context cancellation")
	}
}

func TestMockListUnits(t *testing.T) {
	m := NewMock("a.service", "b.service")
	units, err := m.ListUnits(context.Background())
	if err != nil {
		t.Fatalf("ListUnits() error = %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("len(units) = %d, want 2", len(units))
	}
}
