// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package signaling

import (
	"context"
	"testing"
	"time"
)

func TestCancelClosesDone(t *testing.T) {
	b := New(context.Background())
	select {
	case <-b.Done():
		t.Fatal("Done() closed before Cancel()")
	default:
	}

	b.Cancel()
	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not close after Cancel()")
	}
}

func TestSecondCancelEscalates(t *testing.T) {
	b := New(context.Background())
	if b.Escalate() {
		t.Fatal("Escalate() true before any Cancel()")
	}

	b.Cancel()
	if b.Escalate() {
		t.Fatal("Escalate() true after first Cancel()")
	}

	b.Cancel()
	if !b.Escalate() {
		t.Fatal("Escalate() false after second Cancel()")
	}
}

func TestParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	b := New(parent)
	cancel()

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not close when parent was canceled")
	}
}
