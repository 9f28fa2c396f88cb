// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package signaling

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Broadcast is a shutdown signal shared by every goroutine that needs to
// stop cleanly. The zero value is not usable; construct with New.
type Broadcast struct {
	ctx    context.Context
	cancel context.CancelFunc

	escalate atomic.Bool
	armed    atomic.Bool
}

// New returns a Broadcast derived from parent. It does not itself listen
// for OS signals; call Watch to wire it to SIGINT/SIGTERM.
func New(parent context.Context) *Broadcast {
	ctx, cancel := context.WithCancel(parent)
	return &Broadcast{ctx: ctx, cancel: cancel}
}

// Watch installs a signal.Notify handler that cancels b on the first
// SIGINT/SIGTERM and sets Escalate on any subsequent one. It returns a
// stop function that should be deferred by the caller.
func (b *Broadcast) Watch() (stop func()) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				if b.armed.Swap(true) {
					b.escalate.Store(true)
					continue
				}
				b.cancel()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// Done returns the channel that closes when shutdown begins.
func (b *Broadcast) Done() <-chan struct{} {
	return b.ctx.Done()
}

// Context returns the broadcast's context, canceled once shutdown begins.
func (b *Broadcast) Context() context.Context {
	return b.ctx
}

// Cancel triggers shutdown directly, without waiting for a signal.
func (b *Broadcast) Cancel() {
	if b.armed.Swap(true) {
		b.escalate.Store(true)
		return
	}
	b.cancel()
}

// Escalate reports whether a second shutdown request arrived while the
// first was still in flight.
func (b *Broadcast) Escalate() bool {
	return b.escalate.Load()
}
