// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package services

import "context"

// Closer is satisfied by *fabric.Session. It is expressed as a narrow
// interface here so this package never imports internal/fabric.
type Closer interface {
	Close()
}

// FabricSessionService keeps an already-open fabric session alive for the
// lifetime of the supervisor tree, closing it on shutdown. The session
// itself does no blocking work of its own; this wrapper exists purely so
// Close() happens at a predictable point in the tree's teardown order,
// after the daemon and registry services (which use the session) have
// been asked to stop.
type FabricSessionService struct {
	session Closer
	name    string
}

// NewFabricSessionService wraps session for supervision.
func NewFabricSessionService(session Closer) *FabricSessionService {
	return &FabricSessionService{session: session, name: "fabric-session"}
}

// Serve implements suture.Service.
func (f *FabricSessionService) Serve(ctx context.Context) error {
	<-ctx.Done()
	f.session.Close()
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (f *FabricSessionService) String() string {
	return f.name
}
