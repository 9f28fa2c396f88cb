// Bubbaloop - edge node fleet coordinator
// Copyright 2026 The Bubbaloop Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/kornia/bubbaloop

package nodesdk

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/kornia/bubbaloop/internal/config"
	"github.com/kornia/bubbaloop/internal/fabric"
	"github.com/kornia/bubbaloop/internal/naming"
	"github.com/kornia/bubbaloop/internal/signaling"
)

const heartbeatInterval = 5 * time.Second

// Options configures Run.
type Options struct {
	// NodeName is this node's identity, used in the health and schema
	// topics. Required.
	NodeName string

	// Scope and Machine override environment-derived naming.Scope and
	// naming.MachineID when non-empty.
	Scope   string
	Machine string

	// Fabric is the fabric connection configuration.
	Fabric config.FabricConfig

	// SchemaDescriptor is the protobuf FileDescriptorSet bytes this node
	// answers schema queries with. A nil value skips declaring the
	// schema queryable entirely.
	SchemaDescriptor []byte

	Logger *slog.Logger
}

// Context is handed to a node's entry point by Run.
type Context struct {
	Session   *fabric.Session
	Broadcast *signaling.Broadcast
	Scope     string
	Machine   string
	NodeName  string
	Logger    *slog.Logger
}

// Topic builds a fully scoped topic: bubbaloop/<scope>/<machine>/<suffix>.
func (c *Context) Topic(suffix string) string {
	return naming.Topic(c.Scope, c.Machine, suffix)
}

// Run scaffolds a bubble-node: opens a fabric session, arms shutdown on
// SIGINT/SIGTERM, starts the health heartbeat, declares the schema
// queryable if SchemaDescriptor is set, then calls entry. Run returns
// once entry returns or the broadcast is canceled and entry returns in
// response.
func Run(ctx context.Context, opts Options, entry func(*Context) error) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scope := opts.Scope
	if scope == "" {
		scope = naming.Scope(os.Getenv)
	}
	machine := opts.Machine
	if machine == "" {
		machine = naming.MachineID(os.Getenv, os.Hostname)
	}

	broadcast := signaling.New(ctx)
	stop := broadcast.Watch()
	defer stop()

	sess, err := fabric.Open(broadcast.Context(), opts.Fabric, os.Getenv)
	if err != nil {
		return err
	}
	defer sess.Close()

	sdkCtx := &Context{
		Session:   sess,
		Broadcast: broadcast,
		Scope:     scope,
		Machine:   machine,
		NodeName:  opts.NodeName,
		Logger:    logger,
	}

	healthPub := sess.DeclarePublisher(sdkCtx.Topic("health/" + opts.NodeName))
	go runHeartbeat(broadcast, healthPub, logger)

	if opts.SchemaDescriptor != nil {
		descriptor := opts.SchemaDescriptor
		q, err := sess.DeclareQueryable(sdkCtx.Topic(opts.NodeName+"/schema"), func(ctx context.Context, topic string, payload []byte, reply func([]byte)) {
			reply(descriptor)
		})
		if err != nil {
			logger.Warn("schema queryable declare failed", "error", err)
		} else {
			defer q.Undeclare()
		}
	}

	return entry(sdkCtx)
}

// runHeartbeat publishes "ok" every heartbeatInterval until shutdown.
// A publish failure is logged and the loop continues, so a transient
// fabric hiccup does not kill the node's own heartbeat goroutine.
func runHeartbeat(b *signaling.Broadcast, pub *fabric.Publisher, logger *slog.Logger) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.Done():
			return
		case <-ticker.C:
			if err := pub.Publish([]byte("ok")); err != nil {
				logger.Warn("health heartbeat publish failed", "error", err)
			}
		}
	}
}
